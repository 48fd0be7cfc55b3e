package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.Login(LoginSuccess)
	m.Login(LoginRejected)
	m.Login(LoginRejected)
	m.ForcedLogout()
	m.GuardDenied("/companies")
	m.UpstreamStatus(403)
	m.UpstreamStatus(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues(LoginRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.forcedLogouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.guardDenials.WithLabelValues("/companies")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamReplies.WithLabelValues("4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamReplies.WithLabelValues("error")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Login(LoginSuccess)
	m.ForcedLogout()
	m.GuardDenied("/x")
	m.UpstreamStatus(200)
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.ForcedLogout()

	r := gin.New()
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "dashboard_forced_logouts_total 1"))
}
