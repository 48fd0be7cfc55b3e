package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/auth/authtest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_IssuesCookieForNewBrowser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, s, _ := newStore(t, nil)

	var seen auth.Session
	r := gin.New()
	r.GET("/x", Middleware(s, CookieConfig{Name: "sid"}), func(c *gin.Context) {
		seen = auth.Current(c.Request.Context())
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, 200, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.NoError(t, uuid.Validate(cookies[0].Value))
	assert.True(t, cookies[0].HttpOnly)
	assert.IsType(t, auth.Anonymous{}, seen)
}

func TestMiddleware_DecodesPersistedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, s, _ := newStore(t, nil)
	sid := uuid.NewString()
	tok := authtest.WithRoles(t, "ADMIN")
	require.NoError(t, mr.Set(tokenKey(sid), tok))

	var gotSID, gotTok string
	var seen auth.Session
	r := gin.New()
	r.GET("/x", Middleware(s, CookieConfig{}), func(c *gin.Context) {
		gotSID, _ = auth.SessionID(c.Request.Context())
		gotTok = auth.Token(c.Request.Context())
		seen = auth.Current(c.Request.Context())
		c.Status(200)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, sid, gotSID)
	assert.Equal(t, tok, gotTok)
	assert.Empty(t, w.Result().Cookies(), "known sid is not reissued")
	c, ok := auth.ClaimsOf(seen)
	require.True(t, ok)
	assert.Equal(t, []string{"ADMIN"}, c.Roles)
}

func TestMiddleware_ReplacesMalformedSID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, s, _ := newStore(t, nil)

	r := gin.New()
	r.GET("/x", Middleware(s, CookieConfig{}), func(c *gin.Context) { c.Status(200) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "../../etc", cookies[0].Value)
}
