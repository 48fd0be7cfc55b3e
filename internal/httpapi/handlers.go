package httpapi

import (
	"net/http"
	"strconv"

	"warehouse-dashboard/internal/audit"
	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/dashboard"
	"warehouse-dashboard/internal/i18n"
	"warehouse-dashboard/internal/metrics"
	"warehouse-dashboard/internal/rbac"
	"warehouse-dashboard/internal/selection"
	"warehouse-dashboard/internal/session"
	"warehouse-dashboard/internal/upstream"
	"warehouse-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: resolve identity and scope, call the warehouse API, return JSON.
type Handlers struct {
	Sessions   *session.Store
	API        *upstream.Client
	Dashboards *dashboard.Service
	Policy     rbac.Policy
	Audit      *audit.Service
	Metrics    *metrics.Metrics
	Cookie     session.CookieConfig
}

func (h Handlers) sid(c *gin.Context) string {
	sid, _ := auth.SessionID(c.Request.Context())
	return sid
}

func (h Handlers) lang(c *gin.Context) string {
	return h.Sessions.Language(c.Request.Context(), h.sid(c))
}

// claims is only called behind a guard, which rejects anonymous callers.
func (h Handlers) claims(c *gin.Context) auth.Claims {
	cl, _ := auth.ClaimsOf(auth.Current(c.Request.Context()))
	return cl
}

func (h Handlers) snapshot(c *gin.Context) (selection.Snapshot, error) {
	return h.Sessions.Selection(h.sid(c)).Snapshot(c.Request.Context())
}

// fail applies the single upstream error policy: an expired session goes to the login page,
// anything else is a localized 502 carrying the empty value the page expects.
func (h Handlers) fail(c *gin.Context, err error, empty any) {
	if upstream.IsSessionExpired(err) {
		c.Redirect(http.StatusSeeOther, session.LoginPath)
		c.Abort()
		return
	}
	logger.FromGin(c).Error("upstream call failed", "err", err)
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
		"error": i18n.T(h.lang(c), i18n.KeyGenericFailure),
		"data":  empty,
	})
}

// storeFailure is a local Redis problem, not an upstream one.
func (h Handlers) storeFailure(c *gin.Context, err error) {
	logger.FromGin(c).Error("session store failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": i18n.T(h.lang(c), i18n.KeyGenericFailure)})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return v, true
}

// onDenied records a guard denial.
func (h Handlers) onDenied(c *gin.Context, rule rbac.Rule, s auth.Session) {
	h.Metrics.GuardDenied(rule.Path)
	h.Audit.Record(c.Request.Context(), audit.EventAccessDenied, h.sid(c), s, c.ClientIP(), rule.Path, "")
}

func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
