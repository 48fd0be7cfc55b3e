package rbac

import (
	"fmt"
	"net/http"

	"warehouse-dashboard/internal/auth"

	"github.com/gin-gonic/gin"
)

// HomePath is where denied navigation lands. It must render for any caller, anonymous included.
const HomePath = "/"

// DeniedFunc observes a denied navigation (metrics, audit). It must not write a response.
type DeniedFunc func(c *gin.Context, rule Rule, s auth.Session)

// Guard returns the middleware for one route of the policy.
//
// The decision is re-evaluated on every request from the session in the request context, so a
// role change upstream takes effect on the next navigation. Denied callers are redirected home
// without a notice; they are not logged out.
func (p Policy) Guard(path string, onDenied DeniedFunc) (gin.HandlerFunc, error) {
	rule, ok := p.Rule(path)
	if !ok {
		return nil, fmt.Errorf("no route policy for %q", path)
	}
	return func(c *gin.Context) {
		s := auth.Current(c.Request.Context())
		if Authorize(s, rule.Allowed) {
			c.Next()
			return
		}
		if onDenied != nil {
			onDenied(c, rule, s)
		}
		c.Redirect(http.StatusFound, HomePath)
		c.Abort()
	}, nil
}

// MustGuard is Guard for route tables known at startup.
func (p Policy) MustGuard(path string, onDenied DeniedFunc) gin.HandlerFunc {
	h, err := p.Guard(path, onDenied)
	if err != nil {
		panic(err)
	}
	return h
}
