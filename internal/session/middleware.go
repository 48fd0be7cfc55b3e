package session

import (
	"context"
	"net/http"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CookieConfig controls the sid cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	// MaxAge in seconds; the sid outlives the token so selections survive re-login.
	MaxAge int
}

const defaultCookieMaxAge = 365 * 24 * 60 * 60

type ipKey struct{}

func withClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

func clientIP(ctx context.Context) string {
	s, _ := ctx.Value(ipKey{}).(string)
	return s
}

// Middleware resolves (or issues) the sid cookie and attaches the decoded session to the
// request context. It runs on every request, so token changes apply immediately.
func Middleware(s *Store, cfg CookieConfig) gin.HandlerFunc {
	if cfg.Name == "" {
		cfg.Name = "sid"
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = defaultCookieMaxAge
	}
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.Name)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Name, sid, cfg.MaxAge, "/", "", cfg.Secure, true)
		}

		ctx := c.Request.Context()
		tok, err := s.Token(ctx, sid)
		if err != nil {
			logger.FromGin(c).Warn("read session token failed", "err", err)
			tok = ""
		}
		sess := s.codec.Decode(tok)

		ctx = auth.WithIdentity(ctx, sid, tok, sess)
		ctx = withClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Set("session_id", sid)
		c.Next()
	}
}
