package main

import (
	"log/slog"

	"warehouse-dashboard/internal/audit"
	"warehouse-dashboard/internal/config"
	"warehouse-dashboard/internal/dashboard"
	"warehouse-dashboard/internal/httpapi"
	"warehouse-dashboard/internal/metrics"
	"warehouse-dashboard/internal/rbac"
	"warehouse-dashboard/internal/session"
	"warehouse-dashboard/internal/upstream"
	"warehouse-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// newRouter wires services to HTTP routes.
// Keep this file free of business logic. Handlers delegate to internal modules.
func newRouter(cfg config.Config, log *slog.Logger, rdb redis.Cmdable, auditRepo audit.Repository, policy rbac.Policy) (*gin.Engine, error) {
	m := metrics.New()
	auditSvc := audit.NewService(auditRepo, log)

	api := upstream.New(cfg.Upstream.BaseURL,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithMetrics(m),
		upstream.WithLogger(log),
	)
	sessions := session.NewStore(rdb, api,
		session.WithTokenTTL(cfg.Session.TokenTTL),
		session.WithDefaultLanguage(cfg.Session.DefaultLanguage),
		session.WithAudit(auditSvc),
		session.WithMetrics(m),
		session.WithLogger(log),
	)
	// Every 403 from the warehouse API ends the session once.
	api.OnDenied(sessions.ExpireHook())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	err := httpapi.Register(r, httpapi.Handlers{
		Sessions:   sessions,
		API:        api,
		Dashboards: dashboard.NewService(api, log),
		Policy:     policy,
		Audit:      auditSvc,
		Metrics:    m,
		Cookie: session.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
