package audit

import (
	"context"
	"log/slog"
)

// LogRepo writes events to the structured log. Used when no database is configured.
type LogRepo struct {
	log *slog.Logger
}

func NewLogRepo(l *slog.Logger) LogRepo {
	if l == nil {
		l = slog.Default()
	}
	return LogRepo{log: l}
}

func (r LogRepo) Append(ctx context.Context, e Event) error {
	r.log.InfoContext(ctx, "audit",
		"id", e.ID,
		"type", string(e.Type),
		"session_id", e.SessionID,
		"username", e.Username,
		"actor_role", e.ActorRole,
		"user_id", e.UserID,
		"ip", e.IPAddress,
		"route", e.Route,
		"message", e.Message,
		"created_at", e.CreatedAt,
	)
	return nil
}
