package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"warehouse-dashboard/internal/auth"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only; there is no Update or Delete.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records session audit events.
//
// Recording is best-effort: the Record* helpers log failures and never return them, so an
// unavailable sink cannot block login or logout.
type Service struct {
	repo  Repository
	log   *slog.Logger
	clock func() time.Time
}

func NewService(repo Repository, l *slog.Logger) *Service {
	if l == nil {
		l = slog.Default()
	}
	return &Service{repo: repo, log: l, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.SessionID == "" || e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Record appends e with actor fields taken from sess. A nil Service is a no-op.
func (s *Service) Record(ctx context.Context, typ EventType, sid string, sess auth.Session, ip, route, message string) {
	if s == nil {
		return
	}
	e := Event{
		SessionID: sid,
		Type:      typ,
		IPAddress: ip,
		Route:     route,
		Message:   message,
	}
	if c, ok := auth.ClaimsOf(sess); ok {
		e.Username = c.Username
		e.ActorRole = c.PrimaryRole()
		e.UserID = c.UserID
	}
	if err := s.Append(ctx, e); err != nil {
		s.log.Warn("audit append failed", "type", string(typ), "err", err)
	}
}
