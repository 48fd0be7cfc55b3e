// Package session persists the bearer token and per-browser preferences in Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"warehouse-dashboard/internal/audit"
	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/i18n"
	"warehouse-dashboard/internal/metrics"
	"warehouse-dashboard/internal/selection"
	"warehouse-dashboard/internal/upstream"
	"warehouse-dashboard/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginPath is where logout and session expiry send the browser.
const LoginPath = "/login"

const (
	noticeTTL   = 24 * time.Hour
	languageTTL = 365 * 24 * time.Hour
)

func tokenKey(sid string) string    { return fmt.Sprintf("session:%s:user_token", sid) }
func languageKey(sid string) string { return fmt.Sprintf("session:%s:lng", sid) }
func noticeKey(sid string) string   { return fmt.Sprintf("session:%s:notice", sid) }

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Store owns every per-session Redis slot: token, selection, language and notice.
type Store struct {
	rdb     redis.Cmdable
	authn   Authenticator
	codec   auth.Codec
	audit   *audit.Service
	metrics *metrics.Metrics
	log     *slog.Logger

	tokenTTL    time.Duration
	defaultLang string
}

type Option func(*Store)

// WithTokenTTL overrides the one hour token lifetime.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.tokenTTL = d
		}
	}
}

func WithDefaultLanguage(lang string) Option {
	return func(s *Store) {
		if i18n.Supported(lang) {
			s.defaultLang = lang
		}
	}
}

func WithAudit(a *audit.Service) Option {
	return func(s *Store) { s.audit = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(rdb redis.Cmdable, authn Authenticator, opts ...Option) *Store {
	s := &Store{
		rdb:         rdb,
		authn:       authn,
		log:         slog.Default(),
		tokenTTL:    time.Hour,
		defaultLang: i18n.English,
	}
	for _, o := range opts {
		o(s)
	}
	s.codec = auth.NewCodec(s.log)
	return s
}

// Selection returns the selection slots of sid.
func (s *Store) Selection(sid string) selection.Context {
	return selection.For(s.rdb, sid, s.log)
}

// Login authenticates against the warehouse API and persists the token for the fixed TTL,
// regardless of the token's own exp claim. Both selections are reset in the same step, so a
// new session never starts with the scope of an earlier one on this sid.
func (s *Store) Login(ctx context.Context, sid, username, password string) (auth.Session, error) {
	tok, err := s.authn.Login(ctx, username, password)
	if err != nil {
		outcome, lerr := classifyLogin(err)
		return auth.Anonymous{}, s.loginFailed(ctx, sid, outcome, lerr)
	}

	tok = strings.TrimSpace(tok)
	sess := s.codec.Decode(tok)
	if _, ok := auth.ClaimsOf(sess); !ok {
		s.log.WarnContext(ctx, "login returned an unusable token", "username", username)
		return auth.Anonymous{}, s.loginFailed(ctx, sid, metrics.LoginRejected, &RejectedError{Status: http.StatusOK})
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, tokenKey(sid), tok, s.tokenTTL)
		p.Set(ctx, selection.StoreKey(sid), selection.AbsentMarker, 0)
		p.Set(ctx, selection.CompanyKey(sid), selection.AbsentMarker, 0)
		return nil
	})
	if err != nil {
		return auth.Anonymous{}, fmt.Errorf("persist token: %w", err)
	}

	s.metrics.Login(metrics.LoginSuccess)
	s.audit.Record(ctx, audit.EventLogin, sid, sess, clientIP(ctx), "", "")
	return sess, nil
}

func (s *Store) loginFailed(ctx context.Context, sid, outcome string, err error) error {
	s.metrics.Login(outcome)
	s.audit.Record(ctx, audit.EventLoginFailed, sid, auth.Anonymous{}, clientIP(ctx), "", err.Error())
	return err
}

func classifyLogin(err error) (string, error) {
	var se *upstream.StatusError
	switch {
	case errors.As(err, &se):
		return metrics.LoginRejected, &RejectedError{Status: se.Status, Message: se.Message}
	case errors.Is(err, upstream.ErrNoResponse),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return metrics.LoginNoResponse, fmt.Errorf("%w: %w", ErrNoResponse, err)
	default:
		return metrics.LoginSetup, fmt.Errorf("%w: %w", ErrRequestSetup, err)
	}
}

func (s *Store) selectionKeys(sid string) []string {
	return []string{selection.StoreKey(sid), selection.CompanyKey(sid)}
}

// Logout clears the token and both selections. The caller redirects to LoginPath.
func (s *Store) Logout(ctx context.Context, sid string) error {
	sess := auth.Current(ctx)
	if _, err := utils.ClearAndMark(ctx, s.rdb, tokenKey(sid), s.selectionKeys(sid), selection.AbsentMarker); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.audit.Record(ctx, audit.EventLogout, sid, sess, clientIP(ctx), "", "")
	return nil
}

// Expire is the forced logout after the upstream API denied token. It only acts while token is
// still the stored one: a denial that arrives after a re-login leaves the new session alone.
// Only the caller that actually removed the token stores the notice and reports true, so
// concurrent denials yield exactly one notice.
func (s *Store) Expire(ctx context.Context, sid, token string) (bool, error) {
	won, err := utils.ClearAndMarkIf(ctx, s.rdb, tokenKey(sid), token, s.selectionKeys(sid), selection.AbsentMarker)
	if err != nil {
		return false, fmt.Errorf("expire: %w", err)
	}
	if !won {
		return false, nil
	}

	msg := i18n.T(s.Language(ctx, sid), i18n.KeySessionExpired)
	if err := s.SetNotice(ctx, sid, msg); err != nil {
		s.log.WarnContext(ctx, "store session notice failed", "err", err)
	}
	s.metrics.ForcedLogout()
	s.audit.Record(ctx, audit.EventSessionExpired, sid, auth.Current(ctx), clientIP(ctx), "", "")
	return true, nil
}

// ExpireHook adapts Expire to the upstream denial hook. The session id and the denied token
// both come from ctx.
func (s *Store) ExpireHook() upstream.DeniedFunc {
	return func(ctx context.Context) {
		sid, err := auth.SessionID(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "upstream denial without session", "err", err)
			return
		}
		if _, err := s.Expire(ctx, sid, auth.Token(ctx)); err != nil {
			s.log.ErrorContext(ctx, "session expire failed", "err", err)
		}
	}
}

// Token returns the persisted token, "" when none.
func (s *Store) Token(ctx context.Context, sid string) (string, error) {
	tok, err := s.rdb.Get(ctx, tokenKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return tok, err
}

// TokenTTL reports the remaining lifetime of the persisted token.
func (s *Store) TokenTTL(ctx context.Context, sid string) (time.Duration, error) {
	return s.rdb.TTL(ctx, tokenKey(sid)).Result()
}

// Claims decodes the persisted token. Storage failures read as Anonymous.
func (s *Store) Claims(ctx context.Context, sid string) auth.Session {
	tok, err := s.Token(ctx, sid)
	if err != nil {
		s.log.WarnContext(ctx, "read token failed", "err", err)
		return auth.Anonymous{}
	}
	return s.codec.Decode(tok)
}

func (s *Store) Notice(ctx context.Context, sid string) (string, bool, error) {
	return optional(s.rdb.Get(ctx, noticeKey(sid)).Result())
}

// PopNotice reads and removes the notice.
func (s *Store) PopNotice(ctx context.Context, sid string) (string, bool, error) {
	return optional(s.rdb.GetDel(ctx, noticeKey(sid)).Result())
}

// SetNotice stores a one-shot message shown on the next login page.
func (s *Store) SetNotice(ctx context.Context, sid, msg string) error {
	return s.rdb.Set(ctx, noticeKey(sid), msg, noticeTTL).Err()
}

// Language is the stored preference, or the default when unset or unreadable.
func (s *Store) Language(ctx context.Context, sid string) string {
	v, ok, err := optional(s.rdb.Get(ctx, languageKey(sid)).Result())
	if err != nil || !ok || !i18n.Supported(v) {
		return s.defaultLang
	}
	return v
}

func (s *Store) SetLanguage(ctx context.Context, sid, lang string) error {
	if !i18n.Supported(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return s.rdb.Set(ctx, languageKey(sid), lang, languageTTL).Err()
}

func optional(v string, err error) (string, bool, error) {
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
