package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxSessionID ctxKey = iota
	ctxToken
	ctxSession
)

// WithIdentity attaches the browser session id, the raw bearer token and its decoded form.
func WithIdentity(ctx context.Context, sessionID, token string, s Session) context.Context {
	if s == nil {
		s = Anonymous{}
	}
	ctx = context.WithValue(ctx, ctxSessionID, sessionID)
	ctx = context.WithValue(ctx, ctxToken, token)
	ctx = context.WithValue(ctx, ctxSession, s)
	return ctx
}

func SessionID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxSessionID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("session_id not in context")
}

// Token returns the raw bearer token, or "" when the caller is anonymous.
func Token(ctx context.Context) string {
	s, _ := ctx.Value(ctxToken).(string)
	return s
}

// Current returns the decoded session, Anonymous when none was attached.
func Current(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxSession).(Session); ok && s != nil {
		return s
	}
	return Anonymous{}
}
