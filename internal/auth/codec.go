package auth

import (
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Codec decodes bearer tokens into sessions.
//
// Signature and expiry are not checked here. The upstream API is the authority for every
// protected operation; decoded claims only drive role gating and personalization. Token
// lifetime on the gateway side is the session store's TTL.
type Codec struct {
	log    *slog.Logger
	parser *jwt.Parser
}

func NewCodec(l *slog.Logger) Codec {
	if l == nil {
		l = slog.Default()
	}
	return Codec{log: l, parser: jwt.NewParser()}
}

// Decode never fails: a missing, malformed or role-less token is Anonymous.
func (c Codec) Decode(raw string) Session {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Anonymous{}
	}
	if c.parser == nil {
		c.parser = jwt.NewParser()
	}

	var wc wireClaims
	if _, _, err := c.parser.ParseUnverified(raw, &wc); err != nil {
		c.log.Warn("token decode failed", "err", err)
		return Anonymous{}
	}
	if len(wc.Roles) == 0 {
		c.log.Warn("token decode failed", "err", "roles claim empty")
		return Anonymous{}
	}
	return Authenticated{Claims: wc.toClaims()}
}

// Decode uses a codec bound to slog.Default().
func Decode(raw string) Session {
	return NewCodec(nil).Decode(raw)
}
