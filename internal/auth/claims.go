package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload carried by the upstream-issued bearer token.
// Roles is never empty for a decoded token; Roles[0] is the primary role.
type Claims struct {
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	UserID    int64    `json:"userId"`
	StoreID   *int64   `json:"storeId,omitempty"`
	CompanyID *int64   `json:"companyId,omitempty"`
}

// PrimaryRole is the first role tag, used wherever a single role drives UI decisions.
func (c Claims) PrimaryRole() string {
	if len(c.Roles) == 0 {
		return ""
	}
	return c.Roles[0]
}

func (c Claims) HasStore() bool   { return c.StoreID != nil }
func (c Claims) HasCompany() bool { return c.CompanyID != nil }

// Session is either Authenticated or Anonymous. Callers switch on the concrete type
// (or use ClaimsOf) instead of probing optional fields.
type Session interface {
	isSession()
}

type Authenticated struct {
	Claims Claims
}

type Anonymous struct{}

func (Authenticated) isSession() {}
func (Anonymous) isSession()     {}

// ClaimsOf returns the claims of an authenticated session.
func ClaimsOf(s Session) (Claims, bool) {
	if a, ok := s.(Authenticated); ok {
		return a.Claims, true
	}
	return Claims{}, false
}

// wireClaims is the token payload as issued by the warehouse API.
type wireClaims struct {
	jwt.RegisteredClaims

	Roles     []string `json:"roles"`
	UserID    flexInt  `json:"userId"`
	StoreID   *flexInt `json:"storeId"`
	CompanyID *flexInt `json:"companyId"`
}

func (w wireClaims) toClaims() Claims {
	c := Claims{
		Username: w.Subject,
		Roles:    append([]string(nil), w.Roles...),
		UserID:   int64(w.UserID),
	}
	if w.StoreID != nil {
		v := int64(*w.StoreID)
		c.StoreID = &v
	}
	if w.CompanyID != nil {
		v := int64(*w.CompanyID)
		c.CompanyID = &v
	}
	return c
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("numeric claim %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		return fmt.Errorf("numeric claim %q: %w", n, err)
	}
	*f = flexInt(i)
	return nil
}
