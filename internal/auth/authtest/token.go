// Package authtest mints warehouse-API shaped tokens for tests.
package authtest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "authtest-secret"

// Token signs claims with HS256. sub and exp are filled in when absent.
func Token(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	if _, ok := mc["sub"]; !ok {
		mc["sub"] = "tester"
	}
	if _, ok := mc["exp"]; !ok {
		mc["exp"] = time.Now().Add(10 * time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// WithRoles is a token for user 1 holding the given roles.
func WithRoles(t testing.TB, roles ...string) string {
	t.Helper()
	return Token(t, jwt.MapClaims{"userId": 1, "roles": roles})
}
