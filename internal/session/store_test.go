package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"warehouse-dashboard/internal/audit"
	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/auth/authtest"
	"warehouse-dashboard/internal/i18n"
	"warehouse-dashboard/internal/selection"
	"warehouse-dashboard/internal/upstream"
	"warehouse-dashboard/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthn struct {
	token string
	err   error
}

func (f fakeAuthn) Login(ctx context.Context, username, password string) (string, error) {
	return f.token, f.err
}

func newStore(t *testing.T, authn Authenticator) (*miniredis.Miniredis, *Store, *audit.MemoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := audit.NewMemoryRepo()
	s := NewStore(rdb, authn,
		WithLogger(logger.Discard()),
		WithAudit(audit.NewService(repo, logger.Discard())),
	)
	return mr, s, repo
}

func TestLogin_PersistsTokenForOneHour(t *testing.T) {
	storeID := 12
	tok := authtest.Token(t, jwt.MapClaims{
		"sub":     "ayse",
		"roles":   []string{"MANAGER"},
		"userId":  3,
		"storeId": storeID,
		// token lifetime is ignored; the session lasts an hour regardless
		"exp": time.Now().Add(48 * time.Hour).Unix(),
	})
	mr, s, repo := newStore(t, fakeAuthn{token: " " + tok + "\n"})
	ctx := context.Background()

	sess, err := s.Login(ctx, "s1", "ayse", "pw")
	require.NoError(t, err)

	got, _ := mr.Get(tokenKey("s1"))
	assert.Equal(t, tok, got)
	assert.Equal(t, time.Hour, mr.TTL(tokenKey("s1")))

	claims, ok := auth.ClaimsOf(sess)
	require.True(t, ok)
	assert.Equal(t, "ayse", claims.Username)
	assert.Equal(t, []string{"MANAGER"}, claims.Roles)
	require.NotNil(t, claims.StoreID)
	assert.Equal(t, int64(12), *claims.StoreID)

	assert.Equal(t, claims, mustClaims(t, s.Claims(ctx, "s1")))
	assert.Len(t, repo.OfType(audit.EventLogin), 1)

	mr.FastForward(time.Hour + time.Second)
	assert.IsType(t, auth.Anonymous{}, s.Claims(ctx, "s1"))
}

func mustClaims(t *testing.T, s auth.Session) auth.Claims {
	t.Helper()
	c, ok := auth.ClaimsOf(s)
	require.True(t, ok, "expected authenticated session")
	return c
}

func TestLogin_ErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		target error
	}{
		{"rejected", &upstream.StatusError{Status: 401, Message: "Bad credentials"}, ErrLoginRejected},
		{"no response", fmt.Errorf("%w: dial tcp: refused", upstream.ErrNoResponse), ErrNoResponse},
		{"timeout", context.DeadlineExceeded, ErrNoResponse},
		{"setup", fmt.Errorf("%w: bad url", upstream.ErrRequestSetup), ErrRequestSetup},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mr, s, repo := newStore(t, fakeAuthn{err: tc.err})

			sess, err := s.Login(context.Background(), "s1", "u", "p")
			assert.ErrorIs(t, err, tc.target)
			assert.IsType(t, auth.Anonymous{}, sess)
			assert.False(t, mr.Exists(tokenKey("s1")))
			assert.Len(t, repo.OfType(audit.EventLoginFailed), 1)
		})
	}
}

func TestLogin_RejectedCarriesServerMessage(t *testing.T) {
	_, s, _ := newStore(t, fakeAuthn{err: &upstream.StatusError{Status: 401, Message: "Bad credentials"}})

	_, err := s.Login(context.Background(), "s1", "u", "p")
	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "Bad credentials", rej.Message)
	assert.Equal(t, "Bad credentials", err.Error())
}

func TestLogout_ClearsTokenAndSelections(t *testing.T) {
	mr, s, repo := newStore(t, nil)
	ctx := context.Background()

	require.NoError(t, mr.Set(tokenKey("s1"), authtest.WithRoles(t, "BOSS")))
	sel := s.Selection("s1")
	require.NoError(t, sel.Store.Set(ctx, 5))
	require.NoError(t, sel.Company.Set(ctx, selection.Company{ID: 2, UserID: 8}))

	require.NoError(t, s.Logout(ctx, "s1"))

	assert.False(t, mr.Exists(tokenKey("s1")))
	snap, err := sel.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.StoreID)
	assert.Nil(t, snap.Company)
	assert.IsType(t, auth.Anonymous{}, s.Claims(ctx, "s1"))
	assert.Len(t, repo.OfType(audit.EventLogout), 1)

	_, ok, err := s.Notice(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok, "plain logout leaves no notice")
}

func TestExpire_SingleNoticeUnderConcurrency(t *testing.T) {
	mr, s, repo := newStore(t, nil)
	ctx := context.Background()
	tok := authtest.WithRoles(t, "EMPLOYEE")
	require.NoError(t, mr.Set(tokenKey("s1"), tok))
	require.NoError(t, s.SetLanguage(ctx, "s1", i18n.Turkish))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.Expire(ctx, "s1", tok)
			if err == nil && won {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Len(t, repo.OfType(audit.EventSessionExpired), 1)

	msg, ok, err := s.PopNotice(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, i18n.T(i18n.Turkish, i18n.KeySessionExpired), msg)

	_, ok, err = s.PopNotice(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok, "notice is one-shot")
}

func TestExpireHook_UsesSessionFromContext(t *testing.T) {
	mr, s, _ := newStore(t, nil)
	tok := authtest.WithRoles(t, "EMPLOYEE")
	require.NoError(t, mr.Set(tokenKey("s1"), tok))

	ctx := auth.WithIdentity(context.Background(), "s1", tok, auth.Anonymous{})
	s.ExpireHook()(ctx)
	assert.False(t, mr.Exists(tokenKey("s1")))

	// no session id: nothing happens
	s.ExpireHook()(context.Background())
}

func TestLanguage_DefaultAndValidation(t *testing.T) {
	_, s, _ := newStore(t, nil)
	ctx := context.Background()

	assert.Equal(t, i18n.English, s.Language(ctx, "s1"))
	assert.ErrorIs(t, s.SetLanguage(ctx, "s1", "de"), ErrUnsupportedLanguage)
	require.NoError(t, s.SetLanguage(ctx, "s1", i18n.Turkish))
	assert.Equal(t, i18n.Turkish, s.Language(ctx, "s1"))
}

// switchingAuthn hands out a different token on every login.
type switchingAuthn struct {
	tokens []string
	n      int
}

func (a *switchingAuthn) Login(ctx context.Context, username, password string) (string, error) {
	tok := a.tokens[a.n%len(a.tokens)]
	a.n++
	return tok, nil
}

func TestExpire_LateDenialKeepsNewerSession(t *testing.T) {
	oldTok := authtest.Token(t, jwt.MapClaims{"sub": "old", "roles": []string{"EMPLOYEE"}, "userId": 1})
	newTok := authtest.Token(t, jwt.MapClaims{"sub": "new", "roles": []string{"EMPLOYEE"}, "userId": 1})
	mr, s, repo := newStore(t, &switchingAuthn{tokens: []string{oldTok, newTok}})
	ctx := context.Background()

	_, err := s.Login(ctx, "s1", "u", "p")
	require.NoError(t, err)
	_, err = s.Login(ctx, "s1", "u", "p")
	require.NoError(t, err)
	require.NoError(t, s.Selection("s1").Store.Set(ctx, 7))

	// a request made with the first token is denied after the re-login
	won, err := s.Expire(ctx, "s1", oldTok)
	require.NoError(t, err)
	assert.False(t, won)

	got, _ := mr.Get(tokenKey("s1"))
	assert.Equal(t, newTok, got)
	storeID, ok, err := s.Selection("s1").Store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), storeID)
	_, ok, err = s.Notice(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok, "no notice for a stale denial")
	assert.Empty(t, repo.OfType(audit.EventSessionExpired))

	won, err = s.Expire(ctx, "s1", "")
	require.NoError(t, err)
	assert.False(t, won, "a request without a token expires nothing")
}

func TestLogin_DoesNotInheritSelectionAfterTokenTimeout(t *testing.T) {
	tok := authtest.WithRoles(t, "ADMIN")
	mr, s, _ := newStore(t, fakeAuthn{token: tok})
	ctx := context.Background()

	_, err := s.Login(ctx, "s1", "admin", "pw")
	require.NoError(t, err)
	sel := s.Selection("s1")
	require.NoError(t, sel.Company.Set(ctx, selection.Company{ID: 42, UserID: 9}))
	require.NoError(t, sel.Store.Set(ctx, 3))

	mr.FastForward(2 * time.Hour)
	require.False(t, mr.Exists(tokenKey("s1")))

	_, err = s.Login(ctx, "s1", "admin", "pw")
	require.NoError(t, err)

	snap, err := sel.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.Company)
	assert.Nil(t, snap.StoreID)
	assert.Equal(t, time.Hour, mr.TTL(tokenKey("s1")))
}

func TestLogin_UndecodableTokenIsRejected(t *testing.T) {
	for name, tok := range map[string]string{
		"garbage":  "not-a-jwt",
		"no roles": authtest.Token(t, jwt.MapClaims{"userId": 1}),
	} {
		t.Run(name, func(t *testing.T) {
			mr, s, repo := newStore(t, fakeAuthn{token: tok})

			sess, err := s.Login(context.Background(), "s1", "u", "p")
			assert.ErrorIs(t, err, ErrLoginRejected)
			assert.IsType(t, auth.Anonymous{}, sess)
			assert.False(t, mr.Exists(tokenKey("s1")))
			assert.Len(t, repo.OfType(audit.EventLoginFailed), 1)
			assert.Empty(t, repo.OfType(audit.EventLogin))
		})
	}
}
