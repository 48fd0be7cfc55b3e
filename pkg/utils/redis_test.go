package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestOpenRedis_Pings(t *testing.T) {
	mr, _ := newMiniredis(t)

	rdb, err := OpenRedis(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	_, err = OpenRedis(context.Background(), RedisConfig{})
	assert.Error(t, err)
}

func TestClearAndMark_DeletesAndMarks(t *testing.T) {
	mr, rdb := newMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("tok", "abc"))
	require.NoError(t, mr.Set("a", "42"))

	deleted, err := ClearAndMark(ctx, rdb, "tok", []string{"a", "b"}, "null")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, mr.Exists("tok"))

	a, _ := mr.Get("a")
	b, _ := mr.Get("b")
	assert.Equal(t, "null", a)
	assert.Equal(t, "null", b)

	deleted, err = ClearAndMark(ctx, rdb, "tok", []string{"a", "b"}, "null")
	require.NoError(t, err)
	assert.False(t, deleted, "second call must not report a deletion")
}

func TestClearAndMark_OnlyOneConcurrentWinner(t *testing.T) {
	mr, rdb := newMiniredis(t)
	require.NoError(t, mr.Set("tok", "abc"))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ClearAndMark(context.Background(), rdb, "tok", nil, "null")
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestClearAndMarkIf_OnlyClearsMatchingValue(t *testing.T) {
	mr, rdb := newMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("tok", "new"))
	require.NoError(t, mr.Set("a", "42"))

	cleared, err := ClearAndMarkIf(ctx, rdb, "tok", "old", []string{"a"}, "null")
	require.NoError(t, err)
	assert.False(t, cleared)
	got, _ := mr.Get("tok")
	assert.Equal(t, "new", got)
	a, _ := mr.Get("a")
	assert.Equal(t, "42", a, "a stale value must not touch the marks")

	cleared, err = ClearAndMarkIf(ctx, rdb, "tok", "new", []string{"a"}, "null")
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, mr.Exists("tok"))
	a, _ = mr.Get("a")
	assert.Equal(t, "null", a)

	cleared, err = ClearAndMarkIf(ctx, rdb, "tok", "", nil, "null")
	require.NoError(t, err)
	assert.False(t, cleared)
}
