package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig controls redis client behavior.
// Keep it config-driven; defaults should be safe and conservative.
type RedisConfig struct {
	Addr     string
	Password string

	// Basic timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Pool tuning
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration

	PingTimeout time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	out := c
	if out.DialTimeout <= 0 {
		out.DialTimeout = 3 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 2 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 2 * time.Second
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 20
	}
	if out.MinIdleConns < 0 {
		out.MinIdleConns = 0
	}
	if out.PoolTimeout <= 0 {
		out.PoolTimeout = 4 * time.Second
	}
	if out.ConnMaxIdleTime <= 0 {
		out.ConnMaxIdleTime = 5 * time.Minute
	}
	if out.ConnMaxLifetime <= 0 {
		out.ConnMaxLifetime = 30 * time.Minute
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	return out
}

// OpenRedis initializes a Redis client and validates connectivity via PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

var clearAndMarkScript = redis.NewScript(`
-- KEYS[1]    = key to delete
-- KEYS[2..n] = keys overwritten with the marker
-- ARGV[1]    = marker value
--
-- Returns the number of keys deleted from KEYS[1] (0 or 1).
local deleted = redis.call('DEL', KEYS[1])
for i = 2, #KEYS do
  redis.call('SET', KEYS[i], ARGV[1])
end
return deleted
`)

// ClearAndMark deletes delKey and overwrites every markKey with marker in one atomic step.
// It reports whether delKey existed, so exactly one of several concurrent callers sees true.
func ClearAndMark(ctx context.Context, rdb redis.Scripter, delKey string, markKeys []string, marker string) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if delKey == "" {
		return false, fmt.Errorf("key is required")
	}

	keys := make([]string, 0, len(markKeys)+1)
	keys = append(keys, delKey)
	keys = append(keys, markKeys...)

	n, err := clearAndMarkScript.Run(ctx, rdb, keys, marker).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

var clearAndMarkIfScript = redis.NewScript(`
-- KEYS[1]    = key to delete
-- KEYS[2..n] = keys overwritten with the marker
-- ARGV[1]    = marker value
-- ARGV[2]    = value KEYS[1] must hold
--
-- Returns 1 when KEYS[1] held ARGV[2] and was cleared, 0 otherwise (nothing written).
if redis.call('GET', KEYS[1]) ~= ARGV[2] then
  return 0
end
redis.call('DEL', KEYS[1])
for i = 2, #KEYS do
  redis.call('SET', KEYS[i], ARGV[1])
end
return 1
`)

// ClearAndMarkIf is ClearAndMark guarded by a compare: it only acts while delKey still holds
// expected. A caller holding a value that has since been replaced changes nothing.
func ClearAndMarkIf(ctx context.Context, rdb redis.Scripter, delKey, expected string, markKeys []string, marker string) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if delKey == "" {
		return false, fmt.Errorf("key is required")
	}
	if expected == "" {
		return false, nil
	}

	keys := make([]string, 0, len(markKeys)+1)
	keys = append(keys, delKey)
	keys = append(keys, markKeys...)

	n, err := clearAndMarkIfScript.Run(ctx, rdb, keys, marker, expected).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
