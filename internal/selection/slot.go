package selection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Slot is one durable, JSON-encoded selection value. It has no TTL; only an explicit Set,
// Clear, logout or expiry changes it. Concurrent writers are last-write-wins.
type Slot[T any] struct {
	rdb redis.Cmdable
	key string
	log *slog.Logger
}

func NewSlot[T any](rdb redis.Cmdable, key string, l *slog.Logger) Slot[T] {
	if l == nil {
		l = slog.Default()
	}
	return Slot[T]{rdb: rdb, key: key, log: l}
}

func (s Slot[T]) Key() string { return s.key }

// Get reports ok=false when the slot is missing, holds the absent marker, or holds a value
// that does not decode. Only transport failures are returned as errors.
func (s Slot[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T
	raw, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	if raw == AbsentMarker || raw == "" {
		return zero, false, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.log.Warn("selection slot undecodable", "key", s.key, "err", err)
		return zero, false, nil
	}
	return v, true, nil
}

func (s Slot[T]) Set(ctx context.Context, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, b, 0).Err()
}

// Clear writes the absent marker rather than deleting, so readers never see a stale value.
func (s Slot[T]) Clear(ctx context.Context) error {
	return s.rdb.Set(ctx, s.key, AbsentMarker, 0).Err()
}
