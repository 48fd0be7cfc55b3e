package selection

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Company is the selected company and the id of the user who owns it.
type Company struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`
}

// Context bundles both selection slots of one browser session.
type Context struct {
	Store   Slot[int64]
	Company Slot[Company]

	rdb redis.Cmdable
}

func For(rdb redis.Cmdable, sid string, l *slog.Logger) Context {
	return Context{
		Store:   NewSlot[int64](rdb, StoreKey(sid), l),
		Company: NewSlot[Company](rdb, CompanyKey(sid), l),
		rdb:     rdb,
	}
}

// Clear resets both slots in one transaction.
func (c Context) Clear(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, c.Store.Key(), AbsentMarker, 0)
		p.Set(ctx, c.Company.Key(), AbsentMarker, 0)
		return nil
	})
	return err
}

// Snapshot is a point-in-time read of both slots.
type Snapshot struct {
	StoreID *int64   `json:"storeId"`
	Company *Company `json:"company"`
}

func (c Context) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	storeID, ok, err := c.Store.Get(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		s.StoreID = &storeID
	}
	company, ok, err := c.Company.Get(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		s.Company = &company
	}
	return s, nil
}
