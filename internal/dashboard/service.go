package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"warehouse-dashboard/internal/upstream"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidRequest = errors.New("dashboard: invalid request")

// Source is the slice of the warehouse API the dashboards read.
type Source interface {
	Top3StoresByProfit(ctx context.Context, ownerID int64) ([]upstream.StoreProfit, error)
	Top3Employees(ctx context.Context, ownerID int64) ([]upstream.EmployeeProfit, error)
	Top5Products(ctx context.Context, storeID int64, top bool) ([]upstream.ProductProfit, error)
	Top5Categories(ctx context.Context, storeID int64) ([]upstream.CategorySummary, error)
	DailyTotals(ctx context.Context, storeID int64) ([]upstream.DailyTotal, error)
}

// Service fans dashboard sections out concurrently.
//
// A session expiry from any section cancels the rest and is returned as is. Any other section
// failure leaves that section empty and names it in Failed.
type Service struct {
	src Source
	log *slog.Logger
}

func NewService(src Source, l *slog.Logger) *Service {
	if l == nil {
		l = slog.Default()
	}
	return &Service{src: src, log: l}
}

type sections struct {
	mu     sync.Mutex
	failed []string
	log    *slog.Logger
}

// run executes fn as one section. Only session expiry propagates.
func (s *sections) run(ctx context.Context, g *errgroup.Group, name string, fn func(ctx context.Context) error) {
	g.Go(func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if upstream.IsSessionExpired(err) {
			return err
		}
		s.log.WarnContext(ctx, "dashboard section failed", "section", name, "err", err)
		s.mu.Lock()
		s.failed = append(s.failed, name)
		s.mu.Unlock()
		return nil
	})
}

func (s *sections) list() []string {
	sort.Strings(s.failed)
	return s.failed
}

func (s *Service) Boss(ctx context.Context, ownerID int64) (Boss, error) {
	if ownerID <= 0 {
		return Boss{}, ErrInvalidRequest
	}
	if s.src == nil {
		return Boss{}, errors.New("dashboard: source not configured")
	}

	out := Boss{OwnerID: ownerID, TopStores: []upstream.StoreProfit{}, TopEmployees: []upstream.EmployeeProfit{}}
	sec := &sections{log: s.log}
	g, gctx := errgroup.WithContext(ctx)

	sec.run(gctx, g, SectionTopStores, func(ctx context.Context) error {
		v, err := s.src.Top3StoresByProfit(ctx, ownerID)
		if err == nil && v != nil {
			out.TopStores = v
		}
		return err
	})
	sec.run(gctx, g, SectionTopEmployees, func(ctx context.Context) error {
		v, err := s.src.Top3Employees(ctx, ownerID)
		if err == nil && v != nil {
			out.TopEmployees = v
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return Boss{}, err
	}
	out.Failed = sec.list()
	return out, nil
}

func (s *Service) Store(ctx context.Context, storeID int64) (Store, error) {
	if storeID <= 0 {
		return Store{}, ErrInvalidRequest
	}
	if s.src == nil {
		return Store{}, errors.New("dashboard: source not configured")
	}

	out := Store{
		StoreID:        storeID,
		TopProducts:    []upstream.ProductProfit{},
		BottomProducts: []upstream.ProductProfit{},
		TopCategories:  []upstream.CategorySummary{},
		DailyTotals:    []upstream.DailyTotal{},
	}
	sec := &sections{log: s.log}
	g, gctx := errgroup.WithContext(ctx)

	sec.run(gctx, g, SectionTopProducts, func(ctx context.Context) error {
		v, err := s.src.Top5Products(ctx, storeID, true)
		if err == nil && v != nil {
			out.TopProducts = v
		}
		return err
	})
	sec.run(gctx, g, SectionLowProducts, func(ctx context.Context) error {
		v, err := s.src.Top5Products(ctx, storeID, false)
		if err == nil && v != nil {
			out.BottomProducts = v
		}
		return err
	})
	sec.run(gctx, g, SectionTopCategory, func(ctx context.Context) error {
		v, err := s.src.Top5Categories(ctx, storeID)
		if err == nil && v != nil {
			out.TopCategories = v
		}
		return err
	})
	sec.run(gctx, g, SectionDailyTotals, func(ctx context.Context) error {
		v, err := s.src.DailyTotals(ctx, storeID)
		if err == nil && v != nil {
			out.DailyTotals = v
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return Store{}, err
	}

	for _, d := range out.DailyTotals {
		out.TotalProfit += d.Total
	}
	if n := len(out.DailyTotals); n > 0 {
		out.AverageProfit = out.TotalProfit / float64(n)
	}
	out.Failed = sec.list()
	return out, nil
}
