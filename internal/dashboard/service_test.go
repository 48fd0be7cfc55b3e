package dashboard

import (
	"context"
	"errors"
	"testing"

	"warehouse-dashboard/internal/upstream"
	"warehouse-dashboard/pkg/logger"
)

func TestDashboard_StoreAggregates(t *testing.T) {
	src := NewMemorySource()
	src.Top = []upstream.ProductProfit{{ID: 1, Name: "a", Profit: 10}}
	src.Bottom = []upstream.ProductProfit{{ID: 2, Name: "b", Profit: -4}}
	src.Daily = []upstream.DailyTotal{{Date: "2024-01-01", Total: 30}, {Date: "2024-01-02", Total: -10}}
	svc := NewService(src, logger.Discard())

	out, err := svc.Store(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalProfit != 20 {
		t.Fatalf("expected total 20, got %v", out.TotalProfit)
	}
	if out.AverageProfit != 10 {
		t.Fatalf("expected average 10, got %v", out.AverageProfit)
	}
	if len(out.TopProducts) != 1 || len(out.BottomProducts) != 1 {
		t.Fatalf("unexpected products: %+v", out)
	}
	if out.TopCategories == nil {
		t.Fatalf("empty sections must be non-nil")
	}
	if len(out.Failed) != 0 {
		t.Fatalf("expected no failed sections, got %v", out.Failed)
	}
}

func TestDashboard_SectionFailureIsIsolated(t *testing.T) {
	src := NewMemorySource()
	src.Stores = []upstream.StoreProfit{{ID: 1, Name: "s", TotalProfit: 5}}
	src.Errs[SectionTopEmployees] = &upstream.StatusError{Status: 500}
	svc := NewService(src, logger.Discard())

	out, err := svc.Boss(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out.TopStores) != 1 {
		t.Fatalf("expected stores section to survive")
	}
	if len(out.Failed) != 1 || out.Failed[0] != SectionTopEmployees {
		t.Fatalf("expected employees section failed, got %v", out.Failed)
	}
}

func TestDashboard_SessionExpiryAbortsAll(t *testing.T) {
	src := NewMemorySource()
	src.Errs[SectionDailyTotals] = upstream.ErrSessionExpired
	svc := NewService(src, logger.Discard())

	_, err := svc.Store(context.Background(), 3)
	if !errors.Is(err, upstream.ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
}

func TestDashboard_RejectsMissingScope(t *testing.T) {
	svc := NewService(NewMemorySource(), logger.Discard())
	if _, err := svc.Store(context.Background(), 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if _, err := svc.Boss(context.Background(), 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
