package dashboard

import (
	"context"

	"warehouse-dashboard/internal/upstream"
)

// MemorySource is a fixed Source for tests. Errs keyed by section name are returned instead
// of data.
type MemorySource struct {
	Stores     []upstream.StoreProfit
	Employees  []upstream.EmployeeProfit
	Top        []upstream.ProductProfit
	Bottom     []upstream.ProductProfit
	Categories []upstream.CategorySummary
	Daily      []upstream.DailyTotal

	Errs map[string]error
}

func NewMemorySource() *MemorySource { return &MemorySource{Errs: map[string]error{}} }

func (m *MemorySource) Top3StoresByProfit(ctx context.Context, ownerID int64) ([]upstream.StoreProfit, error) {
	return m.Stores, m.Errs[SectionTopStores]
}

func (m *MemorySource) Top3Employees(ctx context.Context, ownerID int64) ([]upstream.EmployeeProfit, error) {
	return m.Employees, m.Errs[SectionTopEmployees]
}

func (m *MemorySource) Top5Products(ctx context.Context, storeID int64, top bool) ([]upstream.ProductProfit, error) {
	if top {
		return m.Top, m.Errs[SectionTopProducts]
	}
	return m.Bottom, m.Errs[SectionLowProducts]
}

func (m *MemorySource) Top5Categories(ctx context.Context, storeID int64) ([]upstream.CategorySummary, error) {
	return m.Categories, m.Errs[SectionTopCategory]
}

func (m *MemorySource) DailyTotals(ctx context.Context, storeID int64) ([]upstream.DailyTotal, error) {
	return m.Daily, m.Errs[SectionDailyTotals]
}
