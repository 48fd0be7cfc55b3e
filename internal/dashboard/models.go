package dashboard

import "warehouse-dashboard/internal/upstream"

// Section names reported in Failed.
const (
	SectionTopStores    = "top_stores"
	SectionTopEmployees = "top_employees"
	SectionTopProducts  = "top_products"
	SectionLowProducts  = "bottom_products"
	SectionTopCategory  = "top_categories"
	SectionDailyTotals  = "daily_totals"
)

// Boss is the owner-level overview.
type Boss struct {
	OwnerID      int64                     `json:"owner_id"`
	TopStores    []upstream.StoreProfit    `json:"top_stores"`
	TopEmployees []upstream.EmployeeProfit `json:"top_employees"`

	// Failed lists sections that could not be loaded and are rendered empty.
	Failed []string `json:"failed,omitempty"`
}

// Store is the single-store overview.
type Store struct {
	StoreID        int64                      `json:"store_id"`
	TopProducts    []upstream.ProductProfit   `json:"top_products"`
	BottomProducts []upstream.ProductProfit   `json:"bottom_products"`
	TopCategories  []upstream.CategorySummary `json:"top_categories"`
	DailyTotals    []upstream.DailyTotal      `json:"daily_totals"`

	TotalProfit   float64 `json:"total_profit"`
	AverageProfit float64 `json:"average_daily_profit"`

	Failed []string `json:"failed,omitempty"`
}
