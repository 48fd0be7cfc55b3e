package selection

import "warehouse-dashboard/internal/auth"

// EffectiveStore is the store a page operates on: the account's assigned store wins,
// otherwise the user's selection. ok=false means the page renders an empty scope.
func EffectiveStore(c auth.Claims, s Snapshot) (int64, bool) {
	if c.HasStore() {
		return *c.StoreID, true
	}
	if s.StoreID != nil {
		return *s.StoreID, true
	}
	return 0, false
}

// EffectiveCompany follows the same precedence as EffectiveStore.
func EffectiveCompany(c auth.Claims, s Snapshot) (int64, bool) {
	if c.HasCompany() {
		return *c.CompanyID, true
	}
	if s.Company != nil {
		return s.Company.ID, true
	}
	return 0, false
}
