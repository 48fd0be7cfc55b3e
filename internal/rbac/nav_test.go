package rbac

import (
	"testing"

	"warehouse-dashboard/internal/auth"
)

func menuPaths(items []MenuItem) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it.Path] = true
	}
	return out
}

func TestMenu_AnonymousIsEmpty(t *testing.T) {
	if got := Menu(auth.Anonymous{}); len(got) != 0 {
		t.Fatalf("expected empty menu, got %v", got)
	}
}

func TestMenu_VisibilityByPrimaryRole(t *testing.T) {
	emp := menuPaths(Menu(authed("EMPLOYEE")))
	if emp["/stores"] || emp["/companies"] || emp["/store-employees"] {
		t.Fatalf("employee sees privileged items: %v", emp)
	}
	if !emp["/product-list"] || !emp["/categories"] || !emp["/store"] {
		t.Fatalf("employee is missing base items: %v", emp)
	}

	boss := menuPaths(Menu(authed("BOSS")))
	if !boss["/stores"] || !boss["/add-store"] || !boss["/boss-dashboard"] {
		t.Fatalf("boss is missing items: %v", boss)
	}
	if boss["/companies"] || boss["/register"] || boss["/store"] {
		t.Fatalf("boss sees admin items or store dashboard: %v", boss)
	}

	admin := menuPaths(Menu(authed("ADMIN")))
	if !admin["/companies"] || !admin["/register"] || !admin["/store-employees"] {
		t.Fatalf("admin is missing items: %v", admin)
	}
}

func TestMenu_UsesPrimaryRoleOnly(t *testing.T) {
	m := menuPaths(Menu(authed("EMPLOYEE", "ADMIN")))
	if m["/companies"] {
		t.Fatalf("secondary role must not widen navigation")
	}
}
