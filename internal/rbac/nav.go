package rbac

import "warehouse-dashboard/internal/auth"

type MenuSection string

const (
	SectionSidebar MenuSection = "sidebar"
	SectionNavbar  MenuSection = "navbar"
)

// MenuItem is one navigation entry. Key is the i18n message key of its label.
type MenuItem struct {
	Key     string      `json:"key"`
	Path    string      `json:"path"`
	Section MenuSection `json:"section"`
}

type menuEntry struct {
	item    MenuItem
	minRank int
}

var menuEntries = []menuEntry{
	{MenuItem{Key: "home", Path: HomePath, Section: SectionSidebar}, RoleEmployee.Rank()},
	{MenuItem{Key: "stores", Path: "/stores", Section: SectionSidebar}, RoleBoss.Rank()},
	{MenuItem{Key: "companies", Path: "/companies", Section: SectionSidebar}, RoleAdmin.Rank()},
	{MenuItem{Key: "categories", Path: "/categories", Section: SectionSidebar}, RoleEmployee.Rank()},
	{MenuItem{Key: "products", Path: "/product-list", Section: SectionSidebar}, RoleEmployee.Rank()},
	{MenuItem{Key: "team", Path: "/store-employees", Section: SectionNavbar}, RoleManager.Rank()},
	{MenuItem{Key: "newStore", Path: "/add-store", Section: SectionNavbar}, RoleBoss.Rank()},
	{MenuItem{Key: "newEmployee", Path: "/employee-register", Section: SectionNavbar}, RoleBoss.Rank()},
	{MenuItem{Key: "newBoss", Path: "/register", Section: SectionNavbar}, RoleAdmin.Rank()},
}

// Menu lists the navigation visible to the session's primary role. Anonymous sees nothing.
func Menu(s auth.Session) []MenuItem {
	c, ok := auth.ClaimsOf(s)
	if !ok {
		return []MenuItem{}
	}
	primary := Role(c.PrimaryRole())
	rank := primary.Rank()

	out := make([]MenuItem, 0, len(menuEntries)+1)
	if rank > 0 {
		out = append(out, MenuItem{Key: "dashboard", Path: DashboardPath(primary), Section: SectionNavbar})
	}
	for _, e := range menuEntries {
		if rank >= e.minRank {
			out = append(out, e.item)
		}
	}
	return out
}

// DashboardPath is the landing dashboard for a primary role.
func DashboardPath(primary Role) string {
	if primary == RoleBoss {
		return "/boss-dashboard"
	}
	return "/store"
}
