package rbac

import (
	"sort"
	"strings"

	"warehouse-dashboard/internal/auth"
)

// Role names as issued by the warehouse API. Keep these stable; they are part of the token contract.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleBoss     Role = "BOSS"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Rank orders roles for navigation visibility only. Authorization never compares ranks.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 4
	case RoleBoss:
		return 3
	case RoleManager:
		return 2
	case RoleEmployee:
		return 1
	default:
		return 0
	}
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if r.Rank() == 0 {
		return "", false
	}
	return r, true
}

// RoleSet is an accepted set of roles for a route.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects reports whether any of the token's role tags is in the set.
func (s RoleSet) Intersects(roles []string) bool {
	for _, r := range roles {
		if s.Contains(Role(r)) {
			return true
		}
	}
	return false
}

// Roles lists the set from most to least privileged.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank() > out[j].Rank() })
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, r := range s.Roles() {
		names = append(names, string(r))
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Named accepted sets used by the route policy.
var (
	AdminOnly        = NewRoleSet(RoleAdmin)
	BossAndAbove     = NewRoleSet(RoleBoss, RoleAdmin)
	ManagerAndAbove  = NewRoleSet(RoleManager, RoleBoss, RoleAdmin)
	EmployeeAndAbove = NewRoleSet(RoleEmployee, RoleManager, RoleBoss, RoleAdmin)
)

func namedSet(name string) (RoleSet, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return AdminOnly, true
	case "boss":
		return BossAndAbove, true
	case "manager":
		return ManagerAndAbove, true
	case "employee":
		return EmployeeAndAbove, true
	default:
		return nil, false
	}
}

// Authorize is the single decision rule: an authenticated session whose roles intersect required.
// Anonymous sessions are never admitted.
func Authorize(s auth.Session, required RoleSet) bool {
	c, ok := auth.ClaimsOf(s)
	if !ok {
		return false
	}
	return required.Intersects(c.Roles)
}
