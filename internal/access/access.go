package access

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of account roles on the platform. Roles are
// totally ordered; a higher rank may access everything a lower rank may.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleOwner     Role = "owner"
	RoleAgent     Role = "agent"
	RoleSolicitor Role = "solicitor"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleBuyer:     1,
	RoleOwner:     2,
	RoleAgent:     3,
	RoleSolicitor: 4,
	RoleAdmin:     5,
}

// AllRoles lists every valid role in rank order.
func AllRoles() []Role {
	roles := make([]Role, 0, len(roleRank))
	for r := range roleRank {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roleRank[roles[i]] < roleRank[roles[j]] })
	return roles
}

// ParseRole converts a string into a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Rank returns the position of the role in the total order, or 0 if the
// role is not part of the closed set.
func (r Role) Rank() int {
	return roleRank[r]
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Permission names follow the "<resource>:<action>" convention used by the
// platform API, e.g. "property:read" or "user:manage".
const (
	PermPropertyRead   = "property:read"
	PermPropertyCreate = "property:create"
	PermPropertyUpdate = "property:update"
	PermPropertyDelete = "property:delete"
	PermPropertySubmit = "property:submit"
	PermUserManage     = "user:manage"
)

// User is the authenticated principal as supplied by the auth collaborator.
// The gate treats it as read-only.
type User struct {
	ID     string
	Email  string
	Role   Role
	Grants []string // explicitly granted permissions, on top of role defaults
}

// Gate answers permission questions for a user against a role→permission
// mapping. Every method is a total, synchronous, pure function; a nil user
// always yields a denial.
type Gate struct {
	defaults map[Role][]string
}

// NewGate builds a gate from a role→default-permission mapping. Pass
// DefaultRolePermissions() unless the platform supplied its own mapping.
func NewGate(defaults map[Role][]string) *Gate {
	return &Gate{defaults: defaults}
}

// DefaultRolePermissions is the platform's stock mapping. Higher-ranked
// roles inherit nothing implicitly; each row is spelled out.
func DefaultRolePermissions() map[Role][]string {
	return map[Role][]string{
		RoleBuyer:     {PermPropertyRead},
		RoleOwner:     {PermPropertyRead, PermPropertyCreate, PermPropertyUpdate},
		RoleAgent:     {PermPropertyRead, PermPropertyCreate, PermPropertyUpdate, PermPropertySubmit},
		RoleSolicitor: {PermPropertyRead, PermPropertyCreate, PermPropertyUpdate, PermPropertyDelete, PermPropertySubmit},
		RoleAdmin:     {PermPropertyRead, PermPropertyCreate, PermPropertyUpdate, PermPropertyDelete, PermPropertySubmit, PermUserManage},
	}
}

// EffectivePermissions returns the union of the user's role defaults and
// explicit grants, deduplicated, defaults first, in stable order.
func (g *Gate) EffectivePermissions(u *User) []string {
	if u == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range g.defaults[u.Role] {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range u.Grants {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// HasPermission reports whether p is in the user's effective set.
func (g *Gate) HasPermission(u *User, p string) bool {
	if u == nil {
		return false
	}
	for _, have := range g.EffectivePermissions(u) {
		if have == p {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every listed permission is held.
// An empty list is trivially satisfied.
func (g *Gate) HasAllPermissions(u *User, perms []string) bool {
	if u == nil {
		return false
	}
	for _, p := range perms {
		if !g.HasPermission(u, p) {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether at least one listed permission is held.
func (g *Gate) HasAnyPermission(u *User, perms []string) bool {
	if u == nil {
		return false
	}
	for _, p := range perms {
		if g.HasPermission(u, p) {
			return true
		}
	}
	return false
}

// CanAccessResource reports whether the user's role is ranked at or above
// requiredRole and, if extra permissions are given, whether all are held.
func (g *Gate) CanAccessResource(u *User, requiredRole Role, extra ...string) bool {
	if u == nil {
		return false
	}
	if u.Role.Rank() < requiredRole.Rank() {
		return false
	}
	return g.HasAllPermissions(u, extra)
}

// Decision is the structured outcome of CheckPermission. On denial,
// Missing enumerates the required permissions that are absent, in the
// order they were requested.
type Decision struct {
	Granted bool
	Missing []string
}

// CheckPermission evaluates the required permissions against the user's
// effective set. A nil user is denied even when nothing is required.
func (g *Gate) CheckPermission(u *User, required []string) Decision {
	if u == nil {
		return Decision{Granted: false, Missing: append([]string(nil), required...)}
	}
	var missing []string
	for _, p := range required {
		if !g.HasPermission(u, p) {
			missing = append(missing, p)
		}
	}
	return Decision{Granted: len(missing) == 0, Missing: missing}
}
