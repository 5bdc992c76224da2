// Package permission resolves a user's role set into its effective
// permission-name set.
package permission

import (
	"sort"

	roledomain "github.com/capstone-pvt/api/internal/role/domain"
)

// Resolve flattens the permission names of every role into one deduplicated,
// sorted set. Pure function: order-independent, idempotent, no I/O.
func Resolve(roles []*roledomain.Role) []string {
	seen := make(map[string]struct{})
	for _, r := range roles {
		if r == nil {
			continue
		}
		for _, p := range r.Permissions {
			seen[p.Name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Names returns the role names in role order.
func Names(roles []*roledomain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r != nil {
			out = append(out, r.Name)
		}
	}
	return out
}
