package permission

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role name cannot be parsed.
var ErrUnknownRole = errors.New("unknown role")

// RoleSet is a bitmask of allowed roles. The zero value is the empty set,
// which route requirements treat as "no role restriction".
type RoleSet uint64

// NewRoleSet returns a set containing roles. Invalid roles are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s.Add(r)
	}
	return s
}

// ParseRoleSet builds a set from role names and rejects unknown names.
func ParseRoleSet(names []string) (RoleSet, error) {
	var s RoleSet
	for _, name := range names {
		r, ok := ParseRole(name)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
		}
		s.Add(r)
	}
	return s, nil
}

func (s RoleSet) Has(r Role) bool {
	if !r.Valid() {
		return false
	}
	return s&(1<<r) != 0
}

func (s *RoleSet) Add(r Role) {
	if !r.Valid() {
		return
	}
	*s |= 1 << r
}

func (s *RoleSet) Remove(r Role) {
	if !r.Valid() {
		return
	}
	*s &^= 1 << r
}

func (s RoleSet) IsEmpty() bool {
	return s == 0
}

// Roles returns the members of s in declaration order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, roleCount)
	for r := RoleGuest; r < roleCount; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}

func (s RoleSet) Raw() uint64 {
	return uint64(s)
}
