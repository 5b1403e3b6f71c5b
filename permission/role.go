package permission

import "strings"

// Role identifies the kind of portal user a session belongs to.
type Role uint8

const (
	// RoleUnknown marks an absent or unrecognized stored role.
	RoleUnknown Role = iota
	// RoleGuest is a visitor without a portal of their own.
	RoleGuest
	// RoleAdmin is a school administrator.
	RoleAdmin
	// RoleLecturer is a teaching staff member.
	RoleLecturer
	// RoleStudent is an enrolled student.
	RoleStudent

	roleCount
)

var roleNames = [roleCount]string{
	RoleUnknown:  "",
	RoleGuest:    "guest",
	RoleAdmin:    "admin",
	RoleLecturer: "lecturer",
	RoleStudent:  "student",
}

// ParseRole maps a stored role string to a Role. Matching is exact after
// trimming surrounding whitespace; anything else yields RoleUnknown, false.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RoleUnknown, false
	}
	for r := RoleGuest; r < roleCount; r++ {
		if roleNames[r] == s {
			return r, true
		}
	}
	return RoleUnknown, false
}

// String returns the wire name of r ("admin", "lecturer", ...). RoleUnknown
// renders as the empty string.
func (r Role) String() string {
	if r >= roleCount {
		return ""
	}
	return roleNames[r]
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r > RoleUnknown && r < roleCount
}

// HasPortal reports whether r owns a dashboard, a login page and a remote
// logout endpoint. Guests and unknown roles do not.
func (r Role) HasPortal() bool {
	switch r {
	case RoleAdmin, RoleLecturer, RoleStudent:
		return true
	default:
		return false
	}
}

// PortalRoles lists the roles for which HasPortal is true, in declaration order.
func PortalRoles() []Role {
	return []Role{RoleAdmin, RoleLecturer, RoleStudent}
}
