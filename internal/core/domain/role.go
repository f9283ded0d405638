package domain

import "strings"

// Role is the closed set of authorities an identity can hold.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Roles lists every valid role, in declaration order.
var Roles = []Role{RoleAdmin, RoleUser}

func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the declared roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole maps a raw claim or request value to a Role. Matching is exact;
// "admin" is not ADMIN.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
