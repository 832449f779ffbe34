package domain

import "errors"

// Role is the closed set of permissions a user can hold within a company.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ErrUnknownRole is returned by ParseRole for values outside the enum.
var ErrUnknownRole = errors.New("domain: unknown role")

// Roles lists every valid role.
func Roles() []Role { return []Role{RoleAdmin, RoleManager, RoleUser} }

// ParseRole validates s against the enum. Matching is exact.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleUser:
		return r, nil
	default:
		return "", ErrUnknownRole
	}
}

func (r Role) String() string { return string(r) }
