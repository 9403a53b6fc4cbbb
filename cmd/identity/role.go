package identity

import (
	"errors"
	"strings"
)

// Role is the closed set of principal roles.
//
// It is an enumeration on purpose: role checks are exhaustive switches, so
// a typo or casing drift in stored data is rejected at parse time instead
// of silently failing an equality check.
type Role string

const (
	// RoleUser is a regular customer account.
	RoleUser Role = "user"
	// RoleAdmin is a staff account with write access to the catalog.
	RoleAdmin Role = "admin"
)

// ErrUnknownRole is returned by ParseRole for anything outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a stored or token-borne role string onto the closed set.
// Matching is case-insensitive to accommodate casing drift in old rows.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// Satisfies reports whether a principal holding r may pass a gate that
// requires required. Admin satisfies every requirement; user satisfies
// only the user requirement.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case RoleAdmin:
		return r == RoleAdmin
	case RoleUser:
		return r == RoleUser || r == RoleAdmin
	default:
		return false
	}
}
