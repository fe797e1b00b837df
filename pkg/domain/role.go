package domain

import dErrors "lms/pkg/domain-errors"

// Role is the closed set of caller roles.
// Invariant: a Role value is always one of the constants below; construct it with
// ParseRole at trust boundaries. Authorization code switches over every constant
// and denies anything else, so adding a role means revisiting each switch
// (the exhaustive linter flags the ones that were missed).
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole constructs a Role from external input (token claims, registration).
//
// Errors: CodeInvalidInput when the value is empty or not a known role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
