package rbac

import "strings"

// Role is the application role carried by a principal.
type Role string

// Known roles. RoleUnknown covers a missing or unrecognised claim.
const (
	RoleUnknown Role = ""
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalises a role claim.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent
	case RoleTeacher:
		return RoleTeacher
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

func (r Role) rank() int {
	switch r {
	case RoleStudent:
		return 1
	case RoleTeacher:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Principal describes the authenticated actor of one request. It is a
// read-only projection of the identity service's user.
type Principal struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Role     Role           `json:"role"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}
