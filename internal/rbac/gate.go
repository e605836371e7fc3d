package rbac

import "github.com/dhriti/dhriti-backend/internal/platform/httpx"

// Level is the access level an operation requires.
type Level int

// Levels are ordered; LevelSelf additionally needs Requirement.Owner.
const (
	LevelNone Level = iota
	LevelAuthenticated
	LevelSelf
	LevelTeacher
	LevelAdmin
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelAuthenticated:
		return "authenticated"
	case LevelSelf:
		return "self"
	case LevelTeacher:
		return "teacher"
	case LevelAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Requirement is what an operation asks of the principal.
type Requirement struct {
	Level Level
	// Owner is the user id owning the resource, used by LevelSelf.
	Owner string
}

// Check allows or denies p against req. It is pure and must run on every
// gated request: roles can change between requests.
func Check(p *Principal, req Requirement) error {
	if req.Level == LevelNone {
		return nil
	}
	if p == nil {
		return denied(req.Level)
	}
	if p.Role == RoleAdmin {
		return nil
	}
	switch req.Level {
	case LevelAuthenticated:
		return nil
	case LevelSelf:
		if req.Owner != "" && req.Owner == p.ID {
			return nil
		}
	case LevelTeacher:
		if p.Role.rank() >= RoleTeacher.rank() {
			return nil
		}
	}
	return denied(req.Level)
}

func denied(level Level) error {
	switch level {
	case LevelAdmin:
		return httpx.Errorf(httpx.ErrForbidden, "Admin access required")
	case LevelTeacher:
		return httpx.Errorf(httpx.ErrForbidden, "Teacher access required")
	case LevelSelf:
		return httpx.Errorf(httpx.ErrForbidden, "Unauthorized access")
	default:
		return httpx.Errorf(httpx.ErrForbidden, "Authentication required")
	}
}
