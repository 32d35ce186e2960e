package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoleCategory controls assignment cardinality per (user, event).
type RoleCategory string

const (
	// CategoryExclusive roles admit at most one member per user per event.
	CategoryExclusive RoleCategory = "exclusive"
	// CategoryAdditive roles have no cardinality restriction.
	CategoryAdditive RoleCategory = "additive"
)

// Role codes known to the portal. Unknown codes route to RouteError rather
// than a silent default.
const (
	RoleAthlete       = "ATHLETE"
	RoleGeneralPublic = "GENERAL_PUBLIC"
	RoleOrganizer     = "ORGANIZER"
	RoleDelegationRep = "DELEGATION_REP"
	RoleJudge         = "JUDGE"
	RoleAdministrator = "ADMINISTRATOR"
)

// Role is a named permission bucket scoped to exactly one event.
type Role struct {
	RoleID    uuid.UUID
	EventID   uuid.UUID
	Name      string
	Category  RoleCategory
	CreatedAt time.Time
}

// IsExclusive reports whether the role belongs to the exclusive category.
func (r Role) IsExclusive() bool { return r.Category == CategoryExclusive }

// RoleAssignment binds a user to a role within an event.
type RoleAssignment struct {
	UserID     uuid.UUID
	EventID    uuid.UUID
	RoleID     uuid.UUID
	RoleName   string
	Category   RoleCategory
	AssignedAt time.Time
}

// CountExclusive returns how many of the given assignments reference an
// exclusive-category role.
func CountExclusive(assignments []RoleAssignment) int {
	n := 0
	for _, a := range assignments {
		if a.Category == CategoryExclusive {
			n++
		}
	}
	return n
}

// ExclusiveOf returns the single exclusive assignment, if present.
func ExclusiveOf(assignments []RoleAssignment) (RoleAssignment, bool) {
	for _, a := range assignments {
		if a.Category == CategoryExclusive {
			return a, true
		}
	}
	return RoleAssignment{}, false
}
