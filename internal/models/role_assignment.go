package models

import (
	"time"

	"github.com/google/uuid"
)

// Fixed tenant role set. Owner is a superset of admin, which is a superset
// of instructor; student grants nothing by default.
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

type RoleAssignment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	MembershipID uuid.UUID `json:"membership_id" db:"membership_id"`
	Role         string    `json:"role" db:"role"`
	Permissions  []string  `json:"permissions,omitempty" db:"permissions"` // explicit grants on top of the role defaults
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
