package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MembershipStatusActive   = "active"
	MembershipStatusInactive = "inactive"
	MembershipStatusArchived = "archived"
)

type Membership struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Status    string    `json:"status" db:"status"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Synthetic marks an in-memory membership constructed for a platform
	// admin who has no row in the store. Synthetic memberships are never
	// persisted.
	Synthetic bool `json:"synthetic,omitempty" db:"-"`
}
