package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomRole is a tenant-defined named permission bundle, attachable to
// memberships alongside the fixed role set. It only ever adds permissions.
type CustomRole struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Permissions []string  `json:"permissions" db:"permissions"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
