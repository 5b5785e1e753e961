package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"` // Never serialize in JSON
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	IsPlatformAdmin bool      `json:"is_platform_admin" db:"is_platform_admin"`
	Role            string    `json:"role" db:"role"` // legacy global role, may also denote a platform admin
	MFAEnabled      bool      `json:"mfa_enabled" db:"mfa_enabled"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
