package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TenantStatusActive   = "active"
	TenantStatusArchived = "archived"
)

type Tenant struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	Name                  string          `json:"name" db:"name"`
	Slug                  string          `json:"slug" db:"slug"`
	CustomDomain          *string         `json:"custom_domain,omitempty" db:"custom_domain"`
	Status                string          `json:"status" db:"status"`
	StudentAccessDisabled bool            `json:"student_access_disabled" db:"student_access_disabled"`
	EmailCredentials      *string         `json:"-" db:"email_credentials"` // encrypted, never serialized
	SMSCredentials        *string         `json:"-" db:"sms_credentials"`   // encrypted, never serialized
	Settings              json.RawMessage `json:"settings,omitempty" db:"settings"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

func (t *Tenant) Archived() bool {
	return t.Status == TenantStatusArchived
}
