package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction is the kind of mutation an audit record describes.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// ActorType classifies who triggered an audited mutation.
type ActorType string

const (
	ActorTypeAdmin  ActorType = "admin"
	ActorTypeSelf   ActorType = "self"
	ActorTypeSystem ActorType = "system"
)

// AuditLog is an append-only record of a create, update or delete on a user.
// Rows are never modified after insertion.
type AuditLog struct {
	ID        uuid.UUID    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Action    AuditAction  `gorm:"type:varchar(16);not null;index" json:"action"`
	ActorType ActorType    `gorm:"type:varchar(16);not null" json:"actor_type"`
	ActorID   *uuid.UUID   `gorm:"type:varchar(36);index" json:"actor_id,omitempty"`
	TargetID  uuid.UUID    `gorm:"type:varchar(36);not null;index" json:"target_id"`
	Message   string       `json:"message"`
	Details   AuditDetails `gorm:"type:text;serializer:json" json:"details"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook to generate UUID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AuditDetails is the persisted payload of an audit record. Which fields are
// set depends on Action: Created for create, Deleted for delete, and
// Before/After/Fields for update.
type AuditDetails struct {
	Created *UserSnapshot  `json:"created,omitempty"`
	Deleted *UserSnapshot  `json:"deleted,omitempty"`
	Before  *TrackedFields `json:"before,omitempty"`
	After   *TrackedFields `json:"after,omitempty"`
	Fields  []string       `json:"fields,omitempty"`
}

// UserSnapshot is a copy of a user's fields at a point in time. It has no
// credential field.
type UserSnapshot struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TrackedFields is the projection of a user that update records compare.
type TrackedFields struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            Role   `json:"role"`
	PasswordChanged bool   `json:"password_changed"`
}
