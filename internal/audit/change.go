package audit

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nebari-dev/userhub/internal/models"
)

// Change is the action-specific payload of a record. Exactly one of
// Created, Updated or Deleted.
type Change interface {
	Action() models.AuditAction
	details() models.AuditDetails
	message(actorType models.ActorType) string
}

// Created carries the post-creation snapshot of a new user.
type Created struct {
	Snapshot models.UserSnapshot
}

// Updated carries the tracked fields before and after an update.
type Updated struct {
	Before models.TrackedFields
	After  models.TrackedFields
	Fields []string
}

// Deleted carries the snapshot taken just before removal.
type Deleted struct {
	Snapshot models.UserSnapshot
}

func (Created) Action() models.AuditAction { return models.AuditActionCreate }
func (Updated) Action() models.AuditAction { return models.AuditActionUpdate }
func (Deleted) Action() models.AuditAction { return models.AuditActionDelete }

func (c Created) details() models.AuditDetails {
	s := c.Snapshot
	return models.AuditDetails{Created: &s}
}

func (u Updated) details() models.AuditDetails {
	before, after := u.Before, u.After
	return models.AuditDetails{Before: &before, After: &after, Fields: u.Fields}
}

func (d Deleted) details() models.AuditDetails {
	s := d.Snapshot
	return models.AuditDetails{Deleted: &s}
}

func (Created) message(actorType models.ActorType) string {
	switch actorType {
	case models.ActorTypeSelf:
		return "User self-registered"
	case models.ActorTypeSystem:
		return "User provisioned by system"
	default:
		return "User created by admin"
	}
}

func (u Updated) message(models.ActorType) string {
	return fmt.Sprintf("User updated: %s", strings.Join(u.Fields, ", "))
}

func (Deleted) message(models.ActorType) string {
	return "User deleted"
}

// Snapshot copies the non-secret fields of u.
func Snapshot(u *models.User) models.UserSnapshot {
	return models.UserSnapshot{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedBy: u.CreatedBy,
		CreatedAt: u.CreatedAt,
	}
}

// trackedField is one entry of the update whitelist.
type trackedField struct {
	name string
	get  func(models.TrackedFields) any
}

var trackedFields = []trackedField{
	{"name", func(f models.TrackedFields) any { return f.Name }},
	{"email", func(f models.TrackedFields) any { return f.Email }},
	{"role", func(f models.TrackedFields) any { return f.Role }},
	{"password_changed", func(f models.TrackedFields) any { return f.PasswordChanged }},
}

// Diff projects before and after onto the tracked fields and reports which
// of them differ. The raw password hash never leaves this function; only
// whether it changed.
func Diff(before, after *models.User) Updated {
	u := Updated{
		Before: models.TrackedFields{
			Name:  before.Name,
			Email: before.Email,
			Role:  before.Role,
		},
		After: models.TrackedFields{
			Name:            after.Name,
			Email:           after.Email,
			Role:            after.Role,
			PasswordChanged: before.PasswordHash != after.PasswordHash,
		},
	}
	for _, f := range trackedFields {
		if !reflect.DeepEqual(f.get(u.Before), f.get(u.After)) {
			u.Fields = append(u.Fields, f.name)
		}
	}
	return u
}

// Empty reports whether no tracked field changed.
func (u Updated) Empty() bool {
	return len(u.Fields) == 0
}
