// Package audit records create, update and delete actions on user accounts
// and serves them back to admins and to the users involved.
package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
)

var (
	// ErrMissingTarget is returned when a record would have no subject.
	ErrMissingTarget = errors.New("audit record requires a target")
	// ErrAdminRequired is returned when a non-admin asks for the full log.
	ErrAdminRequired = errors.New("admin required to view audit logs")
	// ErrRetrieval wraps storage failures on the read path.
	ErrRetrieval = errors.New("failed to retrieve audit logs")
)

// Identity is the authenticated caller of an operation.
type Identity struct {
	ID   uuid.UUID
	Role models.Role
}

// IsAdmin reports whether the identity holds elevated privilege.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Filter narrows a List call.
type Filter struct {
	// Involving restricts results to records where this user is actor or target.
	Involving *uuid.UUID
	// Limit caps the number of records returned. Zero means no cap.
	Limit int
}

// Store persists audit records. There is deliberately no way to modify or
// remove a record once appended.
type Store interface {
	Append(ctx context.Context, rec *models.AuditLog) error
	List(ctx context.Context, f Filter) ([]models.AuditLog, error)
}

// Directory resolves user IDs to display references. IDs that no longer
// exist are simply absent from the returned map.
type Directory interface {
	Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserRef, error)
}

// Notifier is told about every record that was successfully appended.
type Notifier interface {
	Notify(ctx context.Context, rec *models.AuditLog)
}

// Observer receives recorder outcomes for metrics.
type Observer interface {
	Appended(action models.AuditAction)
	AppendFailed(action models.AuditAction)
	SkippedNoop()
}

type nopObserver struct{}

func (nopObserver) Appended(models.AuditAction)     {}
func (nopObserver) AppendFailed(models.AuditAction) {}
func (nopObserver) SkippedNoop()                    {}
