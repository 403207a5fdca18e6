package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
)

const (
	// MaxAllRecords caps the admin view.
	MaxAllRecords = 500
	// MaxMineRecords caps the self-service view.
	MaxMineRecords = 100
)

// Entry is an audit record with its actor and target resolved for display.
// Actor or Target is nil when the account no longer exists (or, for Actor,
// when the action was system-triggered).
type Entry struct {
	models.AuditLog
	Actor  *models.UserRef `json:"actor"`
	Target *models.UserRef `json:"target"`
}

// Query serves read-only views of the audit log.
type Query struct {
	store     Store
	directory Directory
}

// NewQuery creates a Query.
func NewQuery(store Store, directory Directory) *Query {
	return &Query{store: store, directory: directory}
}

// ListAll returns the most recent records across all users. Admin only.
func (q *Query) ListAll(ctx context.Context, who Identity) ([]Entry, error) {
	if !who.IsAdmin() {
		return nil, ErrAdminRequired
	}
	return q.list(ctx, Filter{Limit: MaxAllRecords})
}

// ListMine returns the most recent records where who is actor or target.
func (q *Query) ListMine(ctx context.Context, who Identity) ([]Entry, error) {
	id := who.ID
	return q.list(ctx, Filter{Involving: &id, Limit: MaxMineRecords})
}

func (q *Query) list(ctx context.Context, f Filter) ([]Entry, error) {
	logs, err := q.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	ids := make([]uuid.UUID, 0, len(logs)*2)
	seen := make(map[uuid.UUID]bool)
	for _, l := range logs {
		if l.ActorID != nil && !seen[*l.ActorID] {
			seen[*l.ActorID] = true
			ids = append(ids, *l.ActorID)
		}
		if !seen[l.TargetID] {
			seen[l.TargetID] = true
			ids = append(ids, l.TargetID)
		}
	}

	refs := map[uuid.UUID]models.UserRef{}
	if len(ids) > 0 {
		refs, err = q.directory.Resolve(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
		}
	}

	entries := make([]Entry, len(logs))
	for i, l := range logs {
		entries[i] = Entry{AuditLog: l}
		if l.ActorID != nil {
			if ref, ok := refs[*l.ActorID]; ok {
				entries[i].Actor = &ref
			}
		}
		if ref, ok := refs[l.TargetID]; ok {
			entries[i].Target = &ref
		}
	}
	return entries, nil
}
