package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
)

// Recorder turns completed user mutations into audit records.
//
// Appends are best-effort: the mutation has already committed by the time
// the recorder runs, so storage failures are logged and counted but never
// returned to the caller. Records for concurrent mutations of the same user
// are appended in whatever order the store serializes them.
type Recorder struct {
	store    Store
	notifier Notifier
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNotifier registers a notifier for successfully appended records.
func WithNotifier(n Notifier) Option {
	return func(r *Recorder) { r.notifier = n }
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(r *Recorder) { r.observer = o }
}

// WithLogger overrides the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:    store,
		observer: nopObserver{},
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordCreate writes a create record for target. A nil actor marks a
// system-triggered creation.
func (r *Recorder) RecordCreate(ctx context.Context, actor *Identity, target *models.User) (*models.AuditLog, error) {
	if target == nil || target.ID == uuid.Nil {
		return nil, r.reject(models.AuditActionCreate, ErrMissingTarget)
	}

	actorType := models.ActorTypeAdmin
	switch {
	case actor == nil:
		actorType = models.ActorTypeSystem
	case actor.ID == target.ID:
		actorType = models.ActorTypeSelf
	}

	return r.append(ctx, actor, actorType, target.ID, Created{Snapshot: Snapshot(target)}), nil
}

// RecordUpdate diffs before and after and writes an update record only when
// a tracked field changed. It returns nil when nothing was written.
func (r *Recorder) RecordUpdate(ctx context.Context, actor Identity, before, after *models.User) (*models.AuditLog, error) {
	if before == nil || after == nil || after.ID == uuid.Nil {
		return nil, r.reject(models.AuditActionUpdate, ErrMissingTarget)
	}

	change := Diff(before, after)
	if change.Empty() {
		r.observer.SkippedNoop()
		r.logger.Debug("Skipping audit record for no-op update", "target_id", after.ID)
		return nil, nil
	}

	return r.append(ctx, &actor, classify(actor, after.ID), after.ID, change), nil
}

// RecordDelete writes a delete record from a snapshot taken before the
// delete executed. A nil snapshot means the user was already gone and
// nothing is written.
func (r *Recorder) RecordDelete(ctx context.Context, actor Identity, targetID uuid.UUID, snapshot *models.User) (*models.AuditLog, error) {
	if targetID == uuid.Nil {
		return nil, r.reject(models.AuditActionDelete, ErrMissingTarget)
	}
	if snapshot == nil {
		r.logger.Warn("No snapshot for deleted user, skipping audit record", "target_id", targetID)
		return nil, nil
	}

	return r.append(ctx, &actor, classify(actor, targetID), targetID, Deleted{Snapshot: Snapshot(snapshot)}), nil
}

// classify decides the actor type for update and delete actions.
func classify(actor Identity, target uuid.UUID) models.ActorType {
	if actor.ID != target && actor.IsAdmin() {
		return models.ActorTypeAdmin
	}
	return models.ActorTypeSelf
}

func (r *Recorder) append(ctx context.Context, actor *Identity, actorType models.ActorType, target uuid.UUID, change Change) *models.AuditLog {
	rec := &models.AuditLog{
		ID:        uuid.New(),
		Action:    change.Action(),
		ActorType: actorType,
		TargetID:  target,
		Message:   change.message(actorType),
		Details:   change.details(),
		CreatedAt: r.now(),
	}
	if actor != nil {
		id := actor.ID
		rec.ActorID = &id
	}

	if err := r.store.Append(ctx, rec); err != nil {
		r.observer.AppendFailed(rec.Action)
		r.logger.Error("Failed to append audit record",
			"action", rec.Action,
			"target_id", target,
			"error", err)
		return nil
	}

	r.observer.Appended(rec.Action)
	if r.notifier != nil {
		r.notifier.Notify(ctx, rec)
	}
	return rec
}

func (r *Recorder) reject(action models.AuditAction, err error) error {
	r.observer.AppendFailed(action)
	r.logger.Error("Rejected audit record", "action", action, "error", err)
	return err
}
