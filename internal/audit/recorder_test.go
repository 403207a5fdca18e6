package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
)

// memStore is an in-memory Store used by recorder tests.
type memStore struct {
	logs []models.AuditLog
	err  error
}

func (m *memStore) Append(ctx context.Context, rec *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, *rec)
	return nil
}

func (m *memStore) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.AuditLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		if f.Involving != nil && l.TargetID != *f.Involving && (l.ActorID == nil || *l.ActorID != *f.Involving) {
			continue
		}
		out = append(out, l)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

type countingObserver struct {
	appended, failed, skipped int
}

func (o *countingObserver) Appended(models.AuditAction)     { o.appended++ }
func (o *countingObserver) AppendFailed(models.AuditAction) { o.failed++ }
func (o *countingObserver) SkippedNoop()                    { o.skipped++ }

type captureNotifier struct {
	got []*models.AuditLog
}

func (n *captureNotifier) Notify(ctx context.Context, rec *models.AuditLog) {
	n.got = append(n.got, rec)
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newUser(name, email string, role models.Role) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: "$2a$10$secret-hash-" + name,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func admin(u *models.User) Identity { return Identity{ID: u.ID, Role: models.RoleAdmin} }
func self(u *models.User) Identity  { return Identity{ID: u.ID, Role: u.Role} }

func assertNoSecret(t *testing.T, rec *models.AuditLog, secret string) {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	if strings.Contains(string(data), secret) {
		t.Fatalf("record contains credential material: %s", data)
	}
	if strings.Contains(string(data), "password_hash") {
		t.Fatalf("record contains a password_hash field: %s", data)
	}
}

func TestRecordCreate_SelfRegistration(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, WithClock(steppingClock()))
	b := newUser("Bob", "bob@example.com", models.RoleUser)

	who := self(b)
	rec, err := r.RecordCreate(context.Background(), &who, b)
	if err != nil {
		t.Fatalf("RecordCreate: %v", err)
	}
	if rec == nil || len(store.logs) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(store.logs))
	}
	if rec.Action != models.AuditActionCreate {
		t.Errorf("action = %s, want create", rec.Action)
	}
	if rec.ActorType != models.ActorTypeSelf {
		t.Errorf("actor type = %s, want self", rec.ActorType)
	}
	if rec.ActorID == nil || *rec.ActorID != b.ID || rec.TargetID != b.ID {
		t.Errorf("actor/target mismatch: %+v", rec)
	}
	if rec.Message != "User self-registered" {
		t.Errorf("message = %q", rec.Message)
	}
	if rec.Details.Created == nil || rec.Details.Created.Email != "bob@example.com" {
		t.Errorf("created snapshot missing: %+v", rec.Details)
	}
	assertNoSecret(t, rec, b.PasswordHash)
}

func TestRecordCreate_ActorTypes(t *testing.T) {
	a := newUser("Ann", "ann@example.com", models.RoleAdmin)
	target := newUser("Tom", "tom@example.com", models.RoleUser)
	adminID := admin(a)

	tests := []struct {
		name  string
		actor *Identity
		want  models.ActorType
	}{
		{"admin creates other", &adminID, models.ActorTypeAdmin},
		{"system provisioning", nil, models.ActorTypeSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			rec, err := NewRecorder(store).RecordCreate(context.Background(), tt.actor, target)
			if err != nil {
				t.Fatalf("RecordCreate: %v", err)
			}
			if rec.ActorType != tt.want {
				t.Errorf("actor type = %s, want %s", rec.ActorType, tt.want)
			}
			if tt.actor == nil && rec.ActorID != nil {
				t.Errorf("system record should have no actor, got %v", rec.ActorID)
			}
		})
	}
}

func TestRecordCreate_MissingTarget(t *testing.T) {
	store := &memStore{}
	obs := &countingObserver{}
	r := NewRecorder(store, WithObserver(obs))

	_, err := r.RecordCreate(context.Background(), nil, &models.User{})
	if !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("expected ErrMissingTarget, got %v", err)
	}
	if len(store.logs) != 0 {
		t.Errorf("no record should be written, got %d", len(store.logs))
	}
	if obs.failed != 1 {
		t.Errorf("expected rejection to be counted, got %d", obs.failed)
	}
}

func TestRecordUpdate_NameChange(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)
	a := newUser("Ann", "ann@example.com", models.RoleAdmin)
	before := newUser("Alice", "alice@example.com", models.RoleUser)
	after := *before
	after.Name = "Alicia"

	rec, err := r.RecordUpdate(context.Background(), admin(a), before, &after)
	if err != nil {
		t.Fatalf("RecordUpdate: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.ActorType != models.ActorTypeAdmin || *rec.ActorID != a.ID || rec.TargetID != before.ID {
		t.Errorf("unexpected actor/target: %+v", rec)
	}
	if rec.Details.Before.Name != "Alice" || rec.Details.After.Name != "Alicia" {
		t.Errorf("unexpected diff: before=%+v after=%+v", rec.Details.Before, rec.Details.After)
	}
	if len(rec.Details.Fields) != 1 || rec.Details.Fields[0] != "name" {
		t.Errorf("fields = %v, want [name]", rec.Details.Fields)
	}
	if rec.Details.Created != nil || rec.Details.Deleted != nil {
		t.Errorf("update record carries create/delete payload: %+v", rec.Details)
	}
}

func TestRecordUpdate_NoopWritesNothing(t *testing.T) {
	store := &memStore{}
	obs := &countingObserver{}
	r := NewRecorder(store, WithObserver(obs))
	a := newUser("Ann", "ann@example.com", models.RoleAdmin)
	before := newUser("Bob", "bob@example.com", models.RoleUser)
	after := *before
	after.UpdatedAt = time.Now()
	updatedBy := a.ID
	after.UpdatedBy = &updatedBy

	rec, err := r.RecordUpdate(context.Background(), admin(a), before, &after)
	if err != nil {
		t.Fatalf("RecordUpdate: %v", err)
	}
	if rec != nil || len(store.logs) != 0 {
		t.Fatalf("no-op update must not be recorded, got %d records", len(store.logs))
	}
	if obs.skipped != 1 {
		t.Errorf("skipped = %d, want 1", obs.skipped)
	}
}

func TestRecordUpdate_PasswordChangeIsFlagOnly(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)
	b := newUser("Bob", "bob@example.com", models.RoleUser)
	after := *b
	after.PasswordHash = "$2a$10$another-secret-hash"

	rec, err := r.RecordUpdate(context.Background(), self(b), b, &after)
	if err != nil {
		t.Fatalf("RecordUpdate: %v", err)
	}
	if rec == nil {
		t.Fatal("password change should be recorded")
	}
	if rec.ActorType != models.ActorTypeSelf {
		t.Errorf("actor type = %s, want self", rec.ActorType)
	}
	if rec.Details.Before.PasswordChanged || !rec.Details.After.PasswordChanged {
		t.Errorf("password flag wrong: before=%+v after=%+v", rec.Details.Before, rec.Details.After)
	}
	assertNoSecret(t, rec, b.PasswordHash)
	assertNoSecret(t, rec, after.PasswordHash)
}

func TestRecordUpdate_AdminEditingSelfIsSelf(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)
	a := newUser("Ann", "ann@example.com", models.RoleAdmin)
	after := *a
	after.Email = "ann@corp.example.com"

	rec, _ := r.RecordUpdate(context.Background(), admin(a), a, &after)
	if rec == nil || rec.ActorType != models.ActorTypeSelf {
		t.Fatalf("expected self actor type, got %+v", rec)
	}
}

func TestRecordDelete(t *testing.T) {
	store := &memStore{}
	notifier := &captureNotifier{}
	r := NewRecorder(store, WithNotifier(notifier))
	a := newUser("Ann", "ann@example.com", models.RoleAdmin)
	c := newUser("Carl", "carl@example.com", models.RoleUser)

	rec, err := r.RecordDelete(context.Background(), admin(a), c.ID, c)
	if err != nil {
		t.Fatalf("RecordDelete: %v", err)
	}
	if rec == nil || rec.Action != models.AuditActionDelete {
		t.Fatalf("expected delete record, got %+v", rec)
	}
	want := Snapshot(c)
	if *rec.Details.Deleted != want {
		t.Errorf("deleted snapshot = %+v, want %+v", *rec.Details.Deleted, want)
	}
	assertNoSecret(t, rec, c.PasswordHash)
	if len(notifier.got) != 1 || notifier.got[0].ID != rec.ID {
		t.Errorf("notifier not called with appended record")
	}
}

func TestRecordDelete_NoSnapshotWritesNothing(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)
	a := newUser("Ann", "ann@example.com", models.RoleAdmin)

	rec, err := r.RecordDelete(context.Background(), admin(a), uuid.New(), nil)
	if err != nil || rec != nil || len(store.logs) != 0 {
		t.Fatalf("expected nothing written, got rec=%v err=%v", rec, err)
	}
}

func TestRecorder_StorageFailureIsSwallowed(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	obs := &countingObserver{}
	notifier := &captureNotifier{}
	r := NewRecorder(store, WithObserver(obs), WithNotifier(notifier))
	b := newUser("Bob", "bob@example.com", models.RoleUser)

	rec, err := r.RecordCreate(context.Background(), nil, b)
	if err != nil {
		t.Fatalf("storage failure must not surface, got %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record on failure")
	}
	if obs.failed != 1 || obs.appended != 0 {
		t.Errorf("observer counts wrong: %+v", obs)
	}
	if len(notifier.got) != 0 {
		t.Errorf("notifier must not fire for failed appends")
	}
}

func TestDiff_TracksWhitelistOnly(t *testing.T) {
	before := newUser("Bob", "bob@example.com", models.RoleUser)
	after := *before
	after.Role = models.RoleAdmin
	after.Email = "robert@example.com"
	after.CreatedAt = time.Now()

	d := Diff(before, &after)
	if strings.Join(d.Fields, ",") != "email,role" {
		t.Errorf("fields = %v, want [email role]", d.Fields)
	}
	if d.message(models.ActorTypeAdmin) != "User updated: email, role" {
		t.Errorf("message = %q", d.message(models.ActorTypeAdmin))
	}
}
