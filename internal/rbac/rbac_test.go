package rbac

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupEnforcer(t *testing.T) (*Enforcer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "rbac.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	e, err := NewEnforcer(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return e, db
}

func mustCan(t *testing.T, e *Enforcer, id uuid.UUID, obj, act string) bool {
	t.Helper()
	ok, err := e.Can(id, obj, act)
	if err != nil {
		t.Fatalf("Can(%s, %s): %v", obj, act, err)
	}
	return ok
}

func TestRolePermissions(t *testing.T) {
	e, _ := setupEnforcer(t)
	admin, user := uuid.New(), uuid.New()

	if err := e.SyncRole(admin, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := e.SyncRole(user, models.RoleUser); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		id   uuid.UUID
		obj  string
		act  string
		want bool
	}{
		{"admin writes users", admin, ObjUsers, ActWrite, true},
		{"admin reads audit", admin, ObjAudit, ActRead, true},
		{"user edits self", user, ObjSelf, ActWrite, true},
		{"user cannot write users", user, ObjUsers, ActWrite, false},
		{"user cannot read audit", user, ObjAudit, ActRead, false},
		{"unknown subject denied", uuid.New(), ObjSelf, ActWrite, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustCan(t, e, tt.id, tt.obj, tt.act); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSyncRole_Replaces(t *testing.T) {
	e, _ := setupEnforcer(t)
	id := uuid.New()

	if err := e.SyncRole(id, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := e.SyncRole(id, models.RoleUser); err != nil {
		t.Fatal(err)
	}

	isAdmin, err := e.IsAdmin(id)
	if err != nil {
		t.Fatal(err)
	}
	if isAdmin {
		t.Error("demoted user still holds admin")
	}
}

func TestSyncRole_RejectsUnknownRole(t *testing.T) {
	e, _ := setupEnforcer(t)
	if err := e.SyncRole(uuid.New(), models.Role("root")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestRemoveUser(t *testing.T) {
	e, _ := setupEnforcer(t)
	id := uuid.New()
	if err := e.SyncRole(id, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveUser(id); err != nil {
		t.Fatal(err)
	}
	if mustCan(t, e, id, ObjUsers, ActWrite) {
		t.Error("removed user still authorized")
	}
}

func TestSyncFromUsers(t *testing.T) {
	e, db := setupEnforcer(t)

	admin := models.User{Name: "Root", Email: "root@example.com", Role: models.RoleAdmin}
	user := models.User{Name: "Ann", Email: "ann@example.com", Role: models.RoleUser}
	for _, u := range []*models.User{&admin, &user} {
		if err := db.Create(u).Error; err != nil {
			t.Fatal(err)
		}
	}

	if err := e.SyncFromUsers(db); err != nil {
		t.Fatalf("SyncFromUsers: %v", err)
	}

	if !mustCan(t, e, admin.ID, ObjUsers, ActWrite) {
		t.Error("synced admin lacks users write")
	}
	if mustCan(t, e, user.ID, ObjUsers, ActWrite) {
		t.Error("synced user holds users write")
	}
	if !mustCan(t, e, user.ID, ObjSelf, ActWrite) {
		t.Error("synced user lacks self write")
	}
}
