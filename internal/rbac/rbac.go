package rbac

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelConf string

// Objects and actions used in policies
const (
	ObjUsers = "users"
	ObjAudit = "audit"
	ObjSelf  = "self"

	ActRead  = "read"
	ActWrite = "write"
)

// defaultPolicies grant capabilities to roles; users are attached to roles
// through g rules mirrored from users.role.
var defaultPolicies = [][]string{
	{string(models.RoleAdmin), ObjUsers, ActWrite},
	{string(models.RoleAdmin), ObjAudit, ActRead},
	{string(models.RoleAdmin), ObjSelf, ActWrite},
	{string(models.RoleUser), ObjSelf, ActWrite},
}

// Enforcer wraps a casbin enforcer backed by the application database
type Enforcer struct {
	e      *casbin.Enforcer
	logger *slog.Logger
}

// NewEnforcer initializes the casbin enforcer and seeds role policies
func NewEnforcer(db *gorm.DB, logger *slog.Logger) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	for _, p := range defaultPolicies {
		// AddPolicy reports false without error when the rule already exists
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("failed to seed policy %v: %w", p, err)
		}
	}

	logger.Info("RBAC enforcer initialized")
	return &Enforcer{e: e, logger: logger}, nil
}

// SyncRole makes role the only role held by userID
func (r *Enforcer) SyncRole(userID uuid.UUID, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %s", role)
	}
	sub := userID.String()
	if _, err := r.e.DeleteRolesForUser(sub); err != nil {
		return fmt.Errorf("failed to clear roles for %s: %w", sub, err)
	}
	if _, err := r.e.AddRoleForUser(sub, string(role)); err != nil {
		return fmt.Errorf("failed to grant role %s to %s: %w", role, sub, err)
	}
	return nil
}

// RemoveUser drops every role assignment for userID
func (r *Enforcer) RemoveUser(userID uuid.UUID) error {
	if _, err := r.e.DeleteRolesForUser(userID.String()); err != nil {
		return fmt.Errorf("failed to remove roles for %s: %w", userID, err)
	}
	return nil
}

// Can checks whether userID may perform act on obj
func (r *Enforcer) Can(userID uuid.UUID, obj, act string) (bool, error) {
	return r.e.Enforce(userID.String(), obj, act)
}

// IsAdmin checks if user has admin privileges
func (r *Enforcer) IsAdmin(userID uuid.UUID) (bool, error) {
	return r.Can(userID, ObjUsers, ActWrite)
}

// SyncFromUsers rebuilds role assignments from the users table, which is
// the source of truth for roles.
func (r *Enforcer) SyncFromUsers(db *gorm.DB) error {
	var users []models.User
	if err := db.Select("id", "role").Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		if err := r.SyncRole(u.ID, u.Role); err != nil {
			return err
		}
	}
	r.logger.Info("Synchronized RBAC roles from users", "count", len(users))
	return nil
}
