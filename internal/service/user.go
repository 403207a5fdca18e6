package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/audit"
	"github.com/nebari-dev/userhub/internal/auth"
	"github.com/nebari-dev/userhub/internal/models"
	"gorm.io/gorm"
)

// RoleSyncer mirrors the role column into the authorization layer.
type RoleSyncer interface {
	SyncRole(userID uuid.UUID, role models.Role) error
	RemoveUser(userID uuid.UUID) error
}

// MutationObserver counts committed user mutations.
type MutationObserver interface {
	UserMutated(action models.AuditAction)
}

// UserService contains the business logic for account management. Every
// committed mutation is handed to the audit recorder after the write.
type UserService struct {
	db       *gorm.DB
	recorder *audit.Recorder
	roles    RoleSyncer
	observer MutationObserver
	now      func() time.Time
}

// NewUserService creates a new UserService. observer may be nil.
func NewUserService(db *gorm.DB, recorder *audit.Recorder, roles RoleSyncer, observer MutationObserver) *UserService {
	return &UserService{
		db:       db,
		recorder: recorder,
		roles:    roles,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a new account with the user role. The account is its
// own creator.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	user, err := s.newUser(req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	user.ID = uuid.New()
	user.CreatedBy = &user.ID

	if err := s.insert(ctx, user); err != nil {
		return nil, err
	}

	self := auth.IdentityOf(user)
	s.recorder.RecordCreate(ctx, &self, user)
	slog.Info("User self-registered", "user_id", user.ID)
	return user, nil
}

// Create provisions an account on behalf of an admin.
func (s *UserService) Create(ctx context.Context, actor audit.Identity, req CreateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user, err := s.newUser(req.Name, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	user.CreatedBy = &actor.ID

	if err := s.insert(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.RecordCreate(ctx, &actor, user)
	slog.Info("User created by admin", "user_id", user.ID, "admin_id", actor.ID, "role", user.Role)
	return user, nil
}

// EnsureAdmin creates the bootstrap admin when the users table is empty.
// It reports whether an account was created. The creation is recorded as a
// system action.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		slog.Info("No bootstrap admin credentials set, skipping default admin creation")
		return false, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return false, nil
	}

	user, err := s.newUser(name, email, password, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.insert(ctx, user); err != nil {
		return false, err
	}

	s.recorder.RecordCreate(ctx, nil, user)
	slog.Info("Default admin user created", "user_id", user.ID, "email", user.Email)
	return true, nil
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context, actor audit.Identity) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a single account. Non-admins may only read their own.
func (s *UserService) Get(ctx context.Context, actor audit.Identity, id uuid.UUID) (*models.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, ErrForbidden
	}
	return s.find(ctx, id)
}

// Update applies a partial update. Admins may edit any account; users may
// edit only their own and may not change their role. An update that leaves
// every tracked field unchanged still stamps updated_by but writes no
// audit record.
func (s *UserService) Update(ctx context.Context, actor audit.Identity, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		if actor.ID != id {
			return nil, ErrForbidden
		}
		if req.Role != nil && *req.Role != actor.Role {
			return nil, ErrForbidden
		}
	}

	before, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	after := *before

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, &ValidationError{Message: "name is required"}
		}
		after.Name = name
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		after.Email = email
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid role: %s", *req.Role)}
		}
		if actor.ID == id && *req.Role != models.RoleAdmin && before.IsAdmin() {
			return nil, &ValidationError{Message: "admins cannot demote themselves"}
		}
		after.Role = *req.Role
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		if !auth.VerifyPassword(before.PasswordHash, *req.Password) {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				return nil, err
			}
			after.PasswordHash = hash
		}
	}
	after.UpdatedBy = &actor.ID
	after.UpdatedAt = s.now()

	result := s.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(map[string]interface{}{
		"name":          after.Name,
		"email":         after.Email,
		"role":          after.Role,
		"password_hash": after.PasswordHash,
		"updated_by":    after.UpdatedBy,
		"updated_at":    after.UpdatedAt,
	})
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, &ConflictError{Message: "email already in use"}
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected == 0 {
		// Deleted after it was loaded.
		return nil, ErrNotFound
	}

	if after.Role != before.Role {
		if err := s.roles.SyncRole(id, after.Role); err != nil {
			slog.Error("Failed to sync role", "user_id", id, "role", after.Role, "error", err)
		}
	}

	s.mutated(models.AuditActionUpdate)
	s.recorder.RecordUpdate(ctx, actor, before, &after)
	return &after, nil
}

// Delete removes an account. Admins only, and never their own account.
func (s *UserService) Delete(ctx context.Context, actor audit.Identity, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.ID == id {
		return &ValidationError{Message: "cannot delete your own account"}
	}

	snapshot, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost a race with a concurrent delete; that request records it.
		return ErrNotFound
	}

	if err := s.roles.RemoveUser(id); err != nil {
		slog.Error("Failed to remove RBAC roles", "user_id", id, "error", err)
	}

	s.mutated(models.AuditActionDelete)
	s.recorder.RecordDelete(ctx, actor, id, snapshot)
	slog.Info("User deleted", "user_id", id, "admin_id", actor.ID)
	return nil
}

// Stats returns dashboard counters. Admins only.
func (s *UserService) Stats(ctx context.Context, actor audit.Identity) (*Stats, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	db := s.db.WithContext(ctx)
	now := s.now()
	var st Stats

	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&st.TotalUsers, &models.User{}, "", nil},
		{&st.Admins, &models.User{}, "role = ?", []interface{}{models.RoleAdmin}},
		{&st.CreatedLast7d, &models.User{}, "created_at >= ?", []interface{}{now.Add(-7 * 24 * time.Hour)}},
		{&st.AuditLast24h, &models.AuditLog{}, "created_at >= ?", []interface{}{now.Add(-24 * time.Hour)}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}
	st.RegularUsers = st.TotalUsers - st.Admins
	return &st, nil
}

func (s *UserService) newUser(name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid role: %s", role)}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{Name: name, Email: email, Role: role, PasswordHash: hash}, nil
}

// insert creates the row and grants its role.
func (s *UserService) insert(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return &ConflictError{Message: "email already in use"}
		}
		return fmt.Errorf("create user: %w", err)
	}
	if err := s.roles.SyncRole(user.ID, user.Role); err != nil {
		slog.Error("Failed to sync role", "user_id", user.ID, "role", user.Role, "error", err)
	}
	s.mutated(models.AuditActionCreate)
	return nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) mutated(action models.AuditAction) {
	if s.observer != nil {
		s.observer.UserMutated(action)
	}
}

func validatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return &ValidationError{Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	case len(password) > MaxPasswordLength:
		return &ValidationError{Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength)}
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", &ValidationError{Message: "invalid email address"}
	}
	return strings.ToLower(addr.Address), nil
}

// isUniqueViolation catches duplicate-key errors from drivers that GORM
// does not translate without TranslateError.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
