package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps audit records in the audit_logs table and resolves user
// references from the users table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Append inserts rec.
func (s *GormStore) Append(ctx context.Context, rec *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns records newest first.
func (s *GormStore) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if f.Involving != nil {
		query = query.Where("actor_id = ? OR target_id = ?", *f.Involving, *f.Involving)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	return logs, nil
}

// Resolve looks up display references for ids.
func (s *GormStore) Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.UserRef, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "name", "email").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}

	refs := make(map[uuid.UUID]models.UserRef, len(users))
	for _, u := range users {
		refs[u.ID] = models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return refs, nil
}
