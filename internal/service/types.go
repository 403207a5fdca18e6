package service

import "github.com/nebari-dev/userhub/internal/models"

// MinPasswordLength is the shortest password accepted on signup, create and update.
const MinPasswordLength = 8

// MaxPasswordLength is the longest password bcrypt can hash.
const MaxPasswordLength = 72

// SignupRequest holds parameters for self-registration.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
}

// CreateUserRequest holds parameters for an admin creating an account.
type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     models.Role // defaults to user
}

// UpdateUserRequest holds a partial update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
}

// Stats summarizes accounts and recent audit activity for the dashboard.
type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	Admins        int64 `json:"admins"`
	RegularUsers  int64 `json:"regular_users"`
	AuditLast24h  int64 `json:"audit_last_24h"`
	CreatedLast7d int64 `json:"created_last_7d"`
}
