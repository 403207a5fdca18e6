package cliclient

import "time"

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login or signup response.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignupRequest represents a self-registration request.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User represents an account.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Role      string    `json:"role" yaml:"role"`
	CreatedBy string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty" yaml:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// CreateUserRequest represents an admin create request.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest represents a partial update; nil fields are omitted.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// UserRef is a resolved actor or target.
type UserRef struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// AuditEntry is an audit record with resolved references.
type AuditEntry struct {
	ID        string                 `json:"id" yaml:"id"`
	Action    string                 `json:"action" yaml:"action"`
	ActorType string                 `json:"actor_type" yaml:"actor_type"`
	ActorID   string                 `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	TargetID  string                 `json:"target_id" yaml:"target_id"`
	Message   string                 `json:"message" yaml:"message"`
	Details   map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at" yaml:"created_at"`
	Actor     *UserRef               `json:"actor" yaml:"actor"`
	Target    *UserRef               `json:"target" yaml:"target"`
}

// Stats holds dashboard counters.
type Stats struct {
	TotalUsers    int64 `json:"total_users" yaml:"total_users"`
	Admins        int64 `json:"admins" yaml:"admins"`
	RegularUsers  int64 `json:"regular_users" yaml:"regular_users"`
	AuditLast24h  int64 `json:"audit_last_24h" yaml:"audit_last_24h"`
	CreatedLast7d int64 `json:"created_last_7d" yaml:"created_last_7d"`
}
