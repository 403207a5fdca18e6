package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/userhub/internal/audit"
	"github.com/nebari-dev/userhub/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Authenticator is an interface for authentication providers
type Authenticator interface {
	// Login authenticates a user and returns a JWT token
	Login(email, password string) (*LoginResponse, error)

	// IssueToken signs a token for an already authenticated user
	IssueToken(user *models.User) (string, error)

	// Middleware returns a Gin middleware for authentication
	Middleware() gin.HandlerFunc

	// GetUserFromContext extracts the authenticated user from the Gin context
	GetUserFromContext(c *gin.Context) (*models.User, error)
}

// IdentityOf converts an authenticated user to the identity recorded in audit logs
func IdentityOf(user *models.User) audit.Identity {
	return audit.Identity{ID: user.ID, Role: user.Role}
}
