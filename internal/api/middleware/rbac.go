package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/auth"
)

// AdminChecker reports whether a user holds admin privileges
type AdminChecker interface {
	IsAdmin(userID uuid.UUID) (bool, error)
}

// RequireAdmin ensures the authenticated user is an admin.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.UserFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		isAdmin, err := checker.IsAdmin(user.ID)
		if err != nil {
			slog.Error("RBAC check failed", "user_id", user.ID, "error", err)
		}
		if err != nil || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
