package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/userhub/internal/api/handlers"
	"github.com/nebari-dev/userhub/internal/api/middleware"
	"github.com/nebari-dev/userhub/internal/audit"
	"github.com/nebari-dev/userhub/internal/auditfeed"
	"github.com/nebari-dev/userhub/internal/auth"
	"github.com/nebari-dev/userhub/internal/service"
	"gorm.io/gorm"
)

// Deps carries everything the router needs. Broker and Metrics are optional.
type Deps struct {
	Mode          string
	DB            *gorm.DB
	Authenticator auth.Authenticator
	Users         *service.UserService
	Audit         *audit.Query
	Admins        middleware.AdminChecker
	Broker        *auditfeed.Broker
	Metrics       http.Handler
}

// NewRouter creates and configures the Gin router
func NewRouter(d Deps) *gin.Engine {
	if d.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	userHandler := handlers.NewUserHandler(d.Users)
	auditHandler := handlers.NewAuditHandler(d.Audit, d.Broker)
	infoHandler := handlers.NewInfoHandler(d.DB)
	requireAdmin := middleware.RequireAdmin(d.Admins)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", handlers.HealthCheck)
		public.GET("/version", handlers.GetVersion)
		public.GET("/info", infoHandler.GetInfo)
		public.POST("/auth/signup", handlers.Signup(d.Users, d.Authenticator))
		public.POST("/auth/login", handlers.Login(d.Authenticator))
	}

	// Protected routes (require authentication)
	protected := router.Group("/api/v1")
	protected.Use(d.Authenticator.Middleware())
	{
		protected.GET("/auth/me", handlers.GetCurrentUser(d.Authenticator))

		// Self-service routes; the service layer enforces ownership
		protected.GET("/users/:id", userHandler.GetUser)
		protected.PUT("/users/:id", userHandler.UpdateUser)
		protected.GET("/auditlogs/my-activity", auditHandler.MyActivity)

		// Admin routes
		admin := protected.Group("")
		admin.Use(requireAdmin)
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.GET("/users/stats", userHandler.GetStats)
			admin.POST("/users", userHandler.CreateUser)
			admin.DELETE("/users/:id", userHandler.DeleteUser)
			admin.GET("/auditlogs", auditHandler.ListAuditLogs)
			admin.GET("/auditlogs/stream", auditHandler.StreamAuditLogs)
		}
	}

	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics))
	}

	slog.Info("API router initialized", "mode", d.Mode)
	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
