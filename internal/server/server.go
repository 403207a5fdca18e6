// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nebari-dev/userhub/internal/api"
	"github.com/nebari-dev/userhub/internal/api/handlers"
	"github.com/nebari-dev/userhub/internal/audit"
	"github.com/nebari-dev/userhub/internal/auditfeed"
	"github.com/nebari-dev/userhub/internal/auth"
	"github.com/nebari-dev/userhub/internal/config"
	"github.com/nebari-dev/userhub/internal/db"
	"github.com/nebari-dev/userhub/internal/logger"
	"github.com/nebari-dev/userhub/internal/metrics"
	"github.com/nebari-dev/userhub/internal/rbac"
	"github.com/nebari-dev/userhub/internal/service"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Config holds the server configuration options.
type Config struct {
	Port    int    // Port to run the server on (0 = use config default)
	Version string // Version string to report
}

// App is a fully wired server ready to serve requests.
type App struct {
	Handler http.Handler
	Users   *service.UserService

	broker    *auditfeed.Broker
	publisher *auditfeed.ValkeyPublisher
}

// Close releases the audit feed resources.
func (a *App) Close() {
	a.broker.Close()
	if a.publisher != nil {
		a.publisher.Close()
	}
}

// Build opens the database, runs migrations, seeds the bootstrap admin and
// wires every component behind the HTTP router.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	// Propagate app log level to database if not explicitly set
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = cfg.Log.Level
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", cfg.Database.Driver)

	if err := db.Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	instanceID, err := db.EnsureInstanceID(database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize instance ID: %w", err)
	}
	slog.Info("Instance ID initialized", "instance_id", instanceID)

	enforcer, err := rbac.NewEnforcer(database, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RBAC: %w", err)
	}
	if err := enforcer.SyncFromUsers(database); err != nil {
		return nil, fmt.Errorf("failed to synchronize RBAC: %w", err)
	}

	m := metrics.New()
	app := &App{broker: auditfeed.NewBroker()}
	notifiers := auditfeed.Multi{app.broker}
	if cfg.Feed.ValkeyAddr != "" {
		pub, err := auditfeed.NewValkeyPublisher(cfg.Feed.ValkeyAddr, cfg.Feed.ValkeyChannel)
		if err != nil {
			app.broker.Close()
			return nil, fmt.Errorf("failed to connect audit feed: %w", err)
		}
		app.publisher = pub
		notifiers = append(notifiers, pub)
		slog.Info("Publishing audit records to Valkey", "addr", cfg.Feed.ValkeyAddr, "channel", cfg.Feed.ValkeyChannel)
	}

	store := audit.NewGormStore(database)
	recorder := audit.NewRecorder(store,
		audit.WithNotifier(notifiers),
		audit.WithObserver(m))
	app.Users = service.NewUserService(database, recorder, enforcer, m)

	if _, err := app.Users.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create default admin user: %w", err)
	}

	app.Handler = api.NewRouter(api.Deps{
		Mode:          cfg.Server.Mode,
		DB:            database,
		Authenticator: auth.NewBasicAuthenticator(database, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenLifetime)*time.Hour),
		Users:         app.Users,
		Audit:         audit.NewQuery(store, store),
		Admins:        enforcer,
		Broker:        app.broker,
		Metrics:       m.Handler(),
	})
	return app, nil
}

// Serve runs the HTTP server on ln until ctx is canceled, then shuts it
// down gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("Server stopped")
		return nil
	})
	return g.Wait()
}

// Run loads configuration, starts the server and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}

	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting userhub server", "version", handlers.Version, "mode", appCfg.Server.Mode)
	if appCfg.InsecureSecret() {
		slog.Warn("Running in production with the default JWT secret; set USERHUB_AUTH_JWT_SECRET")
	}

	app, err := Build(ctx, appCfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(appCfg.Server.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if err := Serve(ctx, ln, app.Handler); err != nil {
		return err
	}
	slog.Info("userhub exited")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cfg)
}
