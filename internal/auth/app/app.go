package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	httpapi "github.com/aussiebroadwan/crm/internal/auth/http"
	"github.com/aussiebroadwan/crm/internal/auth/metrics"
	"github.com/aussiebroadwan/crm/internal/auth/revocation"
	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	denylist *revocation.Redis // nil when REDIS_URL is unset
	metrics  *metrics.Metrics

	// Services
	sessions            *service.SessionService
	accounts            *service.AccountService
	invitations         *service.InvitationService
	housekeepingService *service.HousekeepingService
	housekeepingRunning bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "crm-auth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "invalid configuration")
	}

	app := &Application{
		cfg:     cfg,
		logger:  NewLogger(cfg),
		metrics: metrics.New(),
	}

	if cfg.UsesDefaultSecret() {
		app.logger.Warn("JWT_SECRET is not set; using the insecure development secret")
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initDenylist(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}
	if err := app.initHTTP(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until ctx is cancelled or the
// server fails.
func (app *Application) Run(ctx context.Context) error {
	app.housekeepingService.Start()
	app.housekeepingRunning = true

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown signal received", "cause", context.Cause(ctx))
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingRunning {
		app.housekeepingService.Stop()
		app.housekeepingRunning = false
	}

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	if app.denylist != nil {
		if err := app.denylist.Close(); err != nil {
			app.logger.Error("error closing denylist", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenStore picks a driver from the database URL. postgres:// and
// postgresql:// use pgx; sqlite:// or a bare path use the embedded driver.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	url := cfg.DatabaseURL
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		pg, err := postgres.Connect(ctx, url, int32(cfg.DBMaxConns))
		if err != nil {
			return nil, err
		}
		return pg, nil
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(strings.TrimPrefix(url, "sqlite://"))
	case strings.Contains(url, "://"):
		scheme, _, _ := strings.Cut(url, "://")
		return nil, oops.Code("UNSUPPORTED_DATABASE").
			With("scheme", scheme).
			Errorf("unsupported database url scheme %q", scheme)
	default:
		return openSQLite(url)
	}
}

func openSQLite(path string) (store.Store, error) {
	s, err := sqlite.NewStore(sqlite.DSN(path))
	if err != nil {
		return nil, oops.Code("DB_OPEN_FAILED").With("path", path).Wrap(err)
	}
	return s, nil
}

// Migrate opens the configured database and applies pending migrations.
func Migrate(ctx context.Context, cfg Config) error {
	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return oops.Code("MIGRATION_FAILED").Wrapf(err, "failed to apply database migrations")
	}
	return nil
}

// Sweep runs one housekeeping pass against the configured database.
func Sweep(ctx context.Context, cfg Config, logger *slog.Logger) (int64, error) {
	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return 0, oops.Code("MIGRATION_FAILED").Wrapf(err, "failed to apply database migrations")
	}
	return service.NewHousekeepingService(db, logger, cfg.HousekeepingInterval).Sweep(ctx)
}

// initDatabase opens the store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return oops.Code("MIGRATION_FAILED").Wrapf(err, "failed to apply database migrations")
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initDenylist connects the Redis token denylist when REDIS_URL is set.
func (app *Application) initDenylist(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		app.logger.Info("REDIS_URL not set; logout only clears the session cookie")
		return nil
	}

	dl, err := revocation.NewRedis(app.cfg.RedisURL)
	if err != nil {
		return oops.Code("DENYLIST_CONFIG").Wrapf(err, "invalid REDIS_URL")
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := dl.Ping(pingCtx); err != nil {
			app.logger.Warn("denylist not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = dl.Close()
		return oops.Code("DENYLIST_UNREACHABLE").Wrapf(err, "failed to reach redis")
	}

	app.denylist = dl
	app.logger.Info("token denylist enabled")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	tokens, err := jwtx.NewHS256([]byte(app.cfg.JWTSecret), app.cfg.JWTIssuer)
	if err != nil {
		return oops.Code("TOKEN_CONFIG").Wrap(err)
	}

	app.sessions = &service.SessionService{
		Tokens: tokens,
		TTL:    app.cfg.SessionTTL,
	}
	if app.denylist != nil {
		app.sessions.Denylist = app.denylist
	}

	app.accounts = &service.AccountService{
		Store:    app.db,
		Sessions: app.sessions,
		Events:   app.metrics,
	}
	app.invitations = &service.InvitationService{
		Store:     app.db,
		TTL:       app.cfg.InvitationTTL,
		PublicURL: app.cfg.PublicURL,
		Events:    app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = app.metrics
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	proxies, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	edge := httpx.DefaultEdgeConfig()
	edge.ProtectedPrefixes = app.cfg.EdgeProtectedPrefixes

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
		httpapi.Options{
			AllowedOrigins: app.cfg.AllowedOrigins,
			Edge:           edge,
			Cookies: httpapi.CookieOptions{
				TTL:    app.cfg.SessionTTL,
				Secure: app.cfg.CookieSecure,
			},
			TrustedProxies: proxies,
		},
	)

	// Wire services to router
	router.Sessions = app.sessions
	router.Accounts = app.accounts
	router.Invitations = app.invitations
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
