package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	httpapi "github.com/alex2808pl/url-shortener/internal/auth/http"
	"github.com/alex2808pl/url-shortener/internal/auth/service"
	"github.com/alex2808pl/url-shortener/internal/auth/store"
	"github.com/alex2808pl/url-shortener/internal/auth/store/drivers/sqlite"
	"github.com/alex2808pl/url-shortener/pkg/cryptox"
	"github.com/alex2808pl/url-shortener/pkg/httpx"
	"github.com/alex2808pl/url-shortener/pkg/jwtx"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	codec  *jwtx.Codec
	keys   jwtx.Keys
	hasher *cryptox.PasswordHasher

	// Services
	issuer      *service.TokenIssuer
	validator   *service.TokenValidator
	authService *service.AuthService
	userService *service.UserService
	seedService *service.SeedService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
// and the seed user, if configured, in place.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Keys first: a misconfigured key must fail before touching disk.
	codec, keys, err := InitTokenCrypto(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.codec, app.keys = codec, keys

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seed(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to create seed user: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Router exposes the router so the embedding service can mount its own
// handlers behind the auth gate before Run.
func (app *Application) Router() *httpapi.Router {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = sqlite.FileDSN(app.cfg.DatabaseFile)
	}

	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.issuer = &service.TokenIssuer{Codec: app.codec, Keys: app.keys}
	app.validator = &service.TokenValidator{Codec: app.codec, Keys: app.keys}

	app.authService = &service.AuthService{
		Users:     store.NewUserStoreAdapter(app.db, app.hasher),
		Issuer:    app.issuer,
		Validator: app.validator,
	}
	app.userService = &service.UserService{Store: app.db}
	app.seedService = &service.SeedService{Auth: app.authService, Store: app.db}
}

func (app *Application) seed(ctx context.Context) error {
	// Operator input: "USER, ADMIN" splits into padded tags.
	names := make([]string, len(app.cfg.SeedRoles))
	for i, r := range app.cfg.SeedRoles {
		names[i] = strings.TrimSpace(r)
	}
	roles, err := domain.ParseRoles(names)
	if err != nil {
		return err
	}

	ctx = slogx.WithContext(ctx, app.logger)
	created, password, err := app.seedService.EnsureUser(ctx, service.SeedUser{
		Login:     strings.TrimSpace(app.cfg.SeedLogin),
		Password:  app.cfg.SeedPassword,
		FirstName: app.cfg.SeedFirstName,
		Roles:     roles,
	})
	if err != nil {
		return err
	}

	if created {
		attrs := []any{"login", app.cfg.SeedLogin, "roles", domain.RoleStrings(roles)}
		if password != "" {
			attrs = append(attrs, "generated_password", password)
		}
		app.logger.Warn("seed user created", attrs...)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.validator, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.Limits = httpapi.RateLimits{
		Credential: limit(app.cfg.CredentialRateLimit, app.cfg.RateLimitWindow),
		Renewal:    limit(app.cfg.RenewalRateLimit, app.cfg.RateLimitWindow),
		Account:    limit(app.cfg.AccountRateLimit, app.cfg.RateLimitWindow),
		TrustProxy: app.cfg.TrustProxy,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       app.cfg.RequestTimeout,
		WriteTimeout:      app.cfg.RequestTimeout,
	}
}

// limit builds a bucket of n requests per window with a burst of n.
func limit(n int, window time.Duration) httpx.RateLimitConfig {
	return httpx.RateLimitConfig{RequestsPerWindow: n, Window: window, Burst: n}
}
