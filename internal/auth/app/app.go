package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tunecrate/auth/internal/auth/service"
	"github.com/tunecrate/auth/internal/auth/store"
	"github.com/tunecrate/auth/internal/auth/store/drivers/sqlite"
	"github.com/tunecrate/auth/pkg/jwtx"
	"github.com/tunecrate/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	sessionService      *service.SessionService
	registrationService *service.RegistrationService
	resetService        *service.PasswordResetService
	sweeperService      *service.SweeperService
}

// New creates a new Application instance with all dependencies initialized
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

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	codec, err := jwtx.NewCodec([]byte(cfg.SigningKey))
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	app.initServices()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.sweeperService.Start()

	app.logger.Info("auth service starting", "version", BuildVersion)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	app.logger.Info("shutdown signal received", "signal", sig)

	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Stop blocks until any in-progress sweep completes, so the store
	// must stay open until it returns.
	app.sweeperService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	mailer := &service.LogMailer{Logger: app.logger}

	app.sessionService = &service.SessionService{
		Store:      app.db,
		Codec:      app.codec,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.registrationService = &service.RegistrationService{
		Store:      app.db,
		Codec:      app.codec,
		Mailer:     mailer,
		ConfirmTTL: app.cfg.ConfirmTTL,
		BaseURL:    app.cfg.BaseURL,
	}

	app.resetService = &service.PasswordResetService{
		Store:    app.db,
		Mailer:   mailer,
		ResetTTL: app.cfg.ResetTTL,
	}

	app.sweeperService = service.NewSweeperService(
		app.db,
		app.logger,
		app.cfg.SweepInterval,
		app.cfg.SweepGracePeriod,
	)
}
