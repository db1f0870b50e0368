package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/tasklist-api/internal/config"
	"github.com/phrazzld/tasklist-api/internal/events"
	"github.com/phrazzld/tasklist-api/internal/platform/metrics"
	"github.com/phrazzld/tasklist-api/internal/platform/postgres"
	"github.com/phrazzld/tasklist-api/internal/realtime"
	"github.com/phrazzld/tasklist-api/internal/service"
	"github.com/phrazzld/tasklist-api/internal/service/auth"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	authService auth.AuthService
	taskService service.TaskService

	eventEmitter *events.InMemoryEventEmitter
	hub          *realtime.Hub
	metrics      *metrics.Metrics

	// migrate is nil when there is no database to migrate.
	migrate    migrateFunc
	background sync.WaitGroup
}

// newApplication wires the Postgres-backed stores and every service.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app, err := newApplicationWithStores(
		cfg,
		logger,
		postgres.NewPostgresUserStore(db, logger),
		postgres.NewPostgresTaskStore(db, logger),
	)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.migrate = func(ctx context.Context) error {
		return postgres.RunMigrations(ctx, db, logger)
	}
	return app, nil
}

// newApplicationWithStores wires services around the given stores.
func newApplicationWithStores(
	cfg *config.Config,
	logger *slog.Logger,
	users store.UserStore,
	tasks store.TaskStore,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		userStore: users,
		taskStore: tasks,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.authService, err = auth.NewAuthService(
		users,
		jwtService,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	app.metrics = metrics.New()
	app.hub = realtime.NewHub(realtime.Options{
		AllowedOrigin: cfg.Server.FrontendURL,
		Observer:      app.metrics,
	}, logger)

	// Every task change goes to the owner's sockets and to the counters.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler("realtime_hub", app.hub)
	app.eventEmitter.RegisterHandler("metrics", app.metrics)

	app.taskService, err = service.NewTaskService(tasks, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// startMigrations applies migrations in the background until they succeed
// or ctx is canceled.
func (app *application) startMigrations(ctx context.Context) {
	if app.migrate == nil {
		return
	}
	app.background.Add(1)
	go func() {
		defer app.background.Done()
		_ = migrateWithRetry(ctx, app.migrate, migrationRetryBase, app.logger)
	}()
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	app.hub.Close()
	app.background.Wait()
	closeDatabase(app.db, app.logger)
	app.logger.Info("application shutdown completed")
}
