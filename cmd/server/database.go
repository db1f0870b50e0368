package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasklist-api/internal/config"
	"github.com/phrazzld/tasklist-api/internal/platform/postgres"
	"github.com/sethvargo/go-retry"
)

// Backoff bounds for the startup migration loop.
const (
	migrationRetryBase = 500 * time.Millisecond
	migrationRetryCap  = 30 * time.Second
)

// openDatabase creates the connection pool. sql.Open does not dial, so an
// unreachable server is not an error here; requests fail until it answers.
func openDatabase(cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open(postgres.DriverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Warn("database not reachable at startup, continuing",
			slog.String("error", err.Error()))
	} else {
		log.Info("database connection established")
	}

	return db, nil
}

func closeDatabase(db *sql.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error("error closing database connection", slog.String("error", err.Error()))
	}
}

// migrateFunc applies pending migrations. Swapped in tests.
type migrateFunc func(ctx context.Context) error

// migrateWithRetry keeps applying migrations with capped exponential backoff
// until they succeed or ctx is done.
func migrateWithRetry(ctx context.Context, migrate migrateFunc, base time.Duration, log *slog.Logger) error {
	backoff := retry.WithCappedDuration(migrationRetryCap, retry.NewExponential(base))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := migrate(ctx); err != nil {
			log.Warn("migrations failed, will retry",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Info("migrations abandoned on shutdown", slog.Int("attempts", attempt))
		}
		return err
	}

	log.Info("migrations applied", slog.Int("attempts", attempt))
	return nil
}
