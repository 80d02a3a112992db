package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/mathtrail/mathtrail-api/internal/config"
	"github.com/mathtrail/mathtrail-api/internal/platform/postgres"
	"github.com/mathtrail/mathtrail-api/internal/platform/sqlite"
	"github.com/mathtrail/mathtrail-api/internal/store"
)

// setupAccountStore opens the configured database backend and returns the
// account store along with a closer for the underlying connection.
func setupAccountStore(cfg *config.Config, appLogger *slog.Logger) (store.AccountStore, func() error, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := setupPostgres(cfg, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAccountStore(db, appLogger), db.Close, nil

	case "sqlite":
		accountStore, err := sqlite.Open(cfg.Database.URL, appLogger)
		if err != nil {
			return nil, nil, err
		}
		appLogger.Info("sqlite database opened", "path", cfg.Database.URL)
		return accountStore, accountStore.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// setupPostgres establishes the Postgres connection, configures the pool,
// verifies reachability, and applies pending migrations.
func setupPostgres(cfg *config.Config, appLogger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.Migrate(db); err != nil {
		return nil, err
	}

	appLogger.Info("Database connection established")
	return db, nil
}
