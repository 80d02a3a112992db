// Package main implements the entry point for the MathTrail API server,
// which owns the account store, password credentials, and sessions behind
// the practice site.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/mathtrail/mathtrail-api/internal/config"
	"github.com/mathtrail/mathtrail-api/internal/platform/logger"
	"github.com/mathtrail/mathtrail-api/internal/service/auth"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application, seeds the admin
// account, and serves HTTP until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return err
	}
	defer app.cleanup()

	// Seed the admin account on an empty store. Idempotent, so every
	// startup may attempt it.
	seed := auth.SeedAdmin{
		Email:    cfg.Auth.SeedAdminEmail,
		Password: cfg.Auth.SeedAdminPassword,
	}
	if err := app.authService.Bootstrap(context.Background(), seed); err != nil {
		return fmt.Errorf("failed to bootstrap seed admin: %w", err)
	}

	return app.startHTTPServer(context.Background(), app.setupRouter())
}
