package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mathtrail/mathtrail-api/internal/config"
	"github.com/mathtrail/mathtrail-api/internal/service/auth"
	"github.com/mathtrail/mathtrail-api/internal/session"
	"github.com/mathtrail/mathtrail-api/internal/store"
)

// application holds the wired dependencies of the running server.
type application struct {
	config       *config.Config
	logger       *slog.Logger
	accountStore store.AccountStore
	sessions     *session.CookieManager
	authService  *auth.Service
	closers      []func() error
}

// newApplication builds the application from configuration: account store
// by database driver, password hasher (self-checked), cookie session
// manager, and the auth service on top of them.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: appLogger,
	}

	accountStore, closer, err := setupAccountStore(cfg, appLogger)
	if err != nil {
		return nil, err
	}
	app.accountStore = accountStore
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	hasher, err := auth.NewPBKDF2Hasher(cfg.Auth.PBKDF2Iterations)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}
	// A hasher that cannot round-trip a credential must never reach
	// serving; refusing to start beats storing unverifiable credentials.
	if err := hasher.SelfCheck(); err != nil {
		return nil, fmt.Errorf("password hasher failed self-check: %w", err)
	}

	sessions, err := session.NewCookieManager(
		cfg.Auth.SessionSecret,
		time.Duration(cfg.Auth.SessionTTLMinutes)*time.Minute,
		cfg.Auth.SecureCookies,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}
	app.sessions = sessions

	app.authService = auth.NewService(accountStore, hasher, sessions, appLogger)

	return app, nil
}

// cleanup releases resources held by the application, last-opened first.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error("cleanup failed", "error", err)
		}
	}
}
