package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mathtrail/mathtrail-api/internal/domain"
	"github.com/mathtrail/mathtrail-api/internal/platform/logger"
	"github.com/mathtrail/mathtrail-api/internal/session"
	"github.com/mathtrail/mathtrail-api/internal/store"
)

// SeedAdmin is the bootstrap admin account created when the store is empty.
type SeedAdmin struct {
	Email    string
	Password string
}

// Service orchestrates the credential store, password hasher, and session
// manager into the sign-up/sign-in/sign-out flows. It owns no state of its
// own; all durable state lives in the store, all per-client state in the
// session manager.
type Service struct {
	accounts store.AccountStore
	hasher   Hasher
	sessions session.Manager
	logger   *slog.Logger
}

// NewService creates an auth service from its collaborators.
// If log is nil, the default logger is used.
func NewService(accounts store.AccountStore, hasher Hasher, sessions session.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		sessions: sessions,
		logger:   log.With(slog.String("component", "auth_service")),
	}
}

// SignUp registers a new account, binds the session to it, and returns it.
// The first account ever created becomes the admin; every later sign-up is
// a regular account. Returns ErrInvalidInput when email or password is
// empty, store.ErrEmailExists when the normalized email is taken.
func (s *Service) SignUp(ctx context.Context, email, password string) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	credential, err := s.hasher.Derive(password)
	if err != nil {
		log.Error("credential derivation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to derive credential: %w", err)
	}

	count, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	account, err := domain.NewAccount(email, credential, count == 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// The store's unique constraint is the authority on duplicates; no
	// separate existence check precedes the insert.
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	log.Info("account created",
		slog.String("account_id", account.ID.String()),
		slog.Bool("is_admin", account.IsAdmin))
	return account, nil
}

// SignIn authenticates an existing account and binds the session to it.
// An unknown email and a wrong password both return ErrInvalidCredentials;
// callers can not tell the two apart.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email = domain.NormalizeEmail(email)

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, account.Credential) {
		return nil, ErrInvalidCredentials
	}

	if err := s.sessions.Create(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	log.Info("sign-in succeeded", slog.String("account_id", account.ID.String()))
	return account, nil
}

// SignOut destroys the active session. It always succeeds, including when
// no session exists.
func (s *Service) SignOut(ctx context.Context) error {
	return s.sessions.Destroy(ctx)
}

// Me resolves the active session to its account. A missing session and a
// stale session (the account no longer exists) both return (nil, nil).
func (s *Service) Me(ctx context.Context) (*domain.Account, error) {
	accountID, ok := s.sessions.Current(ctx)
	if !ok {
		return nil, nil
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts returns one page of accounts, newest first. Only an admin
// session may call it; everything else gets ErrForbidden.
func (s *Service) ListAccounts(ctx context.Context, params store.ListParams) (*store.ListResult, error) {
	caller, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	if caller == nil || !caller.IsAdmin {
		return nil, ErrForbidden
	}

	return s.accounts.List(ctx, params)
}

// UpdateProfile applies new profile fields to the session's account and
// returns the updated account. The username is defaulted from the email's
// local part when empty and de-duplicated across accounts with a numeric
// suffix. Identity fields (id, email, credential, admin flag) are not
// touched by this path.
func (s *Service) UpdateProfile(ctx context.Context, profile domain.Profile) (*domain.Account, error) {
	account, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotAuthenticated
	}

	profile.DisplayName = strings.TrimSpace(profile.DisplayName)
	if profile.DisplayName == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, domain.ErrEmptyDisplayName)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	username, err := s.uniqueUsername(ctx, profile.Username, account)
	if err != nil {
		return nil, err
	}
	profile.Username = username

	if err := s.accounts.UpdateProfile(ctx, account.ID, profile); err != nil {
		return nil, err
	}

	account.Profile = profile
	return account, nil
}

// uniqueUsername resolves the desired username to one not held by any
// other account, appending 1, 2, ... until free. An empty desired name
// falls back to the email's local part.
func (s *Service) uniqueUsername(ctx context.Context, desired string, account *domain.Account) (string, error) {
	base := strings.TrimSpace(desired)
	if base == "" {
		base = strings.SplitN(account.Email, "@", 2)[0]
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := s.accounts.UsernameTaken(ctx, candidate, account.ID)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// Bootstrap seeds the admin account when the store is empty. It is
// idempotent: on a non-empty store it does nothing, and a concurrent seed
// losing the insert race is treated as success.
func (s *Service) Bootstrap(ctx context.Context, seed SeedAdmin) error {
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	credential, err := s.hasher.Derive(seed.Password)
	if err != nil {
		return fmt.Errorf("failed to derive seed credential: %w", err)
	}

	admin, err := domain.NewAccount(seed.Email, credential, true)
	if err != nil {
		return fmt.Errorf("invalid seed admin account: %w", err)
	}

	if err := s.accounts.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil
		}
		return err
	}

	s.logger.Info("seed admin account created", slog.String("account_id", admin.ID.String()))
	return nil
}
