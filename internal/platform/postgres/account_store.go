package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mathtrail/mathtrail-api/internal/domain"
	"github.com/mathtrail/mathtrail-api/internal/platform/logger"
	"github.com/mathtrail/mathtrail-api/internal/store"
)

// AccountStore implements the store.AccountStore interface using a
// PostgreSQL database as the storage backend.
type AccountStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.AccountStore = (*AccountStore)(nil)

// NewAccountStore creates a new PostgreSQL implementation of the
// AccountStore interface. It accepts a database connection that should be
// initialized and managed by the caller. If log is nil, a default logger
// will be used.
func NewAccountStore(db *sql.DB, log *slog.Logger) *AccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AccountStore{
		db:     db,
		logger: log.With(slog.String("component", "postgres_account_store")),
	}
}

const accountColumns = `
	id, email, credential_hash, credential_salt, credential_iterations,
	is_admin, created_at, display_name, first_name, last_name, username, avatar
`

// scanAccount reads one account row in accountColumns order.
func scanAccount(row interface{ Scan(dest ...any) error }) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Credential.Hash,
		&account.Credential.Salt,
		&account.Credential.Iterations,
		&account.IsAdmin,
		&account.CreatedAt,
		&account.Profile.DisplayName,
		&account.Profile.FirstName,
		&account.Profile.LastName,
		&account.Profile.Username,
		&account.Profile.Avatar,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create implements store.AccountStore.Create. Uniqueness is enforced by
// the unique constraint on email, so the check and the insert are atomic
// with respect to concurrent sign-ups.
func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.Credential.Hash,
		account.Credential.Salt,
		account.Credential.Iterations,
		account.IsAdmin,
		account.CreatedAt,
		account.Profile.DisplayName,
		account.Profile.FirstName,
		account.Profile.LastName,
		account.Profile.Username,
		account.Profile.Avatar,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to create account",
			slog.String("error", err.Error()),
			slog.String("account_id", account.ID.String()))
		return MapError(err)
	}

	log.Debug("account created", slog.String("account_id", account.ID.String()))
	return nil
}

// GetByID implements store.AccountStore.GetByID.
func (s *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, MapError(err)
	}
	return account, nil
}

// GetByEmail implements store.AccountStore.GetByEmail. The email is
// expected in normalized form.
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, MapError(err)
	}
	return account, nil
}

// UpdateProfile implements store.AccountStore.UpdateProfile. The statement
// names only profile columns; id, email, credential, and admin flag cannot
// be mutated through this path.
func (s *AccountStore) UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.Profile) error {
	query := `
		UPDATE accounts
		SET display_name = $1, first_name = $2, last_name = $3, username = $4, avatar = $5
		WHERE id = $6
	`
	res, err := s.db.ExecContext(ctx, query,
		profile.DisplayName,
		profile.FirstName,
		profile.LastName,
		profile.Username,
		profile.Avatar,
		id,
	)
	if err != nil {
		return MapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrAccountNotFound
	}
	return nil
}

// UsernameTaken implements store.AccountStore.UsernameTaken.
func (s *AccountStore) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE username <> '' AND lower(username) = lower($1) AND id <> $2
		)
	`
	var taken bool
	if err := s.db.QueryRowContext(ctx, query, username, excludeID).Scan(&taken); err != nil {
		return false, MapError(err)
	}
	return taken, nil
}

// List implements store.AccountStore.List. Results are ordered
// most-recently-created first; the query matches email substrings
// case-insensitively (emails are stored lower-cased).
func (s *AccountStore) List(ctx context.Context, params store.ListParams) (*store.ListResult, error) {
	params = params.Normalize()

	where := ""
	args := []any{}
	if params.Query != "" {
		where = `WHERE strpos(email, lower($1)) > 0`
		args = append(args, params.Query)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM accounts ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, MapError(err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s FROM accounts %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, accountColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	accounts := make([]*domain.Account, 0, params.PageSize)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, MapError(err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.ListResult{
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		Accounts: accounts,
	}, nil
}

// Count implements store.AccountStore.Count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
