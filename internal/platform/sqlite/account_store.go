// Package sqlite implements the account store over a local sqlite
// database. It is the embedded, single-node counterpart to the postgres
// store: same contract, file-or-memory persistence.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/mathtrail/mathtrail-api/internal/domain"
	"github.com/mathtrail/mathtrail-api/internal/platform/logger"
	"github.com/mathtrail/mathtrail-api/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id                    TEXT PRIMARY KEY,
	email                 TEXT NOT NULL UNIQUE,
	credential_hash       TEXT NOT NULL,
	credential_salt       TEXT NOT NULL,
	credential_iterations INTEGER NOT NULL,
	is_admin              INTEGER NOT NULL DEFAULT 0,
	created_at            TIMESTAMP NOT NULL,
	display_name          TEXT NOT NULL DEFAULT '',
	first_name            TEXT NOT NULL DEFAULT '',
	last_name             TEXT NOT NULL DEFAULT '',
	username              TEXT NOT NULL DEFAULT '',
	avatar                TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts (created_at DESC);
`

// AccountStore implements store.AccountStore using a sqlite database as
// the storage backend.
type AccountStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ store.AccountStore = (*AccountStore)(nil)

// Open connects to the sqlite database at the given path (or ":memory:")
// and ensures the schema exists.
func Open(path string, log *slog.Logger) (*AccountStore, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open sqlite database: %v", store.ErrStorageUnavailable, err)
	}

	// sqlite allows one writer; a single pooled connection sidesteps
	// SQLITE_BUSY under concurrent request handling.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize schema: %v", store.ErrStorageUnavailable, err)
	}

	return NewAccountStore(db, log), nil
}

// NewAccountStore wraps an existing sqlx connection. The caller manages
// the connection's lifecycle. If log is nil, the default logger is used.
func NewAccountStore(db *sqlx.DB, log *slog.Logger) *AccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AccountStore{
		db:     db,
		logger: log.With(slog.String("component", "sqlite_account_store")),
	}
}

// Close releases the underlying database handle.
func (s *AccountStore) Close() error {
	return s.db.Close()
}

// accountRow is the flat row shape of the accounts table.
type accountRow struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Hash        string    `db:"credential_hash"`
	Salt        string    `db:"credential_salt"`
	Iterations  int       `db:"credential_iterations"`
	IsAdmin     bool      `db:"is_admin"`
	CreatedAt   time.Time `db:"created_at"`
	DisplayName string    `db:"display_name"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Username    string    `db:"username"`
	Avatar      string    `db:"avatar"`
}

func (r *accountRow) toDomain() (*domain.Account, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt account id %q: %v", store.ErrStorageUnavailable, r.ID, err)
	}
	return &domain.Account{
		ID:    id,
		Email: r.Email,
		Credential: domain.Credential{
			Hash:       r.Hash,
			Salt:       r.Salt,
			Iterations: r.Iterations,
		},
		IsAdmin:   r.IsAdmin,
		CreatedAt: r.CreatedAt,
		Profile: domain.Profile{
			DisplayName: r.DisplayName,
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			Username:    r.Username,
			Avatar:      r.Avatar,
		},
	}, nil
}

// isUniqueViolation checks if the given error is a sqlite unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Create implements store.AccountStore.Create. The email uniqueness check
// and the insert are one statement; the unique constraint makes the pair
// atomic under concurrent sign-ups.
func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	const query = `
		INSERT INTO accounts (
			id, email, credential_hash, credential_salt, credential_iterations,
			is_admin, created_at, display_name, first_name, last_name, username, avatar
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.ID.String(),
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
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to create account",
			slog.String("error", err.Error()),
			slog.String("account_id", account.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}

	log.Debug("account created", slog.String("account_id", account.ID.String()))
	return nil
}

// GetByID implements store.AccountStore.GetByID.
func (s *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.getOne(ctx, `SELECT * FROM accounts WHERE id = ?`, id.String())
}

// GetByEmail implements store.AccountStore.GetByEmail. The email is
// expected in normalized form; rows are stored normalized at creation.
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.getOne(ctx, `SELECT * FROM accounts WHERE email = ?`, email)
}

func (s *AccountStore) getOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var row accountRow
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	return row.toDomain()
}

// UpdateProfile implements store.AccountStore.UpdateProfile. Only the
// profile columns are named in the statement; identity and credential
// columns are unreachable through this path.
func (s *AccountStore) UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.Profile) error {
	const query = `
		UPDATE accounts
		SET display_name = ?, first_name = ?, last_name = ?, username = ?, avatar = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		profile.DisplayName,
		profile.FirstName,
		profile.LastName,
		profile.Username,
		profile.Avatar,
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	if affected == 0 {
		return store.ErrAccountNotFound
	}
	return nil
}

// UsernameTaken implements store.AccountStore.UsernameTaken.
func (s *AccountStore) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	const query = `
		SELECT COUNT(*) FROM accounts
		WHERE username != '' AND lower(username) = lower(?) AND id != ?
	`
	var count int
	if err := s.db.GetContext(ctx, &count, query, username, excludeID.String()); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	return count > 0, nil
}

// List implements store.AccountStore.List. Results are ordered
// most-recently-created first; the query matches email substrings
// case-insensitively (emails are stored lower-cased).
func (s *AccountStore) List(ctx context.Context, params store.ListParams) (*store.ListResult, error) {
	params = params.Normalize()

	where := ""
	args := []any{}
	if params.Query != "" {
		where = `WHERE instr(email, lower(?)) > 0`
		args = append(args, params.Query)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM accounts ` + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}

	listQuery := `SELECT * FROM accounts ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	args = append(args, params.PageSize, params.Offset())

	var rows []accountRow
	if err := s.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		account, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
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
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM accounts`); err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	return count, nil
}
