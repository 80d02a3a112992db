package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/mathtrail/mathtrail-api/internal/domain"
)

// Pagination bounds for List. Pages are 1-indexed.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams selects a page of accounts.
type ListParams struct {
	// Page is the 1-indexed page number. Values below 1 are treated as 1.
	Page int

	// PageSize is the number of accounts per page. Values below 1 fall back
	// to DefaultPageSize; values above MaxPageSize are clamped.
	PageSize int

	// Query, when non-empty, filters to accounts whose email contains the
	// query case-insensitively.
	Query string
}

// Normalize returns a copy of the params with page and page size clamped
// into their valid ranges.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListResult is one page of accounts, ordered most-recently-created first.
type ListResult struct {
	Page     int
	PageSize int
	Total    int
	Accounts []*domain.Account
}

// AccountStore defines the interface for account persistence.
// Two implementations exist: a sqlite-backed local store and a
// Postgres-backed relational store.
type AccountStore interface {
	// Create saves a new account to the store.
	// The email-uniqueness check and the insert are atomic: both
	// implementations rely on a unique constraint rather than a separate
	// lookup, so concurrent sign-ups with the same email cannot both
	// succeed. Returns ErrEmailExists if the normalized email is taken.
	// Returns validation errors from the domain Account if data is invalid.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique ID.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByEmail retrieves an account by its normalized email address.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// UpdateProfile persists new profile fields for the given account.
	// ID, email, credential, and admin flag are not reachable through this
	// path. Returns ErrAccountNotFound if the account does not exist.
	UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.Profile) error

	// UsernameTaken reports whether any account other than excludeID
	// already holds the given profile username, case-insensitively.
	UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)

	// List returns one page of accounts ordered newest-first, optionally
	// filtered by a case-insensitive email substring query.
	List(ctx context.Context, params ListParams) (*ListResult, error)

	// Count returns the total number of accounts in the store.
	Count(ctx context.Context) (int, error)
}
