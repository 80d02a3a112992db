package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyAccountID    = errors.New("account ID cannot be empty")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrEmptyCredential   = errors.New("account credential cannot be empty")
	ErrWeakCredential    = errors.New("account credential uses too few iterations")
	ErrEmptyCreatedAt    = errors.New("account creation time cannot be empty")
	ErrEmptyDisplayName  = errors.New("display name cannot be empty")
	ErrProfileFieldsLong = errors.New("profile fields must be at most 255 characters")
)

// MinCredentialIterations is the lowest iteration count a stored credential
// may carry and still be accepted for verification. Credentials below this
// floor are treated as unverifiable rather than silently honored.
const MinCredentialIterations = 10000

// Credential is the derived password material stored for an account.
// It never contains the plaintext password, and it must never be
// serialized into a client-facing response.
type Credential struct {
	Hash       string `json:"-"`
	Salt       string `json:"-"`
	Iterations int    `json:"-"`
}

// IsZero reports whether the credential is unset.
func (c Credential) IsZero() bool {
	return c.Hash == "" && c.Salt == "" && c.Iterations == 0
}

// Profile holds the free-form, account-owned settings fields.
// Profile data is never involved in authentication decisions.
type Profile struct {
	DisplayName string `json:"display_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Username    string `json:"username,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// Account represents a registered identity of the MathTrail application.
type Account struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Credential Credential `json:"-"` // Never expose derived password material in JSON
	IsAdmin    bool       `json:"is_admin"`
	CreatedAt  time.Time  `json:"created_at"`
	Profile    Profile    `json:"profile,omitempty"`
}

// NewAccount creates a new Account with the given normalized email and
// derived credential. It generates a new UUID for the account ID and sets
// the creation timestamp. Returns an error if validation fails.
//
// The caller is responsible for deriving the credential before calling
// this function; NewAccount never sees the plaintext password.
func NewAccount(email string, credential Credential, isAdmin bool) (*Account, error) {
	account := &Account{
		ID:         uuid.New(),
		Email:      NormalizeEmail(email),
		Credential: credential,
		IsAdmin:    isAdmin,
		CreatedAt:  time.Now().UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// All email comparisons in the system happen on normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the Account has valid data.
// Returns an error if any field fails validation.
func (a *Account) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAccountID
	}

	if a.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(a.Email) {
		return ErrInvalidEmail
	}

	if a.Credential.IsZero() || a.Credential.Hash == "" {
		return ErrEmptyCredential
	}

	if a.Credential.Iterations < MinCredentialIterations {
		return ErrWeakCredential
	}

	if a.CreatedAt.IsZero() {
		return ErrEmptyCreatedAt
	}

	return a.Profile.Validate()
}

// Validate checks the profile's free-form fields for length sanity.
// Empty fields are always valid; the profile is optional in its entirety.
func (p Profile) Validate() error {
	for _, v := range []string{p.DisplayName, p.FirstName, p.LastName, p.Username} {
		if len(v) > 255 {
			return ErrProfileFieldsLong
		}
	}
	return nil
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Domain must contain an interior dot ("a.b" at minimum).
	domainPart := email[atIndex+1:]
	dotIndex := strings.IndexByte(domainPart, '.')
	if dotIndex <= 0 || dotIndex == len(domainPart)-1 {
		return false
	}

	return true
}
