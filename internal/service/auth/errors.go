package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidInput indicates a required field (email or password) was
	// missing or empty.
	ErrInvalidInput = errors.New("email and password are required")

	// ErrInvalidCredentials indicates sign-in failed. It covers both an
	// unknown email and a wrong password; the two cases are intentionally
	// indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden indicates a non-admin session attempted an admin-only
	// operation.
	ErrForbidden = errors.New("admin only")

	// ErrNotAuthenticated indicates an operation that requires a session
	// was called without one.
	ErrNotAuthenticated = errors.New("not authenticated")
)
