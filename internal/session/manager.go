// Package session binds a client context to an account id.
//
// A session is established on successful sign-in or sign-up, read by "who
// am I" style operations, and destroyed on sign-out. At most one session
// exists per client context; creating a new one replaces the old. Two
// realizations are provided: MemoryManager for direct in-process callers
// and CookieManager for the HTTP surface.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoScope is returned by CookieManager when the context was not
// prepared by its middleware, so there is no client context to bind.
var ErrNoScope = errors.New("no session scope in context")

// Manager establishes, reads, and destroys the session for the client
// context carried by ctx.
type Manager interface {
	// Create binds the client context to the given account id, replacing
	// any existing session.
	Create(ctx context.Context, accountID uuid.UUID) error

	// Current returns the account id bound to the client context, if any.
	// Malformed or expired session state reads as absent, never as an
	// error.
	Current(ctx context.Context) (uuid.UUID, bool)

	// Destroy clears the active session. Destroying an absent session is
	// not an error.
	Destroy(ctx context.Context) error
}
