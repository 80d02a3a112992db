package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/mathtrail/mathtrail-api/internal/domain"
)

// PBKDF2 parameters. Iterations are stored per credential, so verification
// stays correct for credentials derived under an older default.
const (
	DefaultIterations = 150000
	saltLength        = 16
	keyLength         = 32
)

// Hasher defines the interface for deriving and verifying password
// credentials.
type Hasher interface {
	// Derive produces a verifiable credential from a plaintext password
	// using a fresh random salt.
	Derive(password string) (domain.Credential, error)

	// Verify re-derives the password under the credential's stored salt and
	// iteration count and compares the result against the stored hash in
	// constant time.
	Verify(password string, credential domain.Credential) bool
}

// PBKDF2Hasher implements Hasher using PBKDF2 with SHA-256.
type PBKDF2Hasher struct {
	iterations int
}

var _ Hasher = (*PBKDF2Hasher)(nil)

// NewPBKDF2Hasher creates a hasher that derives new credentials with the
// given iteration count. Iteration counts below the domain floor are
// refused outright: deriving a weak credential is a configuration error,
// not something to store and regret later.
func NewPBKDF2Hasher(iterations int) (*PBKDF2Hasher, error) {
	if iterations < domain.MinCredentialIterations {
		return nil, fmt.Errorf(
			"pbkdf2 iteration count %d is below the minimum of %d",
			iterations, domain.MinCredentialIterations,
		)
	}
	return &PBKDF2Hasher{iterations: iterations}, nil
}

// Derive implements Hasher.Derive.
func (h *PBKDF2Hasher) Derive(password string) (domain.Credential, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return domain.Credential{}, fmt.Errorf("failed to generate credential salt: %w", err)
	}
	return h.deriveWithSalt(password, salt, h.iterations)
}

// deriveWithSalt derives a credential under an explicit salt and iteration
// count. Used by Derive and by Verify's re-derivation.
func (h *PBKDF2Hasher) deriveWithSalt(password string, salt []byte, iterations int) (domain.Credential, error) {
	if iterations < domain.MinCredentialIterations {
		return domain.Credential{}, domain.ErrWeakCredential
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	return domain.Credential{
		Hash:       base64.StdEncoding.EncodeToString(key),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: iterations,
	}, nil
}

// Verify implements Hasher.Verify.
//
// Credentials carrying an iteration count below the domain floor never
// verify. This corrects the permissive behavior of storing a weak
// plaintext-equivalent hash when no crypto primitive was available: such
// a credential is unverifiable, not trivially valid.
func (h *PBKDF2Hasher) Verify(password string, credential domain.Credential) bool {
	salt, err := base64.StdEncoding.DecodeString(credential.Salt)
	if err != nil {
		return false
	}

	derived, err := h.deriveWithSalt(password, salt, credential.Iterations)
	if err != nil {
		return false
	}

	// Both values are fixed-length base64 of the derived key, so the
	// comparison is constant time for well-formed credentials.
	return subtle.ConstantTimeCompare([]byte(derived.Hash), []byte(credential.Hash)) == 1
}

// SelfCheck derives and verifies a throwaway probe credential. It is run
// once at startup; a failure means the crypto stack is unusable and the
// process must not serve sign-ups.
func (h *PBKDF2Hasher) SelfCheck() error {
	const probe = "startup-self-check"

	credential, err := h.Derive(probe)
	if err != nil {
		return fmt.Errorf("hasher self-check derivation failed: %w", err)
	}
	if !h.Verify(probe, credential) {
		return errors.New("hasher self-check round trip failed")
	}
	if h.Verify(probe+"x", credential) {
		return errors.New("hasher self-check accepted a wrong password")
	}
	return nil
}
