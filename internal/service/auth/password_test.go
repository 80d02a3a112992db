package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathtrail/mathtrail-api/internal/domain"
)

// testIterations keeps hashing cheap in tests while staying above the
// domain floor.
const testIterations = domain.MinCredentialIterations

func newTestHasher(t *testing.T) *PBKDF2Hasher {
	t.Helper()
	hasher, err := NewPBKDF2Hasher(testIterations)
	require.NoError(t, err)
	return hasher
}

func TestNewPBKDF2HasherRejectsWeakIterations(t *testing.T) {
	_, err := NewPBKDF2Hasher(domain.MinCredentialIterations - 1)
	assert.Error(t, err, "iteration counts below the floor must be refused")

	_, err = NewPBKDF2Hasher(1)
	assert.Error(t, err)
}

func TestDeriveAndVerify(t *testing.T) {
	hasher := newTestHasher(t)

	credential, err := hasher.Derive("correct horse battery staple")
	require.NoError(t, err)

	assert.NotEmpty(t, credential.Hash)
	assert.NotEmpty(t, credential.Salt)
	assert.Equal(t, testIterations, credential.Iterations)
	assert.NotEqual(t, "correct horse battery staple", credential.Hash,
		"hash must never equal the plaintext")

	assert.True(t, hasher.Verify("correct horse battery staple", credential))
	assert.False(t, hasher.Verify("correct horse battery stapl", credential))
	assert.False(t, hasher.Verify("", credential))
}

func TestDeriveUsesFreshSalt(t *testing.T) {
	hasher := newTestHasher(t)

	first, err := hasher.Derive("password-one")
	require.NoError(t, err)
	second, err := hasher.Derive("password-one")
	require.NoError(t, err)

	assert.NotEqual(t, first.Salt, second.Salt, "each derivation gets its own salt")
	assert.NotEqual(t, first.Hash, second.Hash)

	// Both still verify despite differing material.
	assert.True(t, hasher.Verify("password-one", first))
	assert.True(t, hasher.Verify("password-one", second))
}

func TestVerifyHonorsStoredIterations(t *testing.T) {
	// A credential derived under an older iteration count verifies under a
	// hasher configured with a newer default.
	oldHasher, err := NewPBKDF2Hasher(testIterations)
	require.NoError(t, err)
	credential, err := oldHasher.Derive("legacy-password")
	require.NoError(t, err)

	newHasher, err := NewPBKDF2Hasher(testIterations * 2)
	require.NoError(t, err)
	assert.True(t, newHasher.Verify("legacy-password", credential))
	assert.False(t, newHasher.Verify("wrong-password", credential))
}

func TestVerifyRejectsMalformedCredential(t *testing.T) {
	hasher := newTestHasher(t)

	credential, err := hasher.Derive("some-password")
	require.NoError(t, err)

	badSalt := credential
	badSalt.Salt = "not base64!!!"
	assert.False(t, hasher.Verify("some-password", badSalt))

	// A credential marked with a trivial iteration count is unverifiable,
	// even when its hash would otherwise match.
	weak := credential
	weak.Iterations = 1
	assert.False(t, hasher.Verify("some-password", weak))
}

func TestSelfCheck(t *testing.T) {
	hasher := newTestHasher(t)
	assert.NoError(t, hasher.SelfCheck())
}
