package sqlite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathtrail/mathtrail-api/internal/domain"
	"github.com/mathtrail/mathtrail-api/internal/store"
)

func newTestStore(t *testing.T) *AccountStore {
	t.Helper()
	s, err := Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// makeAccount builds a valid account with an explicit creation time so
// ordering tests are deterministic.
func makeAccount(t *testing.T, email string, createdAt time.Time) *domain.Account {
	t.Helper()
	return &domain.Account{
		ID:    uuid.New(),
		Email: domain.NormalizeEmail(email),
		Credential: domain.Credential{
			Hash:       "aGFzaA==",
			Salt:       "c2FsdA==",
			Iterations: domain.MinCredentialIterations,
		},
		CreatedAt: createdAt,
	}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := makeAccount(t, "user@example.com", time.Now().UTC())
	account.IsAdmin = true
	account.Profile = domain.Profile{DisplayName: "User", Username: "user"}
	require.NoError(t, s.Create(ctx, account))

	byID, err := s.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, byID.ID)
	assert.Equal(t, account.Email, byID.Email)
	assert.Equal(t, account.Credential, byID.Credential)
	assert.True(t, byID.IsAdmin)
	assert.Equal(t, account.Profile, byID.Profile)

	byEmail, err := s.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	_, err = s.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestCreateDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Create(ctx, makeAccount(t, "dup@example.com", now)))

	err := s.Create(ctx, makeAccount(t, "dup@example.com", now))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestCreateRejectsInvalidAccount(t *testing.T) {
	s := newTestStore(t)

	invalid := makeAccount(t, "user@example.com", time.Now().UTC())
	invalid.Credential = domain.Credential{}

	err := s.Create(context.Background(), invalid)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := makeAccount(t, "user@example.com", time.Now().UTC())
	require.NoError(t, s.Create(ctx, account))

	profile := domain.Profile{
		DisplayName: "New Name",
		FirstName:   "New",
		LastName:    "Name",
		Username:    "newname",
		Avatar:      "data:image/png;base64,xyz",
	}
	require.NoError(t, s.UpdateProfile(ctx, account.ID, profile))

	got, err := s.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, profile, got.Profile)

	// Identity and credential columns are untouched by the update path.
	assert.Equal(t, account.Email, got.Email)
	assert.Equal(t, account.Credential, got.Credential)
	assert.Equal(t, account.IsAdmin, got.IsAdmin)

	// Unknown account id.
	err = s.UpdateProfile(ctx, uuid.New(), profile)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestUsernameTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	holder := makeAccount(t, "holder@example.com", time.Now().UTC())
	holder.Profile.Username = "mathfan"
	require.NoError(t, s.Create(ctx, holder))

	other := uuid.New()

	taken, err := s.UsernameTaken(ctx, "mathfan", other)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.UsernameTaken(ctx, "MATHFAN", other)
	require.NoError(t, err)
	assert.True(t, taken, "username comparison is case-insensitive")

	// The holder itself is excluded.
	taken, err = s.UsernameTaken(ctx, "mathfan", holder.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	// Empty usernames never conflict.
	taken, err = s.UsernameTaken(ctx, "", other)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestListOrderingAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		account := makeAccount(t, fmt.Sprintf("user%d@example.com", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Create(ctx, account))
	}

	// Newest first.
	result, err := s.List(ctx, store.ListParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	require.Len(t, result.Accounts, 2)
	assert.Equal(t, "user4@example.com", result.Accounts[0].Email)
	assert.Equal(t, "user3@example.com", result.Accounts[1].Email)

	// Second page continues the ordering.
	result, err = s.List(ctx, store.ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Accounts, 2)
	assert.Equal(t, "user2@example.com", result.Accounts[0].Email)
	assert.Equal(t, "user1@example.com", result.Accounts[1].Email)

	// Past the end: empty page, same total.
	result, err = s.List(ctx, store.ListParams{Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Empty(t, result.Accounts)

	// Out-of-range params are clamped, not rejected.
	result, err = s.List(ctx, store.ListParams{Page: -3, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, store.MaxPageSize, result.PageSize)
	assert.Len(t, result.Accounts, 5)
}

func TestListQueryFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Create(ctx, makeAccount(t, "alice@abc.org", now)))
	require.NoError(t, s.Create(ctx, makeAccount(t, "bob@xyz.org", now.Add(time.Second))))
	require.NoError(t, s.Create(ctx, makeAccount(t, "carol@abclabs.io", now.Add(2*time.Second))))

	result, err := s.List(ctx, store.ListParams{Query: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	for _, account := range result.Accounts {
		assert.Contains(t, account.Email, "abc")
	}

	// Query matching is case-insensitive against stored lower-case emails.
	result, err = s.List(ctx, store.ListParams{Query: "ABC"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	result, err = s.List(ctx, store.ListParams{Query: "nomatch"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Accounts)
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.Create(ctx, makeAccount(t, "one@example.com", time.Now().UTC())))
	require.NoError(t, s.Create(ctx, makeAccount(t, "two@example.com", time.Now().UTC())))

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
