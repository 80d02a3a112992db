package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManagerLifecycle(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	// Nothing bound yet.
	_, ok := m.Current(ctx)
	assert.False(t, ok)

	id := uuid.New()
	require.NoError(t, m.Create(ctx, id))

	got, ok := m.Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	require.NoError(t, m.Destroy(ctx))
	_, ok = m.Current(ctx)
	assert.False(t, ok)

	// Destroying an absent session is a no-op.
	require.NoError(t, m.Destroy(ctx))
}

func TestMemoryManagerCreateReplaces(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, m.Create(ctx, first))
	require.NoError(t, m.Create(ctx, second))

	got, ok := m.Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, second, got)
}
