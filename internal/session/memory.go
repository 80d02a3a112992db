package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryManager holds the session for a single in-process client context.
// It is the direct-call analogue of a browser's session storage: one
// binding, replaced on create, gone on destroy. Safe for concurrent use.
type MemoryManager struct {
	mu        sync.Mutex
	accountID uuid.UUID
	active    bool
}

var _ Manager = (*MemoryManager)(nil)

// NewMemoryManager creates a manager with no active session.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{}
}

// Create implements Manager.Create.
func (m *MemoryManager) Create(_ context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountID = accountID
	m.active = true
	return nil
}

// Current implements Manager.Current.
func (m *MemoryManager) Current(_ context.Context) (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return uuid.Nil, false
	}
	return m.accountID, true
}

// Destroy implements Manager.Destroy.
func (m *MemoryManager) Destroy(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountID = uuid.Nil
	m.active = false
	return nil
}
