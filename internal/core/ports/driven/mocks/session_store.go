package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// MockSessionStore is an in-memory SessionStore for testing.
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn

	failErr error
}

// NewMockSessionStore creates a new MockSessionStore.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string][]domain.Turn)}
}

// FailWith makes every subsequent call fail with err (nil resets).
func (m *MockSessionStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MockSessionStore) SaveHistory(_ context.Context, sessionID string, turns []domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	snapshot := make([]domain.Turn, len(turns))
	copy(snapshot, turns)
	m.sessions[sessionID] = snapshot
	return nil
}

func (m *MockSessionStore) LoadHistory(_ context.Context, sessionID string) ([]domain.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	turns, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (m *MockSessionStore) DeleteHistory(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	delete(m.sessions, sessionID)
	return nil
}
