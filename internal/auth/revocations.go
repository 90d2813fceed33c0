package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocations is a process-local revocation list for dev and tests.
type MemoryRevocations struct {
	mu    sync.Mutex
	now   func() time.Time
	until map[string]time.Time
}

func NewMemoryRevocations(now func() time.Time) *MemoryRevocations {
	if now == nil {
		now = time.Now
	}
	return &MemoryRevocations{now: now, until: make(map[string]time.Time)}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.until[tokenID] = until
	m.prune()
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.until[tokenID]
	return ok && m.now().Before(until), nil
}

func (m *MemoryRevocations) prune() {
	now := m.now()
	for id, until := range m.until {
		if !now.Before(until) {
			delete(m.until, id)
		}
	}
}
