package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-process store for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	writes  int
	err     error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Read returns a copy of the record for key.
func (m *MemoryStore) Read(_ context.Context, key string) (*Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, false
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, true
}

// Write stores a copy of rec, or returns the error set by FailWrites.
func (m *MemoryStore) Write(_ context.Context, key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writes++
	if m.err != nil {
		return m.err
	}
	rec.Data = append([]byte(nil), rec.Data...)
	m.records[key] = rec
	return nil
}

// Seed stores rec directly (for testing).
func (m *MemoryStore) Seed(key string, rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = rec
}

// FailWrites makes every later Write return err (for testing).
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Writes returns how many writes were attempted.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
