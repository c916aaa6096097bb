package cache

import (
	"context"
	"sync"
)

// Store is the storage backend for a cache manager. Implementations hold
// opaque string payloads keyed by entry key; call sites can swap in an
// in-memory fake for tests.
type Store interface {
	// Load returns the payload for key and whether it was present
	Load(ctx context.Context, key string) (string, bool, error)

	// LoadAll returns every stored entry
	LoadAll(ctx context.Context) (map[string]string, error)

	// Save stores the payload under key
	Save(ctx context.Context, key, value string) error

	// Delete removes entries by key
	Delete(ctx context.Context, keys ...string) error

	// Clear removes every entry
	Clear(ctx context.Context) error
}

// MemoryStore is a map-backed Store used in tests and as the fallback when
// Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string

	// FailSaves makes every Save return an error, simulating a storage
	// quota failure.
	FailSaves bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryStore) LoadAll(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, key, value string) error {
	if m.FailSaves {
		return errQuotaExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]string)
	return nil
}
