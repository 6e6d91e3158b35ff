package cache

import (
	"context"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps the most recently used entries in process memory.
type MemoryStore struct {
	entries *expirable.LRU[string, *Entry]
}

// NewMemoryStore creates a store holding at most size entries.
func NewMemoryStore(size int, config Config) *MemoryStore {
	if size <= 0 {
		size = 256
	}
	return &MemoryStore{entries: expirable.NewLRU[string, *Entry](size, nil, config.TTL)}
}

// Get retrieves an entry
func (m *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	e, ok := m.entries.Get(key)
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	return e.clone(), nil
}

// Set stores an entry
func (m *MemoryStore) Set(_ context.Context, key string, e *Entry) error {
	m.entries.Add(key, e.clone())
	return nil
}

// Delete removes an entry
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

// Clear removes every entry
func (m *MemoryStore) Clear(_ context.Context) error {
	m.entries.Purge()
	return nil
}

// Len returns the number of live entries
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}
