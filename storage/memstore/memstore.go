package memstore

import (
	"sync"

	"github.com/jrsteele09/go-storefront/storage"
)

var _ storage.Storage = (*MemStore)(nil)

// MemStore is an in-memory implementation of storage.Storage. State does
// not survive a restart, so it suits tests and ephemeral demo runs.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty in-memory store.
func New() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (m *MemStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemStore) GetOrSet(key, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.values[key]; ok {
		return existing, nil
	}
	m.values[key] = value
	return value, nil
}
