package blob

import (
	"sync"
	"sync/atomic"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is a fully functional, thread-safe, in-memory implementation
// of [Store]. It requires no external dependencies — ideal for tests and
// ephemeral stores that do not need durability.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte // bucket -> key -> value
	closed atomic.Bool
}

// NewMemoryStore creates an empty MemoryStore. Buckets are created lazily on
// first Put.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) Get(bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return nil, ErrClosed
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	v, ok := m.data[bucket][key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Put(bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}

	if m.data[bucket] == nil {
		m.data[bucket] = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[bucket][key] = stored
	return nil
}

func (m *MemoryStore) Delete(bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}

	delete(m.data[bucket], key)
	return nil
}

func (m *MemoryStore) Has(bucket, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return false, ErrClosed
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	_, ok := m.data[bucket][key]
	return ok, nil
}

// Close marks the store closed and drops all data.
func (m *MemoryStore) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}
