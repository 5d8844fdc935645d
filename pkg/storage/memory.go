package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryKV keeps values in process memory. It is the backend for tests
// and for throwaway sessions.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Set stores a copy of data.
func (m *MemoryKV) Set(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = slices.Clone(data)
	return nil
}

// Delete removes key.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ KV = (*MemoryKV)(nil)

// NullKV is a store that never keeps anything.
type NullKV struct{}

// NewNullKV creates a null store.
func NewNullKV() KV {
	return NullKV{}
}

// Get always returns a miss.
func (NullKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NullKV) Set(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (NullKV) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (NullKV) Close() error {
	return nil
}

var _ KV = NullKV{}
