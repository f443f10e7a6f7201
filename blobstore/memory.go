package blobstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// MemoryStore is an in-memory Store implementation for testing and dry runs.
// Thread-safe for concurrent writes.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	puts    atomic.Int64
	batches atomic.Int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Put writes a document atomically.
func (m *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Copy to prevent external mutation
	copied := make([]byte, len(data))
	copy(copied, data)

	m.mu.Lock()
	m.blobs[name] = copied
	m.mu.Unlock()

	m.puts.Add(1)
	return nil
}

// PutBatch writes all entries under a single lock acquisition.
func (m *MemoryStore) PutBatch(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	for _, e := range entries {
		copied := make([]byte, len(e.Data))
		copy(copied, e.Data)
		m.blobs[e.Name] = copied
	}
	m.mu.Unlock()

	m.batches.Add(1)
	return nil
}

// Get returns a copy of a stored document.
func (m *MemoryStore) Get(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// List returns all documents matching the prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if hasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Len returns the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Puts returns the number of Put calls served.
func (m *MemoryStore) Puts() int64 { return m.puts.Load() }

// Batches returns the number of PutBatch calls served.
func (m *MemoryStore) Batches() int64 { return m.batches.Load() }
