package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemStore is an in-memory Store used in tests.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// PutErr, when set, is returned by every Put. Tests use it to inject
	// transient storage failures.
	PutErr error
}

func NewMemStore() *MemStore {
	return &MemStore{objects: map[string][]byte{}}
}

func (m *MemStore) Put(ctx context.Context, ns Namespace, key string, r io.Reader, size int64) error {
	if m.PutErr != nil {
		return m.PutErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[Path(ns, key)] = data
	return nil
}

func (m *MemStore) Get(ctx context.Context, ns Namespace, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[Path(ns, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemStore) Delete(ctx context.Context, ns Namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, Path(ns, key))
	return nil
}

func (m *MemStore) Exists(ctx context.Context, ns Namespace, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[Path(ns, key)]
	return ok, nil
}

// Len reports how many objects the store holds.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
