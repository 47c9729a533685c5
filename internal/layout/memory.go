package layout

import (
	"bytes"
	"context"
	"sync"

	"folio/internal/errs"
)

// MemoryStore is a ContentStore kept in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) PutContent(_ context.Context, viewID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[viewID] = bytes.Clone(data)
	return nil
}

func (m *MemoryStore) GetContent(_ context.Context, viewID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[viewID]
	if !ok {
		return nil, errs.NotFound("content", viewID)
	}
	return bytes.Clone(b), nil
}

func (m *MemoryStore) DeleteContent(_ context.Context, viewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, viewID)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
