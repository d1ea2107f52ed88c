// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"sync"

	"github.com/pdiddy/sporeid/pkg/types"
)

// MemoryStore holds records for the life of the process. IDs stay 0.
type MemoryStore struct {
	mu      sync.Mutex
	records []types.HistoryRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, rec types.HistoryRecord) (types.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = 0
	m.records = append(m.records, rec)
	return rec, nil
}

// List returns a copy of the records in reverse insertion order.
func (m *MemoryStore) List(_ context.Context) ([]types.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.HistoryRecord, len(m.records))
	for i, rec := range m.records {
		out[len(m.records)-1-i] = rec
	}
	return out, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *MemoryStore) Durable() bool { return false }

func (m *MemoryStore) Close() error { return nil }
