// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps the list of past identifications. Two backends
// implement Store: MemoryStore lives for the process, SQLiteStore
// persists across runs.
package history

import (
	"context"
	"fmt"

	"github.com/pdiddy/sporeid/pkg/types"
)

// Store is an append-only list of identifications with a clear-all.
// There is no individual delete or edit.
type Store interface {
	// Append stores rec and returns it with any backend-assigned ID.
	Append(ctx context.Context, rec types.HistoryRecord) (types.HistoryRecord, error)
	// List returns every record, most recent first.
	List(ctx context.Context) ([]types.HistoryRecord, error)
	// Clear removes every record.
	Clear(ctx context.Context) error
	// Durable reports whether records survive a restart.
	Durable() bool
	Close() error
}

// Open returns the backend named by cfg.Backend. An empty backend
// selects the in-memory store.
func Open(cfg types.HistoryConfig) (Store, error) {
	switch cfg.Backend {
	case "", types.HistoryMemory:
		return NewMemoryStore(), nil
	case types.HistorySQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown history backend %q (want %s or %s)",
			cfg.Backend, types.HistoryMemory, types.HistorySQLite)
	}
}
