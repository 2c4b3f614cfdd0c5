package driven

import (
	"context"

	"github.com/ferndale-labs/marque/internal/core/domain"
)

// RecordStore persists page records together with their vector entries.
// Backed by SQLite for durable storage.
type RecordStore interface {
	// SaveRecord stores a record and all of its vector entries as one
	// atomic unit and returns the assigned record ID. Either the record
	// and every entry become visible together, or nothing is persisted.
	// A record with zero entries is valid (empty content).
	SaveRecord(ctx context.Context, rec *domain.Record, entries []domain.VectorEntry) (int64, error)

	// GetRecord retrieves a record by ID.
	// Returns domain.ErrNotFound if no such record exists.
	GetRecord(ctx context.Context, id int64) (*domain.Record, error)

	// Close releases resources.
	Close() error
}
