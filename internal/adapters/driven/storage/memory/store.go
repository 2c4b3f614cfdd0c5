// Package memory provides an in-memory record store and vector index.
// It backs ephemeral deployments (store type "memory") and serves as
// the test double for the core services.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/ports/driven"
	"github.com/ferndale-labs/marque/internal/vectormath"
)

// Ensure Store implements both storage ports.
var (
	_ driven.RecordStore = (*Store)(nil)
	_ driven.VectorIndex = (*Store)(nil)
)

// Store is an in-memory implementation of the record store and vector
// index. All state is lost on process exit.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]domain.Record
	entries []domain.VectorEntry
	dim     int
}

// NewStore creates a new in-memory store. dim is the embedding
// dimensionality enforced on writes; zero disables the check.
func NewStore(dim int) *Store {
	return &Store{
		nextID:  1,
		records: make(map[int64]domain.Record),
		dim:     dim,
	}
}

// SaveRecord assigns the next record ID and stores the record together
// with its vector entries under one lock acquisition, so a concurrent
// Match never observes a partially ingested record.
func (s *Store) SaveRecord(_ context.Context, rec *domain.Record, entries []domain.VectorEntry) (int64, error) {
	if s.dim > 0 {
		for _, e := range entries {
			if len(e.Embedding) != s.dim {
				return 0, fmt.Errorf("%w: vector entry [%d:%d) has %d dimensions, store expects %d",
					domain.ErrInvalidInput, e.Start, e.End, len(e.Embedding), s.dim)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	rec.ID = id
	s.records[id] = *rec

	for i := range entries {
		entries[i].RecordID = id
		s.entries = append(s.entries, entries[i])
	}

	return id, nil
}

// GetRecord retrieves a record by ID.
func (s *Store) GetRecord(_ context.Context, id int64) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Match scans every stored entry and returns up to limit hits by
// ascending cosine distance.
func (s *Store) Match(_ context.Context, query []float32, limit int) ([]driven.VectorHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(s.entries))
	for _, e := range s.entries {
		dist, ok := vectormath.CosineDistance(query, e.Embedding)
		if !ok {
			continue
		}
		hits = append(hits, driven.VectorHit{
			RecordID: e.RecordID,
			Start:    e.Start,
			End:      e.End,
			Distance: dist,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, nil
}

// Close releases resources. No-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored records. Used by tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// EntryCount returns the number of stored vector entries. Used by tests.
func (s *Store) EntryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
