package driven

import "context"

// VectorIndex provides nearest-neighbour search over stored vector entries.
// Entries are inserted through RecordStore.SaveRecord so that they stay
// transactional with their parent record; this port only exposes the
// match side of the capability.
type VectorIndex interface {
	// Match returns up to limit entries closest to the query vector,
	// ordered by ascending distance.
	Match(ctx context.Context, query []float32, limit int) ([]VectorHit, error)
}

// VectorHit is one nearest-neighbour match.
type VectorHit struct {
	// RecordID is the record the matched chunk belongs to.
	RecordID int64

	// Start and End are the matched chunk's content offsets.
	Start int
	End   int

	// Distance is the cosine distance to the query (lower is closer).
	Distance float64
}
