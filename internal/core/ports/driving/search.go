package driving

import (
	"context"

	"github.com/ferndale-labs/marque/internal/core/domain"
)

// Searcher answers natural-language queries over stored records.
type Searcher interface {
	// Search returns the records most semantically similar to the query,
	// at most one result per record, ordered by ascending distance.
	// An empty store yields an empty result, not an error.
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}
