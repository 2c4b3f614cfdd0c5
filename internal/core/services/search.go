package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/ports/driven"
	"github.com/ferndale-labs/marque/internal/core/ports/driving"
	"github.com/ferndale-labs/marque/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.Searcher = (*SearchService)(nil)

// DefaultMatchLimit is how many raw chunk matches are fetched before
// grouping. Over-fetching well beyond the result limit ensures the
// final list covers distinct records even when one long document
// dominates the nearest neighbours.
const DefaultMatchLimit = 100

// DefaultResultLimit is the maximum number of records returned.
const DefaultResultLimit = 5

// SearchService implements two-stage semantic retrieval: fetch the
// nearest chunk matches, collapse them to one best match per record,
// then hydrate the survivors from the record store.
type SearchService struct {
	records     driven.RecordStore
	index       driven.VectorIndex
	embedder    driven.EmbeddingService
	matchLimit  int
	resultLimit int
}

// SearchOption configures the search service.
type SearchOption func(*SearchService)

// WithMatchLimit sets how many raw chunk matches to fetch.
func WithMatchLimit(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.matchLimit = n
		}
	}
}

// WithResultLimit sets the maximum number of returned records.
func WithResultLimit(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.resultLimit = n
		}
	}
}

// NewSearchService creates a new search service.
func NewSearchService(
	records driven.RecordStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	opts ...SearchOption,
) *SearchService {
	s := &SearchService{
		records:     records,
		index:       index,
		embedder:    embedder,
		matchLimit:  DefaultMatchLimit,
		resultLimit: DefaultResultLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Search embeds the query, matches it against the vector index and
// returns at most the configured number of distinct records ordered by
// ascending distance. Fewer matches than the limit is normal, not an
// error.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	logger.Debug("Search: %q", query)

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w: query: %w", domain.ErrEmbeddingFailed, err)
	}

	hits, err := s.index.Match(ctx, embedding, s.matchLimit)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", domain.ErrStorageFailed, err)
	}
	logger.Debug("Search: %d raw chunk matches", len(hits))

	groups := s.groupByRecord(hits)

	// Truncation happens while hydrating, so a group skipped for a
	// missing record is replaced by the next-nearest one instead of
	// shrinking the result set below the limit.
	results := make([]domain.SearchResult, 0, s.resultLimit)
	for _, hit := range groups {
		if len(results) == s.resultLimit {
			break
		}
		rec, err := s.records.GetRecord(ctx, hit.RecordID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Index entry without a record; skip rather than fail the query.
				logger.Warn("Search: vector hit for missing record %d", hit.RecordID)
				continue
			}
			return nil, fmt.Errorf("search: %w: record %d: %w", domain.ErrStorageFailed, hit.RecordID, err)
		}

		results = append(results, domain.SearchResult{
			RecordID:  rec.ID,
			URL:       rec.URL,
			Title:     rec.Title,
			CreatedAt: rec.CreatedAt,
			Start:     hit.Start,
			End:       hit.End,
			Snippet:   snippet(rec.Content, hit.Start, hit.End),
			Distance:  hit.Distance,
		})
	}

	logger.Info("Search %q: %d results", query, len(results))
	return results, nil
}

// groupByRecord keeps the minimum-distance hit per record and returns
// the representatives ordered by ascending distance. Ties keep the
// index return order (stable sort over first-seen order).
func (s *SearchService) groupByRecord(hits []driven.VectorHit) []driven.VectorHit {
	best := make(map[int64]int, len(hits))
	groups := make([]driven.VectorHit, 0, len(hits))

	for _, hit := range hits {
		idx, seen := best[hit.RecordID]
		if !seen {
			best[hit.RecordID] = len(groups)
			groups = append(groups, hit)
			continue
		}
		if hit.Distance < groups[idx].Distance {
			groups[idx] = hit
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Distance < groups[j].Distance
	})

	return groups
}

// snippet slices content by the winning chunk's offsets, clamped so a
// record whose content somehow changed length cannot panic the query.
// The offsets count bytes, so both cuts are rounded inward to rune
// boundaries; the stored offsets stay as-is, only the preview shrinks.
func snippet(content string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(content) {
		end = len(content)
	}
	for start < end && !utf8.RuneStart(content[start]) {
		start++
	}
	for end > start && end < len(content) && !utf8.RuneStart(content[end]) {
		end--
	}
	if start >= end {
		return ""
	}
	return content[start:end]
}
