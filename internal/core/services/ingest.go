package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ferndale-labs/marque/internal/chunker"
	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/ports/driven"
	"github.com/ferndale-labs/marque/internal/core/ports/driving"
	"github.com/ferndale-labs/marque/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService orchestrates the ingestion pipeline: chunk the content,
// embed every window concurrently, then persist the record and all of
// its vector entries in one transaction.
type IngestService struct {
	records  driven.RecordStore
	embedder driven.EmbeddingService
	chunks   *chunker.Chunker
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	records driven.RecordStore,
	embedder driven.EmbeddingService,
	chunks *chunker.Chunker,
) *IngestService {
	return &IngestService{
		records:  records,
		embedder: embedder,
		chunks:   chunks,
	}
}

// Store chunks, embeds and persists a captured page.
//
// All per-chunk embedding calls run concurrently and every one must
// succeed before anything is written; the first failure cancels the
// remaining calls and aborts the operation with nothing persisted.
// Empty content stores a record with zero vector entries, which is
// valid but permanently unreachable by search.
func (s *IngestService) Store(ctx context.Context, capture driving.Capture) (int64, error) {
	if capture.URL == "" {
		return 0, fmt.Errorf("%w: capture has no url", domain.ErrInvalidInput)
	}

	windows := s.chunks.Split(capture.Content)
	logger.Debug("Ingest %s: %d bytes, %d windows", capture.URL, len(capture.Content), len(windows))

	// Fan out one embedding call per window, collecting results into a
	// buffer indexed by window position so no partial set can ever be
	// persisted.
	entries := make([]domain.VectorEntry, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, capture.Content[w.Start:w.End])
			if err != nil {
				return fmt.Errorf("%w: chunk [%d:%d): %w", domain.ErrEmbeddingFailed, w.Start, w.End, err)
			}
			entries[i] = domain.VectorEntry{Start: w.Start, End: w.End, Embedding: vec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("store %s: %w", capture.URL, err)
	}

	rec := &domain.Record{
		URL:       capture.URL,
		Title:     capture.Title,
		Content:   capture.Content,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.records.SaveRecord(ctx, rec, entries)
	if err != nil {
		return 0, fmt.Errorf("store %s: %w: %w", capture.URL, domain.ErrStorageFailed, err)
	}

	logger.Info("Stored record %d (%s) with %d vector entries", id, capture.URL, len(entries))
	return id, nil
}
