package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferndale-labs/marque/internal/adapters/driven/storage/memory"
	"github.com/ferndale-labs/marque/internal/chunker"
	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/ports/driving"
)

func newTestIngest(t *testing.T, windowSize int) (*IngestService, *memory.Store, *fakeEmbedder) {
	t.Helper()

	chunks, err := chunker.New(
		chunker.WithWindowSize(windowSize),
		chunker.WithOverlapFraction(0.25),
	)
	require.NoError(t, err)

	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	return NewIngestService(store, embedder, chunks), store, embedder
}

func TestIngest_Store(t *testing.T) {
	svc, store, embedder := newTestIngest(t, 8)
	ctx := context.Background()

	content := strings.Repeat("abcdef", 10) // 60 bytes, several windows
	id, err := svc.Store(ctx, driving.Capture{
		URL:     "https://example.com/article",
		Title:   "Example",
		Content: content,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	rec, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/article", rec.URL)
	assert.Equal(t, "Example", rec.Title)
	assert.Equal(t, content, rec.Content)
	assert.False(t, rec.CreatedAt.IsZero())

	// One vector entry and one embedding call per window: step 6, so
	// starts 0,6,...,54.
	assert.Equal(t, 10, store.EntryCount())
	assert.Equal(t, 10, embedder.callCount())
}

func TestIngest_Store_MissingURL(t *testing.T) {
	svc, store, _ := newTestIngest(t, 8)

	_, err := svc.Store(context.Background(), driving.Capture{Content: "text"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.Len())
}

func TestIngest_Store_EmptyContent(t *testing.T) {
	// An empty capture still stores a record, just with no vector
	// entries; it can never match a search.
	svc, store, embedder := newTestIngest(t, 8)
	ctx := context.Background()

	id, err := svc.Store(ctx, driving.Capture{URL: "https://example.com/empty"})
	require.NoError(t, err)

	rec, err := store.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, rec.Content)
	assert.Zero(t, store.EntryCount())
	assert.Zero(t, embedder.callCount())

	hits, err := store.Match(ctx, []float32{1, 0, 0, 0}, 100)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIngest_Store_EmbeddingFailureIsAtomic(t *testing.T) {
	svc, store, embedder := newTestIngest(t, 8)
	ctx := context.Background()

	content := strings.Repeat("abcdef", 10)
	// Fail on the window starting at offset 12: "cdefab" + "cd" ... the
	// exact slice is content[12:20].
	embedder.failOn = content[12:20]

	_, err := svc.Store(ctx, driving.Capture{
		URL:     "https://example.com/article",
		Content: content,
	})
	require.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	// Nothing persisted: no record, no vectors.
	assert.Zero(t, store.Len())
	assert.Zero(t, store.EntryCount())
}

func TestIngest_Store_EntriesCarryOffsets(t *testing.T) {
	svc, store, _ := newTestIngest(t, 8)
	ctx := context.Background()

	content := strings.Repeat("z", 20)
	id, err := svc.Store(ctx, driving.Capture{URL: "https://example.com", Content: content})
	require.NoError(t, err)

	hits, err := store.Match(ctx, []float32{1, 1, 1, 1}, 100)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	for _, hit := range hits {
		assert.Equal(t, id, hit.RecordID)
		assert.GreaterOrEqual(t, hit.Start, 0)
		assert.Greater(t, hit.End, hit.Start)
		assert.LessOrEqual(t, hit.End, len(content))
	}
}
