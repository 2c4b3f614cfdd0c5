package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferndale-labs/marque/internal/adapters/driven/storage/memory"
	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/ports/driven"
)

// seedRecord stores a record with one vector entry per given window.
func seedRecord(t *testing.T, store *memory.Store, url, content string, entries []domain.VectorEntry) int64 {
	t.Helper()

	rec := &domain.Record{
		URL:       url,
		Title:     "Title of " + url,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	id, err := store.SaveRecord(context.Background(), rec, entries)
	require.NoError(t, err)
	return id
}

// axis returns a 4-dim unit vector along the given axis, slightly
// rotated towards the first axis so that distances to a first-axis
// query are ordered by rotation.
func axis(i int, lean float32) []float32 {
	v := make([]float32, 4)
	v[i] = 1
	if i != 0 {
		v[0] = lean
	}
	return v
}

// fakeIndex returns a fixed set of hits regardless of the query.
type fakeIndex struct {
	hits []driven.VectorHit
}

func (f *fakeIndex) Match(_ context.Context, _ []float32, limit int) ([]driven.VectorHit, error) {
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewSearchService(store, store, newFakeEmbedder(4))

	_, err := svc.Search(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_EmptyStore(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewSearchService(store, store, newFakeEmbedder(4))

	results, err := svc.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RoundTrip(t *testing.T) {
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	embedder.set("find me", []float32{1, 0, 0, 0})

	content := "0123456789abcdefghij"
	id := seedRecord(t, store, "https://example.com/a", content, []domain.VectorEntry{
		{Start: 0, End: 10, Embedding: []float32{1, 0.01, 0, 0}},
		{Start: 10, End: 20, Embedding: []float32{0, 0, 1, 0}},
	})

	svc := NewSearchService(store, store, embedder)
	results, err := svc.Search(context.Background(), "find me")
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, id, res.RecordID)
	assert.Equal(t, "https://example.com/a", res.URL)
	assert.Equal(t, "Title of https://example.com/a", res.Title)
	assert.Equal(t, 0, res.Start)
	assert.Equal(t, 10, res.End)
	assert.Equal(t, "0123456789", res.Snippet)
	assert.False(t, res.CreatedAt.IsZero())
}

func TestSearch_DeduplicatesPerRecord(t *testing.T) {
	// Two chunks of one record both match; only the closer one survives
	// and its distance represents the record.
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	embedder.set("q", []float32{1, 0, 0, 0})

	seedRecord(t, store, "https://example.com/long", "aaaaabbbbb", []domain.VectorEntry{
		{Start: 0, End: 5, Embedding: axis(1, 0.9)},  // close
		{Start: 5, End: 10, Embedding: axis(1, 0.2)}, // further
	})
	seedRecord(t, store, "https://example.com/other", "cccccddddd", []domain.VectorEntry{
		{Start: 0, End: 5, Embedding: axis(2, 0.5)},
	})

	svc := NewSearchService(store, store, embedder)
	results, err := svc.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The long record appears exactly once, represented by its best chunk.
	assert.Equal(t, "https://example.com/long", results[0].URL)
	assert.Equal(t, 0, results[0].Start)
	assert.Equal(t, 5, results[0].End)
	assert.Equal(t, "aaaaa", results[0].Snippet)

	assert.Equal(t, "https://example.com/other", results[1].URL)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestSearch_OrderedByDistance(t *testing.T) {
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	embedder.set("q", []float32{1, 0, 0, 0})

	leans := []float32{0.1, 0.9, 0.4, 0.7, 0.2}
	for i, lean := range leans {
		seedRecord(t, store, "https://example.com/p", "contents!!", []domain.VectorEntry{
			{Start: 0, End: 10, Embedding: axis(1+i%3, lean)},
		})
	}

	svc := NewSearchService(store, store, embedder)
	results, err := svc.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance,
			"distances must be non-decreasing")
	}
}

func TestSearch_TruncatesToResultLimit(t *testing.T) {
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	embedder.set("q", []float32{1, 0, 0, 0})

	for i := 0; i < 8; i++ {
		seedRecord(t, store, "https://example.com/p", "contents!!", []domain.VectorEntry{
			{Start: 0, End: 10, Embedding: axis(1+i%3, float32(i+1)/10)},
		})
	}

	svc := NewSearchService(store, store, embedder, WithResultLimit(3))
	results, err := svc.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_FewerRecordsThanLimit(t *testing.T) {
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	embedder.set("q", []float32{1, 0, 0, 0})

	seedRecord(t, store, "https://example.com/only", "contents!!", []domain.VectorEntry{
		{Start: 0, End: 10, Embedding: axis(1, 0.5)},
	})

	svc := NewSearchService(store, store, embedder, WithResultLimit(5))
	results, err := svc.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_MatchLimitBoundsGrouping(t *testing.T) {
	// With a match limit of 1, only the single nearest chunk's record
	// can be returned even though another record also matches.
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	embedder.set("q", []float32{1, 0, 0, 0})

	seedRecord(t, store, "https://example.com/near", "contents!!", []domain.VectorEntry{
		{Start: 0, End: 10, Embedding: axis(1, 0.9)},
	})
	seedRecord(t, store, "https://example.com/far", "contents!!", []domain.VectorEntry{
		{Start: 0, End: 10, Embedding: axis(2, 0.1)},
	})

	svc := NewSearchService(store, store, embedder, WithMatchLimit(1))
	results, err := svc.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/near", results[0].URL)
}

func TestSearch_BackfillsPastMissingRecords(t *testing.T) {
	// A vector hit whose record is gone is skipped and the next-nearest
	// record takes its place, so the result set stays at the limit.
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)

	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, seedRecord(t, store, fmt.Sprintf("https://example.com/%d", i), "contents!!", nil))
	}

	index := &fakeIndex{hits: []driven.VectorHit{
		{RecordID: 999, Start: 0, End: 10, Distance: 0.01}, // no such record
		{RecordID: ids[0], Start: 0, End: 10, Distance: 0.10},
		{RecordID: ids[1], Start: 0, End: 10, Distance: 0.20},
		{RecordID: ids[2], Start: 0, End: 10, Distance: 0.30},
	}}

	svc := NewSearchService(store, index, embedder, WithResultLimit(3))
	results, err := svc.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, ids[0], results[0].RecordID)
	assert.Equal(t, ids[1], results[1].RecordID)
	assert.Equal(t, ids[2], results[2].RecordID)
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	store := memory.NewStore(0)
	embedder := newFakeEmbedder(4)
	embedder.failOn = "bad query"

	svc := NewSearchService(store, store, embedder)
	_, err := svc.Search(context.Background(), "bad query")
	require.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}

func TestGroupByRecord_KeepsMinimumPerRecord(t *testing.T) {
	svc := NewSearchService(nil, nil, nil)

	hits := []driven.VectorHit{
		{RecordID: 1, Start: 0, End: 5, Distance: 0.10},
		{RecordID: 2, Start: 0, End: 5, Distance: 0.12},
		{RecordID: 1, Start: 5, End: 10, Distance: 0.05},
		{RecordID: 3, Start: 0, End: 5, Distance: 0.40},
		{RecordID: 2, Start: 5, End: 10, Distance: 0.50},
	}

	groups := svc.groupByRecord(hits)
	require.Len(t, groups, 3)

	assert.Equal(t, int64(1), groups[0].RecordID)
	assert.Equal(t, 0.05, groups[0].Distance)
	assert.Equal(t, 5, groups[0].Start, "winning chunk's offsets survive grouping")
	assert.Equal(t, int64(2), groups[1].RecordID)
	assert.Equal(t, 0.12, groups[1].Distance)
	assert.Equal(t, int64(3), groups[2].RecordID)
}

func TestSnippet_RuneBoundaries(t *testing.T) {
	// Window offsets count bytes; a cut through a multi-byte rune shrinks
	// inward rather than emitting a partial UTF-8 sequence.
	content := "aé b" // bytes: 'a', 0xC3, 0xA9, ' ', 'b'
	cases := []struct {
		name       string
		start, end int
		want       string
	}{
		{"whole content", 0, 5, "aé b"},
		{"end splits rune", 0, 2, "a"},
		{"start splits rune", 2, 5, " b"},
		{"clamped out of range", -3, 99, "aé b"},
		{"empty window", 3, 3, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, snippet(content, tc.start, tc.end))
		})
	}

	// Both cuts inside different runes of "ééé" leave the middle rune.
	assert.Equal(t, "é", snippet("ééé", 1, 5))
}
