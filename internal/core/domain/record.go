package domain

import "time"

// Record is a captured page stored by the ingestion pipeline.
// Records are written exactly once and never updated; Content is the
// source of truth for snippet extraction, so the vector entries derived
// from it stay valid for the lifetime of the record.
type Record struct {
	// ID is assigned by the record store on insert.
	ID int64

	// URL is the address the page was captured from.
	URL string

	// Title is the page title supplied by the capture agent.
	Title string

	// Content is the extracted readable text of the page.
	Content string

	// CreatedAt is when the record was stored.
	CreatedAt time.Time
}

// Window is a half-open [Start, End) offset range into a record's content.
type Window struct {
	Start int
	End   int
}

// VectorEntry pairs one content window with its embedding vector.
// All entries for a record are persisted atomically with the record itself;
// no entry exists without a parent record and no window text is stored
// separately from the offsets.
type VectorEntry struct {
	// RecordID is the owning record. Zero until the store assigns it.
	RecordID int64

	// Start and End are the chunk's offsets into the record content.
	Start int
	End   int

	// Embedding is the chunk's vector, fixed dimensionality per deployment.
	Embedding []float32
}
