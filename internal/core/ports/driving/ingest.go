package driving

import "context"

// Capture is a page submitted by the capture agent.
type Capture struct {
	// URL is the page address. Required.
	URL string

	// Title is the page title. May be empty.
	Title string

	// Content is the extracted readable text. May be empty, in which
	// case the record is stored without vector entries and is never
	// reachable by search.
	Content string
}

// Ingestor stores captured pages.
type Ingestor interface {
	// Store chunks and embeds the capture's content and persists the
	// record with all of its vector entries atomically. It returns the
	// assigned record ID. If embedding fails for any chunk, nothing is
	// persisted.
	Store(ctx context.Context, capture Capture) (int64, error)
}
