package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingFailed indicates the embedding service rejected an input.
	// During ingestion this aborts the whole store operation; nothing is
	// persisted for the failed document.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrStorageFailed indicates the record store or vector index rejected
	// a read or write. The current operation fails without partial state.
	ErrStorageFailed = errors.New("storage failed")

	// ErrInvalidConfig indicates configuration that must be rejected at
	// startup, such as an overlap fraction outside [0, 1).
	ErrInvalidConfig = errors.New("invalid configuration")
)
