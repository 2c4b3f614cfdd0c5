package driven

import "context"

// EmbeddingService maps a text string to a fixed-length vector.
// It is treated as an opaque, possibly slow capability and must be safe
// to call concurrently for independent inputs.
//
// Implementations may include:
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384).
	// This must match the vector index configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	// Used at startup and by the health endpoint.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
