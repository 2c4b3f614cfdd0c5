// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the record store, the vector index and
// the embedding service. The core services depend only on these
// contracts, never on concrete adapters.
package driven
