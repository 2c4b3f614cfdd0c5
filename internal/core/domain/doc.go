// Package domain contains the core types for marque: stored page records,
// the vector entries derived from their content, and search results.
// It has no dependencies on adapters or infrastructure.
package domain
