// Package sqlite provides durable storage for records and their vector
// entries on a single SQLite database file. It implements both the
// RecordStore and VectorIndex ports so that a record and its vectors
// commit in one transaction and a concurrent search can never observe a
// partially ingested document.
package sqlite
