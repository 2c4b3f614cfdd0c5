package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ferndale-labs/marque/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/ports/driven"
	"github.com/ferndale-labs/marque/internal/vectormath"
)

// Ensure Store implements both storage ports.
var (
	_ driven.RecordStore = (*Store)(nil)
	_ driven.VectorIndex = (*Store)(nil)
)

// Store is the SQLite-backed record store and vector index.
type Store struct {
	db   *sql.DB
	path string
	dim  int
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.marque/data/marque.db.
// dim is the embedding dimensionality; every stored vector must match it.
func NewStore(dataDir string, dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: embedding dimensions %d, must be positive", domain.ErrInvalidConfig, dim)
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".marque", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "marque.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		dim:  dim,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRecord inserts the record and all of its vector entries in a
// single transaction. The record ID assigned by SQLite is written back
// to rec.ID and returned. On any failure the transaction rolls back and
// nothing becomes visible.
func (s *Store) SaveRecord(ctx context.Context, rec *domain.Record, entries []domain.VectorEntry) (int64, error) {
	for _, e := range entries {
		if len(e.Embedding) != s.dim {
			return 0, fmt.Errorf("%w: vector entry [%d:%d) has %d dimensions, store expects %d",
				domain.ErrInvalidInput, e.Start, e.End, len(e.Embedding), s.dim)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO records (created_at, url, title, content)
		VALUES (?, ?, ?, ?)
	`, rec.CreatedAt, rec.URL, rec.Title, rec.Content)
	if err != nil {
		return 0, fmt.Errorf("inserting record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting record id: %w", err)
	}

	for i := range entries {
		entries[i].RecordID = id
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vectors (record_id, start_offset, end_offset, embedding)
			VALUES (?, ?, ?, ?)
		`, id, entries[i].Start, entries[i].End, encodeEmbedding(entries[i].Embedding))
		if err != nil {
			return 0, fmt.Errorf("inserting vector entry [%d:%d): %w", entries[i].Start, entries[i].End, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing record: %w", err)
	}

	rec.ID = id
	return id, nil
}

// GetRecord retrieves a record by ID.
func (s *Store) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT record_id, created_at, url, title, content
		FROM records
		WHERE record_id = ?
	`, id)

	var rec domain.Record
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.URL, &rec.Title, &rec.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	return &rec, nil
}

// Match performs a flat cosine-distance scan over every stored vector
// and returns up to limit hits ordered by ascending distance. Entries
// whose dimensionality does not match the query, and degenerate
// zero-magnitude vectors, are skipped rather than ranked.
func (s *Store) Match(ctx context.Context, query []float32, limit int) ([]driven.VectorHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, start_offset, end_offset, embedding
		FROM vectors
		ORDER BY record_id, start_offset
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var (
			hit  driven.VectorHit
			blob []byte
		)
		if err := rows.Scan(&hit.RecordID, &hit.Start, &hit.End, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector entry: %w", err)
		}

		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("record %d entry [%d:%d): %w", hit.RecordID, hit.Start, hit.End, err)
		}

		dist, ok := vectormath.CosineDistance(query, vec)
		if !ok {
			continue
		}
		hit.Distance = dist
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, nil
}
