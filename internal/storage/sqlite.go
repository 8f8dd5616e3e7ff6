package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/voidindex/indexd/pkg/types"
)

// VectorStore persists indexed chunks in an embedded SQLite database and
// answers nearest-neighbor queries over their embeddings
type VectorStore struct {
	db *sql.DB
}

// schemaSQL creates the chunk table and the one-row meta table that pins
// the vector dimension once the first record lands
const schemaSQL = `
CREATE TABLE IF NOT EXISTS code_chunks (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    content TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    chunk_type TEXT NOT NULL,
    vector BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_code_chunks_path ON code_chunks(path);

CREATE TABLE IF NOT EXISTS code_chunks_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    dimension INTEGER NOT NULL
);
`

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open opens or creates the vector store at dbPath. A store that has never
// seen an insert holds an empty table; searching it yields no results
// rather than an error.
func Open(dbPath string) (*VectorStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &VectorStore{db: db}, nil
}

// Close closes the database connection
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// rowQuerier is the subset of *sql.DB and *sql.Tx needed for single-row reads
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// dimension returns the established vector dimension, or 0 when no record
// has ever been inserted
func dimension(ctx context.Context, q rowQuerier) (int, error) {
	var dim int
	err := q.QueryRowContext(ctx, "SELECT dimension FROM code_chunks_meta WHERE id = 1").Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return dim, nil
}

// Insert appends one record. The first successful insert establishes the
// table's vector dimension; later inserts whose vector length disagrees
// fail with *DimensionError and leave the table unchanged.
func (s *VectorStore) Insert(ctx context.Context, rec *IndexedRecord) error {
	if len(rec.Vector) == 0 {
		return ErrEmptyVector
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	dim, err := dimension(ctx, tx)
	if err != nil {
		return err
	}

	switch {
	case dim == 0:
		// Schema-on-first-write: pin the dimension now
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO code_chunks_meta (id, dimension) VALUES (1, ?)", len(rec.Vector)); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
	case dim != len(rec.Vector):
		return &DimensionError{Want: dim, Got: len(rec.Vector)}
	}

	rec.ID = uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO code_chunks (id, path, content, start_line, end_line, chunk_type, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Path, rec.Content, rec.StartLine, rec.EndLine, rec.ChunkType,
		serializeVector(rec.Vector)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// DeleteByPath removes every record whose path exactly equals path. The
// filter is always parameterized, never concatenated, so quote characters
// in the path cannot break out of the predicate. Deleting a path with no
// records is a no-op, not an error.
func (s *VectorStore) DeleteByPath(ctx context.Context, path string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM code_chunks WHERE path = ?", path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return removed, nil
}

// Search returns up to limit records ordered by cosine distance to
// queryVector, ascending (closest first). Every result's Score is the
// engine-reported distance. An empty table yields an empty result set.
func (s *VectorStore) Search(ctx context.Context, queryVector []float32, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if len(queryVector) == 0 {
		return nil, ErrEmptyVector
	}

	dim, err := dimension(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		// No record has ever been inserted
		return []types.SearchResult{}, nil
	}
	if dim != len(queryVector) {
		return nil, &DimensionError{Want: dim, Got: len(queryVector)}
	}

	return searchVector(ctx, s.db, queryVector, limit)
}

// Count reports the total number of indexed records
func (s *VectorStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM code_chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return n, nil
}

// CountByPath reports the number of records stored for one path
func (s *VectorStore) CountByPath(ctx context.Context, path string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM code_chunks WHERE path = ?", path).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return n, nil
}
