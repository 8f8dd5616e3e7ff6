package storage

import (
	"errors"
	"fmt"
)

// TableName is the fixed logical table holding indexed chunks
const TableName = "code_chunks"

var (
	// ErrStorage wraps underlying database I/O failures
	ErrStorage = errors.New("vector store failure")
	// ErrInvalidLimit is returned for non-positive search limits
	ErrInvalidLimit = errors.New("search limit must be positive")
	// ErrEmptyVector is returned when a record or query carries no vector
	ErrEmptyVector = errors.New("vector cannot be empty")
)

// DimensionError reports a vector whose length disagrees with the
// dimension established by the table's first insert
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: table dimension is %d, got %d", e.Want, e.Got)
}

// IndexedRecord is one stored chunk with its embedding. The store assigns
// ID at insert time; IDs are never reused, including across replacements
// of the same path.
type IndexedRecord struct {
	ID        string
	Path      string
	Content   string
	StartLine uint32
	EndLine   uint32
	ChunkType string
	Vector    []float32
}
