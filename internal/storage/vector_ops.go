package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/voidindex/indexd/pkg/types"
)

// searchVector performs nearest-neighbor search over stored embeddings
func searchVector(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]types.SearchResult, error) {
	// Use SQL-side distance when the sqlite-vec extension is compiled in
	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, db, queryVector, limit)
	}
	// Fall back to Go-based computation for purego builds
	return searchVectorFallback(ctx, db, queryVector, limit)
}

// searchVectorOptimized pushes distance, ordering, and limit down to the
// sqlite-vec extension
func searchVectorOptimized(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]types.SearchResult, error) {
	queryBlob := serializeVector(queryVector)

	// vec_distance_cosine returns cosine distance: lower is more similar
	rows, err := db.QueryContext(ctx, `
		SELECT path, content, start_line, end_line, chunk_type,
		       vec_distance_cosine(vector, ?) AS distance
		FROM code_chunks
		ORDER BY distance ASC
		LIMIT ?`, queryBlob, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.SearchResult, 0, limit)
	for rows.Next() {
		var r types.SearchResult
		if err := rows.Scan(&r.Chunk.Path, &r.Chunk.Content, &r.Chunk.StartLine,
			&r.Chunk.EndLine, &r.Chunk.ChunkType, &r.Score); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return results, nil
}

// searchVectorFallback scans all stored vectors and computes cosine
// distance in Go. Fine for workspace-sized tables; the sqlite_vec build
// exists for anything larger.
func searchVectorFallback(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]types.SearchResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT path, content, start_line, end_line, chunk_type, vector
		FROM code_chunks`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]types.SearchResult, 0, 1024)
	for rows.Next() {
		var r types.SearchResult
		var vectorBlob []byte
		if err := rows.Scan(&r.Chunk.Path, &r.Chunk.Content,
			&r.Chunk.StartLine, &r.Chunk.EndLine,
			&r.Chunk.ChunkType, &vectorBlob); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			// The dimension invariant is enforced on insert; a stray row
			// would mean external tampering, so drop it from results
			continue
		}

		r.Score = cosineDistance(queryVector, vector)
		candidates = append(candidates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// Ascending distance, closest first. sort.SliceStable keeps the
	// engine-native (scan) order for ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score < candidates[j].Score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	return candidates[:limit:limit], nil
}

// cosineDistance computes 1 - cosine similarity; the result lies in [0, 2]
// with 0 meaning identical direction. A zero-magnitude vector has no
// direction, so its distance is defined as 1 (orthogonal).
func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return float32(1 - similarity)
}

// serializeVector encodes a float32 slice as a little-endian blob
func serializeVector(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// deserializeVector decodes a little-endian blob into a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}
