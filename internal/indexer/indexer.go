package indexer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/voidindex/indexd/internal/daemon"
	"github.com/voidindex/indexd/internal/storage"
	"github.com/voidindex/indexd/pkg/types"
)

// DefaultConcurrency caps embed+insert tasks in flight per call
const DefaultConcurrency = 10

// Config contains configuration for the indexer
type Config struct {
	Concurrency int // Max concurrent embed+insert tasks (default: 10)
}

// ChunkFailure records one chunk that could not be embedded or stored
type ChunkFailure struct {
	Index     int // Position in the submitted batch
	StartLine uint32
	Err       error
}

// Result reports the outcome of one IndexChunks call: the number of
// chunks actually persisted and the per-chunk failures. Failures never
// abort the call; under-reporting them would silently degrade search.
type Result struct {
	Indexed int
	Failed  []ChunkFailure
}

// Indexer coordinates the reindex pipeline for a path: delete stale
// records, fan out embedding generation under a concurrency cap, insert
// results
type Indexer struct {
	locks       pathLocks
	concurrency int
}

// New creates a new Indexer instance
func New(cfg Config) *Indexer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Indexer{concurrency: cfg.Concurrency}
}

// IndexChunks replaces every record for path with fresh embeddings of
// chunks. The call fails outright only if the initial delete fails or ctx
// is canceled; per-chunk embedding and insert failures are logged,
// collected into the result, and do not stop sibling chunks.
//
// Reindexes of the same path serialize on an advisory per-path lock;
// different paths proceed concurrently.
func (idx *Indexer) IndexChunks(ctx context.Context, ictx *daemon.IndexingContext, path string, chunks []types.CodeChunk) (*Result, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}

	lock := idx.locks.get(path)
	lock.Lock()
	defer lock.Unlock()

	// Replace-on-reindex: drop the previous version of this path first.
	// Until the new inserts land the path has zero records; reindex is
	// deliberately not atomic.
	removed, err := ictx.Store.DeleteByPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("delete stale records: %w", err)
	}

	ictx.Log.Debug().
		Str("path", path).
		Int64("removed", removed).
		Int("chunks", len(chunks)).
		Msg("reindexing path")

	var (
		indexed   atomic.Int32
		mu        sync.Mutex // Protects failed
		failed    []ChunkFailure
		semaphore = make(chan struct{}, idx.concurrency)
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := range chunks {
		chunk := chunks[i]
		index := i

		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
				// Acquire permit
			}
			defer func() { <-semaphore }()

			if err := idx.indexChunk(gctx, ictx, path, &chunk); err != nil {
				ictx.Log.Warn().
					Err(err).
					Str("path", path).
					Uint32("start_line", chunk.StartLine).
					Msg("failed to index chunk")

				mu.Lock()
				failed = append(failed, ChunkFailure{
					Index:     index,
					StartLine: chunk.StartLine,
					Err:       err,
				})
				mu.Unlock()
				return nil // Best effort: one bad chunk never blocks the rest
			}

			indexed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Completion order is nondeterministic; report failures in batch order
	sort.Slice(failed, func(i, j int) bool { return failed[i].Index < failed[j].Index })

	ictx.Log.Info().
		Str("path", path).
		Int32("indexed", indexed.Load()).
		Int("failed", len(failed)).
		Msg("indexed chunks")

	return &Result{
		Indexed: int(indexed.Load()),
		Failed:  failed,
	}, nil
}

// indexChunk embeds one chunk and stores the resulting record
func (idx *Indexer) indexChunk(ctx context.Context, ictx *daemon.IndexingContext, path string, chunk *types.CodeChunk) error {
	if err := chunk.Validate(); err != nil {
		return err
	}

	vector, err := ictx.Embedder.Embed(ctx, chunk.Content)
	if err != nil {
		return fmt.Errorf("generate embedding: %w", err)
	}

	rec := &storage.IndexedRecord{
		Path:      path,
		Content:   chunk.Content,
		StartLine: chunk.StartLine,
		EndLine:   chunk.EndLine,
		ChunkType: chunk.ChunkType,
		Vector:    vector,
	}
	if err := ictx.Store.Insert(ctx, rec); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	return nil
}
