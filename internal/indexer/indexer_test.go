package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidindex/indexd/internal/daemon"
	"github.com/voidindex/indexd/internal/storage"
	"github.com/voidindex/indexd/pkg/types"
)

// stubEmbedder produces deterministic hash-based vectors and instruments
// in-flight call tracking for concurrency assertions
type stubEmbedder struct {
	dimension   int
	delay       time.Duration
	failOn      map[string]error
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newStubEmbedder(dimension int) *stubEmbedder {
	return &stubEmbedder{dimension: dimension, failOn: make(map[string]error)}
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	// Track the high-water mark of simultaneous calls
	for {
		peak := s.maxInFlight.Load()
		if current <= peak || s.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := s.failOn[text]; ok {
		return nil, err
	}

	hash := sha256.Sum256([]byte(text))
	vector := make([]float32, s.dimension)
	for i := range vector {
		idx := (i * 4) % 28
		val := binary.BigEndian.Uint32(hash[idx : idx+4])
		vector[i] = (float32(val)/float32(1<<32))*2 - 1
	}
	return vector, nil
}

func (s *stubEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (s *stubEmbedder) Model() string                         { return "stub" }
func (s *stubEmbedder) Close() error                          { return nil }

// newTestContext builds an IndexingContext over an in-memory store
func newTestContext(t *testing.T, emb *stubEmbedder) *daemon.IndexingContext {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &daemon.IndexingContext{
		WorkspacePath: t.TempDir(),
		Store:         store,
		Embedder:      emb,
		Log:           zerolog.Nop(),
	}
}

func makeChunks(path string, n int) []types.CodeChunk {
	chunks := make([]types.CodeChunk, n)
	for i := range chunks {
		chunks[i] = types.CodeChunk{
			Path:      path,
			Content:   fmt.Sprintf("fn chunk_%d() {}", i),
			StartLine: uint32(i*10 + 1),
			EndLine:   uint32(i*10 + 5),
			ChunkType: "function",
		}
	}
	return chunks
}

func TestIndexChunks(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes a batch", func(t *testing.T) {
		emb := newStubEmbedder(8)
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		result, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 5))
		require.NoError(t, err)
		assert.Equal(t, 5, result.Indexed)
		assert.Empty(t, result.Failed)

		n, err := ictx.Store.CountByPath(ctx, "a.rs")
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})

	t.Run("replace semantics", func(t *testing.T) {
		emb := newStubEmbedder(8)
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		_, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 2))
		require.NoError(t, err)

		replacement := []types.CodeChunk{{
			Path: "a.rs", Content: "fn replacement() {}", StartLine: 1, EndLine: 2, ChunkType: "function",
		}}
		result, err := idx.IndexChunks(ctx, ictx, "a.rs", replacement)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Indexed)

		n, err := ictx.Store.CountByPath(ctx, "a.rs")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "no leftovers from the previous version")
	})

	t.Run("empty batch still deletes", func(t *testing.T) {
		emb := newStubEmbedder(8)
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		_, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 3))
		require.NoError(t, err)

		result, err := idx.IndexChunks(ctx, ictx, "a.rs", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Indexed)
		assert.Empty(t, result.Failed)

		n, err := ictx.Store.CountByPath(ctx, "a.rs")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("per-chunk failures do not abort the batch", func(t *testing.T) {
		emb := newStubEmbedder(8)
		emb.failOn["fn chunk_2() {}"] = errors.New("model overloaded")
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		result, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 5))
		require.NoError(t, err)
		assert.Equal(t, 4, result.Indexed)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, 2, result.Failed[0].Index)
		assert.ErrorContains(t, result.Failed[0].Err, "model overloaded")

		n, err := ictx.Store.CountByPath(ctx, "a.rs")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("invalid chunk is reported, not fatal", func(t *testing.T) {
		emb := newStubEmbedder(8)
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		chunks := makeChunks("a.rs", 2)
		chunks[1].Content = ""

		result, err := idx.IndexChunks(ctx, ictx, "a.rs", chunks)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Indexed)
		require.Len(t, result.Failed, 1)
		assert.ErrorIs(t, result.Failed[0].Err, types.ErrEmptyContent)
	})

	t.Run("missing path", func(t *testing.T) {
		emb := newStubEmbedder(8)
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		_, err := idx.IndexChunks(ctx, ictx, "", nil)
		assert.Error(t, err)
	})

	t.Run("failed delete fails the call", func(t *testing.T) {
		emb := newStubEmbedder(8)
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		require.NoError(t, ictx.Store.Close())

		_, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 1))
		assert.ErrorIs(t, err, storage.ErrStorage)
	})
}

func TestIndexChunks_ConcurrencyBound(t *testing.T) {
	ctx := context.Background()

	t.Run("default cap of 10", func(t *testing.T) {
		emb := newStubEmbedder(8)
		emb.delay = 5 * time.Millisecond
		ictx := newTestContext(t, emb)
		idx := New(Config{})

		result, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 50))
		require.NoError(t, err)
		assert.Equal(t, 50, result.Indexed)
		assert.LessOrEqual(t, emb.maxInFlight.Load(), int32(DefaultConcurrency))
	})

	t.Run("configured cap", func(t *testing.T) {
		emb := newStubEmbedder(8)
		emb.delay = 5 * time.Millisecond
		ictx := newTestContext(t, emb)
		idx := New(Config{Concurrency: 3})

		result, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 20))
		require.NoError(t, err)
		assert.Equal(t, 20, result.Indexed)
		assert.LessOrEqual(t, emb.maxInFlight.Load(), int32(3))
	})
}

func TestIndexChunks_SamePathSerializes(t *testing.T) {
	ctx := context.Background()
	emb := newStubEmbedder(8)
	emb.delay = 2 * time.Millisecond
	ictx := newTestContext(t, emb)
	idx := New(Config{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 2))
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 3))
		assert.NoError(t, err)
	}()
	wg.Wait()

	// With the advisory lock the two delete-then-insert sequences cannot
	// interleave: the final record set is exactly one call's batch
	n, err := ictx.Store.CountByPath(ctx, "a.rs")
	require.NoError(t, err)
	assert.Contains(t, []int64{2, 3}, n)
}

func TestIndexChunks_Cancellation(t *testing.T) {
	emb := newStubEmbedder(8)
	emb.delay = 50 * time.Millisecond
	ictx := newTestContext(t, emb)
	idx := New(Config{Concurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := idx.IndexChunks(ctx, ictx, "a.rs", makeChunks("a.rs", 20))
	assert.ErrorIs(t, err, context.Canceled)
}
