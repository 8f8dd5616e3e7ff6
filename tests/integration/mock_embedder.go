package integration

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/voidindex/indexd/internal/embedder"
)

var _ embedder.Embedder = (*MockEmbedder)(nil)

// MockEmbedder provides a fake embedder for testing.
// It generates deterministic vectors based on text hash, so identical texts
// always embed to identical vectors.
type MockEmbedder struct {
	dimension int
	model     string
	failTexts map[string]error
	calls     atomic.Int64
}

// NewMockEmbedder creates a new mock embedder
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{
		dimension: dimension,
		model:     "mock-v1",
		failTexts: make(map[string]error),
	}
}

// FailOn makes subsequent Embed calls for text return err.
func (m *MockEmbedder) FailOn(text string, err error) {
	m.failTexts[text] = err
}

// Calls returns the number of Embed invocations so far.
func (m *MockEmbedder) Calls() int64 {
	return m.calls.Load()
}

// Embed generates a deterministic fake embedding
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)

	if err, ok := m.failTexts[text]; ok {
		return nil, err
	}

	// Generate deterministic vector from text hash
	hash := sha256.Sum256([]byte(text))
	vector := make([]float32, m.dimension)

	// Use hash bytes to generate pseudo-random but deterministic floats
	for i := 0; i < m.dimension; i++ {
		idx := (i * 4) % 28
		val := binary.BigEndian.Uint32(hash[idx : idx+4])
		// Normalize to [-1, 1]
		vector[i] = (float32(val)/float32(1<<32))*2 - 1
	}

	// Normalize vector to unit length
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		magnitude := float32(1.0 / math.Sqrt(sum))
		for i := range vector {
			vector[i] *= magnitude
		}
	}

	return vector, nil
}

// HealthCheck always reports the mock as reachable
func (m *MockEmbedder) HealthCheck(ctx context.Context) error {
	return nil
}

// Model returns the mock model name
func (m *MockEmbedder) Model() string {
	return m.model
}

// Close is a no-op for the mock
func (m *MockEmbedder) Close() error {
	return nil
}
