package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrTransport indicates the provider could not be reached at all:
	// connection refused, DNS failure, or request timeout.
	ErrTransport = errors.New("embedding provider unreachable")
)

// ProviderError is returned when the embedding provider answers with a
// non-success status. Body carries the response body verbatim so callers
// can surface the provider's own diagnostics.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider returned %d: %s", e.StatusCode, e.Body)
}

// Embedder converts text into a fixed-length embedding vector via an
// external provider
type Embedder interface {
	// Embed generates an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// HealthCheck probes provider reachability. It is idempotent, has no
	// side effects, and does not require embedding capability.
	HealthCheck(ctx context.Context) error

	// Model returns the model identifier sent with each request
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// Cache provides in-memory LRU caching of embedding vectors by content hash
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a new embedding cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000 // Default: cache 10k embeddings
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{
		cache: cache,
	}
}

// Get retrieves a deep copy of a vector from cache.
// Returns a copy to prevent caller mutations from affecting cached values.
func (c *Cache) Get(hash string) ([]float32, bool) {
	vector, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	vectorCopy := make([]float32, len(vector))
	copy(vectorCopy, vector)
	return vectorCopy, true
}

// Set stores a vector in cache with automatic LRU eviction
func (c *Cache) Set(hash string, vector []float32) {
	c.cache.Add(hash, vector)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
