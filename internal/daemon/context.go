package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voidindex/indexd/internal/config"
	"github.com/voidindex/indexd/internal/embedder"
	"github.com/voidindex/indexd/internal/storage"
)

// DefaultStorageDir is the workspace subdirectory holding the index
const DefaultStorageDir = ".void"

var (
	// ErrNotInitialized is returned when indexing or search is attempted
	// before a successful initialize call
	ErrNotInitialized = errors.New("not initialized")
	// ErrInitialization wraps the first failure during context construction
	ErrInitialization = errors.New("initialization failed")
)

// IndexingContext bundles the live handles for one workspace: the vector
// store, the embedding client, and the workspace root. It is immutable
// once constructed; re-initializing builds a new context.
type IndexingContext struct {
	WorkspacePath string
	Store         *storage.VectorStore
	Embedder      embedder.Embedder
	Log           zerolog.Logger
}

// ContextCell is the process-wide slot holding the current IndexingContext.
// The mutex guards only reading and replacing the pointer, never the
// operations performed through it: a caller that obtained a context keeps
// using its handles even if a later initialize swaps in a replacement.
//
// Consequently two concurrent reindex calls racing an initialize may write
// through different store handles; callers that need stronger consistency
// must serialize initialize against in-flight work.
type ContextCell struct {
	mu      sync.RWMutex
	current *IndexingContext
}

// Current returns the live context, or ErrNotInitialized before the first
// successful initialize
func (c *ContextCell) Current() (*IndexingContext, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, ErrNotInitialized
	}
	return c.current, nil
}

// Swap replaces the whole context. The previous context's handles are
// simply dropped; no drain or close is performed, since in-flight calls
// may still be using them.
func (c *ContextCell) Swap(next *IndexingContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = next
}

// InitializeParams are the per-workspace overrides accepted by the
// initialize RPC. Empty fields fall back to daemon configuration.
type InitializeParams struct {
	WorkspacePath string
	OllamaURL     string
	OllamaModel   string
	DBPath        string
}

// Initialize constructs a fresh IndexingContext and swaps it into the
// cell. Any failure leaves the previous context in place and wraps
// ErrInitialization around the first underlying error.
func Initialize(cell *ContextCell, cfg config.Config, params InitializeParams, log zerolog.Logger) (*IndexingContext, error) {
	if params.WorkspacePath == "" {
		return nil, fmt.Errorf("%w: workspace path is required", ErrInitialization)
	}

	ollamaURL := params.OllamaURL
	if ollamaURL == "" {
		ollamaURL = cfg.OllamaURL
	}
	ollamaModel := params.OllamaModel
	if ollamaModel == "" {
		ollamaModel = cfg.OllamaModel
	}
	dbPath := params.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(params.WorkspacePath, DefaultStorageDir, cfg.DBFileName)
	}

	log.Info().
		Str("workspace", params.WorkspacePath).
		Str("ollama_url", ollamaURL).
		Str("model", ollamaModel).
		Str("db_path", dbPath).
		Msg("initializing index daemon")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create storage directory: %v", ErrInitialization, err)
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open vector store: %v", ErrInitialization, err)
	}

	emb := embedder.NewOllamaProvider(embedder.OllamaConfig{
		BaseURL: ollamaURL,
		Model:   ollamaModel,
		Timeout: cfg.EmbedTimeout,
		Cache:   embedder.NewCache(cfg.CacheSize),
	})

	ictx := &IndexingContext{
		WorkspacePath: params.WorkspacePath,
		Store:         store,
		Embedder:      emb,
		Log:           log.With().Str("workspace", params.WorkspacePath).Logger(),
	}
	cell.Swap(ictx)

	return ictx, nil
}
