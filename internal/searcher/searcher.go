package searcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/voidindex/indexd/internal/daemon"
	"github.com/voidindex/indexd/pkg/types"
)

// DefaultLimit is used when the caller omits a result limit
const DefaultLimit = 10

// ErrEmptyQuery is returned for a blank search query
var ErrEmptyQuery = errors.New("query cannot be empty")

// Search embeds the query string and returns the closest indexed chunks,
// ordered by ascending cosine distance. A limit of zero or less falls
// back to DefaultLimit.
//
// Unlike indexing, search has no partial degradation: an embedding
// failure fails the whole call.
func Search(ctx context.Context, ictx *daemon.IndexingContext, query string, limit int) ([]types.SearchResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	vector, err := ictx.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}

	results, err := ictx.Store.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("search vector store: %w", err)
	}

	ictx.Log.Debug().
		Str("query", query).
		Int("limit", limit).
		Int("results", len(results)).
		Msg("search completed")

	return results, nil
}
