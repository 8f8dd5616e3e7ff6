package types

// SearchResult pairs an indexed chunk with its distance to the query vector.
// Score is the cosine distance reported by the vector engine: values lie in
// [0, 2] and smaller means more similar. Results are always ordered by
// ascending Score.
type SearchResult struct {
	Chunk CodeChunk
	Score float32
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.Chunk.Content == "" {
		return ErrEmptyContent
	}

	if sr.Score < 0 {
		return ErrInvalidScore
	}

	return nil
}
