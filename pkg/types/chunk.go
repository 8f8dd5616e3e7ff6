package types

// ChunkType classifies the semantic kind of a code chunk
type ChunkType string

const (
	ChunkFunction ChunkType = "function"
	ChunkMethod   ChunkType = "method"
	ChunkClass    ChunkType = "class"
	ChunkModule   ChunkType = "module"
	ChunkOther    ChunkType = "other"
)

// CodeChunk is a caller-supplied span of source code with location metadata.
// Chunks arrive pre-computed over the wire; the daemon never parses or
// splits source itself. JSON keys match the editor-side protocol.
type CodeChunk struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	StartLine uint32 `json:"startLine"`
	EndLine   uint32 `json:"endLine"`
	ChunkType string `json:"chunkType"` // function, class, method, etc.
}

// Validate checks that the chunk is well formed before it enters the
// indexing pipeline
func (c *CodeChunk) Validate() error {
	if c.Content == "" {
		return ErrEmptyContent
	}

	if c.StartLine > c.EndLine {
		return ErrInvalidLineRange
	}

	return nil
}
