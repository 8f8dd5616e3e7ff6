// Package embedder generates vector embeddings for code chunks and search
// queries via an external embedding provider.
//
// The only production provider is Ollama, reached over HTTP:
//
//	emb := embedder.NewOllamaProvider(embedder.OllamaConfig{
//	    BaseURL: "http://localhost:11434",
//	    Model:   "nomic-embed-text",
//	    Cache:   embedder.NewCache(10000),
//	})
//	vector, err := emb.Embed(ctx, chunk.Content)
//
// Failures split into two kinds: *ProviderError when the endpoint answers
// with a non-success status (status code and body preserved), and errors
// wrapping ErrTransport when the endpoint cannot be reached at all.
// The provider never retries; retry policy belongs to the caller.
//
// An optional LRU cache keyed by content SHA-256 short-circuits repeat
// embeddings of identical text.
package embedder
