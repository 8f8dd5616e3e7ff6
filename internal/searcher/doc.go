// Package searcher composes query embedding with nearest-neighbor search
// over the vector store. It is a thin orchestrator: the embedding client
// turns the query string into a vector, the store ranks chunks by cosine
// distance, and the results come back closest first.
package searcher
