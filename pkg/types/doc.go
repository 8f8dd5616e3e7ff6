// Package types provides shared type definitions for the indexd daemon.
//
// This package defines the wire-level domain types exchanged between the
// editor integration and the daemon: code chunks and search results.
//
// CodeChunk represents a pre-computed span of source code with location
// metadata and a semantic classification:
//
//	chunk := types.CodeChunk{
//	    Path:      "src/auth.rs",
//	    Content:   "fn login(user: &str) -> Result<Session>",
//	    StartLine: 10,
//	    EndLine:   24,
//	    ChunkType: "function",
//	}
//
// SearchResult pairs a stored chunk with the cosine distance between its
// embedding and the query embedding. Distances ascend: the closest match
// comes first and carries the smallest score.
package types
