// Package mcp implements the Model Context Protocol (MCP) server for indexd.
//
// The server exposes four tools to editor extensions and AI coding assistants:
//   - initialize: Open a workspace, its vector store, and the embedding provider
//   - index_chunks: Embed and store a batch of code chunks for one file
//   - search: Retrieve the nearest indexed chunks for a natural language query
//   - get_status: Report initialization state, record count, and provider health
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with clients via standard input/output. All logging
// goes to standard error so the protocol stream stays clean.
//
// # Session Lifecycle
//
// Clients must call initialize before any other tool:
//
//	Request:
//	{
//	  "name": "initialize",
//	  "arguments": {
//	    "workspacePath": "/path/to/project",
//	    "ollamaUrl": "http://localhost:11434",
//	    "ollamaModel": "nomic-embed-text"
//	  }
//	}
//
// Calling initialize again replaces the active workspace. Chunks are then
// indexed per file, replacing anything previously stored for that file:
//
//	Request:
//	{
//	  "name": "index_chunks",
//	  "arguments": {
//	    "path": "src/parser.rs",
//	    "chunks": [
//	      {"content": "fn parse() {...}", "startLine": 10, "endLine": 24, "chunkType": "function"}
//	    ]
//	  }
//	}
//
// The search tool returns parallel chunks and scores arrays, ordered by
// ascending cosine distance.
package mcp
