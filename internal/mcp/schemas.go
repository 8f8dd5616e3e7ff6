package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// initializeTool returns the tool definition for initialize
func initializeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "initialize",
		Description: "Initialize the indexing daemon for a workspace, opening the vector store and connecting to the embedding provider",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"workspacePath": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the workspace root being indexed",
				},
				"ollamaUrl": map[string]interface{}{
					"type":        "string",
					"description": "Base URL of the Ollama server",
					"default":     "http://localhost:11434",
				},
				"ollamaModel": map[string]interface{}{
					"type":        "string",
					"description": "Embedding model name",
					"default":     "nomic-embed-text",
				},
				"dbPath": map[string]interface{}{
					"type":        "string",
					"description": "Path to the vector database file (defaults to <workspace>/.void/index.db)",
				},
			},
			Required: []string{"workspacePath"},
		},
	}
}

// indexChunksTool returns the tool definition for index_chunks
func indexChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_chunks",
		Description: "Embed and store a batch of code chunks for one file, replacing any previously indexed chunks for that file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative path of the source file the chunks came from",
				},
				"chunks": map[string]interface{}{
					"type":        "array",
					"description": "Code chunks extracted from the file",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"path": map[string]interface{}{
								"type":        "string",
								"description": "Source file path",
							},
							"content": map[string]interface{}{
								"type":        "string",
								"description": "Chunk text to embed",
							},
							"startLine": map[string]interface{}{
								"type":        "integer",
								"description": "First line of the chunk (1-based)",
							},
							"endLine": map[string]interface{}{
								"type":        "integer",
								"description": "Last line of the chunk (inclusive)",
							},
							"chunkType": map[string]interface{}{
								"type":        "string",
								"description": "Kind of code construct (function, struct, impl, module, other)",
							},
						},
						"required": []string{"content", "startLine", "endLine"},
					},
				},
			},
			Required: []string{"path", "chunks"},
		},
	}
}

// searchTool returns the tool definition for search
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search",
		Description: "Search indexed code chunks with a natural language query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report daemon state: initialization, indexed record count, and embedding provider health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
