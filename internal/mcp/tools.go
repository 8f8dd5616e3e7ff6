package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/voidindex/indexd/internal/daemon"
	"github.com/voidindex/indexd/internal/searcher"
	"github.com/voidindex/indexd/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeNotInitialized = -32001 // initialize has not been called yet
	ErrorCodeEmptyQuery     = -32002 // Query parameter is empty
)

// handleInitialize handles the initialize tool invocation
func (s *Server) handleInitialize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	workspacePath, ok := args["workspacePath"].(string)
	if !ok || workspacePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "workspacePath parameter is required", map[string]interface{}{
			"param":  "workspacePath",
			"reason": "missing or empty",
		})
	}

	params := daemon.InitializeParams{
		WorkspacePath: workspacePath,
		OllamaURL:     getStringDefault(args, "ollamaUrl", ""),
		OllamaModel:   getStringDefault(args, "ollamaModel", ""),
		DBPath:        getStringDefault(args, "dbPath", ""),
	}

	ictx, err := daemon.Initialize(s.cell, s.cfg, params, s.log)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "initialization failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.log.Info().
		Str("workspace", ictx.WorkspacePath).
		Str("model", ictx.Embedder.Model()).
		Msg("daemon initialized")

	response := map[string]interface{}{
		"status": "initialized",
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexChunks handles the index_chunks tool invocation
func (s *Server) handleIndexChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	rawChunks, ok := args["chunks"].([]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "chunks parameter must be an array", map[string]interface{}{
			"param":  "chunks",
			"reason": "missing or not an array",
		})
	}

	chunks, err := decodeChunks(rawChunks)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "malformed chunk", map[string]interface{}{
			"param":  "chunks",
			"reason": err.Error(),
		})
	}

	ictx, err := s.cell.Current()
	if err != nil {
		return nil, newMCPError(ErrorCodeNotInitialized, "daemon not initialized", map[string]interface{}{
			"reason": "call initialize before index_chunks",
		})
	}

	result, err := s.indexer.IndexChunks(ctx, ictx, path, chunks)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": result.Indexed,
	}
	if len(result.Failed) > 0 {
		failures := make([]map[string]interface{}, 0, len(result.Failed))
		for _, f := range result.Failed {
			failures = append(failures, map[string]interface{}{
				"index":     f.Index,
				"startLine": f.StartLine,
				"error":     f.Err.Error(),
			})
		}
		response["failed"] = failures
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearch handles the search tool invocation
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	ictx, err := s.cell.Current()
	if err != nil {
		return nil, newMCPError(ErrorCodeNotInitialized, "daemon not initialized", map[string]interface{}{
			"reason": "call initialize before search",
		})
	}

	results, err := searcher.Search(ctx, ictx, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunks := make([]types.CodeChunk, 0, len(results))
	scores := make([]float32, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Chunk)
		scores = append(scores, r.Score)
	}

	response := map[string]interface{}{
		"chunks": chunks,
		"scores": scores,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ictx, err := s.cell.Current()
	if errors.Is(err, daemon.ErrNotInitialized) {
		response := map[string]interface{}{
			"initialized": false,
			"message":     "Daemon not initialized. Use the initialize tool to open a workspace.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	count, err := ictx.Store.Count(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count indexed records", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"initialized": true,
		"workspace":   ictx.WorkspacePath,
		"model":       ictx.Embedder.Model(),
		"records":     count,
	}

	if herr := ictx.Embedder.HealthCheck(ctx); herr != nil {
		response["ollamaReachable"] = false
		response["ollamaError"] = herr.Error()
	} else {
		response["ollamaReachable"] = true
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// MCPError represents a JSON-RPC style error with code and optional data
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// decodeChunks converts loosely typed tool arguments into code chunks.
// Structural problems (wrong types, non-object elements) are reported here;
// semantic validation happens per chunk during indexing.
func decodeChunks(raw []interface{}) ([]types.CodeChunk, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var chunks []types.CodeChunk
	if err := json.Unmarshal(encoded, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// formatJSON formats a response map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an int parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}
