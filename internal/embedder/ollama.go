package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOllamaURL is the standard local Ollama endpoint
	DefaultOllamaURL = "http://localhost:11434"
	// DefaultOllamaModel is the embedding model used when none is configured
	DefaultOllamaModel = "nomic-embed-text"
	// DefaultTimeout bounds a single embedding request
	DefaultTimeout = 60 * time.Second
)

// OllamaConfig configures an OllamaProvider
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Cache   *Cache // Optional; nil disables caching
}

// OllamaProvider implements Embedder using Ollama's HTTP API
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	cache      *Cache
}

// Verify interface implementation at compile time
var _ Embedder = (*OllamaProvider)(nil)

// NewOllamaProvider creates a new Ollama embedder
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &OllamaProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: cfg.Cache,
	}
}

// embedRequest is the Ollama embeddings request body
type embedRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

// embedResponse is the Ollama embeddings response body
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates an embedding for the given text
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if o.cache != nil {
		if vector, ok := o.cache.Get(hash); ok {
			return vector, nil
		}
	}

	body, err := json.Marshal(embedRequest{
		Prompt: text,
		Model:  o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := o.baseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	var apiResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Embedding) == 0 {
		return nil, fmt.Errorf("provider returned no embedding for model %s", o.model)
	}

	if o.cache != nil {
		o.cache.Set(hash, apiResp.Embedding)
	}

	return apiResp.Embedding, nil
}

// HealthCheck probes the provider's metadata endpoint. It surfaces the
// same failure kinds as Embed but never generates an embedding.
func (o *OllamaProvider) HealthCheck(ctx context.Context) error {
	url := o.baseURL + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Model returns the configured model identifier
func (o *OllamaProvider) Model() string {
	return o.model
}

// Close releases idle connections
func (o *OllamaProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
