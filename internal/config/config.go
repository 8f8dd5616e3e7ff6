package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces all daemon environment variables (INDEXD_*)
const envPrefix = "INDEXD"

// Config holds daemon-level settings. Every field has a default; the
// initialize RPC may override the Ollama URL, model, and storage path
// per workspace, and those overrides win over the environment.
type Config struct {
	OllamaURL        string        `split_words:"true" default:"http://localhost:11434"`
	OllamaModel      string        `split_words:"true" default:"nomic-embed-text"`
	DBFileName       string        `envconfig:"DB_FILE_NAME" default:"index.db"`
	EmbedConcurrency int           `split_words:"true" default:"10"`
	EmbedTimeout     time.Duration `split_words:"true" default:"60s"`
	CacheSize        int           `split_words:"true" default:"10000"`
	LogLevel         string        `split_words:"true" default:"info"`
}

// Load reads configuration from the environment, applying defaults for
// anything unset
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.EmbedConcurrency < 1 {
		return Config{}, fmt.Errorf("embed concurrency must be at least 1, got %d", cfg.EmbedConcurrency)
	}

	return cfg, nil
}
