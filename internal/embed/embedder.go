// Package embed turns sentences into vectors through a remote embedding model.
package embed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/cache"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/worker"
)

// Embedder maps texts to vectors, one per text, in input order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds embedding backend settings
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	Throttle worker.Throttle
}

// ConfigFromModel converts the file configuration
func ConfigFromModel(c model.EmbeddingConfig) Config {
	return Config{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout,
	}
}

// New creates the configured embedder, wrapped in the embedding cache when
// cacheCfg enables it
func New(cfg Config, cacheCfg model.CacheConfig, logger *zap.Logger) (Embedder, error) {
	if cfg.Throttle == nil {
		cfg.Throttle = worker.NoThrottle{}
	}

	var (
		e   Embedder
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		e, err = NewOpenAIEmbedder(cfg)
	case "ollama", "":
		e, err = NewOllamaEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if !cacheCfg.Enabled {
		return e, nil
	}
	store := cache.NewLayeredCache(cacheCfg.MemoryTTL, cacheCfg.Dir, cacheCfg.DiskTTL)
	return NewCachedEmbedder(e, store, cfg.Model, logger), nil
}

func checkCount(texts []string, vectors [][]float32) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return nil
}
