package embed

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/cache"
)

// CachedEmbedder serves repeated texts from a cache and sends only the
// misses to the wrapped embedder, in one request
type CachedEmbedder struct {
	next  Embedder
	store cache.Cache
	model string
	log   *zap.Logger
}

// NewCachedEmbedder wraps next. model scopes the cache keys.
func NewCachedEmbedder(next Embedder, store cache.Cache, model string, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{next: next, store: store, model: model, log: logger}
}

// Embed implements Embedder
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missTexts []string
	pending := make(map[string][]int)

	for i, text := range texts {
		if data, ok := c.store.Get(cache.Key(c.model, text)); ok {
			if v, err := cache.DecodeVector(data); err == nil {
				vectors[i] = v
				continue
			}
		}
		if idx, dup := pending[text]; dup {
			pending[text] = append(idx, i)
			continue
		}
		pending[text] = []int{i}
		missTexts = append(missTexts, text)
	}

	c.log.Debug("embedding cache lookup",
		zap.Int("texts", len(texts)),
		zap.Int("misses", len(missTexts)))

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if err := checkCount(missTexts, fresh); err != nil {
		return nil, err
	}

	for j, text := range missTexts {
		for _, i := range pending[text] {
			vectors[i] = fresh[j]
		}
		if err := c.store.Set(cache.Key(c.model, text), cache.EncodeVector(fresh[j]), 0); err != nil {
			c.log.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return vectors, nil
}
