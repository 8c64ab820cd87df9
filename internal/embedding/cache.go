package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hyperjump/kiji/internal/metrics"
	"github.com/hyperjump/kiji/internal/vector"
)

// EmbeddingCache is a thread-safe LRU cache for embeddings keyed by text.
type EmbeddingCache struct {
	lru *lru.Cache[string, []float32]
}

// NewEmbeddingCache creates a new cache with the given capacity (minimum 1).
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	c, _ := lru.New[string, []float32](max(capacity, 1))
	return &EmbeddingCache{lru: c}
}

// Get returns the cached embedding for key if present.
func (c *EmbeddingCache) Get(key string) ([]float32, bool) {
	return c.lru.Get(key)
}

// Set stores the embedding for key, evicting the least recently used entry if at capacity.
func (c *EmbeddingCache) Set(key string, value []float32) {
	c.lru.Add(key, value)
}

// Len returns the number of cached entries.
func (c *EmbeddingCache) Len() int {
	return c.lru.Len()
}

// CachedEmbedder serves repeated texts from an LRU cache and sends only misses to the inner embedder.
// The candidate window is re-encoded on every query, so most texts hit after the first one.
type CachedEmbedder struct {
	inner Embedder
	cache *EmbeddingCache
}

// NewCachedEmbedder wraps inner with a cache of the given capacity.
func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: NewEmbeddingCache(capacity)}
}

// Initialize delegates to the inner embedder.
func (e *CachedEmbedder) Initialize(ctx context.Context) error {
	return e.inner.Initialize(ctx)
}

// Encode returns copies of cached vectors so callers cannot corrupt the cache.
func (e *CachedEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	missPos := make(map[string][]int)
	var misses []string
	for i, text := range texts {
		if v, ok := e.cache.Get(text); ok {
			out[i] = vector.Clone(v)
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			continue
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		if _, seen := missPos[text]; !seen {
			misses = append(misses, text)
		}
		missPos[text] = append(missPos[text], i)
	}
	if len(misses) == 0 {
		return out, nil
	}

	encoded, err := e.inner.Encode(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(encoded) != len(misses) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrProvider, len(encoded), len(misses))
	}
	for j, text := range misses {
		e.cache.Set(text, encoded[j])
		for _, i := range missPos[text] {
			out[i] = vector.Clone(encoded[j])
		}
	}
	return out, nil
}

// Dimensions returns the inner embedder's dimension.
func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close closes the inner embedder.
func (e *CachedEmbedder) Close() error {
	return e.inner.Close()
}
