package embedding

import (
	"context"

	"github.com/hyperjump/kiji/internal/vector"
)

// HashEmbedder is a deterministic bag-of-words embedder. Each word is hashed into one
// of dimensions buckets with a hash-derived sign, and the result is L2-normalized.
// Texts sharing words get positive dot products, which makes it usable offline and in tests.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Initialize is a no-op; there is no model to load.
func (e *HashEmbedder) Initialize(ctx context.Context) error {
	return nil
}

// Encode hashes texts in parallel. Empty text yields the zero vector.
func (e *HashEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	return EncodeParallel(ctx, texts, 0, func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return e.embed(text), nil
	})
}

func (e *HashEmbedder) embed(text string) []float32 {
	emb := make([]float32, e.dimensions)
	for _, word := range basicTokenize(text) {
		h := HashString(word)
		sign := float32(1)
		if h&1 == 1 {
			sign = -1
		}
		emb[(h>>1)%e.dimensions] += sign
	}
	vector.NormalizeL2(emb)
	return emb
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
