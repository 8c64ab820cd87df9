package embedding

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names an embedding backend.
type Provider string

const (
	// ProviderONNX runs a local sentence-transformer. Requires CGO and onnxruntime.
	ProviderONNX Provider = "onnx"
	// ProviderOpenAI calls an OpenAI-compatible embeddings API.
	ProviderOpenAI Provider = "openai"
	// ProviderHash uses deterministic hashed bag-of-words vectors. No model needed.
	ProviderHash Provider = "hash"
)

// Options selects and configures a provider.
type Options struct {
	Provider   string
	Dimensions int
	CacheSize  int // 0 disables the LRU cache
	ONNX       ONNXOptions
	OpenAI     OpenAIOptions
}

// New creates the embedder named by opts.Provider, wrapped with metrics and,
// when CacheSize > 0, an LRU cache. The model is not loaded until Initialize.
// Supported providers: "onnx" (default), "openai", "hash".
func New(opts Options, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := Provider(opts.Provider)
	if provider == "" {
		provider = ProviderONNX
	}

	var inner Embedder
	switch provider {
	case ProviderONNX:
		onnxOpts := opts.ONNX
		if onnxOpts.Dimensions == 0 {
			onnxOpts.Dimensions = opts.Dimensions
		}
		e, err := NewONNXEmbedder(onnxOpts, logger)
		if err != nil {
			return nil, err
		}
		inner = e
	case ProviderOpenAI:
		openAIOpts := opts.OpenAI
		if openAIOpts.Dimensions == 0 {
			openAIOpts.Dimensions = opts.Dimensions
		}
		inner = NewOpenAIEmbedder(openAIOpts, logger)
	case ProviderHash:
		inner = NewHashEmbedder(opts.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, openai, hash)", opts.Provider)
	}

	var e Embedder = NewInstrumentedEmbedder(inner, string(provider), logger)
	if opts.CacheSize > 0 {
		e = NewCachedEmbedder(e, opts.CacheSize)
	}
	return e, nil
}
