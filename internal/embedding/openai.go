package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultOpenAIModel = "text-embedding-3-small"
	openAIBatchSize    = 96
)

// OpenAIOptions configures an OpenAI-compatible embedding endpoint.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string // empty uses api.openai.com
	Model      string
	Dimensions int
}

// OpenAIEmbedder encodes texts through an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// NewOpenAIEmbedder creates the client. No request is made until Initialize.
func NewOpenAIEmbedder(opts OpenAIOptions, logger *zap.Logger) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientCfg.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = DefaultDimensions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(opts.Model),
		dimensions: opts.Dimensions,
		logger:     logger,
	}
}

// Initialize verifies API availability via ListModels.
func (e *OpenAIEmbedder) Initialize(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: list models: %v", ErrModelLoad, parseAPIError(err))
	}
	e.logger.Info("openai embedder ready", zap.String("model", string(e.model)), zap.Int("dimensions", e.dimensions))
	return nil
}

// Encode sends texts in batches and returns vectors in input order.
func (e *OpenAIEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += openAIBatchSize {
		end := min(start+openAIBatchSize, len(texts))
		batch, err := e.encodeBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("encode texts %d-%d: %w", start, end-1, err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) encodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	input := make([]string, len(texts))
	for i, t := range texts {
		// The API rejects empty strings.
		if t == "" {
			t = " "
		}
		input[i] = t
	}
	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     e.dimensions,
	}
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, parseAPIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts: %w", len(resp.Data), len(texts), ErrProvider)
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if d.Index != i {
			return nil, fmt.Errorf("embedding indices are not 0..%d (position %d has index %d): %w", len(texts)-1, i, d.Index, ErrProvider)
		}
		vectors[i] = d.Embedding
	}
	if err := checkDimensions(vectors, e.dimensions); err != nil {
		return nil, err
	}
	e.logger.Debug("openai batch encoded",
		zap.Int("texts", len(texts)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
	)
	return vectors, nil
}

// Dimensions returns the requested embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

// parseAPIError extracts a readable message from the API response and wraps ErrProvider.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, detail, ErrProvider)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, ErrProvider)
	}

	return fmt.Errorf("embedding request failed: %v: %w", err, ErrProvider)
}

// extractDetail reads the "detail" field some OpenAI-compatible servers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
