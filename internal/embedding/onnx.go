//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/vector"
)

// ONNXEmbedder runs a sentence-transformer exported to ONNX (e.g. all-MiniLM-L6-v2).
// It requires CGO and the onnxruntime shared library.
//
// Each worker owns a session with pre-allocated tensors; Encode borrows sessions from a
// pool, so concurrent callers never share tensor memory.
type ONNXEmbedder struct {
	opts      ONNXOptions
	logger    *zap.Logger
	tokenizer Tokenizer
	sessions  chan *onnxSession
	all       []*onnxSession

	initOnce sync.Once
	initErr  error
}

type onnxSession struct {
	session             *ort.AdvancedSession
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
}

// NewONNXEmbedder validates opts. The model is loaded by Initialize.
func NewONNXEmbedder(opts ONNXOptions, logger *zap.Logger) (*ONNXEmbedder, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ONNXEmbedder{opts: opts, logger: logger}, nil
}

// Initialize loads the tokenizer and creates one session per worker.
// Failures wrap ErrModelLoad. Later calls return the first result.
func (e *ONNXEmbedder) Initialize(ctx context.Context) error {
	e.initOnce.Do(func() {
		e.initErr = e.load()
		if e.initErr != nil {
			e.destroySessions()
			e.initErr = fmt.Errorf("%w: %v", ErrModelLoad, e.initErr)
		}
	})
	return e.initErr
}

func (e *ONNXEmbedder) load() error {
	if e.opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(e.opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	if e.opts.VocabPath != "" {
		tok, err := LoadWordPieceTokenizer(e.opts.VocabPath)
		if err != nil {
			return err
		}
		e.tokenizer = tok
	} else {
		e.logger.Warn("no vocab configured, falling back to hash tokenizer; embeddings will not match the model's training")
		e.tokenizer = &SimpleTokenizer{}
	}

	e.sessions = make(chan *onnxSession, e.opts.Workers)
	for i := 0; i < e.opts.Workers; i++ {
		s, err := e.newSession()
		if err != nil {
			return err
		}
		e.all = append(e.all, s)
		e.sessions <- s
	}
	e.logger.Info("onnx model loaded",
		zap.String("model_path", e.opts.ModelPath),
		zap.String("output", e.opts.OutputName),
		zap.String("pooling", e.opts.Pooling),
		zap.Int("dimensions", e.opts.Dimensions),
		zap.Int("max_tokens", e.opts.MaxTokens),
		zap.Int("sessions", e.opts.Workers),
	)
	return nil
}

func (e *ONNXEmbedder) newSession() (*onnxSession, error) {
	maxTokens := int64(e.opts.MaxTokens)
	inputIDs, attentionMask, tokenTypeIDs := e.tokenizer.Tokenize("", e.opts.MaxTokens)

	s := &onnxSession{}
	var err error
	if s.inputIDsTensor, err = ort.NewTensor(ort.NewShape(1, maxTokens), inputIDs); err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	if s.attentionMaskTensor, err = ort.NewTensor(ort.NewShape(1, maxTokens), attentionMask); err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	if s.tokenTypeIDsTensor, err = ort.NewTensor(ort.NewShape(1, maxTokens), tokenTypeIDs); err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	outputShape := ort.NewShape(1, int64(e.opts.Dimensions))
	if e.opts.Pooling == PoolingMean {
		outputShape = ort.NewShape(1, maxTokens, int64(e.opts.Dimensions))
	}
	if s.outputTensor, err = ort.NewEmptyTensor[float32](outputShape); err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s.session, err = ort.NewAdvancedSession(
		e.opts.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{e.opts.OutputName},
		[]ort.ArbitraryTensor{s.inputIDsTensor, s.attentionMaskTensor, s.tokenTypeIDsTensor},
		[]ort.ArbitraryTensor{s.outputTensor},
		nil,
	)
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return s, nil
}

// Encode embeds texts in parallel, one session per in-flight text.
func (e *ONNXEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	return EncodeParallel(ctx, texts, e.opts.Workers, e.embed)
}

func (e *ONNXEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	var s *onnxSession
	select {
	case s = <-e.sessions:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { e.sessions <- s }()

	inputIDs, attentionMask, tokenTypeIDs := e.tokenizer.Tokenize(text, e.opts.MaxTokens)
	copy(s.inputIDsTensor.GetData(), inputIDs)
	copy(s.attentionMaskTensor.GetData(), attentionMask)
	copy(s.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outputData := s.outputTensor.GetData()
	var embedding []float32
	if e.opts.Pooling == PoolingMean {
		embedding = vector.MeanPool(outputData, attentionMask, e.opts.Dimensions)
	} else {
		embedding = vector.Clone(outputData[:e.opts.Dimensions])
	}
	vector.NormalizeL2(embedding)
	return embedding, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.opts.Dimensions
}

// Close destroys all sessions and tensors. In-flight Encode calls must have returned.
func (e *ONNXEmbedder) Close() error {
	e.destroySessions()
	return nil
}

func (e *ONNXEmbedder) destroySessions() {
	for _, s := range e.all {
		s.destroy()
	}
	e.all = nil
}

func (s *onnxSession) destroy() {
	if s.session != nil {
		_ = s.session.Destroy()
		s.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{s.inputIDsTensor, s.attentionMaskTensor, s.tokenTypeIDsTensor} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	s.inputIDsTensor, s.attentionMaskTensor, s.tokenTypeIDsTensor = nil, nil, nil
	if s.outputTensor != nil {
		_ = s.outputTensor.Destroy()
		s.outputTensor = nil
	}
}
