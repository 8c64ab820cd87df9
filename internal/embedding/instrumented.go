package embedding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/metrics"
)

// InstrumentedEmbedder records Prometheus metrics and debug logs around another Embedder.
type InstrumentedEmbedder struct {
	inner    Embedder
	provider string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner; provider labels the metrics.
func NewInstrumentedEmbedder(inner Embedder, provider string, logger *zap.Logger) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{inner: inner, provider: provider, logger: logger}
}

func (e *InstrumentedEmbedder) Initialize(ctx context.Context) error {
	start := time.Now()
	if err := e.inner.Initialize(ctx); err != nil {
		e.logger.Error("embedder initialization failed", zap.String("provider", e.provider), zap.Error(err))
		return err
	}
	e.logger.Debug("embedder initialized", zap.String("provider", e.provider), zap.Duration("took", time.Since(start)))
	return nil
}

func (e *InstrumentedEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := e.inner.Encode(ctx, texts)
	took := time.Since(start)

	if err != nil {
		metrics.EncodeRequestsTotal.WithLabelValues(e.provider, "error").Inc()
		e.logger.Debug("encode failed", zap.String("provider", e.provider), zap.Int("texts", len(texts)), zap.Error(err))
		return nil, err
	}
	metrics.EncodeRequestsTotal.WithLabelValues(e.provider, "success").Inc()
	metrics.EncodeDuration.WithLabelValues(e.provider).Observe(took.Seconds())
	metrics.EncodeTextsTotal.WithLabelValues(e.provider).Add(float64(len(texts)))
	e.logger.Debug("encoded", zap.String("provider", e.provider), zap.Int("texts", len(texts)), zap.Duration("took", took))
	return vectors, nil
}

func (e *InstrumentedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *InstrumentedEmbedder) Close() error {
	return e.inner.Close()
}
