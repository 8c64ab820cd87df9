//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct {
	opts ONNXOptions
}

// NewONNXEmbedder validates opts; Initialize always fails without CGO.
func NewONNXEmbedder(opts ONNXOptions, _ *zap.Logger) (*ONNXEmbedder, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &ONNXEmbedder{opts: opts}, nil
}

func (e *ONNXEmbedder) Initialize(context.Context) error {
	return fmt.Errorf("%w: %v", ErrModelLoad, errNoCGO)
}

func (e *ONNXEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	return nil, e.Initialize(ctx)
}

func (e *ONNXEmbedder) Dimensions() int { return e.opts.Dimensions }

func (e *ONNXEmbedder) Close() error { return nil }
