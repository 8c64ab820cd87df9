package embedding

import (
	"errors"
	"fmt"
	"runtime"
)

// Pooling modes for ONNX model output.
const (
	// PoolingMean averages a [1, tokens, dim] hidden state over the attention mask.
	PoolingMean = "mean"
	// PoolingNone reads a [1, dim] output that is already a sentence embedding.
	PoolingNone = "none"
)

const (
	DefaultDimensions = 384
	DefaultOutputName = "last_hidden_state"
)

// ONNXOptions configures the ONNX embedder.
type ONNXOptions struct {
	ModelPath   string
	VocabPath   string
	LibraryPath string // onnxruntime shared library; empty uses the platform default
	OutputName  string
	Pooling     string
	Dimensions  int
	MaxTokens   int
	Workers     int
}

func (o ONNXOptions) withDefaults() (ONNXOptions, error) {
	if o.ModelPath == "" {
		return o, fmt.Errorf("%w: model path is required", ErrModelLoad)
	}
	if o.OutputName == "" {
		o.OutputName = DefaultOutputName
	}
	switch o.Pooling {
	case "":
		o.Pooling = PoolingMean
	case PoolingMean, PoolingNone:
	default:
		return o, fmt.Errorf("unknown pooling %q", o.Pooling)
	}
	if o.Dimensions <= 0 {
		o.Dimensions = DefaultDimensions
	}
	if o.MaxTokens < 2 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o, nil
}

var errNoCGO = errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
