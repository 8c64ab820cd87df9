//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"math"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/vector"
)

// Set KIJI_ONNX_MODEL (and optionally KIJI_ONNX_VOCAB, KIJI_ONNX_LIB) to run against a real model.
func newTestONNX(t *testing.T) *ONNXEmbedder {
	t.Helper()
	modelPath := os.Getenv("KIJI_ONNX_MODEL")
	if modelPath == "" {
		t.Skip("KIJI_ONNX_MODEL not set")
	}
	e, err := NewONNXEmbedder(ONNXOptions{
		ModelPath:   modelPath,
		VocabPath:   os.Getenv("KIJI_ONNX_VOCAB"),
		LibraryPath: os.Getenv("KIJI_ONNX_LIB"),
		Workers:     2,
	}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(context.Background()); err != nil {
		t.Skipf("onnxruntime unavailable: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestONNXEmbedder_Encode(t *testing.T) {
	e := newTestONNX(t)
	texts := []string{"Stocks rise after strong earnings", "Markets climb on earnings beat", "Heavy rain expected this weekend", ""}
	vecs, err := e.Encode(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("got %d vectors", len(vecs))
	}
	for i, v := range vecs {
		if len(v) != e.Dimensions() || !vector.IsFinite(v) {
			t.Fatalf("vector %d: dim %d finite %v", i, len(v), vector.IsFinite(v))
		}
		if n := vector.L2Norm(v); math.Abs(n-1) > 1e-3 {
			t.Errorf("vector %d norm = %v, want 1", i, n)
		}
	}
	if vector.Dot(vecs[0], vecs[1]) <= vector.Dot(vecs[0], vecs[2]) {
		t.Error("related headlines should score higher than unrelated ones")
	}

	again, err := e.Encode(context.Background(), texts[:1])
	if err != nil {
		t.Fatal(err)
	}
	for i := range again[0] {
		if math.Abs(float64(again[0][i]-vecs[0][i])) > 1e-5 {
			t.Fatal("encoding is not deterministic")
		}
	}
}

func TestONNXEmbedder_InvalidText(t *testing.T) {
	e, err := NewONNXEmbedder(ONNXOptions{ModelPath: "unused.onnx"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Encode(context.Background(), []string{"\xff"}); err == nil {
		t.Error("expected encoding error before model load")
	}
}

func TestONNXOptions_Defaults(t *testing.T) {
	opts, err := ONNXOptions{ModelPath: "m.onnx"}.withDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if opts.OutputName != DefaultOutputName || opts.Pooling != PoolingMean || opts.Dimensions != DefaultDimensions ||
		opts.MaxTokens != defaultMaxTokens || opts.Workers < 1 {
		t.Errorf("defaults = %+v", opts)
	}
	if _, err := (ONNXOptions{ModelPath: "m.onnx", Pooling: "max"}).withDefaults(); err == nil {
		t.Error("expected error for unknown pooling")
	}
}
