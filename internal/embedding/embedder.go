// Package embedding maps text to fixed-length dense vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Embedder produces vector embeddings for text.
//
// Initialize loads the model once; later calls return the first result. Encode returns
// one vector per input, in input order, all of dimension Dimensions(). Encode is safe
// for concurrent use once Initialize has succeeded.
type Embedder interface {
	Initialize(ctx context.Context) error
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

var (
	// ErrModelLoad signals that the model could not be fetched or loaded.
	ErrModelLoad = errors.New("model load failed")
	// ErrEncoding signals input that is not valid text.
	ErrEncoding = errors.New("invalid text input")
	// ErrProvider signals a remote embedding provider failure.
	ErrProvider = errors.New("embedding provider error")
	// ErrDimension signals a provider returning vectors of the wrong dimension.
	ErrDimension = errors.New("embedding dimension mismatch")
)

// EncodingError wraps ErrEncoding with the position of the offending text.
type EncodingError struct {
	Index  int
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: text %d: %s", ErrEncoding.Error(), e.Index, e.Reason)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }

// ValidateTexts checks every input before any work is done so Encode stays all-or-nothing.
// Empty strings are valid; strings that are not UTF-8 are not.
func ValidateTexts(texts []string) error {
	for i, t := range texts {
		if !utf8.ValidString(t) {
			return &EncodingError{Index: i, Reason: "not valid UTF-8"}
		}
	}
	return nil
}

func checkDimensions(vectors [][]float32, want int) error {
	for i, v := range vectors {
		if len(v) != want {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimension, i, len(v), want)
		}
	}
	return nil
}
