package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch signals query and candidate vectors of different dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidArgument signals an invalid k.
	ErrInvalidArgument = errors.New("invalid argument")
)

// DimensionMismatchError wraps ErrDimensionMismatch with the offending candidate.
// Index is -1 when the mismatch is not tied to a candidate position.
type DimensionMismatchError struct {
	Index int
	Want  int
	Got   int
}

func (e *DimensionMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
	}
	return fmt.Sprintf("%s: candidate %d has dimension %d, query has %d",
		ErrDimensionMismatch.Error(), e.Index, e.Got, e.Want)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }
