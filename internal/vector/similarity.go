// Package vector provides the dense-vector math shared by the embedders and the retriever.
package vector

import "math"

// Dot returns the inner product of a and b accumulated in float64.
// Callers must check dimensions first; extra elements of the longer slice are ignored.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// NormalizeL2 normalizes x in place to unit L2 norm.
// A zero vector is left unchanged.
func NormalizeL2(x []float32) {
	norm := L2Norm(x)
	if norm == 0 {
		return
	}
	inv := 1.0 / norm
	for i := range x {
		x[i] = float32(float64(x[i]) * inv)
	}
}

// MeanPool averages the rows of a row-major [tokens x dim] matrix whose mask entry is non-zero.
// When no row is selected the zero vector is returned.
func MeanPool(hidden []float32, mask []int64, dim int) []float32 {
	out := make([]float32, dim)
	if dim <= 0 {
		return out
	}
	sums := make([]float64, dim)
	var count float64
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dim : (t+1)*dim]
		for j, v := range row {
			sums[j] += float64(v)
		}
		count++
	}
	if count == 0 {
		return out
	}
	for j := range out {
		out[j] = float32(sums[j] / count)
	}
	return out
}

// IsFinite reports whether every element of x is a finite number.
func IsFinite(x []float32) bool {
	for _, v := range x {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Clone returns a copy of x.
func Clone(x []float32) []float32 {
	if x == nil {
		return nil
	}
	out := make([]float32, len(x))
	copy(out, x)
	return out
}
