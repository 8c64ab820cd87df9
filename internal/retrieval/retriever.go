// Package retrieval ranks a candidate window against a query vector.
package retrieval

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/hyperjump/kiji/internal/vector"
)

// checkEvery is how many candidates are scored between context checks.
const checkEvery = 1024

// Document is one entry of the candidate window. Metadata is carried through untouched.
type Document struct {
	// Index is the position in the candidate window.
	Index    int
	Text     string
	Metadata any
}

// Candidate pairs a document with its embedding.
type Candidate struct {
	Document Document
	Vector   []float32
}

// CandidateSet is the per-query window. The retriever only reads it.
type CandidateSet []Candidate

// NewCandidateSet zips docs and vectors in order. Lengths must match.
func NewCandidateSet(docs []Document, vectors [][]float32) (CandidateSet, error) {
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("%w: %d documents but %d vectors", ErrInvalidArgument, len(docs), len(vectors))
	}
	set := make(CandidateSet, len(docs))
	for i := range docs {
		set[i] = Candidate{Document: docs[i], Vector: vectors[i]}
	}
	return set, nil
}

// Hit is one ranked entry: the candidate position and its raw score.
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// RankedResult is ordered by descending score, ties by ascending index.
type RankedResult []Hit

// Indices returns the candidate positions in rank order.
func (r RankedResult) Indices() []int {
	out := make([]int, len(r))
	for i, h := range r {
		out[i] = h.Index
	}
	return out
}

// Retriever scores candidates by raw dot product. It holds no state.
type Retriever struct{}

// NewRetriever returns a Retriever.
func NewRetriever() *Retriever {
	return &Retriever{}
}

// Score returns the dot product of query and candidate.
// Scores are not cosine-normalized, so vector magnitude affects ranking.
func (r *Retriever) Score(query, candidate []float32) (float64, error) {
	if len(query) != len(candidate) {
		return 0, &DimensionMismatchError{Index: -1, Want: len(query), Got: len(candidate)}
	}
	return vector.Dot(query, candidate), nil
}

// TopK returns the min(k, len(candidates)) best candidates.
// Every candidate is validated before any scoring so a mismatch never yields a partial result.
func (r *Retriever) TopK(ctx context.Context, query []float32, candidates CandidateSet, k int) (RankedResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidArgument, k)
	}
	for i, c := range candidates {
		if len(c.Vector) != len(query) {
			return nil, &DimensionMismatchError{Index: i, Want: len(query), Got: len(c.Vector)}
		}
	}
	if len(candidates) == 0 {
		return RankedResult{}, nil
	}

	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = Hit{Index: i, Score: vector.Dot(query, c.Vector)}
	}
	return selectTop(hits, k), nil
}

// selectTop orders hits with ranksBefore and keeps the first k.
// Small k over a large window uses a bounded heap instead of a full sort.
func selectTop(hits []Hit, k int) RankedResult {
	if k >= len(hits) || k*4 >= len(hits) {
		slices.SortFunc(hits, compareHits)
		if k < len(hits) {
			hits = hits[:k]
		}
		return RankedResult(hits)
	}

	h := &worstFirst{}
	for _, hit := range hits {
		if h.Len() < k {
			heap.Push(h, hit)
			continue
		}
		if ranksBefore(hit, (*h)[0]) {
			(*h)[0] = hit
			heap.Fix(h, 0)
		}
	}
	out := make(RankedResult, h.Len())
	copy(out, *h)
	slices.SortFunc(out, compareHits)
	return out
}

// ranksBefore is a strict total order: higher score first, NaN last, lower index on ties.
func ranksBefore(a, b Hit) bool {
	aNaN, bNaN := math.IsNaN(a.Score), math.IsNaN(b.Score)
	switch {
	case aNaN != bNaN:
		return bNaN
	case !aNaN && a.Score != b.Score:
		return a.Score > b.Score
	default:
		return a.Index < b.Index
	}
}

func compareHits(a, b Hit) int {
	switch {
	case ranksBefore(a, b):
		return -1
	case ranksBefore(b, a):
		return 1
	default:
		return 0
	}
}

// worstFirst is a heap whose root is the lowest-ranked hit kept so far.
type worstFirst []Hit

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return ranksBefore(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Hit)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
