package retrieval

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func candidates(vectors ...[]float32) CandidateSet {
	set := make(CandidateSet, len(vectors))
	for i, v := range vectors {
		set[i] = Candidate{Document: Document{Index: i}, Vector: v}
	}
	return set
}

func TestRetriever_TopK_Scenarios(t *testing.T) {
	r := NewRetriever()
	ctx := context.Background()
	// "stocks rise sharply", "team wins championship", "economy in crisis"
	set := candidates(
		[]float32{0.9, 0.1},
		[]float32{0.8, 0.2},
		[]float32{0.1, 0.9},
	)
	query := []float32{1, 0}

	t.Run("top two positive texts", func(t *testing.T) {
		got, err := r.TopK(ctx, query, set, 2)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.Indices(), []int{0, 1}) {
			t.Fatalf("indices = %v, want [0 1]", got.Indices())
		}
		if math.Abs(got[0].Score-0.9) > 1e-6 || math.Abs(got[1].Score-0.8) > 1e-6 {
			t.Errorf("scores = %v, want [0.9 0.8]", got)
		}
	})

	t.Run("k larger than window returns all sorted", func(t *testing.T) {
		got, err := r.TopK(ctx, query, set, 10)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.Indices(), []int{0, 1, 2}) {
			t.Fatalf("indices = %v, want [0 1 2]", got.Indices())
		}
	})

	t.Run("dimension mismatch yields no partial result", func(t *testing.T) {
		bad := candidates([]float32{1, 0, 0}, []float32{1, 0, 0, 0})
		got, err := r.TopK(ctx, []float32{1, 0, 0}, bad, 2)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("err = %v, want ErrDimensionMismatch", err)
		}
		var dm *DimensionMismatchError
		if !errors.As(err, &dm) || dm.Index != 1 || dm.Want != 3 || dm.Got != 4 {
			t.Errorf("mismatch detail = %+v", dm)
		}
		if got != nil {
			t.Errorf("expected nil result, got %v", got)
		}
	})
}

func TestRetriever_TopK_EdgeCases(t *testing.T) {
	r := NewRetriever()
	ctx := context.Background()

	got, err := r.TopK(ctx, []float32{1, 0}, nil, 3)
	if err != nil {
		t.Fatalf("empty window: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("empty window: got %v, want empty non-nil result", got)
	}

	for _, k := range []int{0, -1} {
		if _, err := r.TopK(ctx, []float32{1}, candidates([]float32{1}), k); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("k=%d: err = %v, want ErrInvalidArgument", k, err)
		}
	}
}

func TestRetriever_TopK_TieBreakByIndex(t *testing.T) {
	r := NewRetriever()
	set := candidates(
		[]float32{0.5, 0},
		[]float32{1, 0},
		[]float32{0.5, 0},
		[]float32{1, 0},
		[]float32{0.5, 0},
	)
	got, err := r.TopK(context.Background(), []float32{1, 0}, set, 5)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 3, 0, 2, 4}; !reflect.DeepEqual(got.Indices(), want) {
		t.Errorf("indices = %v, want %v", got.Indices(), want)
	}
}

func TestRetriever_TopK_NaNRanksLast(t *testing.T) {
	r := NewRetriever()
	set := candidates(
		[]float32{float32(math.NaN())},
		[]float32{-5},
		[]float32{2},
	)
	got, err := r.TopK(context.Background(), []float32{1}, set, 3)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{2, 1, 0}; !reflect.DeepEqual(got.Indices(), want) {
		t.Errorf("indices = %v, want %v", got.Indices(), want)
	}
}

// TestRetriever_TopK_MatchesFullSort checks heap selection against a full ordering,
// with many duplicate scores so tie-breaking is exercised.
func TestRetriever_TopK_MatchesFullSort(t *testing.T) {
	r := NewRetriever()
	rng := rand.New(rand.NewSource(7))
	const n, dim = 500, 4
	set := make(CandidateSet, n)
	for i := range set {
		v := make([]float32, dim)
		for j := range v {
			v[j] = float32(rng.Intn(5))
		}
		set[i] = Candidate{Document: Document{Index: i}, Vector: v}
	}
	query := []float32{1, 0.5, 0, 2}

	full, err := r.TopK(context.Background(), query, set, n)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(full); i++ {
		prev, cur := full[i-1], full[i]
		if prev.Score < cur.Score || (prev.Score == cur.Score && prev.Index > cur.Index) {
			t.Fatalf("full ordering broken at %d: %v then %v", i, prev, cur)
		}
	}

	for _, k := range []int{1, 3, 10, 99, 124, 125, 250, 499} {
		got, err := r.TopK(context.Background(), query, set, k)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != k {
			t.Fatalf("k=%d: len = %d", k, len(got))
		}
		if !reflect.DeepEqual(got, full[:k]) {
			t.Errorf("k=%d: heap selection differs from full sort", k)
		}
		minReturned := got[len(got)-1].Score
		for _, h := range full[k:] {
			if h.Score > minReturned {
				t.Fatalf("k=%d: non-returned score %f exceeds returned %f", k, h.Score, minReturned)
			}
		}
	}
}

func TestRetriever_TopK_DoesNotMutateCandidates(t *testing.T) {
	r := NewRetriever()
	set := candidates([]float32{0.1}, []float32{0.9})
	if _, err := r.TopK(context.Background(), []float32{1}, set, 1); err != nil {
		t.Fatal(err)
	}
	if set[0].Document.Index != 0 || set[0].Vector[0] != 0.1 {
		t.Errorf("candidate set was reordered or mutated: %+v", set)
	}
}

func TestRetriever_TopK_Cancelled(t *testing.T) {
	r := NewRetriever()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.TopK(ctx, []float32{1}, candidates([]float32{1}), 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetriever_Score(t *testing.T) {
	r := NewRetriever()
	a := []float32{0.25, -3, 7.5}
	b := []float32{1.5, 0.125, -2}
	ab, err := r.Score(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := r.Score(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Errorf("Score not symmetric: %v vs %v", ab, ba)
	}

	// Raw dot product: magnitude matters.
	s, _ := r.Score([]float32{2, 0}, []float32{3, 0})
	if s != 6 {
		t.Errorf("Score = %f, want raw dot product 6", s)
	}

	if _, err := r.Score([]float32{1, 2, 3}, []float32{1, 2, 3, 4}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestNewCandidateSet(t *testing.T) {
	docs := []Document{{Index: 0, Text: "a"}, {Index: 1, Text: "b"}}
	set, err := NewCandidateSet(docs, [][]float32{{1}, {2}})
	if err != nil {
		t.Fatal(err)
	}
	if set[1].Document.Text != "b" || set[1].Vector[0] != 2 {
		t.Errorf("set = %+v", set)
	}
	if _, err := NewCandidateSet(docs, [][]float32{{1}}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
