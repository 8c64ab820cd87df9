package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestEncodeParallel_PreservesOrder(t *testing.T) {
	texts := make([]string, 200)
	for i := range texts {
		texts[i] = fmt.Sprintf("%d", i)
	}
	embed := func(ctx context.Context, text string) ([]float32, error) {
		var n int
		fmt.Sscanf(text, "%d", &n)
		// Later texts finish first so any reordering would show.
		time.Sleep(time.Duration(200-n) * time.Microsecond)
		return []float32{float32(n)}, nil
	}
	for _, workers := range []int{0, 1, 3, 16, 500} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out, err := EncodeParallel(context.Background(), texts, workers, embed)
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range out {
				if int(v[0]) != i {
					t.Fatalf("out[%d] = %v", i, v)
				}
			}
		})
	}
}

func TestEncodeParallel_Empty(t *testing.T) {
	out, err := EncodeParallel(context.Background(), nil, 4, func(context.Context, string) ([]float32, error) {
		t.Fatal("embed should not be called")
		return nil, nil
	})
	if err != nil || len(out) != 0 {
		t.Errorf("out=%v err=%v", out, err)
	}
}

func TestEncodeParallel_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	texts := make([]string, 100)
	_, err := EncodeParallel(context.Background(), texts, 2, func(ctx context.Context, text string) ([]float32, error) {
		if calls.Add(1) == 3 {
			return nil, boom
		}
		return []float32{1}, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestEncodeParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EncodeParallel(ctx, []string{"a", "b"}, 2, func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
