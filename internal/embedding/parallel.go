package embedding

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// EmbedFunc embeds a single text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// EncodeParallel runs embed over texts with up to workers goroutines.
// out[i] always corresponds to texts[i]. The first failure cancels the remaining work
// and no partial result is returned. workers <= 0 means GOMAXPROCS.
func EncodeParallel(ctx context.Context, texts []string, workers int, embed EmbedFunc) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(texts))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		jobs     = make(chan int)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := embed(runCtx, texts[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("encode text %d: %w", i, err)
						cancel()
					})
					continue
				}
				out[i] = vec
			}
		}()
	}

feed:
	for i := range texts {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
