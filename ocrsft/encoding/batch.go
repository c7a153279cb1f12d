package encoding

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// EncodeAll fetches every index of ds using a bounded conc pool and returns
// the samples in index order. The first failure cancels outstanding fetches.
// workers <= 0 uses one worker per CPU.
func EncodeAll(ctx context.Context, ds Dataset, workers int) ([]*Sample, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]*Sample, ds.Len())
	p := pool.New().
		WithMaxGoroutines(workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i := range out {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := ds.Get(i)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			// each goroutine owns out[i]
			out[i] = s
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
