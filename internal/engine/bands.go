package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// bandRunner splits a row range into bands and runs them sequentially or on
// a bounded errgroup.
type bandRunner struct {
	parallel bool
	workers  int
}

func newBandRunner(parallel bool, workers int) bandRunner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if !parallel {
		workers = 1
	}
	return bandRunner{parallel: parallel && workers > 1, workers: workers}
}

// bandSize returns the number of rows per band for a grid of the given height.
func (b bandRunner) bandSize(rows int) int {
	size := rows / (b.workers * bandsPerWorker)
	return max(size, minBandRows)
}

// run calls fn for every band of [0, rows) and sums the returned stats.
// The context is checked before each band starts.
func (b bandRunner) run(ctx context.Context, rows int, fn func(y0, y1 int) Stats) (Stats, error) {
	size := b.bandSize(rows)
	nbands := (rows + size - 1) / size
	results := make([]Stats, nbands)

	if !b.parallel || nbands == 1 {
		for i := range nbands {
			if err := ctx.Err(); err != nil {
				return Stats{}, err
			}
			y0 := i * size
			results[i] = fn(y0, min(y0+size, rows))
		}
		return sum(results), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range nbands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			y0 := i * size
			results[i] = fn(y0, min(y0+size, rows))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return sum(results), nil
}

func sum(results []Stats) Stats {
	var total Stats
	for _, r := range results {
		total.Add(r)
	}
	return total
}
