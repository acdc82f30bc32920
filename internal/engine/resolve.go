package engine

import (
	"context"
	"fmt"

	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
)

// Resolver copies a multisampled image into a single-sampled one of the same
// size, averaging the sub-samples of each texel. It applies no warp and no
// validity mask.
type Resolver[F simdops.Float] struct {
	ops    *simdops.Ops[F]
	runner bandRunner
}

// NewResolver creates a Resolver. A nil ops selects the SIMD table.
func NewResolver[F simdops.Float](ops *simdops.Ops[F], parallel bool, workers int) *Resolver[F] {
	if ops == nil {
		ops = simdops.For[F]()
	}
	return &Resolver[F]{ops: ops, runner: newBandRunner(parallel, workers)}
}

// Run resolves src into dst.
func (r *Resolver[F]) Run(ctx context.Context, src, dst *surface.Image[F]) error {
	if err := src.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if dst.Samples != 1 || dst.Width != src.Width || dst.Height != src.Height {
		return fmt.Errorf("destination: %w: want single-sampled %dx%d, got %dx%dx%d",
			surface.ErrInvalidImage, src.Width, src.Height, dst.Width, dst.Height, dst.Samples)
	}

	_, err := r.runner.run(ctx, dst.Height, func(y0, y1 int) Stats {
		var s Stats
		// lanes[ch] gathers channel ch of every sub-sample of one texel.
		lanes := make([][]F, surface.Channels)
		for ch := range lanes {
			lanes[ch] = make([]F, src.Samples)
		}
		inv := 1 / F(src.Samples)

		for y := y0; y < y1; y++ {
			for x := range dst.Width {
				span := src.SampleSpan(x, y)
				for smp := range src.Samples {
					for ch := range surface.Channels {
						lanes[ch][smp] = span[smp*surface.Channels+ch]
					}
				}
				var c surface.Color[F]
				for ch := range surface.Channels {
					c[ch] = r.ops.Sum(lanes[ch]) * inv
				}
				dst.Set(x, y, 0, c)
				s.Invocations++
				s.Written++
			}
		}
		return s
	})
	if err != nil {
		return fmt.Errorf("resolve pass: %w", err)
	}
	return nil
}
