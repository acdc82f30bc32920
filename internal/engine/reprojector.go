// Package engine runs reprojection passes over whole images.
//
// A pass evaluates the sampler kernel once per destination pixel. Pixels are
// independent, so rows are split into bands that run concurrently; results
// do not depend on the partition.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tphakala/go-dome-reproject/internal/sampler"
	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
	"github.com/tphakala/go-dome-reproject/internal/warp"
)

// Config configures a Reprojector.
type Config[F simdops.Float] struct {
	Kernel sampler.KernelConfig[F]

	// Parallel enables concurrent band processing.
	Parallel bool

	// Workers bounds concurrent bands. Zero means GOMAXPROCS.
	Workers int

	// Logger receives pass diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Stats counts invocation outcomes of a pass.
type Stats struct {
	Invocations int64
	Written     int64
	Masked      int64
	Discarded   int64
	Degenerate  int64
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Invocations += o.Invocations
	s.Written += o.Written
	s.Masked += o.Masked
	s.Discarded += o.Discarded
	s.Degenerate += o.Degenerate
}

func (s *Stats) record(o sampler.Outcome) {
	s.Invocations++
	switch o {
	case sampler.OutcomeWritten:
		s.Written++
	case sampler.OutcomeMasked:
		s.Masked++
	case sampler.OutcomeDiscarded:
		s.Discarded++
	case sampler.OutcomeDegenerate:
		s.Degenerate++
	}
}

// Reprojector applies the reprojection kernel to whole images.
//
// Type parameter F controls the precision of color processing.
// A Reprojector is safe for concurrent use; passes share only read-only state.
type Reprojector[F simdops.Float] struct {
	kernel *sampler.Kernel[F]
	runner bandRunner
	logger *slog.Logger

	// Cumulative statistics across passes.
	passes      atomic.Int64
	invocations atomic.Int64
	discarded   atomic.Int64
	degenerate  atomic.Int64
}

// NewReprojector creates a Reprojector from cfg.
func NewReprojector[F simdops.Float](cfg Config[F]) *Reprojector[F] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reprojector[F]{
		kernel: sampler.NewKernel(cfg.Kernel),
		runner: newBandRunner(cfg.Parallel, cfg.Workers),
		logger: logger,
	}
}

// Params returns the warp parameters of the kernel.
func (r *Reprojector[F]) Params() warp.Params {
	return r.kernel.Params()
}

// Invoke evaluates the kernel for a single normalized coordinate.
func (r *Reprojector[F]) Invoke(src *surface.Image[F], c r2.Vec) (surface.Color[F], sampler.Outcome) {
	return r.kernel.Invoke(src, c)
}

// Workers returns the maximum number of concurrent bands.
func (r *Reprojector[F]) Workers() int {
	return r.runner.workers
}

// Run reprojects src into dst. dst must be single-sampled; its dimensions
// define the invocation grid. Discarded pixels keep their previous contents,
// so callers clear dst first when they need a defined background.
//
// If ctx is cancelled the pass is abandoned and dst is partially written.
func (r *Reprojector[F]) Run(ctx context.Context, src, dst *surface.Image[F]) (Stats, error) {
	if err := src.Validate(); err != nil {
		return Stats{}, fmt.Errorf("source: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return Stats{}, fmt.Errorf("destination: %w", err)
	}
	if dst.Samples != 1 {
		return Stats{}, fmt.Errorf("destination: %w: must be single-sampled, got %d samples",
			surface.ErrInvalidImage, dst.Samples)
	}

	start := time.Now()
	stats, err := r.runner.run(ctx, dst.Height, func(y0, y1 int) Stats {
		return r.band(src, dst, y0, y1)
	})
	if err != nil {
		r.logger.Debug("reprojection pass abandoned", "error", err)
		return Stats{}, fmt.Errorf("reprojection pass: %w", err)
	}

	r.passes.Add(1)
	r.invocations.Add(stats.Invocations)
	r.discarded.Add(stats.Discarded)
	r.degenerate.Add(stats.Degenerate)

	r.logger.Debug("reprojection pass complete",
		"src", fmt.Sprintf("%dx%dx%d", src.Width, src.Height, src.Samples),
		"dst", fmt.Sprintf("%dx%d", dst.Width, dst.Height),
		"written", stats.Written,
		"masked", stats.Masked,
		"discarded", stats.Discarded,
		"elapsed", time.Since(start))
	if stats.Degenerate > 0 {
		r.logger.Warn("reprojection produced zero-weight footprints",
			"count", stats.Degenerate)
	}

	return stats, nil
}

// band processes destination rows [y0, y1).
func (r *Reprojector[F]) band(src, dst *surface.Image[F], y0, y1 int) Stats {
	var s Stats
	for y := y0; y < y1; y++ {
		for x := range dst.Width {
			c := warp.PixelCenter(x, y, dst.Width, dst.Height)
			color, outcome := r.kernel.Invoke(src, c)
			s.record(outcome)
			if outcome.Writes() {
				dst.Set(x, y, 0, color)
			}
		}
	}
	return s
}

// GetStatistics returns cumulative processing statistics.
func (r *Reprojector[F]) GetStatistics() map[string]int64 {
	return map[string]int64{
		"passes":      r.passes.Load(),
		"invocations": r.invocations.Load(),
		"discarded":   r.discarded.Load(),
		"degenerate":  r.degenerate.Load(),
	}
}

// Reset clears cumulative statistics.
func (r *Reprojector[F]) Reset() {
	r.passes.Store(0)
	r.invocations.Store(0)
	r.discarded.Store(0)
	r.degenerate.Store(0)
}

// CountNonFinite returns the number of pixels of img holding a NaN or Inf channel.
func CountNonFinite[F simdops.Float](img *surface.Image[F]) int {
	n := 0
	for i := 0; i < len(img.Pix); i += surface.Channels {
		for ch := range surface.Channels {
			v := float64(img.Pix[i+ch])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				n++
				break
			}
		}
	}
	return n
}
