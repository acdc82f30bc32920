// Command analyze-warp reports how the radial warp covers a destination
// image. It prints the fraction of pixels outside the field of view and the
// radial displacement of the inside pixels. A strict pass over a uniform
// intermediate image counts pixels left with no valid texel in their
// bilinear footprint.
//
// Usage:
//
//	analyze-warp -width 1024 -height 1024 -strength 1
//	analyze-warp -width 640 -height 480 -src-width 64 -src-height 48 -sweep
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	reproject "github.com/tphakala/go-dome-reproject"
	"github.com/tphakala/go-dome-reproject/internal/warp"
)

const (
	defaultSize     = 512
	defaultStrength = 1.0

	// Strength step for -sweep
	sweepStep = 0.25

	percentScale = 100
	medianQ      = 0.5
	p95Q         = 0.95
)

// coverage summarizes one strength at one destination resolution.
type coverage struct {
	strength   float64
	width      int
	pixels     int
	discarded  int
	degenerate int64

	// scale is |warped| / |c| for inside pixels off the exact centre.
	scale []float64
	// shift is the radial displacement |c - warped| in normalized units.
	shift []float64
}

func main() {
	width := flag.Int("width", defaultSize, "Destination width")
	height := flag.Int("height", defaultSize, "Destination height")
	srcWidth := flag.Int("src-width", 0, "Intermediate width for the footprint check (default: width)")
	srcHeight := flag.Int("src-height", 0, "Intermediate height for the footprint check (default: height)")
	strength := flag.Float64("strength", defaultStrength, "Warp strength in [0, 1]")
	sweep := flag.Bool("sweep", false, "Analyze strengths 0, 0.25, ..., 1 instead of -strength")
	flag.Parse()

	if *srcWidth == 0 {
		*srcWidth = *width
	}
	if *srcHeight == 0 {
		*srcHeight = *height
	}

	strengths := []float64{*strength}
	if *sweep {
		strengths = strengths[:0]
		for s := 0.0; s <= 1+1e-9; s += sweepStep {
			strengths = append(strengths, s)
		}
	}

	fmt.Printf("=== Warp coverage: %dx%d destination, %dx%d intermediate ===\n\n",
		*width, *height, *srcWidth, *srcHeight)

	for _, s := range strengths {
		cov, err := analyze(*width, *height, *srcWidth, *srcHeight, s)
		if err != nil {
			log.Fatal(err)
		}
		report(cov)
	}
}

// analyze walks every destination pixel centre through the warp and runs one
// strict pass over a uniform intermediate image to count degenerate pixels.
func analyze(width, height, srcWidth, srcHeight int, strength float64) (*coverage, error) {
	p := warp.Params{Strength: strength}
	cov := &coverage{strength: strength, width: width, pixels: width * height}

	for y := range height {
		for x := range width {
			c := warp.PixelCenter(x, y, width, height)
			if !warp.Inside(c, p) {
				cov.discarded++
				continue
			}
			tc := warp.Warp(c, p)
			// Back to the normalized frame, Y up.
			w := r2.Vec{X: 2*tc.X - 1, Y: 1 - 2*tc.Y}
			cov.shift = append(cov.shift, r2.Norm(r2.Sub(c, w)))
			if r := r2.Norm(c); r > 0 {
				cov.scale = append(cov.scale, r2.Norm(w)/r)
			}
		}
	}

	r, err := reproject.NewStrict(strength)
	if err != nil {
		return nil, err
	}
	src, err := reproject.NewImage(srcWidth, srcHeight, 1)
	if err != nil {
		return nil, err
	}
	src.Fill(reproject.Color{1, 1, 1, 1})
	dst, err := reproject.NewImage(width, height, 1)
	if err != nil {
		return nil, err
	}
	stats, err := r.Process(context.Background(), src, dst)
	if err != nil {
		return nil, err
	}
	cov.degenerate = stats.Degenerate

	return cov, nil
}

func report(cov *coverage) {
	fmt.Printf("Strength %.2f\n", cov.strength)
	fmt.Printf("  Discarded: %d of %d (%.2f%%)\n",
		cov.discarded, cov.pixels, float64(cov.discarded)/float64(cov.pixels)*percentScale)
	fmt.Printf("  Zero-weight footprints: %d\n", cov.degenerate)

	if len(cov.scale) == 0 {
		fmt.Println()
		return
	}

	mean, std := stat.MeanStdDev(cov.scale, nil)
	fmt.Printf("  Radial scale |warped|/|c|: mean %.4f, std %.4f, min %.4f, max %.4f\n",
		mean, std, floats.Min(cov.scale), floats.Max(cov.scale))

	sorted := append([]float64(nil), cov.shift...)
	sort.Float64s(sorted)
	fmt.Printf("  Radial shift: mean %.4f, median %.4f, p95 %.4f, max %.4f\n",
		stat.Mean(sorted, nil),
		stat.Quantile(medianQ, stat.Empirical, sorted, nil),
		stat.Quantile(p95Q, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1])

	// One normalized unit spans half the destination width.
	fmt.Printf("  Max shift in destination pixels (x): %.1f\n\n",
		floats.Max(cov.shift)*float64(cov.width)/2)
}
