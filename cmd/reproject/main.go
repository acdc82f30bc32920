// Command reproject converts dome/fisheye intermediate renders into final
// display images.
//
// Usage:
//
//	reproject -o out.png in.png
//	reproject -strength 0.8 -variant masked -o out.tiff in.png
//	reproject -width 2048 -height 2048 -o out.png s0.png s1.png s2.png s3.png  # 4x multisampled
//	reproject -fast -o out.bmp in.webp                                         # float32 precision
//
// Every input after the first is an additional sub-sample layer of the same
// intermediate image. The output format follows the extension of -o.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"

	reproject "github.com/tphakala/go-dome-reproject"
)

const (
	// CLI defaults
	defaultStrength = 1.0
	minRequiredArgs = 1
	percentScale    = 100
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	strength := flag.Float64("strength", defaultStrength, "Warp strength in [0, 1] (0 = identity, 1 = full inverse fisheye)")
	bypass := flag.Bool("bypass", false, "Skip the warp and keep every pixel (custom variant only)")
	variant := flag.String("variant", "strict", "Variant: strict, masked, passthrough, custom")
	fallback := flag.String("fallback", "0.5,0.5,0.5,1", "Fallback RGBA for pixels outside the field of view (custom variant); empty disables")
	zeroWeight := flag.String("zero-weight", "propagate", "Fully rejected footprints: propagate (NaN), transparent, discard")
	width := flag.Int("width", 0, "Output width (default: input width)")
	height := flag.Int("height", 0, "Output height (default: input height)")
	output := flag.String("o", "", "Output file (.png, .tif/.tiff, .bmp)")
	parallel := flag.Bool("parallel", true, "Process row bands concurrently")
	workers := flag.Int("workers", 0, "Maximum concurrent bands (0 = GOMAXPROCS)")
	fast := flag.Bool("fast", false, "Use float32 precision")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs || *output == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] -o output input [input ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -o dome.png fisheye.png                     # Full-strength reprojection\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -variant masked -o dome.tiff fisheye.png    # Gray outside the circle\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -o dome.png s0.png s1.png s2.png s3.png     # Resolve 4 sub-samples\n", os.Args[0])
		return errors.New("insufficient arguments")
	}

	cfg, err := buildConfig(options{
		variant:    *variant,
		strength:   *strength,
		bypass:     *bypass,
		fallback:   *fallback,
		zeroWeight: *zeroWeight,
		parallel:   *parallel,
		workers:    *workers,
	})
	if err != nil {
		return err
	}

	if _, err := encoderFor(*output); err != nil {
		return err
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	if *verbose {
		reproject.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		log.Printf("Inputs: %d layer(s)", len(args))
		log.Printf("Output: %s", *output)
		log.Printf("Variant: %s, strength %.3f", cfg.Variant, cfg.Strength)
		if *fast {
			log.Printf("Precision: float32 (fast mode)")
		} else {
			log.Printf("Precision: float64 (high precision)")
		}
	}

	layers, err := loadLayers(args)
	if err != nil {
		return err
	}

	bounds := layers[0].Bounds()
	outW, outH := *width, *height
	if outW == 0 {
		outW = bounds.Dx()
	}
	if outH == 0 {
		outH = bounds.Dy()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var (
		out   image.Image
		stats reproject.Stats
	)
	if *fast {
		out, stats, err = reprojectFloat32(ctx, layers, outW, outH, &cfg)
	} else {
		out, stats, err = reproject.ReprojectLayers(ctx, layers, outW, outH, &cfg)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := saveImage(*output, out); err != nil {
		return err
	}

	fmt.Printf("Reprojected %s -> %s\n", filepath.Base(args[0]), filepath.Base(*output))
	fmt.Printf("  %dx%d x%d -> %dx%d\n", bounds.Dx(), bounds.Dy(), len(layers), outW, outH)
	fmt.Printf("  written %d, masked %d, discarded %d (%.1f%%)\n",
		stats.Written, stats.Masked, stats.Discarded,
		percent(stats.Discarded, stats.Invocations))
	if stats.Degenerate > 0 {
		fmt.Printf("  %d pixel(s) had no valid texel in their footprint\n", stats.Degenerate)
	}
	fmt.Printf("  Duration: %.3fs, %.1f Mpx/s\n",
		elapsed.Seconds(), float64(stats.Invocations)/elapsed.Seconds()/1e6)

	return nil
}

// reprojectFloat32 runs the pass with float32 images.
func reprojectFloat32(ctx context.Context, layers []image.Image, width, height int, cfg *reproject.Config) (image.Image, reproject.Stats, error) {
	r, err := reproject.New(cfg)
	if err != nil {
		return nil, reproject.Stats{}, err
	}
	src, err := reproject.FromLayersFloat32(layers...)
	if err != nil {
		return nil, reproject.Stats{}, fmt.Errorf("source: %w", err)
	}
	dst, err := reproject.NewImage32(width, height, 1)
	if err != nil {
		return nil, reproject.Stats{}, fmt.Errorf("destination: %w", err)
	}
	stats, err := r.ProcessFloat32(ctx, src, dst)
	if err != nil {
		return nil, reproject.Stats{}, err
	}
	return dst.ToNRGBA64(), stats, nil
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * percentScale
}
