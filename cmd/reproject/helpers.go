package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder

	reproject "github.com/tphakala/go-dome-reproject"
)

// errUnsupportedFormat is returned for output extensions with no encoder.
var errUnsupportedFormat = errors.New("unsupported output format")

const rgbaComponents = 4

// options holds the parsed flag values that shape the configuration.
type options struct {
	variant    string
	strength   float64
	bypass     bool
	fallback   string
	zeroWeight string
	parallel   bool
	workers    int
}

// buildConfig maps flag values onto a validated reprojection config.
func buildConfig(o options) (reproject.Config, error) {
	v, err := parseVariant(o.variant)
	if err != nil {
		return reproject.Config{}, err
	}
	zw, err := parseZeroWeight(o.zeroWeight)
	if err != nil {
		return reproject.Config{}, err
	}

	cfg := reproject.ConfigForVariant(v, o.strength)
	cfg.ZeroWeight = zw
	cfg.EnableParallel = o.parallel
	cfg.Workers = o.workers

	if v == reproject.VariantCustom {
		cfg.Bypass = o.bypass
		if o.fallback != "" {
			c, err := parseColor(o.fallback)
			if err != nil {
				return reproject.Config{}, err
			}
			cfg.Discard = reproject.DiscardFallback
			cfg.Fallback = c
		}
	}

	if err := cfg.Validate(); err != nil {
		return reproject.Config{}, err
	}
	return cfg, nil
}

func parseVariant(s string) (reproject.Variant, error) {
	switch strings.ToLower(s) {
	case "strict":
		return reproject.VariantStrict, nil
	case "masked":
		return reproject.VariantMasked, nil
	case "passthrough", "pass-through", "bypass":
		return reproject.VariantPassThrough, nil
	case "custom":
		return reproject.VariantCustom, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", s)
	}
}

func parseZeroWeight(s string) (reproject.ZeroWeightPolicy, error) {
	switch strings.ToLower(s) {
	case "propagate", "nan":
		return reproject.ZeroWeightPropagate, nil
	case "transparent":
		return reproject.ZeroWeightTransparent, nil
	case "discard":
		return reproject.ZeroWeightDiscard, nil
	default:
		return 0, fmt.Errorf("unknown zero-weight policy %q", s)
	}
}

// parseColor parses "r,g,b[,a]" with components in [0, 1]. Alpha defaults to 1.
func parseColor(s string) (reproject.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != rgbaComponents-1 && len(parts) != rgbaComponents {
		return reproject.Color{}, fmt.Errorf("color %q: want r,g,b or r,g,b,a", s)
	}
	c := reproject.Color{0, 0, 0, 1}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return reproject.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		if v < 0 || v > 1 {
			return reproject.Color{}, fmt.Errorf("color %q: component %d out of [0, 1]", s, i)
		}
		c[i] = v
	}
	return c, nil
}

// loadLayers decodes every path as one sub-sample layer.
func loadLayers(paths []string) ([]image.Image, error) {
	layers := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := loadImage(p)
		if err != nil {
			return nil, err
		}
		if len(layers) > 0 && img.Bounds().Size() != layers[0].Bounds().Size() {
			return nil, fmt.Errorf("layer %s is %v, want %v", p, img.Bounds().Size(), layers[0].Bounds().Size())
		}
		layers = append(layers, img)
	}
	return layers, nil
}

// loadImage decodes PNG, JPEG, BMP, TIFF or WebP, detected from content.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

type encodeFunc func(w io.Writer, img image.Image) error

// encoderFor selects the encoder from the output file extension.
func encoderFor(path string) (encodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
	}
}

// saveImage encodes img to path, capturing close errors.
func saveImage(path string, img image.Image) (err error) {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
