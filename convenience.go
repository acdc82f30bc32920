package reproject

import (
	"context"
	"fmt"
	"image"

	"github.com/tphakala/go-dome-reproject/internal/engine"
	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
)

// NewImage allocates a zeroed float64 image with the given sub-sample count.
func NewImage(width, height, samples int) (*Image, error) {
	return surface.NewImage[float64](width, height, samples)
}

// NewImage32 allocates a zeroed float32 image with the given sub-sample count.
func NewImage32(width, height, samples int) (*Image32, error) {
	return surface.NewImage[float32](width, height, samples)
}

// FromImage converts img into a single-sampled float64 image with channels
// normalized to [0, 1].
func FromImage(img image.Image) (*Image, error) {
	return surface.FromImage[float64](img)
}

// FromLayers builds a multisampled float64 image with one sub-sample per
// layer. All layers must share the same size.
func FromLayers(layers ...image.Image) (*Image, error) {
	return surface.FromLayers[float64](layers...)
}

// FromLayersFloat32 is the float32 equivalent of FromLayers.
func FromLayersFloat32(layers ...image.Image) (*Image32, error) {
	return surface.FromLayers[float32](layers...)
}

// NewStrict creates a reprojector that hard-discards pixels outside the
// field of view.
func NewStrict(strength float64) (*Reprojector, error) {
	c := ConfigForVariant(VariantStrict, strength)
	return New(&c)
}

// NewMasked creates a reprojector that paints pixels outside the field of
// view mid-gray.
func NewMasked(strength float64) (*Reprojector, error) {
	c := ConfigForVariant(VariantMasked, strength)
	return New(&c)
}

// NewPassThrough creates a reprojector that skips the warp entirely.
func NewPassThrough() (*Reprojector, error) {
	c := ConfigForVariant(VariantPassThrough, 0)
	return New(&c)
}

// ReprojectImage is a convenience function for one-shot reprojection of a
// single-sampled image. The output has the size of src; discarded pixels are
// transparent.
func ReprojectImage(ctx context.Context, src image.Image, config *Config) (*image.NRGBA64, Stats, error) {
	return ReprojectLayers(ctx, []image.Image{src}, src.Bounds().Dx(), src.Bounds().Dy(), config)
}

// ReprojectLayers reprojects a multisampled source given as one image per
// sub-sample into a width x height output.
func ReprojectLayers(ctx context.Context, layers []image.Image, width, height int, config *Config) (*image.NRGBA64, Stats, error) {
	r, err := New(config)
	if err != nil {
		return nil, Stats{}, err
	}

	src, err := FromLayers(layers...)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("source: %w", err)
	}

	dst, err := NewImage(width, height, 1)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("destination: %w", err)
	}

	stats, err := r.Process(ctx, src, dst)
	if err != nil {
		return nil, Stats{}, err
	}
	return dst.ToNRGBA64(), stats, nil
}

// Resolve averages the sub-samples of every texel of src into a new
// single-sampled image of the same size, without any warp. This is the
// pass-through copy that precedes display when no reprojection is needed.
func Resolve(ctx context.Context, src *Image) (*Image, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	dst, err := NewImage(src.Width, src.Height, 1)
	if err != nil {
		return nil, err
	}
	if err := engine.NewResolver(simdops.For[float64](), true, 0).Run(ctx, src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// ResolveFloat32 is the float32 equivalent of Resolve.
func ResolveFloat32(ctx context.Context, src *Image32) (*Image32, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	dst, err := NewImage32(src.Width, src.Height, 1)
	if err != nil {
		return nil, err
	}
	if err := engine.NewResolver(simdops.For[float32](), true, 0).Run(ctx, src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
