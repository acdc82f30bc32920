package reproject

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tphakala/go-dome-reproject/internal/engine"
	"github.com/tphakala/go-dome-reproject/internal/sampler"
	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
	"github.com/tphakala/go-dome-reproject/internal/warp"
)

// Params controls the radial warp: Strength in [0, 1] and the Bypass flag.
type Params = warp.Params

// Image is a float64 RGBA image with one or more sub-samples per texel.
type Image = surface.Image[float64]

// Image32 is a float32 RGBA image with one or more sub-samples per texel.
type Image32 = surface.Image[float32]

// Color is a straight float64 RGBA color.
type Color = surface.Color[float64]

// Stats counts invocation outcomes of a pass.
type Stats = engine.Stats

// DiscardPolicy selects what pixels outside the field of view produce.
type DiscardPolicy = sampler.DiscardPolicy

// Discard policies.
const (
	// DiscardHard leaves the destination pixel untouched.
	DiscardHard = sampler.DiscardHard

	// DiscardFallback writes Config.Fallback.
	DiscardFallback = sampler.DiscardFallback
)

// ZeroWeightPolicy selects what a pixel produces when every neighbour of its
// bilinear footprint lies outside the captured circle.
type ZeroWeightPolicy = sampler.ZeroWeightPolicy

// Zero-weight policies.
const (
	// ZeroWeightPropagate writes the unguarded 0/0 result (NaN channels).
	ZeroWeightPropagate = sampler.ZeroWeightPropagate

	// ZeroWeightTransparent writes transparent black.
	ZeroWeightTransparent = sampler.ZeroWeightTransparent

	// ZeroWeightDiscard leaves the destination pixel untouched.
	ZeroWeightDiscard = sampler.ZeroWeightDiscard
)

// Variant enumerates the predefined reprojection behaviours.
type Variant int

const (
	// VariantStrict reprojects and hard-discards pixels outside the circle.
	VariantStrict Variant = iota

	// VariantMasked reprojects and paints pixels outside the circle mid-gray.
	VariantMasked

	// VariantPassThrough skips reprojection: the warp is the identity and
	// nothing is discarded.
	VariantPassThrough

	// VariantCustom uses Bypass, Discard and Fallback exactly as configured.
	VariantCustom
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantStrict:
		return "strict"
	case VariantMasked:
		return "masked"
	case VariantPassThrough:
		return "passthrough"
	case VariantCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Config holds reprojection configuration.
type Config struct {
	// Variant selects a preset for Bypass, Discard and Fallback.
	// Use VariantCustom to set them individually.
	Variant Variant

	// Strength of the radial warp in [0, 1]. 0 is the identity map, 1 the
	// full inverse fisheye. Ignored when Bypass is set.
	Strength float64

	// Bypass skips reprojection and disables discarding.
	Bypass bool

	// Discard selects the behaviour outside the field of view.
	Discard DiscardPolicy

	// Fallback is the color written by DiscardFallback.
	Fallback Color

	// ZeroWeight selects the behaviour for fully rejected footprints.
	ZeroWeight ZeroWeightPolicy

	// EnableParallel splits passes into row bands processed concurrently.
	// Output is bit-identical to sequential processing.
	EnableParallel bool

	// Workers bounds concurrent bands. Zero means GOMAXPROCS.
	Workers int

	// EnableSIMD allows the use of SIMD optimizations when available.
	// Set to false to force pure Go implementation.
	EnableSIMD bool
}

// Common errors returned by the reprojector.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid reprojection configuration")

	// ErrInvalidImage indicates an image with unusable dimensions or layout.
	ErrInvalidImage = surface.ErrInvalidImage
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Variant < VariantStrict || c.Variant > VariantCustom {
		return fmt.Errorf("%w: unknown variant %d", ErrInvalidConfig, c.Variant)
	}

	bypass := c.Bypass
	switch c.Variant {
	case VariantStrict, VariantMasked:
		bypass = false
	case VariantPassThrough:
		bypass = true
	}

	// Strength outside [0, 1] can zero the warp denominator.
	if !bypass {
		if math.IsNaN(c.Strength) || c.Strength < minStrength || c.Strength > maxStrength {
			return fmt.Errorf("%w: strength must be in [%v, %v], got %v", ErrInvalidConfig, minStrength, maxStrength, c.Strength)
		}
	}

	if c.Discard != DiscardHard && c.Discard != DiscardFallback {
		return fmt.Errorf("%w: unknown discard policy %d", ErrInvalidConfig, c.Discard)
	}

	switch c.ZeroWeight {
	case ZeroWeightPropagate, ZeroWeightTransparent, ZeroWeightDiscard:
	default:
		return fmt.Errorf("%w: unknown zero-weight policy %d", ErrInvalidConfig, c.ZeroWeight)
	}

	for ch, v := range c.Fallback {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: fallback channel %d is not finite", ErrInvalidConfig, ch)
		}
	}

	if c.Workers < 0 || c.Workers > maxWorkers {
		return fmt.Errorf("%w: workers must be 0-%d", ErrInvalidConfig, maxWorkers)
	}

	return nil
}

// ApplyVariant overwrites Bypass, Discard and Fallback with the preset of
// c.Variant. VariantCustom leaves them unchanged.
func (c *Config) ApplyVariant() {
	switch c.Variant {
	case VariantStrict:
		c.Bypass = false
		c.Discard = DiscardHard
	case VariantMasked:
		c.Bypass = false
		c.Discard = DiscardFallback
		c.Fallback = sampler.FallbackGray[float64]()
	case VariantPassThrough:
		c.Bypass = true
		c.Discard = DiscardHard
	case VariantCustom:
	}
}

// ConfigForVariant returns a configuration for the given variant and
// strength with parallel processing and SIMD enabled.
func ConfigForVariant(v Variant, strength float64) Config {
	c := Config{
		Variant:        v,
		Strength:       strength,
		EnableParallel: true,
		EnableSIMD:     true,
	}
	c.ApplyVariant()
	return c
}

// Reprojector converts fisheye intermediate images into final images.
//
// A Reprojector is safe for concurrent use by multiple goroutines: passes
// share only read-only state.
type Reprojector struct {
	config Config
	f64    *engine.Reprojector[float64]
	f32    *engine.Reprojector[float32]
}

// New creates a reprojector with the specified configuration.
// The logger set with SetLogger at this point is used for its lifetime.
func New(config *Config) (*Reprojector, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	cfg.ApplyVariant()

	logger := Logger().With("variant", cfg.Variant.String())

	r := &Reprojector{
		config: cfg,
		f64: engine.NewReprojector(engine.Config[float64]{
			Kernel:   kernelConfig[float64](&cfg),
			Parallel: cfg.EnableParallel,
			Workers:  cfg.Workers,
			Logger:   logger,
		}),
		f32: engine.NewReprojector(engine.Config[float32]{
			Kernel:   kernelConfig[float32](&cfg),
			Parallel: cfg.EnableParallel,
			Workers:  cfg.Workers,
			Logger:   logger,
		}),
	}

	logger.Debug("reprojector created",
		"strength", cfg.Strength,
		"bypass", cfg.Bypass,
		"discard", cfg.Discard.String(),
		"zero_weight", cfg.ZeroWeight.String(),
		"workers", r.f64.Workers())

	return r, nil
}

func kernelConfig[F simdops.Float](c *Config) sampler.KernelConfig[F] {
	var fallback surface.Color[F]
	for ch, v := range c.Fallback {
		fallback[ch] = F(v)
	}
	return sampler.KernelConfig[F]{
		Params:     warp.Params{Strength: c.Strength, Bypass: c.Bypass},
		Discard:    c.Discard,
		Fallback:   fallback,
		ZeroWeight: c.ZeroWeight,
		Ops:        simdops.Select[F](c.EnableSIMD),
	}
}

// Config returns the effective configuration, with the variant applied.
func (r *Reprojector) Config() Config {
	return r.config
}

// Params returns the warp parameters.
func (r *Reprojector) Params() Params {
	return r.f64.Params()
}

// Process reprojects src into dst. dst must be single-sampled and defines
// the output resolution; src may be multisampled and of any size.
// Pixels discarded by the configuration keep their previous contents.
func (r *Reprojector) Process(ctx context.Context, src, dst *Image) (Stats, error) {
	return r.f64.Run(ctx, src, dst)
}

// ProcessFloat32 is like Process but for float32 images.
func (r *Reprojector) ProcessFloat32(ctx context.Context, src, dst *Image32) (Stats, error) {
	return r.f32.Run(ctx, src, dst)
}

// Sample evaluates a single invocation at normalized coordinate (x, y) in
// [-1,1]^2, Y up. The boolean is false when the invocation writes nothing.
func (r *Reprojector) Sample(src *Image, x, y float64) (Color, bool) {
	c, outcome := r.f64.Invoke(src, r2.Vec{X: x, Y: y})
	return c, outcome.Writes()
}

// GetStatistics returns cumulative statistics across both precisions.
func (r *Reprojector) GetStatistics() map[string]int64 {
	stats := r.f64.GetStatistics()
	for k, v := range r.f32.GetStatistics() {
		stats[k] += v
	}
	return stats
}

// Reset clears cumulative statistics.
func (r *Reprojector) Reset() {
	r.f64.Reset()
	r.f32.Reset()
}

// Info returns information about the reprojector implementation.
type Info struct {
	// Algorithm describes the reprojection algorithm in use.
	Algorithm string

	// Variant is the configured variant name.
	Variant string

	// Workers is the maximum number of concurrent bands.
	Workers int

	// SIMDEnabled indicates if SIMD optimizations are active.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string
}

// Info returns information about the reprojector.
func (r *Reprojector) Info() Info {
	info := Info{
		Algorithm:   algorithmName,
		Variant:     r.config.Variant.String(),
		Workers:     r.f64.Workers(),
		SIMDEnabled: r.config.EnableSIMD,
		SIMDType:    "none",
	}
	if r.config.EnableSIMD {
		info.SIMDType = simdops.Info()
	}
	return info
}
