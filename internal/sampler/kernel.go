package sampler

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
	"github.com/tphakala/go-dome-reproject/internal/warp"
)

// DiscardPolicy selects what an invocation outside the field of view produces.
type DiscardPolicy int

const (
	// DiscardHard produces no write at all.
	DiscardHard DiscardPolicy = iota

	// DiscardFallback writes the configured fallback color.
	DiscardFallback
)

// String returns the policy name.
func (p DiscardPolicy) String() string {
	switch p {
	case DiscardHard:
		return "hard"
	case DiscardFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// ZeroWeightPolicy selects what an invocation produces when every neighbour
// of its footprint was rejected.
type ZeroWeightPolicy int

const (
	// ZeroWeightPropagate writes the unguarded 0/0 result (NaN channels).
	ZeroWeightPropagate ZeroWeightPolicy = iota

	// ZeroWeightTransparent writes transparent black.
	ZeroWeightTransparent

	// ZeroWeightDiscard produces no write.
	ZeroWeightDiscard
)

// String returns the policy name.
func (p ZeroWeightPolicy) String() string {
	switch p {
	case ZeroWeightPropagate:
		return "propagate"
	case ZeroWeightTransparent:
		return "transparent"
	case ZeroWeightDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// Outcome classifies the result of one invocation.
type Outcome int

const (
	// OutcomeWritten means a blended color was produced.
	OutcomeWritten Outcome = iota

	// OutcomeMasked means the fallback color was produced.
	OutcomeMasked

	// OutcomeDiscarded means nothing is written.
	OutcomeDiscarded

	// OutcomeDegenerate means the footprint had zero total weight and the
	// zero-weight policy produced a color anyway.
	OutcomeDegenerate
)

// Writes reports whether the outcome carries a color to store.
func (o Outcome) Writes() bool {
	return o != OutcomeDiscarded
}

// FallbackGray returns the opaque mid-gray used by the masked variant.
func FallbackGray[F simdops.Float]() surface.Color[F] {
	return surface.Color[F]{fallbackGray, fallbackGray, fallbackGray, 1}
}

// KernelConfig configures a Kernel.
type KernelConfig[F simdops.Float] struct {
	Params     warp.Params
	Discard    DiscardPolicy
	Fallback   surface.Color[F]
	ZeroWeight ZeroWeightPolicy
	Ops        *simdops.Ops[F]
}

// Kernel runs one reprojection invocation: warp, primary validity test,
// weighted bilinear sampling and multisample resolve.
type Kernel[F simdops.Float] struct {
	params     warp.Params
	discard    DiscardPolicy
	fallback   surface.Color[F]
	zeroWeight ZeroWeightPolicy
	sampler    *Sampler[F]
}

// NewKernel creates a Kernel. The neighbour test shares the primary test's
// threshold, so bypassing reprojection accepts every texel.
func NewKernel[F simdops.Float](cfg KernelConfig[F]) *Kernel[F] {
	return &Kernel[F]{
		params:     cfg.Params,
		discard:    cfg.Discard,
		fallback:   cfg.Fallback,
		zeroWeight: cfg.ZeroWeight,
		sampler:    New(cfg.Params.Threshold(), cfg.Ops),
	}
}

// Params returns the warp parameters.
func (k *Kernel[F]) Params() warp.Params {
	return k.params
}

// Invoke produces the color for normalized coordinate c. The color is only
// meaningful when the outcome writes.
func (k *Kernel[F]) Invoke(src *surface.Image[F], c r2.Vec) (surface.Color[F], Outcome) {
	if !warp.Inside(c, k.params) {
		if k.discard == DiscardFallback {
			return k.fallback, OutcomeMasked
		}
		return surface.Color[F]{}, OutcomeDiscarded
	}

	out, ok := k.sampler.Resolve(src, warp.Warp(c, k.params))
	if ok {
		return out, OutcomeWritten
	}

	switch k.zeroWeight {
	case ZeroWeightTransparent:
		return surface.Color[F]{}, OutcomeDegenerate
	case ZeroWeightDiscard:
		return surface.Color[F]{}, OutcomeDiscarded
	default:
		return out, OutcomeDegenerate
	}
}
