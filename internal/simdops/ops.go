// Package simdops provides generic SIMD operations for float32 and float64 types.
// The sampler blends four neighbour colors per invocation through these
// function tables, so a single kernel serves both precision levels.
//
// With Profile-Guided Optimization (Go 1.22+), function pointer calls in hot paths
// can be devirtualized and inlined, achieving near-zero overhead.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides accelerated operations for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)

	// Accelerated reports whether the table dispatches to SIMD kernels.
	Accelerated bool
}

// Pre-instantiated operations for each float type.
var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
		Accelerated:      true,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
		Accelerated:      true,
	}
	scalar32 = scalarOps[float32]()
	scalar64 = scalarOps[float64]()
)

// For returns the SIMD Ops instance for type F.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Scalar returns a pure Go Ops instance for type F.
func Scalar[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&scalar32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&scalar64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Select returns the SIMD table when enabled, the scalar one otherwise.
func Select[F Float](enableSIMD bool) *Ops[F] {
	if enableSIMD {
		return For[F]()
	}
	return Scalar[F]()
}

// Info describes the instruction set the SIMD tables dispatch to.
func Info() string {
	return cpu.Info()
}

func scalarOps[F Float]() Ops[F] {
	return Ops[F]{
		DotProductUnsafe: func(a, b []F) F {
			var acc F
			for i := range a {
				acc += a[i] * b[i]
			}
			return acc
		},
		Sum: func(a []F) F {
			var acc F
			for _, v := range a {
				acc += v
			}
			return acc
		},
		Scale: func(dst, a []F, s F) {
			for i, v := range a {
				dst[i] = v * s
			}
		},
	}
}
