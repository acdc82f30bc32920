// Package testutil provides reusable test helper functions for reprojection tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-12
	Float32Tolerance = 1e-6
)

// AssertColorInDelta verifies every channel of actual is within delta of expected.
func AssertColorInDelta[F simdops.Float](t *testing.T, expected, actual surface.Color[F], delta float64, msgAndArgs ...any) bool {
	t.Helper()
	for ch := range surface.Channels {
		if !assert.InDelta(t, float64(expected[ch]), float64(actual[ch]), delta, msgAndArgs...) {
			return false
		}
	}
	return true
}

// AssertConvex verifies that each channel of c lies within the per-channel
// [min, max] of the given colors, allowing delta of rounding.
func AssertConvex[F simdops.Float](t *testing.T, c surface.Color[F], of []surface.Color[F], delta float64) bool {
	t.Helper()
	if len(of) == 0 {
		return assert.Fail(t, "no colors to bound the blend")
	}
	for ch := range surface.Channels {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, o := range of {
			lo = min(lo, float64(o[ch]))
			hi = max(hi, float64(o[ch]))
		}
		v := float64(c[ch])
		if v < lo-delta || v > hi+delta {
			return assert.Fail(t, "blend overshoots its neighbours",
				"channel %d = %v outside [%v, %v]", ch, v, lo, hi)
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no sample in the image is NaN or Inf.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, img *surface.Image[F]) bool {
	t.Helper()
	for i, v := range img.Pix {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "Pix[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "Pix[%d] is Inf", i)
		}
	}
	return true
}

// AssertImagesEqual verifies two images are bit-identical.
func AssertImagesEqual[F simdops.Float](t *testing.T, expected, actual *surface.Image[F]) bool {
	t.Helper()
	if !assert.Equal(t, expected.Width, actual.Width) ||
		!assert.Equal(t, expected.Height, actual.Height) ||
		!assert.Equal(t, expected.Samples, actual.Samples) ||
		!assert.Len(t, actual.Pix, len(expected.Pix)) {
		return false
	}
	for i := range expected.Pix {
		e, a := expected.Pix[i], actual.Pix[i]
		// NaN != NaN; two NaNs at the same index count as equal here.
		if e != a && !(e != e && a != a) {
			return assert.Fail(t, "images differ",
				"Pix[%d]: expected %v, actual %v", i, e, a)
		}
	}
	return true
}
