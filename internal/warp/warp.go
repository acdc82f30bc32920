// Package warp implements the inverse radial projection that maps a
// destination coordinate back into a dome/fisheye intermediate image, and the
// circle tests that decide which coordinates and texels carry real data.
package warp

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Params controls the radial warp for one pass.
//
// Strength is meaningful only when Bypass is false. Callers must keep it in
// [0, 1]; values outside that range can drive the warp denominator to zero.
type Params struct {
	Strength float64
	Bypass   bool
}

// EffectiveStrength returns the strength the warp actually applies.
func (p Params) EffectiveStrength() float64 {
	if p.Bypass {
		return 0
	}
	return p.Strength
}

// Threshold returns the squared-radius bound of the valid domain: the unit
// circle, or an unbounded domain when reprojection is bypassed.
func (p Params) Threshold() float64 {
	if p.Bypass {
		return math.Inf(1)
	}
	return circleThreshold
}

// Mag2 returns dot(c, c).
func Mag2(c r2.Vec) float64 {
	return r2.Dot(c, c)
}

// Warp maps a normalized coordinate c in [-1,1]^2 to a texture coordinate in
// [0,1]^2 of the intermediate image, with Y flipped to image row order.
//
// With an effective strength of zero the map is the pure centering flip.
func Warp(c r2.Vec, p Params) r2.Vec {
	f := p.EffectiveStrength()
	base := halfScale*(1+Mag2(c))*f + (1 - f)
	w := r2.Scale(1/base, c)

	return r2.Vec{
		X: halfScale * (1 + w.X),
		Y: halfScale * (1 - w.Y),
	}
}

// Inside reports whether c lies in the supported field of view.
// A bypassed pass accepts every coordinate.
func Inside(c r2.Vec, p Params) bool {
	return Mag2(c) < p.Threshold()
}

// TexelWorld returns the normalized coordinate of the centre of texel (x, y)
// in an image of the given dimensions.
func TexelWorld(x, y, width, height int) r2.Vec {
	return r2.Vec{
		X: float64(2*x+1)/float64(width) - 1,
		Y: float64(2*y+1)/float64(height) - 1,
	}
}

// TexelValid reports whether texel (x, y) maps back inside the captured
// circle, i.e. whether it may contribute to a blend.
func TexelValid(x, y, width, height int, threshold float64) bool {
	return Mag2(TexelWorld(x, y, width, height)) < threshold
}

// PixelCenter returns the normalized coordinate a full-screen quad
// interpolates at the centre of destination pixel (x, y). Y points up.
func PixelCenter(x, y, width, height int) r2.Vec {
	return r2.Vec{
		X: float64(2*x+1)/float64(width) - 1,
		Y: 1 - float64(2*y+1)/float64(height),
	}
}
