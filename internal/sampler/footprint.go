// Package sampler implements the validity-aware bilinear sampler and the
// multisample resolver used by the reprojection kernel.
package sampler

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Neighbours is the number of texels in a bilinear footprint.
const Neighbours = 4

// Texel is an integer coordinate into a source image.
type Texel struct {
	X, Y int
}

// Footprint holds the four neighbour texels of a continuous sample position
// and their unmasked bilinear weights, ordered
// (low.x,low.y), (low.x,high.y), (high.x,low.y), (high.x,high.y).
type Footprint struct {
	Texels  [Neighbours]Texel
	Weights [Neighbours]float64
}

// NewFootprint computes the bilinear footprint of texture coordinate tc in
// an image of the given dimensions.
//
// Every texel is clamped to [0, dims-1]. At the border low and high may
// coincide; the weights still sum to one, so the edge texel is repeated.
func NewFootprint(tc r2.Vec, width, height int) Footprint {
	px := tc.X*float64(width) - texelCenterOffset
	py := tc.Y*float64(height) - texelCenterOffset

	lowX := math.Floor(px)
	lowY := math.Floor(py)
	fx := px - lowX
	fy := py - lowY

	lx := clampIndex(int(lowX), width)
	ly := clampIndex(int(lowY), height)
	hx := clampIndex(min(int(lowX)+1, width-1), width)
	hy := clampIndex(min(int(lowY)+1, height-1), height)

	return Footprint{
		Texels: [Neighbours]Texel{
			{lx, ly},
			{lx, hy},
			{hx, ly},
			{hx, hy},
		},
		Weights: [Neighbours]float64{
			(1 - fx) * (1 - fy),
			(1 - fx) * fy,
			fx * (1 - fy),
			fx * fy,
		},
	}
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}
