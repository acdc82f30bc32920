package sampler

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
	"github.com/tphakala/go-dome-reproject/internal/warp"
)

// Sampler blends the bilinear footprint of a texture coordinate, giving zero
// weight to neighbours whose texel centre falls outside the valid circle.
//
// A Sampler holds no per-invocation state and is safe for concurrent use.
type Sampler[F simdops.Float] struct {
	ops       *simdops.Ops[F]
	threshold float64
}

// New creates a Sampler that rejects texels with squared world radius at or
// above threshold.
func New[F simdops.Float](threshold float64, ops *simdops.Ops[F]) *Sampler[F] {
	if ops == nil {
		ops = simdops.For[F]()
	}
	return &Sampler[F]{ops: ops, threshold: threshold}
}

// Threshold returns the neighbour validity bound.
func (s *Sampler[F]) Threshold() float64 {
	return s.threshold
}

// MaskedWeights returns the footprint weights with invalid neighbours zeroed.
func (s *Sampler[F]) MaskedWeights(fp Footprint, width, height int) [Neighbours]F {
	var w [Neighbours]F
	for i, t := range fp.Texels {
		if warp.TexelValid(t.X, t.Y, width, height, s.threshold) {
			w[i] = F(fp.Weights[i])
		}
	}
	return w
}

// Sample blends sub-sample 0 of the footprint around tc. The second result
// is false when every neighbour was rejected; the color then holds the
// unguarded 0/0 quotient (NaN channels).
func (s *Sampler[F]) Sample(src *surface.Image[F], tc r2.Vec) (surface.Color[F], bool) {
	return s.blend(src, tc, 1)
}

// Resolve blends every sub-sample of the footprint around tc, normalizing by
// the sample count and the masked weight sum in one division. For a
// single-sampled image the result is identical to Sample.
func (s *Sampler[F]) Resolve(src *surface.Image[F], tc r2.Vec) (surface.Color[F], bool) {
	return s.blend(src, tc, src.Samples)
}

func (s *Sampler[F]) blend(src *surface.Image[F], tc r2.Vec, samples int) (surface.Color[F], bool) {
	fp := NewFootprint(tc, src.Width, src.Height)
	w := s.MaskedWeights(fp, src.Width, src.Height)

	// acc[ch][i] is channel ch summed over the sub-samples of neighbour i.
	// Validity is per texel, so all sub-samples share w[i].
	var acc [surface.Channels][Neighbours]F
	for i, t := range fp.Texels {
		span := src.SampleSpan(t.X, t.Y)
		for ch := range surface.Channels {
			acc[ch][i] = span[ch]
		}
		for smp := 1; smp < samples; smp++ {
			base := smp * surface.Channels
			for ch := range surface.Channels {
				acc[ch][i] += span[base+ch]
			}
		}
	}

	total := s.ops.Sum(w[:])
	norm := F(samples) * total

	var out surface.Color[F]
	for ch := range surface.Channels {
		out[ch] = s.ops.DotProductUnsafe(w[:], acc[ch][:]) / norm
	}
	return out, total > 0
}
