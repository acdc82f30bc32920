package sampler

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tphakala/go-dome-reproject/internal/simdops"
	"github.com/tphakala/go-dome-reproject/internal/surface"
	"github.com/tphakala/go-dome-reproject/internal/testutil"
)

var (
	black = surface.Color[float64]{0, 0, 0, 1}
	white = surface.Color[float64]{1, 1, 1, 1}
)

// newSingleWhite builds a 4x4 black image with one white texel at (2,2).
func newSingleWhite(t *testing.T) *surface.Image[float64] {
	t.Helper()
	img, err := surface.NewImage[float64](4, 4, 1)
	require.NoError(t, err)
	img.Fill(black)
	img.Set(2, 2, 0, white)
	return img
}

// newNoise builds an image with random opaque texels.
func newNoise(t *testing.T, w, h, samples int, seed uint64) *surface.Image[float64] {
	t.Helper()
	img, err := surface.NewImage[float64](w, h, samples)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range img.Pix {
		img.Pix[i] = rng.Float64()
	}
	return img
}

// =============================================================================
// Footprint
// =============================================================================

func TestFootprint_Interior(t *testing.T) {
	// tc = (0.75, 0.625) on 4x4 -> pixel (2.5, 2.0)
	fp := NewFootprint(r2.Vec{X: 0.75, Y: 0.625}, 4, 4)

	assert.Equal(t, [Neighbours]Texel{{2, 2}, {2, 3}, {3, 2}, {3, 3}}, fp.Texels)
	assert.Equal(t, [Neighbours]float64{0.5, 0, 0.5, 0}, fp.Weights)
}

// TestFootprint_BoundaryClamp verifies no neighbour ever exceeds dims-1 or
// drops below zero, however close the sample sits to the border.
func TestFootprint_BoundaryClamp(t *testing.T) {
	dims := [][2]int{{1, 1}, {4, 4}, {7, 3}, {16, 9}}
	for _, d := range dims {
		w, h := d[0], d[1]
		for _, tx := range []float64{0, 1e-9, 0.5, 1 - 1e-9, 1, 1.2, -0.3} {
			for _, ty := range []float64{0, 0.25, 1 - 1e-12, 1} {
				fp := NewFootprint(r2.Vec{X: tx, Y: ty}, w, h)
				for _, tex := range fp.Texels {
					assert.GreaterOrEqual(t, tex.X, 0)
					assert.GreaterOrEqual(t, tex.Y, 0)
					assert.LessOrEqual(t, tex.X, w-1, "dims %dx%d tc (%v,%v)", w, h, tx, ty)
					assert.LessOrEqual(t, tex.Y, h-1, "dims %dx%d tc (%v,%v)", w, h, tx, ty)
				}
				var sum float64
				for _, wt := range fp.Weights {
					sum += wt
				}
				assert.InDelta(t, 1.0, sum, 1e-12)
			}
		}
	}
}

// TestFootprint_BorderDegeneracy checks low and high coincide at the far edge.
func TestFootprint_BorderDegeneracy(t *testing.T) {
	fp := NewFootprint(r2.Vec{X: 1, Y: 1}, 4, 4) // pixel (3.5, 3.5)
	for _, tex := range fp.Texels {
		assert.Equal(t, Texel{3, 3}, tex)
	}
}

// =============================================================================
// Single-sample blending
// =============================================================================

// TestSample_SingleWhiteTexel reproduces the 4x4 white-texel scenario with
// bypassed reprojection (unbounded validity).
func TestSample_SingleWhiteTexel(t *testing.T) {
	img := newSingleWhite(t)
	s := New[float64](math.Inf(1), nil)

	got, ok := s.Sample(img, r2.Vec{X: 0.625, Y: 0.625}) // pixel (2.0, 2.0)
	require.True(t, ok)
	assert.Equal(t, white, got)

	got, ok = s.Sample(img, r2.Vec{X: 0.75, Y: 0.625}) // pixel (2.5, 2.0)
	require.True(t, ok)
	testutil.AssertColorInDelta(t, surface.Color[float64]{0.5, 0.5, 0.5, 1}, got, 1e-12)
}

// TestSample_WeightNormalization verifies the masked weights sum into (0, 1]
// and the blend is a convex combination of the valid neighbours.
func TestSample_WeightNormalization(t *testing.T) {
	img := newNoise(t, 9, 7, 1, 42)
	s := New[float64](1.0, nil)
	rng := rand.New(rand.NewPCG(1, 2))

	checked := 0
	for range 2000 {
		tc := r2.Vec{X: rng.Float64(), Y: rng.Float64()}
		fp := NewFootprint(tc, img.Width, img.Height)
		w := s.MaskedWeights(fp, img.Width, img.Height)

		var total float64
		var valid []surface.Color[float64]
		for i, wt := range w {
			assert.GreaterOrEqual(t, wt, 0.0)
			total += wt
			if wt > 0 {
				valid = append(valid, img.At(fp.Texels[i].X, fp.Texels[i].Y, 0))
			}
		}
		if len(valid) == 0 {
			continue
		}
		checked++

		assert.Greater(t, total, 0.0)
		assert.LessOrEqual(t, total, 1.0+1e-12)

		got, ok := s.Sample(img, tc)
		require.True(t, ok)
		testutil.AssertConvex(t, got, valid, 1e-12)
	}
	assert.Positive(t, checked)
}

// TestSample_InvalidNeighbourGetsZeroWeight blends next to the corner texel,
// which lies outside the unit circle on a 4x4 grid.
func TestSample_InvalidNeighbourGetsZeroWeight(t *testing.T) {
	img, err := surface.NewImage[float64](4, 4, 1)
	require.NoError(t, err)
	img.Fill(black)
	img.Set(0, 0, 0, white) // world (-0.75,-0.75): outside

	s := New[float64](1.0, nil)
	// pixel (0.5, 0.5): equal weights over (0,0),(0,1),(1,0),(1,1)
	got, ok := s.Sample(img, r2.Vec{X: 0.25, Y: 0.25})
	require.True(t, ok)
	assert.Equal(t, black, got, "rejected white corner must not leak into the blend")

	bypass := New[float64](math.Inf(1), nil)
	got, ok = bypass.Sample(img, r2.Vec{X: 0.25, Y: 0.25})
	require.True(t, ok)
	testutil.AssertColorInDelta(t, surface.Color[float64]{0.25, 0.25, 0.25, 1}, got, 1e-12)
}

// TestSample_ZeroWeightIsNaN documents the unguarded division: when all four
// neighbours are rejected the blend is 0/0.
func TestSample_ZeroWeightIsNaN(t *testing.T) {
	img := newSingleWhite(t)
	s := New[float64](1.0, nil)

	// pixel (3.5, 3.5): every neighbour clamps to corner texel (3,3), outside.
	got, ok := s.Sample(img, r2.Vec{X: 1, Y: 1})
	assert.False(t, ok)
	for ch := range surface.Channels {
		assert.True(t, math.IsNaN(got[ch]), "channel %d = %v, want NaN", ch, got[ch])
	}
}

// =============================================================================
// Multisample resolve
// =============================================================================

// TestResolve_SingleSampleMatchesSample verifies N=1 adds no accumulation
// artifacts: the resolver output is bit-identical to the sampler output.
func TestResolve_SingleSampleMatchesSample(t *testing.T) {
	img := newNoise(t, 11, 5, 1, 7)
	for _, ops := range []*simdops.Ops[float64]{simdops.For[float64](), simdops.Scalar[float64]()} {
		s := New(1.0, ops)
		rng := rand.New(rand.NewPCG(3, 4))
		for range 500 {
			tc := r2.Vec{X: rng.Float64(), Y: rng.Float64()}
			want, wantOK := s.Sample(img, tc)
			got, gotOK := s.Resolve(img, tc)
			assert.Equal(t, wantOK, gotOK)
			if wantOK {
				assert.Equal(t, want, got)
			}
		}
	}
}

// TestResolve_AveragesSubSamples checks the joint normalization by sample
// count and weight sum.
func TestResolve_AveragesSubSamples(t *testing.T) {
	img, err := surface.NewImage[float64](4, 4, 4)
	require.NoError(t, err)
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, 0, surface.Color[float64]{1, 0, 0, 1})
			img.Set(x, y, 1, surface.Color[float64]{0, 1, 0, 1})
			img.Set(x, y, 2, surface.Color[float64]{0, 0, 1, 1})
			img.Set(x, y, 3, surface.Color[float64]{1, 1, 1, 1})
		}
	}

	s := New[float64](1.0, nil)
	got, ok := s.Resolve(img, r2.Vec{X: 0.5, Y: 0.5})
	require.True(t, ok)
	testutil.AssertColorInDelta(t, surface.Color[float64]{0.5, 0.5, 0.5, 1}, got, 1e-12)

	// Sample reads only sub-sample 0.
	got, ok = s.Sample(img, r2.Vec{X: 0.5, Y: 0.5})
	require.True(t, ok)
	testutil.AssertColorInDelta(t, surface.Color[float64]{1, 0, 0, 1}, got, 1e-12)
}

// TestResolve_MatchesPerSampleAverage verifies that resolving equals the mean
// of the per-sample blends, since validity is shared by all sub-samples.
func TestResolve_MatchesPerSampleAverage(t *testing.T) {
	const samples = 3
	img := newNoise(t, 6, 6, samples, 99)
	s := New[float64](1.0, simdops.Scalar[float64]())

	layers := make([]*surface.Image[float64], samples)
	for smp := range samples {
		l, err := surface.NewImage[float64](6, 6, 1)
		require.NoError(t, err)
		for y := range 6 {
			for x := range 6 {
				l.Set(x, y, 0, img.At(x, y, smp))
			}
		}
		layers[smp] = l
	}

	rng := rand.New(rand.NewPCG(5, 6))
	for range 300 {
		tc := r2.Vec{X: rng.Float64(), Y: rng.Float64()}
		got, ok := s.Resolve(img, tc)
		if !ok {
			continue
		}
		var want surface.Color[float64]
		for _, l := range layers {
			c, _ := s.Sample(l, tc)
			for ch := range surface.Channels {
				want[ch] += c[ch] / samples
			}
		}
		testutil.AssertColorInDelta(t, want, got, 1e-12)
	}
}

func TestResolve_Float32(t *testing.T) {
	img, err := surface.NewImage[float32](4, 4, 2)
	require.NoError(t, err)
	img.Fill(surface.Color[float32]{0.25, 0.5, 0.75, 1})

	s := New[float32](float64(1), nil)
	got, ok := s.Resolve(img, r2.Vec{X: 0.4, Y: 0.6})
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{0.25, 0.5, 0.75, 1}, got[:], 1e-6)
}

func BenchmarkResolve(b *testing.B) {
	img, err := surface.NewImage[float64](256, 256, 4)
	require.NoError(b, err)
	s := New[float64](1.0, nil)
	tc := r2.Vec{X: 0.37, Y: 0.61}

	b.ReportAllocs()
	for b.Loop() {
		_, _ = s.Resolve(img, tc)
	}
}
