// Package surface holds the float RGBA images the reprojection kernel reads
// from and writes to, including multisampled intermediate images.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/tphakala/go-dome-reproject/internal/simdops"
)

// Channels is the number of color channels per sample (RGBA).
const Channels = 4

// ErrInvalidImage indicates an image with unusable dimensions or layout.
var ErrInvalidImage = errors.New("invalid image")

// Color is a straight RGBA color with float channels.
type Color[F simdops.Float] [Channels]F

// Image is a 2D grid of RGBA float samples with one or more sub-samples per
// texel. Pix is laid out texel-major, then sample, then channel:
// Pix[((y*Width+x)*Samples+s)*4+ch].
type Image[F simdops.Float] struct {
	Width   int
	Height  int
	Samples int
	Pix     []F
}

// NewImage allocates a zeroed image.
func NewImage[F simdops.Float](width, height, samples int) (*Image[F], error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidImage, width, height)
	}
	if samples < 1 || samples > MaxSamples {
		return nil, fmt.Errorf("%w: sample count must be 1-%d, got %d", ErrInvalidImage, MaxSamples, samples)
	}

	return &Image[F]{
		Width:   width,
		Height:  height,
		Samples: samples,
		Pix:     make([]F, width*height*samples*Channels),
	}, nil
}

// Validate checks that the pixel buffer matches the declared layout.
func (m *Image[F]) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: image is nil", ErrInvalidImage)
	}
	if m.Width < 1 || m.Height < 1 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidImage, m.Width, m.Height)
	}
	if m.Samples < 1 || m.Samples > MaxSamples {
		return fmt.Errorf("%w: sample count must be 1-%d, got %d", ErrInvalidImage, MaxSamples, m.Samples)
	}
	if want := m.Width * m.Height * m.Samples * Channels; len(m.Pix) != want {
		return fmt.Errorf("%w: pixel buffer has %d values, want %d", ErrInvalidImage, len(m.Pix), want)
	}
	return nil
}

// Offset returns the index of the first channel of sample s at texel (x, y).
func (m *Image[F]) Offset(x, y, s int) int {
	return ((y*m.Width+x)*m.Samples + s) * Channels
}

// At returns sample s of texel (x, y).
func (m *Image[F]) At(x, y, s int) Color[F] {
	var c Color[F]
	i := m.Offset(x, y, s)
	copy(c[:], m.Pix[i:i+Channels])
	return c
}

// Set stores c into sample s of texel (x, y).
func (m *Image[F]) Set(x, y, s int, c Color[F]) {
	i := m.Offset(x, y, s)
	copy(m.Pix[i:i+Channels], c[:])
}

// SetAll stores c into every sample of texel (x, y).
func (m *Image[F]) SetAll(x, y int, c Color[F]) {
	for s := range m.Samples {
		m.Set(x, y, s, c)
	}
}

// Fill sets every sample of every texel to c.
func (m *Image[F]) Fill(c Color[F]) {
	for i := 0; i < len(m.Pix); i += Channels {
		copy(m.Pix[i:i+Channels], c[:])
	}
}

// SampleSpan returns the contiguous values of all sub-samples at (x, y).
func (m *Image[F]) SampleSpan(x, y int) []F {
	i := m.Offset(x, y, 0)
	return m.Pix[i : i+m.Samples*Channels]
}

// FromImage converts img into a single-sampled float image. Channel values
// are un-premultiplied and normalized to [0, 1].
func FromImage[F simdops.Float](img image.Image) (*Image[F], error) {
	return FromLayers[F](img)
}

// FromLayers builds a multisampled image with one sub-sample per layer.
// All layers must share the same bounds.
func FromLayers[F simdops.Float](layers ...image.Image) (*Image[F], error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidImage)
	}

	bounds := layers[0].Bounds()
	for i, l := range layers[1:] {
		if l.Bounds().Size() != bounds.Size() {
			return nil, fmt.Errorf("%w: layer %d is %v, want %v", ErrInvalidImage, i+1, l.Bounds().Size(), bounds.Size())
		}
	}

	out, err := NewImage[F](bounds.Dx(), bounds.Dy(), len(layers))
	if err != nil {
		return nil, err
	}

	for s, l := range layers {
		lb := l.Bounds()
		for y := range out.Height {
			for x := range out.Width {
				c := color.NRGBA64Model.Convert(l.At(lb.Min.X+x, lb.Min.Y+y)).(color.NRGBA64)
				out.Set(x, y, s, Color[F]{
					F(float64(c.R) / maxChannel16),
					F(float64(c.G) / maxChannel16),
					F(float64(c.B) / maxChannel16),
					F(float64(c.A) / maxChannel16),
				})
			}
		}
	}
	return out, nil
}

// ToNRGBA64 converts sample 0 of every texel to a 16-bit image. Channels are
// clamped to [0, 1]; non-finite channels become 0.
func (m *Image[F]) ToNRGBA64() *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for y := range m.Height {
		for x := range m.Width {
			c := m.At(x, y, 0)
			out.SetNRGBA64(x, y, color.NRGBA64{
				R: quantize16(float64(c[0])),
				G: quantize16(float64(c[1])),
				B: quantize16(float64(c[2])),
				A: quantize16(float64(c[3])),
			})
		}
	}
	return out
}

func quantize16(v float64) uint16 {
	// NaN fails both comparisons and falls through to 0.
	switch {
	case v >= 1:
		return 0xffff
	case v > 0:
		return uint16(v*maxChannel16 + roundingOffset)
	default:
		return 0
	}
}
