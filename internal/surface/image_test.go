package surface

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImage_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		w, h, samples    int
		wantErrSubstring string
	}{
		{"zero width", 0, 4, 1, "dimensions"},
		{"negative height", 4, -1, 1, "dimensions"},
		{"zero samples", 4, 4, 0, "sample count"},
		{"too many samples", 4, 4, MaxSamples + 1, "sample count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImage[float64](tt.w, tt.h, tt.samples)
			require.ErrorIs(t, err, ErrInvalidImage)
			assert.Contains(t, err.Error(), tt.wantErrSubstring)
		})
	}
}

func TestImage_Layout(t *testing.T) {
	m, err := NewImage[float32](3, 2, 4)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Len(t, m.Pix, 3*2*4*Channels)

	c := Color[float32]{0.1, 0.2, 0.3, 0.4}
	m.Set(2, 1, 3, c)
	assert.Equal(t, c, m.At(2, 1, 3))
	assert.Equal(t, len(m.Pix)-Channels, m.Offset(2, 1, 3), "last sample of last texel ends the buffer")

	span := m.SampleSpan(2, 1)
	assert.Len(t, span, 4*Channels)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, span[3*Channels:])
}

func TestImage_ValidateBufferMismatch(t *testing.T) {
	m := &Image[float64]{Width: 2, Height: 2, Samples: 1, Pix: make([]float64, 3)}
	err := m.Validate()
	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "pixel buffer")

	var nilImage *Image[float64]
	require.ErrorIs(t, nilImage.Validate(), ErrInvalidImage)
}

func TestImage_FillAndSetAll(t *testing.T) {
	m, err := NewImage[float64](2, 2, 2)
	require.NoError(t, err)

	gray := Color[float64]{0.5, 0.5, 0.5, 1}
	m.Fill(gray)
	for y := range 2 {
		for x := range 2 {
			for s := range 2 {
				assert.Equal(t, gray, m.At(x, y, s))
			}
		}
	}

	white := Color[float64]{1, 1, 1, 1}
	m.SetAll(1, 0, white)
	assert.Equal(t, white, m.At(1, 0, 0))
	assert.Equal(t, white, m.At(1, 0, 1))
	assert.Equal(t, gray, m.At(0, 0, 1))
}

func TestFromLayers(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	b := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	a.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	b.SetNRGBA(11, 10, color.NRGBA{G: 255, A: 255})

	m, err := FromLayers[float64](a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Samples)
	assert.Equal(t, Color[float64]{1, 0, 0, 1}, m.At(1, 0, 0))
	assert.Equal(t, Color[float64]{0, 1, 0, 1}, m.At(1, 0, 1))
	assert.Equal(t, Color[float64]{0, 0, 0, 0}, m.At(0, 0, 0))

	_, err = FromLayers[float64](a, image.NewNRGBA(image.Rect(0, 0, 3, 1)))
	require.ErrorIs(t, err, ErrInvalidImage)

	_, err = FromLayers[float64]()
	require.ErrorIs(t, err, ErrInvalidImage)
}

func TestToNRGBA64_RoundTrip(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 3, 3))
	for y := range 3 {
		for x := range 3 {
			src.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(x * 20000),
				G: uint16(y * 20000),
				B: 0xffff,
				A: 0x8000,
			})
		}
	}

	m, err := FromImage[float64](src)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, m.ToNRGBA64().Pix)
}

func TestToNRGBA64_ClampsAndDropsNaN(t *testing.T) {
	m, err := NewImage[float64](1, 1, 1)
	require.NoError(t, err)
	m.Set(0, 0, 0, Color[float64]{math.NaN(), 2, -1, math.Inf(1)})

	got := m.ToNRGBA64().NRGBA64At(0, 0)
	assert.Equal(t, color.NRGBA64{R: 0, G: 0xffff, B: 0, A: 0xffff}, got)
}
