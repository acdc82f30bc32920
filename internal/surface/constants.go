package surface

// Layout constants
const (
	// MaxSamples bounds the sub-sample count of a multisampled image.
	MaxSamples = 64

	// Largest 16-bit channel value.
	maxChannel16 = 65535.0

	// Round-half-up offset used when quantizing.
	roundingOffset = 0.5
)
