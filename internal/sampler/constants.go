package sampler

// Sampling constants
const (
	// Offset from a texel's corner to its centre in pixel units.
	texelCenterOffset = 0.5

	// Mid-gray opaque fallback used by the masked variant.
	fallbackGray = 0.5
)
