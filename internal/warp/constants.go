package warp

// Warp constants
const (
	// Squared radius of the captured image circle in normalized space.
	circleThreshold = 1.0

	// Half scale used by the centering transform and the base term.
	halfScale = 0.5
)
