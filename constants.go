package reproject

// Strength limits
const (
	minStrength = 0.0 // Identity warp
	maxStrength = 1.0 // Full inverse fisheye
)

// Concurrency limits
const (
	maxWorkers = 1024 // Maximum concurrent bands
)

// Reported algorithm name.
const algorithmName = "radial-warp/masked-bilinear"
