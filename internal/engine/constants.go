package engine

// Band partitioning constants
const (
	// Target number of bands per worker, for load balancing between the
	// cheap discarded rim rows and the full interior rows.
	bandsPerWorker = 4

	// Smallest band height in rows.
	minBandRows = 1
)
