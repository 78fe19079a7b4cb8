// Package testutil provides seeded point generators and geometric ground
// truth for tests and benchmarks.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(100, 2)        // uniform in [0, 1)^2
//	box := rng.UniformRangePoints(50, 3, -1, 1)
//	ring := rng.CirclePoints(16, 1)         // cocircular, a degenerate input
//
// # Ground Truth
//
//	c := testutil.Centroid(pts, simplex)
//	inside := testutil.InCircumsphere(pts, simplex, q, 1e-12)
package testutil
