// Package delaunay provides queryable Delaunay triangulations and convex
// hulls of point sets in two or more dimensions.
//
// The geometry kernel keeps a single process-wide workspace. Every handle
// owns a compressed snapshot of its own workspace, and a process-wide
// arbiter swaps snapshots in and out so that any number of handles can be
// used from any number of goroutines.
//
// # Quick Start
//
//	tri, err := delaunay.New(points)
//	if err != nil {
//		return err
//	}
//	defer tri.Close()
//
//	simplices, _ := tri.Simplices()
//	idx, _ := tri.FindSimplex(ctx, queries)
//
// # Incremental Construction
//
// Incremental handles buffer added points and insert them on Flush. Queries
// reflect the state as of the last flush:
//
//	tri, _ := delaunay.New(points, delaunay.WithIncremental(true))
//	_ = tri.AddPoints(more)
//	_, _ = tri.Flush(false)
//
// Incremental handles do not rescale the paraboloid and do not add a point
// at infinity, so ScaleLast and PointAtInfinity are rejected.
//
// # Point Location
//
// FindSimplex climbs the lifted paraboloid towards the target, walks along
// negative barycentric coordinates and falls back to scanning every simplex
// when the walk is inconclusive. Degenerate simplices carry a singular
// Transform and are handled by the scan.
//
//	s, _ := tri.FindSimplexPoint([]float64{0.5, 0.5}, delaunay.WithTolerance(1e-9))
//
// # Archives
//
// Save writes a handle, including its kernel workspace, to a blobstore.Store.
// Load restores it without re-triangulating:
//
//	store := blobstore.NewLocalStore("./archives")
//	_ = tri.Save(ctx, store, "mesh")
//	tri2, _ := delaunay.Load(ctx, store, "mesh")
//
// The blobstore/s3 and blobstore/minio packages provide cloud backends.
package delaunay
