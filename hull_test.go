package delaunay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/delaunay/testutil"
)

func newTestHull(t *testing.T, points [][]float64, opts ...Option) *ConvexHull {
	t.Helper()
	hull, err := NewConvexHull(points, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, hull.Close()) })
	return hull
}

func TestConvexHull_UnitSquare(t *testing.T) {
	points := append(unitSquare(), []float64{0.5, 0.5})
	hull := newTestHull(t, points)

	verts, err := hull.Vertices()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, verts)

	facets, err := hull.Simplices()
	require.NoError(t, err)
	require.Len(t, facets, 4)
	for _, f := range facets {
		assert.Len(t, f, 2)
	}

	equations, err := hull.Equations()
	require.NoError(t, err)
	for _, eq := range equations {
		require.Len(t, eq, 3)
		// The interior point lies below every facet.
		assert.Less(t, eq[0]*0.5+eq[1]*0.5+eq[2], 0.0)
	}

	area, err := hull.Area()
	require.NoError(t, err)
	assert.InDelta(t, 4, area, 1e-12)

	vol, err := hull.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 1, vol, 1e-12)
}

func TestConvexHull_Cube(t *testing.T) {
	hull := newTestHull(t, testutil.GridPoints(2, 3))

	n, err := hull.NSimplex()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	area, err := hull.Area()
	require.NoError(t, err)
	assert.InDelta(t, 6, area, 1e-12)

	vol, err := hull.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 1, vol, 1e-12)
}

func TestConvexHull_Sphere(t *testing.T) {
	rng := testutil.NewRNG(8)
	points := rng.SpherePoints(400, 3, 1)
	hull := newTestHull(t, points)

	verts, err := hull.Vertices()
	require.NoError(t, err)
	assert.Len(t, verts, 400)

	// Inscribed polytopes approach the sphere from below.
	area, err := hull.Area()
	require.NoError(t, err)
	assert.Less(t, area, 4*math.Pi)
	assert.Greater(t, area, 0.95*4*math.Pi)

	vol, err := hull.Volume()
	require.NoError(t, err)
	assert.Less(t, vol, 4*math.Pi/3)
	assert.Greater(t, vol, 0.9*4*math.Pi/3)
}

func TestConvexHull_Options(t *testing.T) {
	_, err := NewConvexHull(unitSquare(), WithKernelOptions(PointAtInfinity))
	var io *ErrIncompatibleOptions
	require.ErrorAs(t, err, &io)
	assert.Equal(t, PointAtInfinity, io.Options)

	hull := newTestHull(t, unitSquare())
	assert.Equal(t, KeepCoplanar, hull.KernelOptions())
}

func TestConvexHull_Incremental(t *testing.T) {
	hull := newTestHull(t, unitSquare(), WithIncremental(true))
	require.NoError(t, hull.AddPoints([][]float64{{0.5, 0.5}, {2, 2}}))

	touched, err := hull.Flush(false)
	require.NoError(t, err)
	assert.True(t, touched)

	verts, err := hull.Vertices()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 5}, verts)

	vol, err := hull.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 2, vol, 1e-12)
}
