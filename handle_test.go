package delaunay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/delaunay/testutil"
)

// incrementalBase has no four cocircular points: without the point at
// infinity the lifted input must span the full dimension.
func incrementalBase() [][]float64 {
	return [][]float64{{0, 0}, {2, 0}, {0, 2}, {2.2, 2.1}}
}

func TestFlush(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		tri := newTestDelaunay(t, incrementalBase(), WithIncremental(true))
		require.NoError(t, tri.AddPoints([][]float64{{1, 0.5}}))

		touched, err := tri.Flush(false)
		require.NoError(t, err)
		assert.True(t, touched)

		touched, err = tri.Flush(false)
		require.NoError(t, err)
		assert.False(t, touched)
		assert.Equal(t, 5, tri.NPoints())
	})

	t.Run("EmptyBuffer", func(t *testing.T) {
		tri := newTestDelaunay(t, incrementalBase(), WithIncremental(true))

		require.NoError(t, tri.AddPoints(nil))
		touched, err := tri.Flush(false)
		require.NoError(t, err)
		assert.False(t, touched)

		require.NoError(t, tri.AddPoints(nil))
		touched, err = tri.Flush(true)
		require.NoError(t, err)
		assert.True(t, touched)
		assert.Equal(t, 4, tri.NPoints())
	})

	t.Run("AccessorsReflectLastFlush", func(t *testing.T) {
		tri := newTestDelaunay(t, incrementalBase(), WithIncremental(true))
		require.NoError(t, tri.AddPoints([][]float64{{1, 1}}))

		n, err := tri.NSimplex()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 4, tri.NPoints())

		_, err = tri.Flush(false)
		require.NoError(t, err)
		n, err = tri.NSimplex()
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Len(t, tri.Points(), 5)
	})

	t.Run("Monotone", func(t *testing.T) {
		rng := testutil.NewRNG(99)
		tri := newTestDelaunay(t, rng.UniformPoints(10, 2), WithIncremental(true))
		assert.Equal(t, KeepCoplanar, tri.KernelOptions())
		assert.True(t, tri.Incremental())

		prevSimplices, err := tri.NSimplex()
		require.NoError(t, err)
		prevPoints := tri.NPoints()
		for i := 0; i < 10; i++ {
			require.NoError(t, tri.AddPoints(rng.UniformPoints(10, 2)))
			_, err := tri.Flush(false)
			require.NoError(t, err)

			n, err := tri.NSimplex()
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, prevSimplices)
			assert.GreaterOrEqual(t, tri.NPoints(), prevPoints)
			prevSimplices, prevPoints = n, tri.NPoints()
		}
		assert.Equal(t, 110, prevPoints)

		points := tri.Points()
		simplices, err := tri.Simplices()
		require.NoError(t, err)
		for _, s := range simplices {
			for i, p := range points {
				if s[0] == i || s[1] == i || s[2] == i {
					continue
				}
				assert.False(t, testutil.InCircumsphere(points, s, p, 1e-9))
			}
		}
	})

	t.Run("InteriorPointsKeepIDs", func(t *testing.T) {
		tri := newTestDelaunay(t, incrementalBase(), WithIncremental(true))
		// A duplicate is not inserted but still takes the next id.
		require.NoError(t, tri.AddPoints([][]float64{{2.2, 2.1}, {1, 1}}))
		_, err := tri.Flush(false)
		require.NoError(t, err)

		simplices, err := tri.Simplices()
		require.NoError(t, err)
		seen := map[int]bool{}
		for _, s := range simplices {
			for _, v := range s {
				seen[v] = true
			}
		}
		assert.False(t, seen[4])
		assert.True(t, seen[5])

		v2s, err := tri.VertexToSimplex()
		require.NoError(t, err)
		assert.Equal(t, -1, v2s[4])
	})

	t.Run("FailedInsertion", func(t *testing.T) {
		mc := &BasicMetricsCollector{}
		tri := newTestDelaunay(t, incrementalBase(), WithIncremental(true), WithMetricsCollector(mc))
		require.NoError(t, tri.AddPoints([][]float64{{math.NaN(), 0.5}, {1, 1}}))

		touched, err := tri.Flush(false)
		assert.True(t, touched)
		var te *TriangulationError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "flush", te.Op)
		assert.Equal(t, ExitInput, te.Code)
		assert.Equal(t, 6, tri.NPoints())
		assert.Equal(t, int64(1), mc.GetStats().FlushErrors)

		_, err = tri.Simplices()
		assert.ErrorIs(t, err, ErrUnusable)
		assert.ErrorIs(t, tri.AddPoints([][]float64{{0.1, 0.1}}), ErrUnusable)
		_, err = tri.Flush(true)
		assert.ErrorIs(t, err, ErrUnusable)
	})

	t.Run("MemoryLimit", func(t *testing.T) {
		rc := NewResourceController(ResourceConfig{MemoryLimitBytes: 1024})
		tri := newTestDelaunay(t, incrementalBase(), WithIncremental(true), WithResourceController(rc))

		// 10 rows of 3 floats fit, 100 do not.
		require.NoError(t, tri.AddPoints(testutil.NewRNG(1).UniformPoints(10, 2)))
		assert.Equal(t, int64(240), rc.MemoryUsage())
		err := tri.AddPoints(testutil.NewRNG(2).UniformPoints(100, 2))
		assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

		_, err = tri.Flush(false)
		require.NoError(t, err)
		assert.Equal(t, 14, tri.NPoints())
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		tri := newTestDelaunay(t, incrementalBase(), WithIncremental(true))
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, tri.AddPoints([][]float64{{1, 2, 3}}), &dm)
	})
}

func TestHandle_BoundsSkipNaN(t *testing.T) {
	h := &handle{ndim: 2}
	h.appendBlock([]float64{math.NaN(), 1, 2, math.NaN(), -1, 3})
	assert.Equal(t, []float64{-1, 1}, h.minBound)
	assert.Equal(t, []float64{2, 3}, h.maxBound)
	assert.Len(t, h.rows, 3)
}
