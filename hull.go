package delaunay

import (
	"math"

	"github.com/hupe1980/delaunay/internal/linalg"
)

// ConvexHull is the convex hull of a point set. Its simplices are the hull
// facets, ndim point indices each, with outward-pointing equations.
type ConvexHull struct {
	*handle
}

// NewConvexHull computes the convex hull of points.
func NewConvexHull(points [][]float64, opts ...Option) (*ConvexHull, error) {
	h, err := newHandle(points, false, opts)
	if err != nil {
		return nil, err
	}
	return &ConvexHull{handle: h}, nil
}

// Vertices returns the sorted indices of the points on the hull.
func (c *ConvexHull) Vertices() ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ensureMesh(); err != nil {
		return nil, err
	}
	return c.mesh.Vertices(), nil
}

// Area returns the (ndim-1)-measure of the hull boundary. In 2-D this is
// the perimeter.
func (c *ConvexHull) Area() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.ensureMesh()
	if err != nil {
		return 0, err
	}

	n := c.ndim
	k := n - 1
	norm := factorial(k)
	edges := make([]float64, k*n)

	var area float64
	for _, f := range m.Simplices {
		base := c.rows[f[0]]
		for i := 1; i < len(f); i++ {
			v := c.rows[f[i]]
			for j := 0; j < n; j++ {
				edges[(i-1)*n+j] = v[j] - base[j]
			}
		}
		area += math.Sqrt(linalg.GramDet(k, n, edges)) / norm
	}
	return area, nil
}

// Volume returns the ndim-measure of the hull, summed over the cones from
// the hull centroid to every facet.
func (c *ConvexHull) Volume() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.ensureMesh()
	if err != nil {
		return 0, err
	}

	n := c.ndim
	verts := c.mesh.Vertices()
	if len(verts) == 0 {
		return 0, nil
	}
	center := make([]float64, n)
	for _, v := range verts {
		for j, x := range c.rows[v] {
			center[j] += x
		}
	}
	for j := range center {
		center[j] /= float64(len(verts))
	}

	norm := factorial(n)
	a := make([]float64, n*n)

	var vol float64
	for _, f := range m.Simplices {
		for i, id := range f {
			for j, x := range c.rows[id] {
				a[i*n+j] = x - center[j]
			}
		}
		lu, ok := linalg.Factorize(n, a)
		if !ok {
			continue
		}
		vol += math.Abs(lu.Det()) / norm
	}
	return vol, nil
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
