package delaunay

// Delaunay is a Delaunay triangulation of a point set, computed as the
// lower hull of the points lifted onto a paraboloid.
//
// A Delaunay is safe for concurrent use. Accessors reflect the state as of
// the last Flush.
type Delaunay struct {
	*handle
}

// New triangulates points, each row holding ndim ≥ 2 coordinates.
//
// Example:
//
//	tri, err := delaunay.New([][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
//	if err != nil {
//		return err
//	}
//	defer tri.Close()
//
//	s, _ := tri.FindSimplexPoint([]float64{0.25, 0.25})
func New(points [][]float64, opts ...Option) (*Delaunay, error) {
	h, err := newHandle(points, true, opts)
	if err != nil {
		return nil, err
	}
	return &Delaunay{handle: h}, nil
}

// Paraboloid returns the scale and shift of the lifting map
// z = scale·|x|² + shift.
func (d *Delaunay) Paraboloid() (scale, shift float64) {
	return d.scale, d.shift
}

// LiftPoints maps every row of x onto the paraboloid, appending the lifted
// coordinate.
func (d *Delaunay) LiftPoints(x [][]float64) ([][]float64, error) {
	if _, err := validatePoints(x, d.ndim); err != nil {
		return nil, err
	}
	l := locator{ndim: d.ndim, scale: d.scale, shift: d.shift}
	out := make([][]float64, len(x))
	for i, p := range x {
		out[i] = l.lift(p, make([]float64, 0, d.ndim+1))
	}
	return out, nil
}

// PlaneDistance returns, for every simplex, the signed distance of the
// lifted x to the simplex hyperplane. Positive values mean x lies inside the
// circumsphere.
func (d *Delaunay) PlaneDistance(x []float64) ([]float64, error) {
	if len(x) != d.ndim {
		return nil, &ErrDimensionMismatch{Expected: d.ndim, Actual: len(x)}
	}

	d.mu.Lock()
	m, err := d.ensureMesh()
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l := locator{ndim: d.ndim, equations: m.Equations, scale: d.scale, shift: d.shift}
	z := l.lift(x, nil)
	out := make([]float64, len(m.Equations))
	for i := range out {
		out[i] = l.distplane(i, z)
	}
	return out, nil
}

// ensureTransforms builds the transform table for m unless cached.
func (d *Delaunay) ensureTransforms(m *Mesh) *TransformTable {
	if d.transforms == nil {
		d.transforms = buildTransforms(d.rows, m.Simplices, d.ndim)
	}
	return d.transforms
}

// Transforms returns the barycentric transform of every simplex.
func (d *Delaunay) Transforms() (*TransformTable, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, err := d.ensureMesh()
	if err != nil {
		return nil, err
	}
	return d.ensureTransforms(m), nil
}

func (d *Delaunay) ensureVertexToSimplex() ([]int, error) {
	if _, err := d.ensureMesh(); err != nil {
		return nil, err
	}
	if d.v2s == nil {
		d.v2s = d.mesh.VertexToSimplex(len(d.rows))
	}
	return d.v2s, nil
}

// VertexToSimplex maps every point to one simplex containing it, -1 for
// points that are not vertices of the triangulation.
func (d *Delaunay) VertexToSimplex() ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensureVertexToSimplex()
}

// ConvexHullFaces returns the boundary faces of the triangulation, ndim
// point indices each.
func (d *Delaunay) ConvexHullFaces() ([][]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.ensureMesh(); err != nil {
		return nil, err
	}
	return d.mesh.HullFaces(), nil
}

// VertexNeighborVertices returns the vertex adjacency in compressed sparse
// row form: the neighbors of point i are indices[indptr[i]:indptr[i+1]].
func (d *Delaunay) VertexNeighborVertices() (indptr, indices []int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.ensureMesh(); err != nil {
		return nil, nil, err
	}
	indptr, indices = d.mesh.VertexNeighborVertices(len(d.rows))
	return indptr, indices, nil
}
