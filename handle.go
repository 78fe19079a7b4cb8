package delaunay

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/delaunay/internal/kernel"
	"github.com/hupe1980/delaunay/internal/mesh"
	"github.com/hupe1980/delaunay/internal/session"
)

// Mesh is the flat form of a triangulation or hull as of the last flush.
// The slices are shared with the handle and must not be modified.
type Mesh struct {
	// Points holds the input points, including flushed additions.
	Points [][]float64
	// Simplices holds point indices: ndim+1 per row for a triangulation,
	// ndim per row (facets) for a hull.
	Simplices [][]int
	// Neighbors[i][k] is the row across the face opposite Simplices[i][k],
	// -1 on the boundary.
	Neighbors [][]int
	// Equations holds the hyperplane normal followed by the offset. For a
	// triangulation the hyperplanes live in the lifted space.
	Equations [][]float64
	// Coplanar lists points left out of the mesh as (point, simplex, nearest
	// vertex) rows. The simplex is -1 when no retained simplex is nearest.
	Coplanar [][3]int
}

// handle is the state shared by Delaunay and ConvexHull: one kernel session
// plus the points it was built from.
type handle struct {
	mu       sync.Mutex
	opts     options
	arbiter  *session.Arbiter
	sess     *session.Session
	delaunay bool
	kernel   KernelOption
	ndim     int

	blocks   [][]float64 // owned point blocks, flat rows*ndim
	rows     [][]float64 // row views into blocks
	buf      pointBuffer // pending points of an incremental handle
	scale    float64     // paraboloid scale
	shift    float64     // paraboloid shift
	minBound []float64
	maxBound []float64

	mesh       *mesh.Mesh
	pub        *Mesh
	v2s        []int
	transforms *TransformTable

	failed error
	closed bool
}

func validatePoints(points [][]float64, ndim int) (int, error) {
	if ndim == 0 {
		if len(points) == 0 {
			return 0, fmt.Errorf("%w: no points", ErrInvalidInput)
		}
		ndim = len(points[0])
		if ndim < 2 {
			return 0, fmt.Errorf("%w: points must have at least 2 coordinates, got %d", ErrInvalidInput, ndim)
		}
	}
	for _, p := range points {
		if len(p) != ndim {
			return 0, &ErrDimensionMismatch{Expected: ndim, Actual: len(p)}
		}
	}
	return ndim, nil
}

func modeName(delaunay bool) string {
	if delaunay {
		return "delaunay"
	}
	return "hull"
}

func flatten(points [][]float64, ndim int) []float64 {
	flat := make([]float64, 0, len(points)*ndim)
	for _, p := range points {
		flat = append(flat, p...)
	}
	return flat
}

func newHandleBase(o options, delaunay bool, k KernelOption, ndim int) *handle {
	width := ndim
	if delaunay {
		width++
	}
	return &handle{
		opts:     o,
		arbiter:  session.Default(),
		sess:     session.NewSession(o.compression),
		delaunay: delaunay,
		kernel:   k,
		ndim:     ndim,
		buf:      newPointBuffer(width),
		scale:    1,
	}
}

func newHandle(points [][]float64, delaunay bool, optFns []Option) (*handle, error) {
	o := applyOptions(optFns)

	ndim, err := validatePoints(points, 0)
	if err != nil {
		return nil, err
	}
	k, err := o.kernelOptions(delaunay)
	if err != nil {
		return nil, err
	}
	o.logger = o.logger.WithMode(modeName(delaunay)).WithDimension(ndim)

	h := newHandleBase(o, delaunay, k, ndim)
	flat := flatten(points, ndim)
	cfg := kernel.Config{
		Delaunay:        delaunay,
		ScaleLast:       k.Has(ScaleLast),
		PointAtInfinity: k.Has(PointAtInfinity),
		KeepCoplanar:    k.Has(KeepCoplanar),
	}

	start := time.Now()
	var nfacets int
	err = h.arbiter.Init(h.sess, func() error {
		if err := kernel.Build(ndim, flat, cfg); err != nil {
			return err
		}
		h.scale, h.shift = kernel.Paraboloid()
		nfacets, _, _ = kernel.Counts()
		return nil
	})
	err = translateError("build", err)

	ctx := context.Background()
	o.metricsCollector.RecordBuild(len(points), time.Since(start), err)
	o.logger.LogBuild(ctx, len(points), nfacets, err)
	if err != nil {
		return nil, err
	}

	h.appendBlock(flat)
	return h, nil
}

// appendBlock takes ownership of flat (rows of ndim) as a new point block.
func (h *handle) appendBlock(flat []float64) {
	n := len(flat) / h.ndim
	if n == 0 {
		return
	}
	// Locators keep the previous bounds, so they are replaced, not updated.
	minBound, maxBound := slices.Clone(h.minBound), slices.Clone(h.maxBound)
	if minBound == nil {
		minBound = slices.Clone(flat[:h.ndim])
		maxBound = slices.Clone(flat[:h.ndim])
	}
	h.blocks = append(h.blocks, flat)
	for i := 0; i < n; i++ {
		row := flat[i*h.ndim : (i+1)*h.ndim : (i+1)*h.ndim]
		h.rows = append(h.rows, row)
		for j, x := range row {
			// NaN compares false and never widens the bounds.
			if x < minBound[j] || minBound[j] != minBound[j] {
				minBound[j] = x
			}
			if x > maxBound[j] || maxBound[j] != maxBound[j] {
				maxBound[j] = x
			}
		}
	}
	h.minBound, h.maxBound = minBound, maxBound
}

func (h *handle) usable() error {
	if h.closed {
		return ErrClosed
	}
	if h.failed != nil {
		return fmt.Errorf("%w: %w", ErrUnusable, h.failed)
	}
	return nil
}

func (h *handle) invalidate() {
	h.mesh = nil
	h.pub = nil
	h.v2s = nil
	h.transforms = nil
}

// NPoints returns the number of flushed points.
func (h *handle) NPoints() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rows)
}

// NDim returns the dimension of the input points.
func (h *handle) NDim() int { return h.ndim }

// KernelOptions returns the effective kernel option set.
func (h *handle) KernelOptions() KernelOption { return h.kernel }

// Incremental reports whether AddPoints is allowed.
func (h *handle) Incremental() bool { return h.opts.incremental }

// Points returns the flushed points. Rows are shared with the handle and
// must not be modified.
func (h *handle) Points() [][]float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.rows)
}

// MinBound returns the per-coordinate minimum of the flushed points.
func (h *handle) MinBound() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.minBound)
}

// MaxBound returns the per-coordinate maximum of the flushed points.
func (h *handle) MaxBound() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.maxBound)
}

// AddPoints buffers points for the next Flush. The kernel is not touched.
func (h *handle) AddPoints(points [][]float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable(); err != nil {
		return err
	}
	if !h.opts.incremental {
		return ErrNotIncremental
	}
	if _, err := validatePoints(points, h.ndim); err != nil {
		return err
	}
	return h.buf.add(points, h.opts.rc)
}

// Flush inserts the buffered points into the kernel. It reports whether
// the kernel was touched. A buffer without rows is discarded unless force
// is set. If an insertion fails the remaining points are still recorded,
// Flush returns true with a *TriangulationError and the handle becomes
// unusable.
func (h *handle) Flush(force bool) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable(); err != nil {
		return false, err
	}
	return h.flushLocked(force)
}

func (h *handle) flushLocked(force bool) (bool, error) {
	if !h.buf.pending() {
		return false, nil
	}
	rows := h.buf.rows
	if rows == 0 && !force {
		h.buf.reset(h.opts.rc)
		return false, nil
	}

	start := time.Now()
	width := h.buf.width
	data := h.buf.live()

	var insertErr error
	interior := 0
	err := h.arbiter.Do(h.sess, func() error {
		kernel.LiftPoints(data, rows)
		for i := 0; i < rows; i++ {
			p := data[i*width : (i+1)*width]
			if insertErr != nil {
				if err := kernel.AppendOtherPoint(p); err != nil {
					return err
				}
				continue
			}
			facet, outside := kernel.FindBestFacet(p)
			if !outside {
				if err := kernel.AppendOtherPoint(p); err != nil {
					return err
				}
				interior++
				continue
			}
			added, err := kernel.AddPoint(p, facet)
			if err != nil {
				insertErr = err
				continue
			}
			if !added {
				interior++
			}
		}
		kernel.CheckBounds()
		kernel.ClearTriangulated()
		kernel.Triangulate()
		return nil
	})

	ctx := context.Background()
	if err != nil {
		err = translateError("flush", err)
		h.failed = err
		h.opts.metricsCollector.RecordFlush(rows, time.Since(start), err)
		h.opts.logger.LogFlush(ctx, rows, interior, err)
		return false, err
	}

	block := make([]float64, rows*h.ndim)
	for i := 0; i < rows; i++ {
		copy(block[i*h.ndim:(i+1)*h.ndim], data[i*width:i*width+h.ndim])
	}
	h.appendBlock(block)
	h.buf.reset(h.opts.rc)
	h.invalidate()

	err = translateError("flush", insertErr)
	if err != nil {
		h.failed = err
	}
	h.opts.metricsCollector.RecordFlush(rows, time.Since(start), err)
	h.opts.logger.LogFlush(ctx, rows, interior, err)
	return true, err
}

// ensureMesh extracts the flat mesh from the kernel unless cached.
func (h *handle) ensureMesh() (*Mesh, error) {
	if err := h.usable(); err != nil {
		return nil, err
	}
	if h.pub != nil {
		return h.pub, nil
	}

	var (
		m   *mesh.Mesh
		cop []kernel.CoplanarPoint
	)
	err := h.arbiter.Do(h.sess, func() error {
		var err error
		m, err = mesh.Extract(kernel.Live{}, h.ndim, h.delaunay)
		if err != nil {
			return err
		}
		if h.kernel.Has(KeepCoplanar) {
			cop = kernel.Coplanar()
		}
		return nil
	})
	if err != nil {
		return nil, translateError("extract", err)
	}

	npoints := len(h.rows)
	coplanar := make([][3]int, 0, len(cop))
	for _, c := range cop {
		// The point at infinity is not an input point.
		if c.Point < 0 || c.Point >= npoints {
			continue
		}
		coplanar = append(coplanar, [3]int{c.Point, m.Row(c.Facet), c.Vertex})
	}

	h.mesh = m
	h.pub = &Mesh{
		Points:    h.rows,
		Simplices: m.Simplices,
		Neighbors: m.Neighbors,
		Equations: m.Equations,
		Coplanar:  coplanar,
	}
	return h.pub, nil
}

// Mesh returns the flat mesh as of the last flush.
func (h *handle) Mesh() (*Mesh, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ensureMesh()
}

// NSimplex returns the number of simplices (facets for a hull).
func (h *handle) NSimplex() (int, error) {
	m, err := h.Mesh()
	if err != nil {
		return 0, err
	}
	return len(m.Simplices), nil
}

// Simplices returns the point indices of every simplex (facet for a hull).
func (h *handle) Simplices() ([][]int, error) {
	m, err := h.Mesh()
	if err != nil {
		return nil, err
	}
	return m.Simplices, nil
}

// Neighbors returns the neighbor table, -1 on the boundary.
func (h *handle) Neighbors() ([][]int, error) {
	m, err := h.Mesh()
	if err != nil {
		return nil, err
	}
	return m.Neighbors, nil
}

// Equations returns the hyperplane of every simplex (facet for a hull).
func (h *handle) Equations() ([][]float64, error) {
	m, err := h.Mesh()
	if err != nil {
		return nil, err
	}
	return m.Equations, nil
}

// Coplanar returns (point, simplex, nearest vertex) rows for the points
// left out of the mesh. It is empty unless KeepCoplanar is set.
func (h *handle) Coplanar() ([][3]int, error) {
	m, err := h.Mesh()
	if err != nil {
		return nil, err
	}
	return m.Coplanar, nil
}

// Close releases the kernel workspace. It is safe to call more than once
// and is the only operation a failed handle still accepts.
func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.buf.reset(h.opts.rc)
	h.invalidate()

	err := translateError("teardown", h.arbiter.Teardown(h.sess))
	h.opts.metricsCollector.RecordTeardown(err)
	h.opts.logger.LogTeardown(context.Background(), err)
	return err
}
