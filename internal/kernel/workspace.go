package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const eps = 0x1p-52

// Config selects the kernel mode and its options.
type Config struct {
	// Delaunay lifts the input onto a paraboloid before building the hull.
	Delaunay bool
	// ScaleLast rescales the lifted coordinate to [0, max|x|] ("Qbb").
	ScaleLast bool
	// PointAtInfinity adds a point above the paraboloid ("Qz").
	PointAtInfinity bool
	// KeepCoplanar records points that were not added to the hull ("Qc").
	KeepCoplanar bool
}

const (
	cfgDelaunay uint64 = 1 << iota
	cfgScaleLast
	cfgPointAtInfinity
	cfgKeepCoplanar
)

func (c Config) bits() uint64 {
	var b uint64
	if c.Delaunay {
		b |= cfgDelaunay
	}
	if c.ScaleLast {
		b |= cfgScaleLast
	}
	if c.PointAtInfinity {
		b |= cfgPointAtInfinity
	}
	if c.KeepCoplanar {
		b |= cfgKeepCoplanar
	}
	return b
}

func configFromBits(b uint64) Config {
	return Config{
		Delaunay:        b&cfgDelaunay != 0,
		ScaleLast:       b&cfgScaleLast != 0,
		PointAtInfinity: b&cfgPointAtInfinity != 0,
		KeepCoplanar:    b&cfgKeepCoplanar != 0,
	}
}

// Accounted sizes of kernel allocations.
const (
	vertexBytes      = 32
	facetHeaderBytes = 64
)

func facetBytes(dim int) int64 {
	// vertex ids, neighbor ids, normal
	return facetHeaderBytes + int64(dim)*24
}

type vertex struct {
	point   int
	nfacets int
}

type facet struct {
	vertices   []int
	neighbors  []int
	normal     []float64
	offset     float64
	simplicial bool
	upper      bool
	next, prev int
}

type workspace struct {
	cfg  Config
	ndim int // input dimension
	dim  int // hull dimension (ndim+1 when lifted)

	points   []float64 // dim columns
	infinity int       // point id of the point at infinity, -1 if absent

	scale, shift float64
	interior     []float64

	maxAbs     float64
	minVisible float64

	triangulated bool

	vertices   []*vertex // indexed by vertex id, nil once freed
	facets     []*facet  // indexed by facet id, nil once deleted
	head, tail int
	last       int // facet the next search starts from
	nfacets    int
	nvertices  int

	coplanar []int // point ids kept under KeepCoplanar

	allocBytes  int64
	allocBlocks int64
}

// ws is the live workspace.
var ws *workspace

func newWorkspace(ndim int, cfg Config) *workspace {
	dim := ndim
	if cfg.Delaunay {
		dim++
	}
	return &workspace{
		cfg:      cfg,
		ndim:     ndim,
		dim:      dim,
		infinity: -1,
		scale:    1,
		head:     -1,
		tail:     -1,
		last:     -1,
	}
}

func (w *workspace) npoints() int { return len(w.points) / w.dim }

func (w *workspace) point(id int) []float64 {
	return w.points[id*w.dim : (id+1)*w.dim]
}

func (w *workspace) vertexPoint(v int) []float64 {
	return w.point(w.vertices[v].point)
}

// refreshBounds recomputes the coordinate magnitude and the visibility threshold.
func (w *workspace) refreshBounds() {
	w.maxAbs = 0
	for id := 0; id < w.npoints(); id++ {
		if id == w.infinity {
			continue
		}
		w.growBounds(w.point(id))
	}
	w.updateTolerance()
}

func (w *workspace) growBounds(p []float64) {
	for _, x := range p {
		if a := math.Abs(x); a > w.maxAbs && !math.IsInf(a, 0) {
			w.maxAbs = a
		}
	}
}

func (w *workspace) updateTolerance() {
	w.minVisible = 10 * float64(w.dim) * eps * w.maxAbs
}

func (w *workspace) coplanarTol() float64 { return 10 * w.minVisible }

// appendPoint stores p under the next point id.
func (w *workspace) appendPoint(p []float64) (int, error) {
	if len(p) != w.dim {
		return -1, exitf(ExitInput, "point has %d coordinates, want %d", len(p), w.dim)
	}
	id := w.npoints()
	w.points = append(w.points, p...)
	w.allocBytes += int64(8 * w.dim)
	if finite(p) {
		w.growBounds(p)
		w.updateTolerance()
	}
	return id, nil
}

func (w *workspace) newVertex(point int) int {
	id := len(w.vertices)
	w.vertices = append(w.vertices, &vertex{point: point})
	w.nvertices++
	w.allocBytes += vertexBytes
	w.allocBlocks++
	return id
}

func (w *workspace) freeVertex(id int) {
	w.vertices[id] = nil
	w.nvertices--
	w.allocBytes -= vertexBytes
	w.allocBlocks--
}

func (w *workspace) newFacet(vertices, neighbors []int, normal []float64, offset float64) int {
	id := len(w.facets)
	f := &facet{
		vertices:   vertices,
		neighbors:  neighbors,
		normal:     normal,
		offset:     offset,
		simplicial: true,
		next:       -1,
		prev:       w.tail,
	}
	f.upper = w.isUpper(f)
	w.facets = append(w.facets, f)

	if w.tail >= 0 {
		w.facets[w.tail].next = id
	} else {
		w.head = id
	}
	w.tail = id

	for _, v := range vertices {
		w.vertices[v].nfacets++
	}
	w.nfacets++
	w.allocBytes += facetBytes(w.dim)
	w.allocBlocks++
	return id
}

func (w *workspace) deleteFacet(id int) {
	f := w.facets[id]
	if f.prev >= 0 {
		w.facets[f.prev].next = f.next
	} else {
		w.head = f.next
	}
	if f.next >= 0 {
		w.facets[f.next].prev = f.prev
	} else {
		w.tail = f.prev
	}

	for _, v := range f.vertices {
		vx := w.vertices[v]
		vx.nfacets--
		if vx.nfacets == 0 {
			w.freeVertex(v)
		}
	}

	w.facets[id] = nil
	w.nfacets--
	w.allocBytes -= facetBytes(w.dim)
	w.allocBlocks--
}

// upperTol separates lower facets from upper and vertical ones.
const upperTol = 1e-13

func (w *workspace) isUpper(f *facet) bool {
	if !w.cfg.Delaunay {
		return false
	}
	if f.normal[w.dim-1] >= -upperTol {
		return true
	}
	if w.infinity >= 0 {
		for _, v := range f.vertices {
			if w.vertices[v].point == w.infinity {
				return true
			}
		}
	}
	return false
}

func (w *workspace) distance(id int, p []float64) float64 {
	f := w.facets[id]
	return floats.Dot(f.normal, p[:len(f.normal)]) + f.offset
}

func (w *workspace) triangulate() {
	for id := w.head; id >= 0; id = w.facets[id].next {
		f := w.facets[id]
		f.simplicial = len(f.vertices) == w.dim && len(f.neighbors) == w.dim &&
			finite(f.normal) && !math.IsNaN(f.offset) && !math.IsInf(f.offset, 0)
	}
	w.triangulated = true
}

func (w *workspace) checkBounds() {
	w.refreshBounds()
	for id := w.head; id >= 0; id = w.facets[id].next {
		f := w.facets[id]
		if !finite(f.normal) || math.IsNaN(f.offset) || math.IsInf(f.offset, 0) {
			f.simplicial = false
		}
	}
}
