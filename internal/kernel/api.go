package kernel

import "slices"

// Facet is a copy of one kernel facet. Neighbors[k] is the facet across the
// ridge that drops Vertices[k].
type Facet struct {
	ID         int
	Next       int // next facet id in list order, -1 at the end
	Vertices   []int
	Neighbors  []int
	Normal     []float64
	Offset     float64
	Simplicial bool
	// Upper marks facets of the lifted hull that are not Delaunay simplices.
	Upper bool
}

// Dim returns the hull dimension of the live workspace, 0 if none.
func Dim() int {
	if ws == nil {
		return 0
	}
	return ws.dim
}

// Counts returns the live facet, vertex and point counts.
func Counts() (facets, vertices, points int) {
	if ws == nil {
		return 0, 0, 0
	}
	return ws.nfacets, ws.nvertices, ws.npoints()
}

// Paraboloid returns the lifting scale and shift (1, 0 when not rescaled).
func Paraboloid() (scale, shift float64) {
	if ws == nil {
		return 1, 0
	}
	return ws.scale, ws.shift
}

// LiftPoints fills the paraboloid coordinate (column dim-1) of the first rows
// rows of buf, a flat array of dim-wide rows. It is a no-op outside Delaunay mode.
func LiftPoints(buf []float64, rows int) {
	if ws == nil || !ws.cfg.Delaunay {
		return
	}
	ws.lift(buf, rows)
}

// FindBestFacet returns the facet that would best host p (dim coordinates)
// and whether p lies strictly outside it. Points with non-finite coordinates
// are reported outside so that AddPoint rejects them.
func FindBestFacet(p []float64) (facet int, outside bool) {
	if ws == nil || ws.head < 0 {
		return -1, false
	}
	if !finite(p) {
		return ws.head, true
	}
	f, _, out := ws.findBestFacet(p)
	return f, out
}

// AddPoint appends p under the next point id and inserts it through facet.
// added is false when p was not inserted (inside, or rejected as coplanar);
// the point keeps its id either way. An error is non-recoverable for p.
func AddPoint(p []float64, facet int) (added bool, err error) {
	if ws == nil {
		return false, errNoWorkspace
	}
	id, err := ws.appendPoint(p)
	if err != nil {
		return false, err
	}
	if !finite(p) {
		return false, exitf(ExitInput, "point p%d has a non-finite coordinate", id)
	}
	if facet < 0 || facet >= len(ws.facets) || ws.facets[facet] == nil {
		return false, exitf(ExitQhull, "facet f%d is not live", facet)
	}
	return ws.insert(id, facet)
}

// AppendOtherPoint stores p under the next point id without inserting it.
func AppendOtherPoint(p []float64) error {
	if ws == nil {
		return errNoWorkspace
	}
	_, err := ws.appendPoint(p)
	return err
}

// Triangulate marks every facet with a complete, finite simplex as simplicial.
func Triangulate() {
	if ws != nil {
		ws.triangulate()
	}
}

// ClearTriangulated drops the triangulated flag.
func ClearTriangulated() {
	if ws != nil {
		ws.triangulated = false
	}
}

// Triangulated reports whether Triangulate ran since the last change.
func Triangulated() bool { return ws != nil && ws.triangulated }

// CheckBounds recomputes the numeric tolerances from the current points and
// flags facets whose hyperplane is no longer finite.
func CheckBounds() {
	if ws != nil {
		ws.checkBounds()
	}
}

// FirstFacet returns the head of the facet list, -1 if empty.
func FirstFacet() int {
	if ws == nil {
		return -1
	}
	return ws.head
}

// FacetIDBound returns an exclusive upper bound on facet ids.
func FacetIDBound() int {
	if ws == nil {
		return 0
	}
	return len(ws.facets)
}

// GetFacet returns a copy of facet id.
func GetFacet(id int) (Facet, bool) {
	if ws == nil || id < 0 || id >= len(ws.facets) || ws.facets[id] == nil {
		return Facet{}, false
	}
	f := ws.facets[id]
	return Facet{
		ID:         id,
		Next:       f.next,
		Vertices:   slices.Clone(f.vertices),
		Neighbors:  slices.Clone(f.neighbors),
		Normal:     slices.Clone(f.normal),
		Offset:     f.offset,
		Simplicial: f.simplicial,
		Upper:      f.upper,
	}, true
}

// PointID returns the point id of vertex v, -1 if v is not live.
func PointID(v int) int {
	if ws == nil || v < 0 || v >= len(ws.vertices) || ws.vertices[v] == nil {
		return -1
	}
	return ws.vertices[v].point
}

// Coplanar returns the points kept out of the hull under KeepCoplanar.
func Coplanar() []CoplanarPoint {
	if ws == nil {
		return nil
	}
	return ws.coplanarPoints()
}
