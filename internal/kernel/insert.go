package kernel

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// findBestFacet climbs from the last search position to a facet of locally
// maximal distance to p. If that facet does not see p, every facet is
// scanned before p is declared inside.
func (w *workspace) findBestFacet(p []float64) (int, float64, bool) {
	cur := w.last
	if cur < 0 || cur >= len(w.facets) || w.facets[cur] == nil {
		cur = w.head
	}
	best := w.distance(cur, p)
	for moved := true; moved; {
		moved = false
		for _, n := range w.facets[cur].neighbors {
			if d := w.distance(n, p); d > best {
				cur, best, moved = n, d, true
			}
		}
	}
	if best > w.minVisible {
		return cur, best, true
	}

	for id := w.head; id >= 0; id = w.facets[id].next {
		if d := w.distance(id, p); d > best {
			cur, best = id, d
		}
	}
	return cur, best, best > w.minVisible
}

func (w *workspace) noteCoplanar(id int, dist float64) {
	if !w.cfg.KeepCoplanar || id == w.infinity {
		return
	}
	if w.cfg.Delaunay || dist > -w.coplanarTol() {
		w.coplanar = append(w.coplanar, id)
	}
}

type horizonRidge struct {
	facet    int // visible facet
	slot     int // index of the dropped vertex in the visible facet
	neighbor int // facet beyond the horizon
}

type newFacet struct {
	vertices  []int
	neighbors []int
	normal    []float64
	offset    float64
}

// insert adds point id to the hull through the visible facet start. A point
// whose cone would contain a degenerate facet is rejected as coplanar and
// the workspace is left unchanged.
func (w *workspace) insert(id, start int) (bool, error) {
	p := w.point(id)
	if d := w.distance(start, p); !(d > w.minVisible) {
		w.noteCoplanar(id, d)
		return false, nil
	}

	visited := roaring.New()
	visible := roaring.New()
	visited.Add(uint32(start))
	visible.Add(uint32(start))

	var horizon []horizonRidge
	queue := []int{start}
	for len(queue) > 0 {
		fid := queue[0]
		queue = queue[1:]
		for slot, nid := range w.facets[fid].neighbors {
			if !visited.CheckedAdd(uint32(nid)) {
				if !visible.Contains(uint32(nid)) {
					horizon = append(horizon, horizonRidge{facet: fid, slot: slot, neighbor: nid})
				}
				continue
			}
			if w.distance(nid, p) > w.minVisible {
				visible.Add(uint32(nid))
				queue = append(queue, nid)
				continue
			}
			horizon = append(horizon, horizonRidge{facet: fid, slot: slot, neighbor: nid})
		}
	}

	// Build the cone of new facets with tentative ids before touching anything.
	d := w.dim
	newV := len(w.vertices)
	base := len(w.facets)
	cone := make([]newFacet, len(horizon))
	for j, h := range horizon {
		f := w.facets[h.facet]
		verts := make([]int, 0, d)
		pts := make([][]float64, 0, d)
		for k, v := range f.vertices {
			if k == h.slot {
				continue
			}
			verts = append(verts, v)
			pts = append(pts, w.vertexPoint(v))
		}
		verts = append(verts, newV)
		pts = append(pts, p)

		normal, offset, ok := w.hyperplane(pts)
		if !ok {
			w.noteCoplanar(id, w.distance(start, p))
			return false, nil
		}
		neighbors := make([]int, d)
		neighbors[d-1] = h.neighbor
		cone[j] = newFacet{vertices: verts, neighbors: neighbors, normal: normal, offset: offset}
	}

	type half struct{ facet, slot int }
	open := make(map[string]half, len(cone)*(d-1))
	for j := range cone {
		for k := 0; k < d-1; k++ {
			key := ridgeKey(cone[j].vertices[:d-1], k)
			if other, ok := open[key]; ok {
				cone[j].neighbors[k] = base + other.facet
				cone[other.facet].neighbors[other.slot] = base + j
				delete(open, key)
				continue
			}
			open[key] = half{facet: j, slot: k}
		}
	}
	if len(open) != 0 {
		return false, exitf(ExitTopology, "horizon of point p%d is not closed (%d unmatched ridges)", id, len(open))
	}

	if v := w.newVertex(id); v != newV {
		return false, exitf(ExitQhull, "vertex id v%d, expected v%d", v, newV)
	}
	for j, nf := range cone {
		fid := w.newFacet(nf.vertices, nf.neighbors, nf.normal, nf.offset)
		beyond := w.facets[horizon[j].neighbor]
		for k, nid := range beyond.neighbors {
			if nid == horizon[j].facet {
				beyond.neighbors[k] = fid
				break
			}
		}
	}

	it := visible.Iterator()
	for it.HasNext() {
		w.deleteFacet(int(it.Next()))
	}
	w.last = base + len(cone) - 1
	w.triangulated = false
	return true, nil
}

// ridgeKey identifies the ridge shared by two cone facets: the sorted horizon
// vertices with position skip removed (the apex is implied).
func ridgeKey(verts []int, skip int) string {
	ids := make([]int, 0, len(verts))
	for k, v := range verts {
		if k != skip {
			ids = append(ids, v)
		}
	}
	slices.Sort(ids)
	buf := make([]byte, 0, 4*len(ids))
	for _, v := range ids {
		buf = binary.AppendUvarint(buf, uint64(v))
	}
	return string(buf)
}

// CoplanarPoint is a point kept out of the hull under KeepCoplanar.
type CoplanarPoint struct {
	Point  int // point id
	Facet  int // nearest facet id (lower facets only in Delaunay mode)
	Vertex int // point id of the nearest vertex of Facet
}

func (w *workspace) coplanarPoints() []CoplanarPoint {
	out := make([]CoplanarPoint, 0, len(w.coplanar))
	for _, id := range w.coplanar {
		p := w.point(id)
		best, bestDist := -1, math.Inf(-1)
		for fid := w.head; fid >= 0; fid = w.facets[fid].next {
			if w.facets[fid].upper {
				continue
			}
			if d := w.distance(fid, p); d > bestDist {
				best, bestDist = fid, d
			}
		}
		cp := CoplanarPoint{Point: id, Facet: best, Vertex: -1}
		if best >= 0 {
			nearest := math.Inf(1)
			for _, v := range w.facets[best].vertices {
				q := w.vertexPoint(v)
				var s float64
				for i := 0; i < w.ndim; i++ {
					s += (p[i] - q[i]) * (p[i] - q[i])
				}
				if s < nearest {
					nearest, cp.Vertex = s, w.vertices[v].point
				}
			}
		}
		out = append(out, cp)
	}
	return out
}
