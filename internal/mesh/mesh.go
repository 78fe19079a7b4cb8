package mesh

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/delaunay/internal/kernel"
)

var (
	// ErrNonSimplicial is returned when a retained facet is not a simplex.
	ErrNonSimplicial = errors.New("mesh: non-simplicial facet")
	// ErrBrokenList is returned when the facet list references a missing facet.
	ErrBrokenList = errors.New("mesh: broken facet list")
)

// Source is a read-only view of a kernel workspace.
type Source interface {
	FirstFacet() int
	FacetIDBound() int
	Facet(id int) (kernel.Facet, bool)
	PointID(vertex int) int
}

// Mesh is the flat form of a triangulation or hull.
type Mesh struct {
	// Simplices holds point ids, ndim+1 per row in Delaunay mode and ndim
	// per row (hull facets) otherwise.
	Simplices [][]int
	// Neighbors[i][k] is the row across the face opposite Simplices[i][k],
	// -1 on the boundary.
	Neighbors [][]int
	// Equations holds the hyperplane normal followed by the offset.
	Equations [][]float64

	rowOf []int // facet id -> row, -1 if excluded
}

// NSimplex returns the number of rows.
func (m *Mesh) NSimplex() int { return len(m.Simplices) }

// Row returns the row of facet id, -1 if the facet was not retained.
func (m *Mesh) Row(facetID int) int {
	if facetID < 0 || facetID >= len(m.rowOf) {
		return -1
	}
	return m.rowOf[facetID]
}

// Extract reads the facet list of src. In Delaunay mode upper facets of the
// lifted hull are dropped and become boundary (-1) neighbors.
func Extract(src Source, ndim int, delaunay bool) (*Mesh, error) {
	width := ndim
	if delaunay {
		width++
	}

	rowOf := make([]int, src.FacetIDBound())
	for i := range rowOf {
		rowOf[i] = -1
	}

	var kept []kernel.Facet
	for id := src.FirstFacet(); id >= 0; {
		f, ok := src.Facet(id)
		if !ok || id >= len(rowOf) {
			return nil, fmt.Errorf("%w: facet f%d", ErrBrokenList, id)
		}
		if !delaunay || !f.Upper {
			rowOf[id] = len(kept)
			kept = append(kept, f)
		}
		id = f.Next
	}

	m := &Mesh{
		Simplices: make([][]int, len(kept)),
		Neighbors: make([][]int, len(kept)),
		Equations: make([][]float64, len(kept)),
		rowOf:     rowOf,
	}
	simplices := make([]int, len(kept)*width)
	neighbors := make([]int, len(kept)*width)

	for row, f := range kept {
		if !f.Simplicial || len(f.Vertices) != width || len(f.Neighbors) != width {
			return nil, fmt.Errorf("%w: facet f%d has %d vertices", ErrNonSimplicial, f.ID, len(f.Vertices))
		}

		s := simplices[row*width : (row+1)*width]
		n := neighbors[row*width : (row+1)*width]
		for k, v := range f.Vertices {
			s[k] = src.PointID(v)
			n[k] = -1
			if nid := f.Neighbors[k]; nid >= 0 && nid < len(rowOf) {
				n[k] = rowOf[nid]
			}
		}

		eq := make([]float64, len(f.Normal)+1)
		copy(eq, f.Normal)
		eq[len(f.Normal)] = f.Offset

		m.Simplices[row] = s
		m.Neighbors[row] = n
		m.Equations[row] = eq
	}
	return m, nil
}

// VertexToSimplex maps every point id to one simplex containing it, -1 for
// points that are not vertices.
func (m *Mesh) VertexToSimplex(npoints int) []int {
	out := make([]int, npoints)
	for i := range out {
		out[i] = -1
	}
	for row, s := range m.Simplices {
		for _, v := range s {
			if v >= 0 && v < npoints {
				out[v] = row
			}
		}
	}
	return out
}

// HullFaces returns the boundary faces: for every missing neighbor, the
// simplex with the opposite vertex dropped.
func (m *Mesh) HullFaces() [][]int {
	var out [][]int
	for row, n := range m.Neighbors {
		for k, nb := range n {
			if nb != -1 {
				continue
			}
			face := make([]int, 0, len(n)-1)
			for j, v := range m.Simplices[row] {
				if j != k {
					face = append(face, v)
				}
			}
			out = append(out, face)
		}
	}
	return out
}

// VertexNeighborVertices returns the vertex adjacency in compressed sparse
// row form: the neighbors of point i are indices[indptr[i]:indptr[i+1]],
// sorted ascending.
func (m *Mesh) VertexNeighborVertices(npoints int) (indptr, indices []int) {
	adj := make([]*roaring.Bitmap, npoints)
	for _, s := range m.Simplices {
		for _, v := range s {
			if v < 0 || v >= npoints {
				continue
			}
			if adj[v] == nil {
				adj[v] = roaring.New()
			}
			for _, u := range s {
				if u != v {
					adj[v].Add(uint32(u))
				}
			}
		}
	}

	indptr = make([]int, npoints+1)
	for v, bm := range adj {
		indptr[v+1] = indptr[v]
		if bm == nil {
			continue
		}
		indptr[v+1] += int(bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			indices = append(indices, int(it.Next()))
		}
	}
	return indptr, indices
}

// Vertices returns the sorted, unique point ids referenced by the mesh.
func (m *Mesh) Vertices() []int {
	bm := roaring.New()
	for _, s := range m.Simplices {
		for _, v := range s {
			bm.Add(uint32(v))
		}
	}
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
