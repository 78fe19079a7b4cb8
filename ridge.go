package delaunay

import (
	"fmt"
	"iter"
)

// Ridge is one edge of the fan around a vertex of a 2-D triangulation.
type Ridge struct {
	// Vertex is the pivot point.
	Vertex int
	// Vertex2 is the other endpoint of the edge.
	Vertex2 int
	// Triangle is the simplex the edge was reported from.
	Triangle int
	// Index is the position of Vertex2 in the simplex.
	Index int
}

type ridgeState uint8

const (
	ridgeInit ridgeState = iota
	ridgeWalkForward
	ridgeRestartBackward
	ridgeDone
)

func (s ridgeState) String() string {
	switch s {
	case ridgeInit:
		return "init"
	case ridgeWalkForward:
		return "walk-forward"
	case ridgeRestartBackward:
		return "restart-backward"
	case ridgeDone:
		return "done"
	default:
		return fmt.Sprintf("ridgeState(%d)", uint8(s))
	}
}

// RidgeIter2D walks the triangles around a vertex of a 2-D triangulation,
// reporting every edge incident to it once. When the walk hits the hull
// boundary it restarts from the first triangle in the other direction.
//
//	it, err := tri.RidgeIter(v)
//	...
//	for ; it.Valid(); it.Next() {
//		r := it.Ridge()
//		...
//	}
type RidgeIter2D struct {
	simplices [][]int
	neighbors [][]int

	state      ridgeState
	vertex     int
	vertex2    int
	triangle   int
	index      int
	start      int
	startIndex int
}

// newRidgeIter2D positions the cursor on the first edge around vertex.
func newRidgeIter2D(simplices, neighbors [][]int, v2s []int, vertex int) *RidgeIter2D {
	it := &RidgeIter2D{
		simplices:  simplices,
		neighbors:  neighbors,
		state:      ridgeInit,
		vertex:     vertex,
		vertex2:    -1,
		triangle:   v2s[vertex],
		index:      -1,
		start:      -1,
		startIndex: -1,
	}
	if it.triangle == -1 {
		it.state = ridgeDone
		return it
	}
	for k, v := range simplices[it.triangle] {
		if v != vertex {
			it.vertex2 = v
			it.index = k
			it.start = it.triangle
			it.startIndex = k
			break
		}
	}
	it.state = ridgeWalkForward
	return it
}

// Valid reports whether the cursor is on a ridge.
func (it *RidgeIter2D) Valid() bool { return it.state != ridgeDone }

// Ridge returns the current ridge.
func (it *RidgeIter2D) Ridge() Ridge {
	return Ridge{Vertex: it.vertex, Vertex2: it.vertex2, Triangle: it.triangle, Index: it.index}
}

// otherEdge moves to the edge of the current triangle through the pivot
// that is not at position skip.
func (it *RidgeIter2D) otherEdge(skip int) {
	for k, v := range it.simplices[it.triangle] {
		if v != it.vertex && k != skip {
			it.index = k
			it.vertex2 = v
			return
		}
	}
}

// Next advances to the following ridge.
func (it *RidgeIter2D) Next() {
	switch it.state {
	case ridgeDone, ridgeInit:
		return
	case ridgeRestartBackward:
		if it.startIndex == -1 {
			// Both directions are walked.
			it.state = ridgeDone
			return
		}
		it.triangle = it.start
		it.otherEdge(it.startIndex)
		it.startIndex = -1
		it.state = ridgeWalkForward

		if it.neighbors[it.triangle][it.index] == -1 {
			it.state = ridgeDone
			return
		}
		// The edge shared with the next triangle was reported on the way out.
		it.step()
		if it.state == ridgeDone {
			return
		}
	}
	it.step()
}

// step crosses the current edge into the neighboring triangle.
func (it *RidgeIter2D) step() {
	nb := it.neighbors[it.triangle][it.index]
	if nb == -1 {
		it.otherEdge(it.index)
		it.state = ridgeRestartBackward
		return
	}

	for k, v := range it.simplices[nb] {
		if it.neighbors[nb][k] != it.triangle && v != it.vertex {
			it.index = k
			it.vertex2 = v
			break
		}
	}
	it.triangle = nb

	if it.triangle == it.start {
		it.state = ridgeDone
	}
}

// RidgeIter returns a cursor over the edges incident to vertex.
func (d *Delaunay) RidgeIter(vertex int) (*RidgeIter2D, error) {
	if d.ndim != 2 {
		return nil, ErrNotTwoDimensional
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	v2s, err := d.ensureVertexToSimplex()
	if err != nil {
		return nil, err
	}
	if vertex < 0 || vertex >= len(v2s) {
		return nil, fmt.Errorf("%w: vertex %d out of range [0, %d)", ErrInvalidInput, vertex, len(v2s))
	}
	return newRidgeIter2D(d.pub.Simplices, d.pub.Neighbors, v2s, vertex), nil
}

// Ridges returns the edges incident to vertex as a sequence.
func (d *Delaunay) Ridges(vertex int) (iter.Seq[Ridge], error) {
	it, err := d.RidgeIter(vertex)
	if err != nil {
		return nil, err
	}
	return func(yield func(Ridge) bool) {
		for ; it.Valid(); it.Next() {
			if !yield(it.Ridge()) {
				return
			}
		}
	}, nil
}
