package delaunay

import (
	"math"

	"github.com/hupe1980/delaunay/internal/linalg"
)

// rcondLimit is the reciprocal condition number below which a simplex
// transform is treated as singular.
const rcondLimit = 1000 * 0x1p-52

// Transform maps a point to barycentric coordinates of one simplex.
//
// With T the matrix whose column j is vertex j minus the last vertex r,
// the first ndim coordinates are c = T⁻¹(x − r) and the last one is
// 1 − Σc. Degenerate simplices have no inverse and are Singular.
type Transform struct {
	// Inverse is T⁻¹ in row-major order, nil when singular.
	Inverse []float64
	// Anchor is r, the last vertex of the simplex. It is set for singular
	// transforms too.
	Anchor []float64
}

// Singular reports whether the simplex is degenerate or ill-conditioned.
func (t Transform) Singular() bool { return t.Inverse == nil }

// coordinate returns cₖ for k < ndim.
func (t Transform) coordinate(k int, x []float64) float64 {
	n := len(t.Anchor)
	row := t.Inverse[k*n : (k+1)*n]
	var c float64
	for j, v := range row {
		c += v * (x[j] - t.Anchor[j])
	}
	return c
}

// Barycentric writes the ndim+1 barycentric coordinates of x into c (grown
// as needed) and returns it. Singular transforms yield NaN.
func (t Transform) Barycentric(x, c []float64) []float64 {
	n := len(t.Anchor)
	c = append(c[:0], make([]float64, n+1)...)
	if t.Singular() {
		for i := range c {
			c[i] = math.NaN()
		}
		return c
	}
	c[n] = 1
	for k := 0; k < n; k++ {
		c[k] = t.coordinate(k, x)
		c[n] -= c[k]
	}
	return c
}

// inside reports whether every barycentric coordinate of x lies in
// [−eps, 1+eps]. It stops at the first coordinate out of range.
func (t Transform) inside(x []float64, eps float64) bool {
	if t.Singular() {
		return false
	}
	n := len(t.Anchor)
	last := 1.0
	for k := 0; k < n; k++ {
		c := t.coordinate(k, x)
		last -= c
		if !(c >= -eps && c <= 1+eps) {
			return false
		}
	}
	return last >= -eps && last <= 1+eps
}

// TransformTable holds one Transform per simplex.
type TransformTable struct {
	ndim       int
	transforms []Transform
}

// Len returns the number of simplices.
func (tt *TransformTable) Len() int { return len(tt.transforms) }

// NDim returns the dimension of the transforms.
func (tt *TransformTable) NDim() int { return tt.ndim }

// At returns the transform of simplex i.
func (tt *TransformTable) At(i int) Transform { return tt.transforms[i] }

// Array exports the table as M blocks of (ndim+1)×ndim: the first ndim rows
// hold T⁻¹ and the last row holds r. Singular blocks are all NaN.
func (tt *TransformTable) Array() [][][]float64 {
	n := tt.ndim
	out := make([][][]float64, len(tt.transforms))
	for i, t := range tt.transforms {
		flat := make([]float64, (n+1)*n)
		if t.Singular() {
			for j := range flat {
				flat[j] = math.NaN()
			}
		} else {
			copy(flat, t.Inverse)
			copy(flat[n*n:], t.Anchor)
		}
		block := make([][]float64, n+1)
		for r := range block {
			block[r] = flat[r*n : (r+1)*n : (r+1)*n]
		}
		out[i] = block
	}
	return out
}

// buildTransforms computes the barycentric transform of every simplex.
func buildTransforms(points [][]float64, simplices [][]int, ndim int) *TransformTable {
	tt := &TransformTable{
		ndim:       ndim,
		transforms: make([]Transform, len(simplices)),
	}

	t := make([]float64, ndim*ndim)
	for i, s := range simplices {
		r := points[s[ndim]]
		for col := 0; col < ndim; col++ {
			v := points[s[col]]
			for row := 0; row < ndim; row++ {
				t[row*ndim+col] = v[row] - r[row]
			}
		}
		tt.transforms[i] = newTransform(ndim, t, r)
	}
	return tt
}

func newTransform(n int, t, anchor []float64) Transform {
	tr := Transform{Anchor: append([]float64(nil), anchor...)}

	anorm := linalg.Norm1(n, t)
	lu, ok := linalg.Factorize(n, t)
	if !ok || lu.RCond(anorm) < rcondLimit {
		return tr
	}
	if inv, ok := lu.SolveIdentity(); ok {
		tr.Inverse = inv
	}
	return tr
}
