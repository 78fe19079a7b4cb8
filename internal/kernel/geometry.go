package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// hyperplane returns the unit normal and offset of the hyperplane through
// pts (w.dim points), oriented so the interior point lies strictly below it.
// ok is false when the points are affinely dependent within tolerance.
//
// The normal spans the null space of the edge matrix: the last column of the
// full Q of its QR factorization. |R[k][k]| is the distance of edge k from
// the span of the edges before it.
func (w *workspace) hyperplane(pts [][]float64) (normal []float64, offset float64, ok bool) {
	d := w.dim
	tol := w.minVisible
	origin := pts[0][:d]

	edges := mat.NewDense(d, d-1, nil)
	for k := 1; k < d; k++ {
		for i := 0; i < d; i++ {
			edges.Set(i, k-1, pts[k][i]-origin[i])
		}
	}

	var qr mat.QR
	qr.Factorize(edges)
	var r, q mat.Dense
	qr.RTo(&r)
	for k := 0; k < d-1; k++ {
		if !(math.Abs(r.At(k, k)) > tol) {
			return nil, 0, false
		}
	}
	qr.QTo(&q)
	normal = mat.Col(nil, d-1, &q)
	if !finite(normal) {
		return nil, 0, false
	}

	offset = -floats.Dot(normal, origin)
	side := floats.Dot(normal, w.interior) + offset
	if math.Abs(side) <= tol || math.IsNaN(side) {
		return nil, 0, false
	}
	if side > 0 {
		floats.Scale(-1, normal)
		offset = -offset
	}
	return normal, offset, true
}

// lift fills the last column of each dim-wide row of buf.
func (w *workspace) lift(buf []float64, rows int) {
	for i := 0; i < rows; i++ {
		row := buf[i*w.dim : (i+1)*w.dim]
		x := row[:w.ndim]
		row[w.ndim] = w.scale*floats.Dot(x, x) + w.shift
	}
}
