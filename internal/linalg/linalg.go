// Package linalg wraps the LAPACK routines used to invert small dense
// simplex edge matrices: LU factorization, reciprocal condition estimation
// and triangular solves.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// LU is the factorization P*A = L*U of an n×n matrix.
type LU struct {
	a    blas64.General
	ipiv []int
}

func general(n int, data []float64) blas64.General {
	return blas64.General{Rows: n, Cols: n, Stride: n, Data: data}
}

// Norm1 returns the 1-norm (maximum absolute column sum) of the row-major
// n×n matrix a.
func Norm1(n int, a []float64) float64 {
	return lapack64.Lange(lapack.MaxColumnSum, general(n, a), make([]float64, n))
}

// Factorize computes the LU factorization of the row-major n×n matrix a,
// which is copied. ok is false when an exact zero pivot was found.
func Factorize(n int, a []float64) (*LU, bool) {
	lu := &LU{
		a:    general(n, append([]float64(nil), a[:n*n]...)),
		ipiv: make([]int, n),
	}
	ok := lapack64.Getrf(lu.a, lu.ipiv)
	return lu, ok
}

// N returns the matrix order.
func (lu *LU) N() int { return lu.a.Rows }

// RCond estimates the reciprocal condition number in the 1-norm, given the
// 1-norm of the original matrix.
func (lu *LU) RCond(anorm float64) float64 {
	n := lu.a.Rows
	return lapack64.Gecon(lapack.MaxColumnSum, lu.a, anorm, make([]float64, 4*n), make([]int, n))
}

// Solve overwrites the row-major n×nrhs matrix b with A⁻¹b.
func (lu *LU) Solve(nrhs int, b []float64) {
	n := lu.a.Rows
	lapack64.Getrs(blas.NoTrans, lu.a, blas64.General{Rows: n, Cols: nrhs, Stride: nrhs, Data: b}, lu.ipiv)
}

// SolveIdentity returns A⁻¹ in row-major order. ok is false when the
// result has non-finite entries.
func (lu *LU) SolveIdentity() ([]float64, bool) {
	n := lu.a.Rows
	inv := make([]float64, n*n)
	for i := 0; i < n; i++ {
		inv[i*n+i] = 1
	}
	lu.Solve(n, inv)
	for _, x := range inv {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
	}
	return inv, true
}

// Det returns the determinant of the factorized matrix.
func (lu *LU) Det() float64 {
	n := lu.a.Rows
	det := 1.0
	for i := 0; i < n; i++ {
		det *= lu.a.Data[i*lu.a.Stride+i]
		if lu.ipiv[i] != i {
			det = -det
		}
	}
	return det
}

// GramDet returns det(V·Vᵀ) for the k vectors of length m stored row-major
// in v: the squared k-volume of the parallelotope they span.
func GramDet(k, m int, v []float64) float64 {
	if k == 0 {
		return 1
	}
	g := make([]float64, k*k)
	blas64.Gemm(blas.NoTrans, blas.Trans, 1,
		blas64.General{Rows: k, Cols: m, Stride: m, Data: v},
		blas64.General{Rows: k, Cols: m, Stride: m, Data: v},
		0, general(k, g))
	lu, ok := Factorize(k, g)
	if !ok {
		return 0
	}
	return math.Max(lu.Det(), 0)
}
