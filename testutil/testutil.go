package testutil

import (
	"errors"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RNG wraps a seeded random source. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates num points with coordinates in [0, 1).
// Uses a single backing array.
func (r *RNG) UniformPoints(num, ndim int) [][]float64 {
	return r.UniformRangePoints(num, ndim, 0, 1)
}

// UniformRangePoints generates num points with coordinates in [lo, hi).
func (r *RNG) UniformRangePoints(num, ndim int, lo, hi float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*ndim)
	points := make([][]float64, num)
	span := hi - lo
	for i := range num {
		p := data[i*ndim : (i+1)*ndim]
		for j := range p {
			p[j] = lo + r.rand.Float64()*span
		}
		points[i] = p
	}
	return points
}

// GaussianPoints generates num points from a standard normal distribution.
func (r *RNG) GaussianPoints(num, ndim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*ndim)
	points := make([][]float64, num)
	for i := range num {
		p := data[i*ndim : (i+1)*ndim]
		for j := range p {
			p[j] = r.rand.NormFloat64()
		}
		points[i] = p
	}
	return points
}

// SpherePoints generates num points on the sphere of the given radius
// around the origin. Every point is a hull vertex.
func (r *RNG) SpherePoints(num, ndim int, radius float64) [][]float64 {
	points := r.GaussianPoints(num, ndim)
	for _, p := range points {
		var n float64
		for _, x := range p {
			n += x * x
		}
		if n == 0 {
			p[0], n = 1, 1
		}
		s := radius / math.Sqrt(n)
		for j := range p {
			p[j] *= s
		}
	}
	return points
}

// ClusteredPoints generates num points around k random centers with the
// given spread.
func (r *RNG) ClusteredPoints(num, ndim, k int, spread float64) [][]float64 {
	centers := r.UniformRangePoints(k, ndim, -1, 1)
	points := r.GaussianPoints(num, ndim)
	for i, p := range points {
		c := centers[i%k]
		for j := range p {
			p[j] = c[j] + p[j]*spread
		}
	}
	return points
}

// CirclePoints returns num evenly spaced points on a circle. The result is
// a maximally degenerate (cocircular) Delaunay input.
func (r *RNG) CirclePoints(num int, radius float64) [][]float64 {
	points := make([][]float64, num)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(num)
		points[i] = []float64{radius * math.Cos(a), radius * math.Sin(a)}
	}
	return points
}

// GridPoints returns the n^ndim points of a regular grid with unit spacing.
func GridPoints(n, ndim int) [][]float64 {
	total := 1
	for range ndim {
		total *= n
	}
	points := make([][]float64, total)
	for i := range points {
		p := make([]float64, ndim)
		idx := i
		for j := range p {
			p[j] = float64(idx % n)
			idx /= n
		}
		points[i] = p
	}
	return points
}

// Flatten concatenates rows into one row-major array.
func Flatten(points [][]float64) []float64 {
	if len(points) == 0 {
		return nil
	}
	out := make([]float64, 0, len(points)*len(points[0]))
	for _, p := range points {
		out = append(out, p...)
	}
	return out
}

// Centroid returns the mean of the points indexed by simplex.
func Centroid(points [][]float64, simplex []int) []float64 {
	c := make([]float64, len(points[simplex[0]]))
	for _, v := range simplex {
		for j, x := range points[v] {
			c[j] += x
		}
	}
	for j := range c {
		c[j] /= float64(len(simplex))
	}
	return c
}

// InCircumsphere reports whether q lies strictly inside the circumsphere of
// the simplex, by more than tol in squared distance.
func InCircumsphere(points [][]float64, simplex []int, q []float64, tol float64) bool {
	c, ok := Circumcenter(points, simplex)
	if !ok {
		return false
	}
	r2 := sqDist(points[simplex[0]], c)
	return sqDist(q, c) < r2-tol
}

// Circumcenter returns the center of the sphere through the simplex
// vertices; ok is false for a degenerate simplex.
func Circumcenter(points [][]float64, simplex []int) ([]float64, bool) {
	ndim := len(points[simplex[0]])
	p0 := points[simplex[0]]
	a := mat.NewDense(ndim, ndim, nil)
	b := mat.NewVecDense(ndim, nil)
	for i := range ndim {
		p := points[simplex[i+1]]
		var rhs float64
		for j := range ndim {
			a.Set(i, j, 2*(p[j]-p0[j]))
			rhs += p[j]*p[j] - p0[j]*p0[j]
		}
		b.SetVec(i, rhs)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		// Ill-conditioned systems still carry a usable solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false
		}
	}
	c := mat.Col(nil, 0, &x)
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return c, true
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
