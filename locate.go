package delaunay

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// WalkBudgetDivisor bounds the directed walk to ⌈nsimplex/WalkBudgetDivisor⌉+1
// steps before falling back to the brute-force scan.
const WalkBudgetDivisor = 4

// locateChunk is the number of points one worker locates per task.
const locateChunk = 1024

// locator is an immutable view of a triangulation for point location.
type locator struct {
	ndim      int
	neighbors [][]int
	equations [][]float64
	tt        *TransformTable
	minBound  []float64
	maxBound  []float64
	scale     float64
	shift     float64
}

// locator snapshots the mesh, building transforms if needed.
func (d *Delaunay) locator() (*locator, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, err := d.ensureMesh()
	if err != nil {
		return nil, err
	}
	return &locator{
		ndim:      d.ndim,
		neighbors: m.Neighbors,
		equations: m.Equations,
		tt:        d.ensureTransforms(m),
		minBound:  d.minBound,
		maxBound:  d.maxBound,
		scale:     d.scale,
		shift:     d.shift,
	}, nil
}

func (l *locator) nsimplex() int { return len(l.neighbors) }

// rejected reports whether x lies outside the bounding box grown by eps.
func (l *locator) rejected(x []float64, eps float64) bool {
	for i, v := range x {
		if v < l.minBound[i]-eps || v > l.maxBound[i]+eps {
			return true
		}
	}
	return false
}

// lift maps x onto the paraboloid.
func (l *locator) lift(x, z []float64) []float64 {
	z = append(z[:0], x...)
	var s float64
	for _, v := range x {
		s += v * v
	}
	return append(z, l.scale*s+l.shift)
}

// distplane returns the signed distance of the lifted point z to the
// hyperplane of simplex s.
func (l *locator) distplane(s int, z []float64) float64 {
	eq := l.equations[s]
	d := eq[l.ndim+1]
	for k := 0; k <= l.ndim; k++ {
		d += eq[k] * z[k]
	}
	return d
}

// climb moves towards a simplex whose lifted hyperplane lies below z.
// A neighbor is taken only when it improves by more than eps·(1+|best|),
// which guarantees termination.
func (l *locator) climb(z []float64, s int, eps float64) int {
	best := l.distplane(s, z)
	for changed := true; changed && best <= 0; {
		changed = false
		// The scan continues with the neighbors of the simplex just entered.
		for k := 0; k <= l.ndim; k++ {
			nb := l.neighbors[s][k]
			if nb == -1 {
				continue
			}
			if dist := l.distplane(nb, z); dist > best+eps*(1+math.Abs(best)) {
				s, best = nb, dist
				changed = true
			}
		}
	}
	return s
}

// walk follows negative barycentric coordinates from s. It returns the
// simplex found (-1 if the walk left the triangulation), the last simplex
// visited, and whether it gave up and needs the brute-force scan.
func (l *locator) walk(x []float64, s int, eps float64) (found, last int, giveUp bool) {
	budget := (l.nsimplex()+WalkBudgetDivisor-1)/WalkBudgetDivisor + 1

	for step := 0; step < budget; step++ {
		t := l.tt.transforms[s]
		if t.Singular() {
			return -1, s, true
		}

		inside, hopped := true, false
		rest := 1.0
		for k := 0; k <= l.ndim; k++ {
			var c float64
			if k < l.ndim {
				c = t.coordinate(k, x)
				rest -= c
			} else {
				c = rest
			}

			if c < -eps {
				nb := l.neighbors[s][k]
				if nb == -1 {
					return -1, s, false
				}
				s, hopped = nb, true
				break
			}
			if !(c <= 1+eps) {
				// Too large or NaN.
				inside = false
			}
		}

		switch {
		case hopped:
			continue
		case inside:
			return s, s, false
		default:
			return -1, s, true
		}
	}
	return -1, s, true
}

// bruteForce scans every simplex. A singular simplex is reported when x
// lies in one of its neighbors, with the tolerance towards the shared face
// widened to epsBroad.
func (l *locator) bruteForce(x []float64, eps, epsBroad float64, c []float64) int {
	for i, t := range l.tt.transforms {
		if !t.Singular() {
			if t.inside(x, eps) {
				return i
			}
			continue
		}

		for _, nb := range l.neighbors[i] {
			if nb < 0 {
				continue
			}
			nt := l.tt.transforms[nb]
			if nt.Singular() {
				continue
			}
			c = nt.Barycentric(x, c)

			ok := true
			for m := 0; m <= l.ndim; m++ {
				lo := -eps
				if l.neighbors[nb][m] == i {
					lo = -epsBroad
				}
				if !(c[m] >= lo && c[m] <= 1+eps) {
					ok = false
					break
				}
			}
			if ok {
				return i
			}
		}
	}
	return -1
}

// find locates one point. hint carries the start simplex between queries.
func (l *locator) find(x []float64, hint *int, o *locateOptions, epsBroad float64, z, c []float64) (int, LocatePath) {
	if l.rejected(x, o.eps) {
		return -1, PathRejected
	}
	n := l.nsimplex()
	if n == 0 {
		return -1, PathEmpty
	}

	if !o.bruteForce {
		s := *hint
		if s < 0 || s >= n {
			s = 0
		}
		if o.climb {
			s = l.climb(l.lift(x, z), s, o.eps)
		}

		found, last, giveUp := l.walk(x, s, o.eps)
		if !giveUp {
			*hint = last
			if found < 0 {
				return -1, PathOutside
			}
			return found, PathWalk
		}
	}

	found := l.bruteForce(x, o.eps, epsBroad, c)
	*hint = found
	if found < 0 {
		return -1, PathOutside
	}
	return found, PathBruteForce
}

func (l *locator) locateRange(xi [][]float64, out []int, o *locateOptions) LocateStats {
	var stats LocateStats
	hint := o.start
	epsBroad := math.Sqrt(o.eps)
	z := make([]float64, 0, l.ndim+1)
	c := make([]float64, l.ndim+1)
	for i, x := range xi {
		s, path := l.find(x, &hint, o, epsBroad, z, c)
		out[i] = s
		stats[path]++
	}
	return stats
}

// FindSimplex returns, for every query point, the index of a simplex
// containing it or -1. Large batches are split across workers, each with
// its own start hint.
func (d *Delaunay) FindSimplex(ctx context.Context, xi [][]float64, opts ...LocateOption) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := validatePoints(xi, d.ndim); err != nil {
		return nil, err
	}

	o := applyLocateOptions(opts)
	l, err := d.locator()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out := make([]int, len(xi))

	rc := d.opts.rc
	workers := o.workers
	if workers < 1 {
		workers = rc.MaxWorkers()
	}

	var stats LocateStats
	if len(xi) <= locateChunk || workers <= 1 {
		stats = l.locateRange(xi, out, &o)
	} else {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for lo := 0; lo < len(xi); lo += locateChunk {
			hi := min(lo+locateChunk, len(xi))
			g.Go(func() error {
				if err := rc.AcquireWorker(gctx); err != nil {
					return err
				}
				defer rc.ReleaseWorker()

				st := l.locateRange(xi[lo:hi], out[lo:hi], &o)
				mu.Lock()
				stats.add(st)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	d.opts.metricsCollector.RecordLocate(stats, time.Since(start))
	return out, nil
}

// FindSimplexPoint locates a single point.
func (d *Delaunay) FindSimplexPoint(x []float64, opts ...LocateOption) (int, error) {
	out, err := d.FindSimplex(context.Background(), [][]float64{x}, opts...)
	if err != nil {
		return -1, err
	}
	return out[0], nil
}
