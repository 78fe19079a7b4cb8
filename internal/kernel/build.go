package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Build replaces the live workspace with the hull (or lifted Delaunay hull) of
// coords, a flat array of ndim-wide rows. On failure no workspace is live.
func Build(ndim int, coords []float64, cfg Config) error {
	ws = nil

	if ndim < 2 {
		return exitf(ExitInput, "dimension %d is below 2", ndim)
	}
	if len(coords) == 0 || len(coords)%ndim != 0 {
		return exitf(ExitInput, "%d coordinates do not form %d-dimensional points", len(coords), ndim)
	}
	if !cfg.Delaunay && (cfg.ScaleLast || cfg.PointAtInfinity) {
		return exitf(ExitInput, "options Qbb and Qz apply to Delaunay triangulations only")
	}
	for i, x := range coords {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return exitf(ExitInput, "point %d has a non-finite coordinate", i/ndim)
		}
	}

	w := newWorkspace(ndim, cfg)
	w.load(coords, len(coords)/ndim)

	if n, need := w.npoints(), w.dim+1; n < need {
		return exitf(ExitInput, "not enough points (%d) to construct initial simplex (need %d)", n, need)
	}

	simplex, ok := w.initialSimplex()
	if !ok {
		return exitf(ExitSingular, "initial simplex is flat: input is lower-dimensional than %d", w.dim)
	}
	if err := w.createSimplex(simplex); err != nil {
		return err
	}

	inSimplex := make(map[int]bool, len(simplex))
	for _, id := range simplex {
		inSimplex[id] = true
	}
	for id := 0; id < w.npoints(); id++ {
		if inSimplex[id] {
			continue
		}
		p := w.point(id)
		f, dist, outside := w.findBestFacet(p)
		if !outside {
			w.noteCoplanar(id, dist)
			continue
		}
		if _, err := w.insert(id, f); err != nil {
			return err
		}
	}

	w.checkBounds()
	w.triangulate()
	ws = w
	return nil
}

// load stores (and lifts) the input points and accounts them as one block.
func (w *workspace) load(coords []float64, n int) {
	if !w.cfg.Delaunay {
		w.points = append(make([]float64, 0, len(coords)), coords...)
	} else {
		ndim := w.ndim
		sq := make([]float64, n)
		lo, hi, m := math.Inf(1), math.Inf(-1), 0.0
		for i := 0; i < n; i++ {
			var s float64
			for _, x := range coords[i*ndim : (i+1)*ndim] {
				s += x * x
				m = math.Max(m, math.Abs(x))
			}
			sq[i] = s
			lo, hi = math.Min(lo, s), math.Max(hi, s)
		}
		if w.cfg.ScaleLast && hi > lo {
			w.scale = m / (hi - lo)
			w.shift = -lo * w.scale
		}

		w.points = make([]float64, 0, (n+1)*w.dim)
		zmin, zmax := math.Inf(1), math.Inf(-1)
		for i := 0; i < n; i++ {
			z := w.scale*sq[i] + w.shift
			w.points = append(w.points, coords[i*ndim:(i+1)*ndim]...)
			w.points = append(w.points, z)
			zmin, zmax = math.Min(zmin, z), math.Max(zmax, z)
		}

		if w.cfg.PointAtInfinity {
			centroid := make([]float64, ndim)
			for i := 0; i < n; i++ {
				floats.AddScaled(centroid, 1/float64(n), coords[i*ndim:(i+1)*ndim])
			}
			w.infinity = n
			w.points = append(w.points, centroid...)
			w.points = append(w.points, zmax+2*((zmax-zmin)+m))
		}
	}

	w.allocBytes += int64(8 * len(w.points))
	w.allocBlocks++
	w.refreshBounds()
}

// initialSimplex picks dim+1 affinely independent points, greedily
// maximizing each new point's distance from the span of the previous ones.
func (w *workspace) initialSimplex() ([]int, bool) {
	n, d := w.npoints(), w.dim

	first := 0
	for id := 1; id < n; id++ {
		if w.point(id)[0] < w.point(first)[0] {
			first = id
		}
	}
	origin := w.point(first)

	// Rounding in the residuals grows with the spread of the candidates.
	var spread float64
	for id := 0; id < n; id++ {
		spread = math.Max(spread, floats.Distance(w.point(id), origin, 2))
	}
	tol := math.Max(w.minVisible, 10*float64(d)*eps*spread)
	simplex := []int{first}
	basis := make([][]float64, 0, d)
	residual := make([]float64, d)

	for len(simplex) <= d {
		bestID, bestNorm := -1, tol
		var bestVec []float64
		for id := 0; id < n; id++ {
			floats.SubTo(residual, w.point(id), origin)
			for _, q := range basis {
				floats.AddScaled(residual, -floats.Dot(q, residual), q)
			}
			if r := floats.Norm(residual, 2); r > bestNorm {
				bestID, bestNorm = id, r
				bestVec = append(bestVec[:0], residual...)
			}
		}
		if bestID < 0 {
			return nil, false
		}
		floats.Scale(1/bestNorm, bestVec)
		basis = append(basis, bestVec)
		simplex = append(simplex, bestID)
	}
	return simplex, true
}

// createSimplex installs the initial simplex: facet i drops simplex vertex i.
func (w *workspace) createSimplex(simplex []int) error {
	d := w.dim
	w.interior = make([]float64, d)
	for _, id := range simplex {
		floats.AddScaled(w.interior, 1/float64(d+1), w.point(id))
	}

	verts := make([]int, d+1)
	for i, id := range simplex {
		verts[i] = w.newVertex(id)
	}

	base := len(w.facets)
	for i := 0; i <= d; i++ {
		fv := make([]int, 0, d)
		fn := make([]int, 0, d)
		pts := make([][]float64, 0, d)
		for j := 0; j <= d; j++ {
			if j == i {
				continue
			}
			fv = append(fv, verts[j])
			fn = append(fn, base+j)
			pts = append(pts, w.vertexPoint(verts[j]))
		}
		normal, offset, ok := w.hyperplane(pts)
		if !ok {
			return exitf(ExitPrecision, "initial simplex facet %d is degenerate", i)
		}
		w.newFacet(fv, fn, normal, offset)
	}
	w.last = base
	return nil
}
