package kernel

import (
	"encoding/binary"
	"errors"
	"math"
)

var snapshotMagic = [4]byte{'K', 'W', 'S', 1}

// Save serializes the live workspace. Facet, vertex and point ids survive a
// Save/Restore round trip unchanged.
func Save() ([]byte, error) {
	if ws == nil {
		return nil, errNoWorkspace
	}
	w := ws
	e := &encoder{buf: make([]byte, 0, 64+8*len(w.points)+len(w.facets)*int(facetBytes(w.dim)))}
	e.buf = append(e.buf, snapshotMagic[:]...)

	e.u64(w.cfg.bits())
	e.int(w.ndim)
	e.int(w.dim)
	e.int(w.infinity)
	e.f64(w.scale)
	e.f64(w.shift)
	e.floats(w.interior)
	e.f64(w.maxAbs)
	e.f64(w.minVisible)
	e.bool(w.triangulated)
	e.floats(w.points)

	e.int(len(w.vertices))
	for _, v := range w.vertices {
		e.bool(v != nil)
		if v != nil {
			e.int(v.point)
			e.int(v.nfacets)
		}
	}

	e.int(w.head)
	e.int(w.tail)
	e.int(w.last)
	e.int(len(w.facets))
	for _, f := range w.facets {
		e.bool(f != nil)
		if f == nil {
			continue
		}
		e.ints(f.vertices)
		e.ints(f.neighbors)
		e.floats(f.normal)
		e.f64(f.offset)
		e.bool(f.simplicial)
		e.bool(f.upper)
		e.int(f.next)
		e.int(f.prev)
	}

	e.ints(w.coplanar)
	e.i64(w.allocBytes)
	e.i64(w.allocBlocks)
	return e.buf, nil
}

// Restore replaces the live workspace with a snapshot produced by Save.
func Restore(blob []byte) error {
	w, err := decodeWorkspace(blob)
	if err != nil {
		return exitf(ExitQhull, "restore workspace: %v", err)
	}
	ws = w
	return nil
}

// FreeAll releases the live workspace and returns the bytes and blocks the
// allocator still accounts afterwards. Both are zero when bookkeeping balances.
func FreeAll() (bytes, blocks int64) {
	w := ws
	if w == nil {
		return 0, 0
	}
	ws = nil

	for _, f := range w.facets {
		if f != nil {
			w.allocBytes -= facetBytes(w.dim)
			w.allocBlocks--
		}
	}
	for _, v := range w.vertices {
		if v != nil {
			w.allocBytes -= vertexBytes
			w.allocBlocks--
		}
	}
	w.allocBytes -= int64(8 * len(w.points))
	w.allocBlocks--
	return w.allocBytes, w.allocBlocks
}

var errTruncated = errors.New("snapshot truncated")

func decodeWorkspace(blob []byte) (*workspace, error) {
	if len(blob) < len(snapshotMagic) || [4]byte(blob[:4]) != snapshotMagic {
		return nil, errors.New("bad snapshot magic")
	}
	d := &decoder{buf: blob[4:]}

	cfg := configFromBits(d.u64())
	ndim := d.int()
	w := newWorkspace(ndim, cfg)
	if dim := d.int(); dim != w.dim || ndim < 2 {
		return nil, errors.New("inconsistent snapshot dimensions")
	}
	w.infinity = d.int()
	w.scale = d.f64()
	w.shift = d.f64()
	w.interior = d.floats()
	w.maxAbs = d.f64()
	w.minVisible = d.f64()
	w.triangulated = d.bool()
	w.points = d.floats()

	nv := d.count()
	w.vertices = make([]*vertex, nv)
	for i := range w.vertices {
		if d.bool() {
			w.vertices[i] = &vertex{point: d.int(), nfacets: d.int()}
			w.nvertices++
		}
	}

	w.head = d.int()
	w.tail = d.int()
	w.last = d.int()
	nf := d.count()
	w.facets = make([]*facet, nf)
	for i := range w.facets {
		if !d.bool() {
			continue
		}
		w.facets[i] = &facet{
			vertices:   d.ints(),
			neighbors:  d.ints(),
			normal:     d.floats(),
			offset:     d.f64(),
			simplicial: d.bool(),
			upper:      d.bool(),
			next:       d.int(),
			prev:       d.int(),
		}
		w.nfacets++
	}

	w.coplanar = d.ints()
	w.allocBytes = d.i64()
	w.allocBlocks = d.i64()

	if d.err != nil {
		return nil, d.err
	}
	if len(d.buf) != 0 {
		return nil, errors.New("trailing bytes after snapshot")
	}
	if len(w.points)%w.dim != 0 || len(w.interior) != w.dim {
		return nil, errors.New("inconsistent snapshot point data")
	}
	return w, w.validate()
}

// validate checks the references a corrupt snapshot could break.
func (w *workspace) validate() error {
	liveFacet := func(id int) bool { return id >= 0 && id < len(w.facets) && w.facets[id] != nil }
	if w.head >= 0 && !liveFacet(w.head) || w.tail >= 0 && !liveFacet(w.tail) {
		return errors.New("facet list ends are not live")
	}
	for _, f := range w.facets {
		if f == nil {
			continue
		}
		if len(f.vertices) != w.dim || len(f.neighbors) != w.dim || len(f.normal) != w.dim {
			return errors.New("facet arity mismatch")
		}
		for k := range f.vertices {
			v := f.vertices[k]
			if v < 0 || v >= len(w.vertices) || w.vertices[v] == nil {
				return errors.New("facet references a freed vertex")
			}
			if !liveFacet(f.neighbors[k]) {
				return errors.New("facet references a deleted neighbor")
			}
		}
	}
	for _, v := range w.vertices {
		if v != nil && (v.point < 0 || v.point >= w.npoints()) {
			return errors.New("vertex references an unknown point")
		}
	}
	return nil
}

type encoder struct{ buf []byte }

func (e *encoder) u64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *encoder) i64(v int64)  { e.u64(uint64(v)) }
func (e *encoder) int(v int)    { e.i64(int64(v)) }
func (e *encoder) f64(v float64) {
	e.u64(math.Float64bits(v))
}

func (e *encoder) bool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

func (e *encoder) ints(v []int) {
	e.int(len(v))
	for _, x := range v {
		e.int(x)
	}
}

func (e *encoder) floats(v []float64) {
	e.int(len(v))
	for _, x := range v {
		e.f64(x)
	}
}

// decoder reads what encoder wrote; the first failure sticks in err.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) u64() uint64 {
	if d.err != nil {
		return 0
	}
	if len(d.buf) < 8 {
		d.err = errTruncated
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf)
	d.buf = d.buf[8:]
	return v
}

func (d *decoder) i64() int64   { return int64(d.u64()) }
func (d *decoder) int() int     { return int(d.i64()) }
func (d *decoder) f64() float64 { return math.Float64frombits(d.u64()) }

func (d *decoder) bool() bool {
	if d.err != nil {
		return false
	}
	if len(d.buf) < 1 {
		d.err = errTruncated
		return false
	}
	v := d.buf[0]
	d.buf = d.buf[1:]
	return v != 0
}

// count reads a length that must fit in the remaining bytes.
func (d *decoder) count() int {
	n := d.int()
	if d.err == nil && (n < 0 || n > len(d.buf)) {
		d.err = errTruncated
		return 0
	}
	return n
}

func (d *decoder) ints() []int {
	n := d.count()
	if n == 0 {
		return nil
	}
	v := make([]int, n)
	for i := range v {
		v[i] = d.int()
	}
	return v
}

func (d *decoder) floats() []float64 {
	n := d.count()
	if n == 0 {
		return nil
	}
	v := make([]float64, n)
	for i := range v {
		v[i] = d.f64()
	}
	return v
}
