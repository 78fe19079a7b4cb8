package delaunay

import (
	"github.com/hupe1980/delaunay/internal/resource"
)

// pointBuffer collects points added to an incremental handle until the next
// flush. Rows are width wide: ndim coordinates plus, in Delaunay mode, one
// slot reserved for the paraboloid coordinate.
type pointBuffer struct {
	data     []float64 // nil when nothing is pending
	rows     int
	width    int
	reserved int64 // bytes held in the resource controller
}

func newPointBuffer(width int) pointBuffer {
	return pointBuffer{width: width}
}

// pending reports whether a buffer exists, even an empty one.
func (b *pointBuffer) pending() bool { return b.data != nil }

func (b *pointBuffer) capRows() int { return len(b.data) / b.width }

// add copies points (ndim columns each) after the live rows, growing the
// buffer to old + old/2 + incoming + 1 rows when full. On error the buffer
// is unchanged.
func (b *pointBuffer) add(points [][]float64, rc *resource.Controller) error {
	n := len(points)

	newCap := -1
	switch {
	case b.data == nil:
		newCap = n
	case b.rows+n > b.capRows():
		old := b.capRows()
		newCap = old + old/2 + n + 1
	}

	if newCap >= 0 {
		size := int64(newCap) * int64(b.width) * 8
		if delta := size - b.reserved; delta > 0 {
			if err := rc.AcquireMemory(delta); err != nil {
				return err
			}
		}
		data := make([]float64, newCap*b.width)
		copy(data, b.data[:b.rows*b.width])
		b.data = data
		b.reserved = size
	}

	for i, p := range points {
		copy(b.data[(b.rows+i)*b.width:], p)
	}
	b.rows += n
	return nil
}

// live returns the flat live rows.
func (b *pointBuffer) live() []float64 { return b.data[:b.rows*b.width] }

// reset drops the buffer and returns its memory reservation.
func (b *pointBuffer) reset(rc *resource.Controller) {
	rc.ReleaseMemory(b.reserved)
	*b = pointBuffer{width: b.width}
}
