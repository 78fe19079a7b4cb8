package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("conv: integer overflow")

// Integer is the set of built-in integer types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Narrow converts an int to T, failing when v is out of T's range.
func Narrow[T Integer](v int) (T, error) {
	t := T(v)
	if int(t) != v || (t < 0) != (v < 0) {
		return 0, fmt.Errorf("%w: %d does not fit %T", ErrOverflow, v, t)
	}
	return t, nil
}

// Widen converts a T to int, failing when v is out of int's range.
func Widen[T Integer](v T) (int, error) {
	i := int(v)
	if T(i) != v || (i < 0) != (v < 0) {
		return 0, fmt.Errorf("%w: %d does not fit int", ErrOverflow, v)
	}
	return i, nil
}

// Add returns a+b for non-negative operands.
func Add(a, b int) (int, error) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return a + b, nil
}

// Mul returns a*b for non-negative operands.
func Mul(a, b int) (int, error) {
	if a < 0 || b < 0 || (a != 0 && b > math.MaxInt/a) {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return a * b, nil
}
