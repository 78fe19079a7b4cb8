//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrow(t *testing.T) {
	b, err := Narrow[uint8](255)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), b)

	_, err = Narrow[uint8](256)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = Narrow[uint8](-1)
	assert.ErrorIs(t, err, ErrOverflow)

	u, err := Narrow[uint32](math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), u)

	_, err = Narrow[uint32](math.MaxUint32 + 1)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = Narrow[uint64](-1)
	assert.ErrorIs(t, err, ErrOverflow)

	i, err := Narrow[int16](-32768)
	require.NoError(t, err)
	assert.Equal(t, int16(-32768), i)
}

func TestWiden(t *testing.T) {
	i, err := Widen(uint32(math.MaxUint32))
	require.NoError(t, err)
	assert.Equal(t, math.MaxUint32, i)

	_, err = Widen(uint64(math.MaxUint64))
	assert.ErrorIs(t, err, ErrOverflow)

	i, err = Widen(int8(-5))
	require.NoError(t, err)
	assert.Equal(t, -5, i)
}

func TestAddMul(t *testing.T) {
	s, err := Add(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, s)
	_, err = Add(math.MaxInt, 1)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = Add(-1, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	p, err := Mul(6, 7)
	require.NoError(t, err)
	assert.Equal(t, 42, p)
	p, err = Mul(0, math.MaxInt)
	require.NoError(t, err)
	assert.Zero(t, p)
	_, err = Mul(math.MaxInt/2+1, 2)
	assert.ErrorIs(t, err, ErrOverflow)
}
