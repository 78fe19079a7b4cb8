package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	data := []byte("delaunay workspace")

	sum := CRC32C(data)
	assert.True(t, Verify(data, sum))

	h := NewCRC32C()
	_, _ = h.Write(data[:8])
	_, _ = h.Write(data[8:])
	assert.Equal(t, sum, h.Sum32())

	corrupt := append([]byte(nil), data...)
	corrupt[0] ^= 0xff
	assert.False(t, Verify(corrupt, sum))
}
