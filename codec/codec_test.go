package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"json", true},
		{"go-json", true},
		{"msgpack", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ByName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.name, c.Name())
			}
		})
	}
}

func TestCodecsInteroperate(t *testing.T) {
	h := newBenchHeader()

	// Bytes written by one JSON codec decode with the other.
	data := MustMarshal(GoJSON{}, h)

	var got benchHeader
	require.NoError(t, JSON{}.Unmarshal(data, &got))
	assert.Equal(t, h, got)

	data, err := JSON{}.Marshal(h)
	require.NoError(t, err)
	got = benchHeader{}
	require.NoError(t, GoJSON{}.Unmarshal(data, &got))
	assert.Equal(t, h, got)
}

func TestMustMarshalDefault(t *testing.T) {
	assert.Equal(t, []byte(`{"a":1}`), MustMarshal(nil, map[string]int{"a": 1}))
	assert.Panics(t, func() { MustMarshal(JSON{}, func() {}) })
}
