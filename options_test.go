package delaunay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelOption_String(t *testing.T) {
	tests := []struct {
		opt  KernelOption
		want string
	}{
		{0, ""},
		{ScaleLast, "Qbb"},
		{PointAtInfinity | KeepCoplanar, "Qz Qc"},
		{ScaleLast | PointAtInfinity | KeepCoplanar, "Qbb Qz Qc"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opt.String())

			parsed, err := ParseKernelOptions(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.opt, parsed)
		})
	}

	_, err := ParseKernelOptions("Qbb Qt")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOptions_KernelOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		delaunay bool
		want     KernelOption
		wantErr  bool
	}{
		{"DelaunayDefault", nil, true, ScaleLast | PointAtInfinity | KeepCoplanar, false},
		{"IncrementalDefault", []Option{WithIncremental(true)}, true, KeepCoplanar, false},
		{"HullDefault", nil, false, KeepCoplanar, false},
		{"Explicit", []Option{WithKernelOptions(ScaleLast)}, true, ScaleLast, false},
		{"ExplicitEmpty", []Option{WithKernelOptions(0)}, true, 0, false},
		{"IncrementalQz", []Option{WithIncremental(true), WithKernelOptions(PointAtInfinity)}, true, 0, true},
		{"HullQbb", []Option{WithKernelOptions(ScaleLast | KeepCoplanar)}, false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := applyOptions(tt.opts)
			got, err := o.kernelOptions(tt.delaunay)
			if tt.wantErr {
				var io *ErrIncompatibleOptions
				require.ErrorAs(t, err, &io)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyOptions_Defaults(t *testing.T) {
	o := applyOptions([]Option{nil, WithLogger(nil), WithMetricsCollector(nil)})
	assert.Equal(t, CompressionLZ4, o.compression)
	assert.NotNil(t, o.codec)
	assert.NotNil(t, o.logger)
	assert.IsType(t, NoopMetricsCollector{}, o.metricsCollector)
	assert.Nil(t, o.rc)
}

func TestApplyLocateOptions(t *testing.T) {
	o := applyLocateOptions(nil)
	assert.Equal(t, DefaultTolerance, o.eps)
	assert.True(t, o.climb)
	assert.False(t, o.bruteForce)

	for _, eps := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		o = applyLocateOptions([]LocateOption{WithTolerance(eps)})
		assert.Equal(t, DefaultTolerance, o.eps)
	}

	o = applyLocateOptions([]LocateOption{WithTolerance(1e-6), WithBruteForce(), WithStartHint(3), WithoutClimb(), WithWorkers(2)})
	assert.Equal(t, 1e-6, o.eps)
	assert.True(t, o.bruteForce)
	assert.Equal(t, 3, o.start)
	assert.False(t, o.climb)
	assert.Equal(t, 2, o.workers)
}
