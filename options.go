package delaunay

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/hupe1980/delaunay/codec"
	"github.com/hupe1980/delaunay/internal/compress"
	"github.com/hupe1980/delaunay/internal/resource"
)

// KernelOption is a set of geometry kernel switches.
type KernelOption uint8

const (
	// ScaleLast rescales the paraboloid coordinate to the range of the
	// input coordinates ("Qbb").
	ScaleLast KernelOption = 1 << iota
	// PointAtInfinity adds a point above the paraboloid so that cospherical
	// inputs still triangulate ("Qz").
	PointAtInfinity
	// KeepCoplanar records input points left out of the hull ("Qc").
	KeepCoplanar
)

var kernelOptionNames = []struct {
	opt  KernelOption
	name string
}{
	{ScaleLast, "Qbb"},
	{PointAtInfinity, "Qz"},
	{KeepCoplanar, "Qc"},
}

// Has reports whether every option in o is set.
func (k KernelOption) Has(o KernelOption) bool { return k&o == o }

// String returns the options in kernel notation, e.g. "Qbb Qz Qc".
func (k KernelOption) String() string {
	var parts []string
	for _, n := range kernelOptionNames {
		if k.Has(n.opt) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseKernelOptions parses the kernel notation produced by String.
func ParseKernelOptions(s string) (KernelOption, error) {
	var k KernelOption
	for _, f := range strings.Fields(s) {
		found := false
		for _, n := range kernelOptionNames {
			if f == n.name {
				k |= n.opt
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown kernel option %q", ErrInvalidInput, f)
		}
	}
	return k, nil
}

const (
	defaultDelaunayOptions    = ScaleLast | PointAtInfinity | KeepCoplanar
	defaultIncrementalOptions = KeepCoplanar
	defaultHullOptions        = KeepCoplanar
)

// Compression selects how session snapshots and archive bodies are compressed.
type Compression = compress.Type

const (
	// CompressionNone stores bytes verbatim.
	CompressionNone = compress.None
	// CompressionLZ4 favors speed (default).
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD favors size.
	CompressionZSTD = compress.ZSTD
)

// ResourceConfig holds memory, worker and IO limits.
type ResourceConfig = resource.Config

// ResourceController enforces a ResourceConfig. One controller may be
// shared by many handles to give them a common budget.
type ResourceController = resource.Controller

// NewResourceController creates a controller for cfg.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}

type options struct {
	kernel           KernelOption
	kernelSet        bool
	incremental      bool
	compression      Compression
	rc               *resource.Controller
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures New, NewConvexHull and Load.
type Option func(*options)

// WithKernelOptions replaces the default kernel option set.
//
// Defaults: Delaunay ScaleLast|PointAtInfinity|KeepCoplanar, incremental
// Delaunay KeepCoplanar, convex hull KeepCoplanar. ScaleLast and
// PointAtInfinity are rejected for incremental handles and hulls.
func WithKernelOptions(k KernelOption) Option {
	return func(o *options) {
		o.kernel = k
		o.kernelSet = true
	}
}

// WithIncremental enables AddPoints and Flush.
func WithIncremental(incremental bool) Option {
	return func(o *options) {
		o.incremental = incremental
	}
}

// WithCompression sets the compression used for session snapshots and
// archive bodies. Default: CompressionLZ4.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController draws point buffer memory, location workers and
// archive upload bandwidth from rc. Pass nil for no limits.
func WithResourceController(rc *ResourceController) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithResourceLimits creates a dedicated controller for cfg.
// Convenience wrapper for WithResourceController(NewResourceController(cfg)).
func WithResourceLimits(cfg ResourceConfig) Option {
	return func(o *options) {
		o.rc = resource.NewController(cfg)
	}
}

// WithCodec configures the codec used for archive headers.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &delaunay.BasicMetricsCollector{}
//	tri, _ := delaunay.New(points, delaunay.WithMetricsCollector(metrics))
//	// ... use tri ...
//	stats := metrics.GetStats()
//	fmt.Printf("Locate calls: %d, avg latency: %dns\n", stats.LocateCalls, stats.LocateAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := delaunay.NewJSONLogger(slog.LevelInfo)
//	tri, _ := delaunay.New(points, delaunay.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		compression:      CompressionLZ4,
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

// kernelOptions resolves the effective option set for a handle mode.
func (o *options) kernelOptions(delaunay bool) (KernelOption, error) {
	k := o.kernel
	if !o.kernelSet {
		switch {
		case !delaunay:
			k = defaultHullOptions
		case o.incremental:
			k = defaultIncrementalOptions
		default:
			k = defaultDelaunayOptions
		}
	}

	forbidden := k & (ScaleLast | PointAtInfinity)
	switch {
	case forbidden == 0:
		return k, nil
	case !delaunay:
		return 0, &ErrIncompatibleOptions{Options: forbidden, Reason: "convex hulls are not lifted"}
	case o.incremental:
		return 0, &ErrIncompatibleOptions{Options: forbidden, Reason: "incremental mode"}
	}
	return k, nil
}

// DefaultTolerance is the default point-location tolerance, 100 machine epsilons.
const DefaultTolerance = 100 * 0x1p-52

type locateOptions struct {
	eps        float64
	bruteForce bool
	start      int
	climb      bool
	workers    int
}

// LocateOption configures FindSimplex and FindSimplexPoint.
type LocateOption func(*locateOptions)

// WithTolerance sets the barycentric tolerance. Non-positive or NaN values
// keep the default.
func WithTolerance(eps float64) LocateOption {
	return func(o *locateOptions) {
		if eps > 0 && !math.IsInf(eps, 0) {
			o.eps = eps
		}
	}
}

// WithBruteForce skips the walk and scans every simplex.
func WithBruteForce() LocateOption {
	return func(o *locateOptions) {
		o.bruteForce = true
	}
}

// WithStartHint starts the search at simplex i. Out-of-range hints fall
// back to simplex 0.
func WithStartHint(i int) LocateOption {
	return func(o *locateOptions) {
		o.start = i
	}
}

// WithoutClimb skips the paraboloid hill-climb and walks from the hint directly.
func WithoutClimb() LocateOption {
	return func(o *locateOptions) {
		o.climb = false
	}
}

// WithWorkers caps the number of goroutines used for large batches.
// Values below 1 use the resource controller's worker limit.
func WithWorkers(n int) LocateOption {
	return func(o *locateOptions) {
		o.workers = n
	}
}

func applyLocateOptions(optFns []LocateOption) locateOptions {
	o := locateOptions{
		eps:   DefaultTolerance,
		climb: true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
