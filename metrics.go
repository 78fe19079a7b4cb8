package delaunay

import (
	"sync/atomic"
	"time"
)

// LocatePath identifies how a point-location query was answered.
type LocatePath int

const (
	// PathRejected means the point lay outside the bounding box.
	PathRejected LocatePath = iota
	// PathEmpty means the mesh had no simplices.
	PathEmpty
	// PathWalk means the directed walk found the simplex.
	PathWalk
	// PathBruteForce means the linear scan was used.
	PathBruteForce
	// PathOutside means the walk left the triangulation or brute force found nothing.
	PathOutside

	numLocatePaths
)

// String returns the path name.
func (p LocatePath) String() string {
	switch p {
	case PathRejected:
		return "rejected"
	case PathEmpty:
		return "empty"
	case PathWalk:
		return "walk"
	case PathBruteForce:
		return "brute_force"
	case PathOutside:
		return "outside"
	default:
		return "unknown"
	}
}

// LocateStats counts the queries of one FindSimplex call per LocatePath.
type LocateStats [numLocatePaths]int

// Total returns the number of located points.
func (s LocateStats) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

func (s *LocateStats) add(o LocateStats) {
	for i, c := range o {
		s[i] += c
	}
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    flushCounter   prometheus.Counter
//	    locateCounters *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordLocate(stats delaunay.LocateStats, duration time.Duration) {
//	    for path, n := range stats {
//	        p.locateCounters.WithLabelValues(delaunay.LocatePath(path).String()).Add(float64(n))
//	    }
//	}
type MetricsCollector interface {
	// RecordBuild is called after a handle is constructed or loaded.
	RecordBuild(npoints int, duration time.Duration, err error)

	// RecordFlush is called after each flush that reached the kernel.
	// rows is the number of buffered points committed.
	RecordFlush(rows int, duration time.Duration, err error)

	// RecordLocate is called after each FindSimplex or FindSimplexPoint call.
	RecordLocate(stats LocateStats, duration time.Duration)

	// RecordTeardown is called when a handle releases its kernel workspace.
	RecordTeardown(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordFlush(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordLocate(LocateStats, time.Duration) {}
func (NoopMetricsCollector) RecordTeardown(error)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildPoints      atomic.Int64
	FlushCount       atomic.Int64
	FlushErrors      atomic.Int64
	FlushRows        atomic.Int64
	FlushTotalNanos  atomic.Int64
	LocateCalls      atomic.Int64
	LocateTotalNanos atomic.Int64
	LocatePaths      [numLocatePaths]atomic.Int64
	TeardownCount    atomic.Int64
	TeardownErrors   atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(npoints int, _ time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildPoints.Add(int64(npoints))
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(rows int, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushRows.Add(int64(rows))
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// RecordLocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLocate(stats LocateStats, duration time.Duration) {
	b.LocateCalls.Add(1)
	b.LocateTotalNanos.Add(duration.Nanoseconds())
	for i, n := range stats {
		if n > 0 {
			b.LocatePaths[i].Add(int64(n))
		}
	}
}

// RecordTeardown implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTeardown(err error) {
	b.TeardownCount.Add(1)
	if err != nil {
		b.TeardownErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		BuildCount:     b.BuildCount.Load(),
		BuildErrors:    b.BuildErrors.Load(),
		BuildPoints:    b.BuildPoints.Load(),
		FlushCount:     b.FlushCount.Load(),
		FlushErrors:    b.FlushErrors.Load(),
		FlushRows:      b.FlushRows.Load(),
		FlushAvgNanos:  avg(b.FlushTotalNanos.Load(), b.FlushCount.Load()),
		LocateCalls:    b.LocateCalls.Load(),
		LocateAvgNanos: avg(b.LocateTotalNanos.Load(), b.LocateCalls.Load()),
		TeardownCount:  b.TeardownCount.Load(),
		TeardownErrors: b.TeardownErrors.Load(),
	}
	for i := range b.LocatePaths {
		s.LocatePaths[i] = b.LocatePaths[i].Load()
	}
	return s
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount     int64
	BuildErrors    int64
	BuildPoints    int64
	FlushCount     int64
	FlushErrors    int64
	FlushRows      int64
	FlushAvgNanos  int64
	LocateCalls    int64
	LocateAvgNanos int64
	LocatePaths    [numLocatePaths]int64
	TeardownCount  int64
	TeardownErrors int64
}
