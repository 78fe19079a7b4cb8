package delaunay

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocatePath_String(t *testing.T) {
	assert.Equal(t, "rejected", PathRejected.String())
	assert.Equal(t, "empty", PathEmpty.String())
	assert.Equal(t, "walk", PathWalk.String())
	assert.Equal(t, "brute_force", PathBruteForce.String())
	assert.Equal(t, "outside", PathOutside.String())
	assert.Equal(t, "unknown", LocatePath(42).String())
}

func TestLocateStats(t *testing.T) {
	var s LocateStats
	s[PathWalk] = 3
	s.add(LocateStats{PathRejected: 1, PathWalk: 2})
	assert.Equal(t, 5, s[PathWalk])
	assert.Equal(t, 6, s.Total())
}

func TestBasicMetricsCollector(t *testing.T) {
	var mc BasicMetricsCollector
	mc.RecordBuild(10, time.Millisecond, nil)
	mc.RecordBuild(2, time.Millisecond, errors.New("fail"))
	mc.RecordFlush(4, 2*time.Millisecond, nil)
	mc.RecordFlush(6, 4*time.Millisecond, errors.New("fail"))
	mc.RecordLocate(LocateStats{PathWalk: 7, PathOutside: 1}, time.Millisecond)
	mc.RecordTeardown(nil)

	s := mc.GetStats()
	assert.Equal(t, int64(2), s.BuildCount)
	assert.Equal(t, int64(1), s.BuildErrors)
	assert.Equal(t, int64(12), s.BuildPoints)
	assert.Equal(t, int64(2), s.FlushCount)
	assert.Equal(t, int64(1), s.FlushErrors)
	assert.Equal(t, int64(10), s.FlushRows)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), s.FlushAvgNanos)
	assert.Equal(t, int64(1), s.LocateCalls)
	assert.Equal(t, int64(7), s.LocatePaths[PathWalk])
	assert.Equal(t, int64(1), s.LocatePaths[PathOutside])
	assert.Equal(t, int64(1), s.TeardownCount)
	assert.Zero(t, s.TeardownErrors)
}
