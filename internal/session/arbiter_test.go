package session

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/delaunay/internal/compress"
)

// fakeWorkspace holds an opaque state string.
type fakeWorkspace struct {
	state    []byte // nil when empty
	leak     int64
	saves    int
	restores int
	frees    int
}

func (w *fakeWorkspace) Save() ([]byte, error) {
	if w.state == nil {
		return nil, errors.New("empty workspace")
	}
	w.saves++
	return append([]byte(nil), w.state...), nil
}

func (w *fakeWorkspace) Restore(blob []byte) error {
	w.restores++
	w.state = append([]byte(nil), blob...)
	return nil
}

func (w *fakeWorkspace) FreeAll() (int64, int64) {
	w.frees++
	w.state = nil
	leak := w.leak
	w.leak = 0
	if leak != 0 {
		return leak, 1
	}
	return 0, 0
}

func snapshotSize(s *Session) int { return s.snapshot.Size() }

func build(w *fakeWorkspace, state string) func() error {
	return func() error {
		w.state = []byte(state)
		return nil
	}
}

func TestArbiter_InitAndSwitch(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)

	s1 := NewSession(compress.LZ4)
	s2 := NewSession(compress.ZSTD)

	require.NoError(t, a.Init(s1, build(ws, "one")))
	assert.True(t, a.IsActive(s1))
	assert.True(t, s1.Initialized())
	assert.Zero(t, snapshotSize(s1))

	// Initializing s2 evicts s1 into its snapshot.
	require.NoError(t, a.Init(s2, build(ws, "two")))
	assert.False(t, a.IsActive(s1))
	assert.True(t, a.IsActive(s2))
	assert.Positive(t, snapshotSize(s1))

	var seen string
	require.NoError(t, a.Do(s1, func() error {
		seen = string(ws.state)
		return nil
	}))
	assert.Equal(t, "one", seen)
	assert.True(t, a.IsActive(s1))
	assert.Positive(t, snapshotSize(s2))

	require.NoError(t, a.Do(s2, func() error {
		seen = string(ws.state)
		return nil
	}))
	assert.Equal(t, "two", seen)

	stats := a.Stats()
	assert.Equal(t, uint64(4), stats.Activations)
	assert.Equal(t, uint64(3), stats.Deactivations)
	assert.Positive(t, stats.SnapshotBytes)
}

func TestArbiter_ActivateTwiceIsNoop(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s1, s2 := NewSession(compress.None), NewSession(compress.None)
	require.NoError(t, a.Init(s1, build(ws, "one")))
	require.NoError(t, a.Init(s2, build(ws, "two")))

	require.NoError(t, a.Activate(s1))
	before := a.Stats()
	restores := ws.restores

	require.NoError(t, a.Activate(s1))
	assert.Equal(t, before, a.Stats())
	assert.Equal(t, restores, ws.restores)
	assert.True(t, a.IsActive(s1))
}

func TestArbiter_RoundTrip(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s := NewSession(compress.ZSTD)
	require.NoError(t, a.Init(s, build(ws, "facets and vertices")))

	require.NoError(t, a.Deactivate(s))
	assert.Nil(t, ws.state)
	assert.False(t, a.IsActive(s))

	// Deactivating an inactive session is a no-op.
	require.NoError(t, a.Deactivate(s))

	require.NoError(t, a.Activate(s))
	assert.Equal(t, "facets and vertices", string(ws.state))
}

func TestArbiter_ActivateWithoutSnapshot(t *testing.T) {
	a := New(&fakeWorkspace{})
	err := a.Activate(NewSession(compress.LZ4))
	assert.ErrorIs(t, err, ErrNoSnapshot)

	err = a.Do(NewSession(compress.LZ4), func() error { return nil })
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestArbiter_InitFailure(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s := NewSession(compress.LZ4)

	boom := errors.New("flat input")
	err := a.Init(s, func() error {
		ws.state = []byte("partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Initialized())
	assert.Nil(t, ws.state)

	require.NoError(t, a.Init(s, build(ws, "ok")))
	assert.ErrorIs(t, a.Init(s, build(ws, "again")), ErrInitialized)
}

func TestArbiter_Teardown(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s1, s2 := NewSession(compress.LZ4), NewSession(compress.LZ4)
	require.NoError(t, a.Init(s1, build(ws, "one")))
	require.NoError(t, a.Init(s2, build(ws, "two")))

	// Teardown restores s1 first, saving s2.
	require.NoError(t, a.Teardown(s1))
	assert.False(t, s1.Initialized())
	assert.Zero(t, snapshotSize(s1))
	assert.False(t, a.IsActive(s1))
	assert.Positive(t, snapshotSize(s2))

	// Second teardown is a no-op.
	require.NoError(t, a.Teardown(s1))
	assert.ErrorIs(t, a.Activate(s1), ErrNoSnapshot)

	require.NoError(t, a.Do(s2, func() error { return nil }))
	assert.Equal(t, "two", string(ws.state))
	assert.Equal(t, uint64(1), a.Stats().Teardowns)
}

func TestArbiter_TeardownLeak(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s := NewSession(compress.None)
	require.NoError(t, a.Init(s, build(ws, "leaky")))

	ws.leak = 48
	err := a.Teardown(s)

	var leak *LeakError
	require.ErrorAs(t, err, &leak)
	assert.Equal(t, int64(48), leak.Bytes)
	assert.Equal(t, int64(1), leak.Blocks)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.False(t, s.Initialized())
}

func TestArbiter_InitFailureLeak(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s := NewSession(compress.LZ4)

	boom := errors.New("flat input")
	err := a.Init(s, func() error {
		ws.state = []byte("partial")
		ws.leak = 16
		return boom
	})
	assert.ErrorIs(t, err, boom)
	var leak *LeakError
	require.ErrorAs(t, err, &leak)
	assert.Equal(t, int64(16), leak.Bytes)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.False(t, s.Initialized())
	assert.False(t, a.IsActive(s))
}

func TestArbiter_DeactivateLeak(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s1, s2 := NewSession(compress.LZ4), NewSession(compress.LZ4)
	require.NoError(t, a.Init(s1, build(ws, "one")))

	ws.leak = 32
	var leak *LeakError
	require.ErrorAs(t, a.Deactivate(s1), &leak)
	assert.Equal(t, int64(32), leak.Bytes)

	// s1 is no longer recorded as resident and comes back from its snapshot.
	assert.False(t, a.IsActive(s1))
	assert.Positive(t, snapshotSize(s1))

	var seen string
	require.NoError(t, a.Do(s1, func() error {
		seen = string(ws.state)
		return nil
	}))
	assert.Equal(t, "one", seen)

	require.NoError(t, a.Init(s2, build(ws, "two")))
	assert.True(t, a.IsActive(s2))
}

func TestArbiter_CorruptSnapshot(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s1, s2 := NewSession(compress.None), NewSession(compress.None)
	require.NoError(t, a.Init(s1, build(ws, "one")))
	require.NoError(t, a.Init(s2, build(ws, "two")))

	s1.snapshot.Block[len(s1.snapshot.Block)-1] ^= 0xff
	err := a.Activate(s1)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.ErrorIs(t, a.Teardown(s1), ErrInconsistent)

	// Other sessions are unaffected.
	require.NoError(t, a.Do(s2, func() error { return nil }))
	assert.Equal(t, "two", string(ws.state))
}

func TestArbiter_DoReleasesOnPanic(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s := NewSession(compress.LZ4)
	require.NoError(t, a.Init(s, build(ws, "one")))

	assert.Panics(t, func() {
		_ = a.Do(s, func() error { panic("kernel abort") })
	})

	// The lock was released and s is still resident.
	assert.True(t, a.IsActive(s))
}

func TestArbiter_Export(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	s1, s2 := NewSession(compress.ZSTD), NewSession(compress.ZSTD)
	require.NoError(t, a.Init(s1, build(ws, "one")))

	raw, err := a.Export(s1)
	require.NoError(t, err)
	assert.Equal(t, "one", string(raw))

	require.NoError(t, a.Init(s2, build(ws, "two")))
	raw, err = a.Export(s1)
	require.NoError(t, err)
	assert.Equal(t, "one", string(raw))

	s3 := NewSession(compress.LZ4)
	require.NoError(t, a.Adopt(s3, raw))
	assert.True(t, s3.Initialized())
	require.NoError(t, a.Activate(s3))
	assert.Equal(t, "one", string(ws.state))
	assert.ErrorIs(t, a.Adopt(s3, raw), ErrInitialized)
}

//go:noinline
func initOrphan(t *testing.T, a *Arbiter, ws *fakeWorkspace) {
	s := NewSession(compress.LZ4)
	require.NoError(t, a.Init(s, build(ws, "orphan")))
}

func TestArbiter_OrphanedWorkspace(t *testing.T) {
	ws := &fakeWorkspace{}
	a := New(ws)
	initOrphan(t, a, ws)

	for i := 0; i < 10 && a.active.Value() != nil; i++ {
		runtime.GC()
	}
	require.Nil(t, a.active.Value())

	s := NewSession(compress.LZ4)
	require.NoError(t, a.Init(s, build(ws, "next")))
	assert.Equal(t, uint64(1), a.Stats().Orphans)
	assert.Zero(t, a.Stats().Deactivations)
}

func TestSnapshot(t *testing.T) {
	raw := []byte("workspace workspace workspace workspace workspace")
	for _, ct := range []compress.Type{compress.None, compress.LZ4, compress.ZSTD} {
		snap, err := NewSnapshot(raw, ct)
		require.NoError(t, err)
		got, err := snap.Decode()
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}

	var nilSnap *Snapshot
	assert.Zero(t, nilSnap.Size())
}
