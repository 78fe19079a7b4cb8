package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/hupe1980/delaunay/internal/compress"
	"github.com/hupe1980/delaunay/internal/kernel"
)

// Workspace is the global state being virtualized.
type Workspace interface {
	Save() ([]byte, error)
	Restore(blob []byte) error
	// FreeAll releases the workspace and returns leaked bytes and blocks.
	FreeAll() (bytes, blocks int64)
}

// Session is one logical workspace. The zero value is not usable; create
// sessions with NewSession.
type Session struct {
	compression compress.Type
	initialized bool
	snapshot    *Snapshot // nil while resident or uninitialized
}

// NewSession returns an uninitialized session whose snapshots use ct.
func NewSession(ct compress.Type) *Session {
	return &Session{compression: ct}
}

// Initialized reports whether the session holds a workspace.
func (s *Session) Initialized() bool { return s.initialized }


// Stats holds arbiter counters.
type Stats struct {
	Activations   uint64
	Deactivations uint64
	Teardowns     uint64
	Orphans       uint64
	SnapshotBytes uint64
}

// Arbiter serializes access to a Workspace and tracks the resident session.
type Arbiter struct {
	mu       sync.Mutex
	ws       Workspace
	active   weak.Pointer[Session]
	resident bool // the workspace holds some session's state

	activations   atomic.Uint64
	deactivations atomic.Uint64
	teardowns     atomic.Uint64
	orphans       atomic.Uint64
	snapshotBytes atomic.Uint64
}

// New returns an arbiter in front of ws.
func New(ws Workspace) *Arbiter {
	return &Arbiter{ws: ws}
}

var defaultArbiter = sync.OnceValue(func() *Arbiter { return New(kernel.Live{}) })

// Default returns the process-wide arbiter for the live kernel workspace.
func Default() *Arbiter { return defaultArbiter() }

// Stats returns a snapshot of the counters.
func (a *Arbiter) Stats() Stats {
	return Stats{
		Activations:   a.activations.Load(),
		Deactivations: a.deactivations.Load(),
		Teardowns:     a.teardowns.Load(),
		Orphans:       a.orphans.Load(),
		SnapshotBytes: a.snapshotBytes.Load(),
	}
}

// IsActive reports whether s is resident.
func (a *Arbiter) IsActive(s *Session) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isActive(s)
}

func (a *Arbiter) isActive(s *Session) bool {
	return a.resident && a.active.Value() == s
}

// Init runs build on a fresh workspace and makes s resident. A failing
// build releases whatever it allocated and leaves s uninitialized.
func (a *Arbiter) Init(s *Session, build func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s.initialized {
		return ErrInitialized
	}
	if err := a.evict(); err != nil {
		return err
	}
	if err := build(); err != nil {
		if bytes, blocks := a.ws.FreeAll(); bytes != 0 || blocks != 0 {
			return errors.Join(err, &LeakError{Bytes: bytes, Blocks: blocks})
		}
		return err
	}

	s.initialized = true
	a.active = weak.Make(s)
	a.resident = true
	a.activations.Add(1)
	return nil
}

// Adopt initializes s from a raw workspace blob without touching the kernel.
func (a *Arbiter) Adopt(s *Session, raw []byte) error {
	if s.initialized {
		return ErrInitialized
	}
	snap, err := NewSnapshot(raw, s.compression)
	if err != nil {
		return err
	}
	s.snapshot = snap
	s.initialized = true
	return nil
}

// Do runs fn with s resident, holding the arbiter lock. s stays resident
// afterwards.
func (a *Arbiter) Do(s *Session, fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.activate(s); err != nil {
		return err
	}
	return fn()
}

// Activate makes s resident.
func (a *Arbiter) Activate(s *Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activate(s)
}

// Deactivate saves s into its snapshot if it is resident.
func (a *Arbiter) Deactivate(s *Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deactivate(s)
}

// Export returns the raw workspace of s.
func (a *Arbiter) Export(s *Session) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isActive(s) {
		return a.ws.Save()
	}
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return s.snapshot.Decode()
}

// Teardown frees the workspace of s and verifies the kernel's allocator
// balanced. Tearing down an uninitialized session is a no-op.
func (a *Arbiter) Teardown(s *Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !s.initialized {
		return nil
	}
	err := a.activate(s)

	var bytes, blocks int64
	if err == nil {
		bytes, blocks = a.ws.FreeAll()
	}
	a.active = weak.Pointer[Session]{}
	a.resident = false
	s.snapshot = nil
	s.initialized = false
	a.teardowns.Add(1)

	if err != nil {
		return err
	}
	if bytes != 0 || blocks != 0 {
		return &LeakError{Bytes: bytes, Blocks: blocks}
	}
	return nil
}

func (a *Arbiter) activate(s *Session) error {
	if a.isActive(s) {
		return nil
	}
	if err := a.evict(); err != nil {
		return err
	}
	if s.snapshot == nil {
		return ErrNoSnapshot
	}

	raw, err := s.snapshot.Decode()
	if err != nil {
		return err
	}
	if err := a.ws.Restore(raw); err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}

	s.snapshot = nil
	a.active = weak.Make(s)
	a.resident = true
	a.activations.Add(1)
	return nil
}

func (a *Arbiter) deactivate(s *Session) error {
	if !a.isActive(s) {
		return nil
	}

	raw, err := a.ws.Save()
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	snap, err := NewSnapshot(raw, s.compression)
	if err != nil {
		return err
	}
	bytes, blocks := a.ws.FreeAll()

	// The workspace is gone either way; s can still be restored from snap.
	s.snapshot = snap
	a.active = weak.Pointer[Session]{}
	a.resident = false
	a.deactivations.Add(1)
	a.snapshotBytes.Add(uint64(snap.Size()))

	if bytes != 0 || blocks != 0 {
		return &LeakError{Bytes: bytes, Blocks: blocks}
	}
	return nil
}

// evict makes room in the workspace: the resident session is saved, or an
// orphaned workspace is freed.
func (a *Arbiter) evict() error {
	if !a.resident {
		return nil
	}
	if cur := a.active.Value(); cur != nil {
		return a.deactivate(cur)
	}

	bytes, blocks := a.ws.FreeAll()
	a.active = weak.Pointer[Session]{}
	a.resident = false
	a.orphans.Add(1)
	if bytes != 0 || blocks != 0 {
		return &LeakError{Bytes: bytes, Blocks: blocks}
	}
	return nil
}
