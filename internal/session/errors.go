package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistent marks internal consistency failures: leaked kernel
	// memory and corrupt snapshots.
	ErrInconsistent = errors.New("internal consistency error")
	// ErrCorruptSnapshot is returned when a snapshot fails its checksum.
	ErrCorruptSnapshot = fmt.Errorf("%w: corrupt session snapshot", ErrInconsistent)
	// ErrNoSnapshot is returned when activating a session that holds no
	// snapshot: it was never initialized or was already torn down.
	ErrNoSnapshot = errors.New("session holds no snapshot")
	// ErrInitialized is returned by Init on a session that is already initialized.
	ErrInitialized = errors.New("session already initialized")
)

// LeakError reports kernel memory that FreeAll could not account for.
type LeakError struct {
	Bytes  int64
	Blocks int64
}

func (e *LeakError) Error() string {
	return fmt.Sprintf("kernel leaked %d bytes in %d blocks", e.Bytes, e.Blocks)
}

func (e *LeakError) Unwrap() error { return ErrInconsistent }
