package delaunay

import (
	"errors"
	"fmt"

	"github.com/hupe1980/delaunay/internal/kernel"
	"github.com/hupe1980/delaunay/internal/mesh"
	"github.com/hupe1980/delaunay/internal/resource"
	"github.com/hupe1980/delaunay/internal/session"
)

var (
	// ErrInvalidInput is returned for malformed points or arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotIncremental is returned by AddPoints on handles built without
	// WithIncremental(true).
	ErrNotIncremental = errors.New("handle is not incremental")

	// ErrUnusable is returned by every operation except Close after an
	// insertion failed.
	ErrUnusable = errors.New("handle is unusable after a failed insertion")

	// ErrInconsistent marks internal consistency failures: leaked kernel
	// memory at teardown, non-simplicial facets and corrupt snapshots.
	ErrInconsistent = errors.New("internal consistency error")

	// ErrClosed is returned by operations on a closed handle.
	ErrClosed = errors.New("handle is closed")

	// ErrNotTwoDimensional is returned by the ridge walker for ndim != 2.
	ErrNotTwoDimensional = errors.New("ridge iteration requires a 2-D triangulation")

	// ErrMemoryLimitExceeded is returned when growing a point buffer would
	// exceed the resource controller's memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrCorruptArchive is returned when an archive fails validation.
	ErrCorruptArchive = errors.New("corrupt archive")
)

// ErrDimensionMismatch indicates a point/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrIncompatibleOptions indicates kernel options that the handle mode
// does not allow.
type ErrIncompatibleOptions struct {
	Options KernelOption
	Reason  string
}

func (e *ErrIncompatibleOptions) Error() string {
	return fmt.Sprintf("kernel options %q are incompatible with %s", e.Options.String(), e.Reason)
}

// Is makes every ErrIncompatibleOptions match ErrInvalidInput.
func (e *ErrIncompatibleOptions) Is(target error) bool { return target == ErrInvalidInput }

// TriangulationError is a non-zero geometry kernel exit status.
//
// The kernel error can be accessed via errors.Unwrap.
type TriangulationError struct {
	// Op is the operation that failed ("build", "flush").
	Op string
	// Code is the kernel exit code.
	Code  int
	cause error
}

func (e *TriangulationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.cause)
}

func (e *TriangulationError) Unwrap() error { return e.cause }

// Kernel exit codes carried by TriangulationError.Code.
const (
	ExitInput     = kernel.ExitInput
	ExitSingular  = kernel.ExitSingular
	ExitPrecision = kernel.ExitPrecision
	ExitMemory    = kernel.ExitMemory
	ExitInternal  = kernel.ExitQhull
	ExitTopology  = kernel.ExitTopology
)

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	// Kernel exits.
	var ee *kernel.ExitError
	if errors.As(err, &ee) {
		return &TriangulationError{Op: op, Code: ee.Code, cause: err}
	}

	// Consistency unification.
	if errors.Is(err, session.ErrInconsistent) ||
		errors.Is(err, mesh.ErrNonSimplicial) ||
		errors.Is(err, mesh.ErrBrokenList) {
		return fmt.Errorf("%w: %s: %w", ErrInconsistent, op, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
