package kernel

import "fmt"

// Exit codes reported by the kernel.
const (
	ExitInput     = 1 // invalid input or options
	ExitSingular  = 2 // input is flat or lower-dimensional
	ExitPrecision = 3 // precision error
	ExitMemory    = 4 // allocation failure
	ExitQhull     = 5 // internal error or misuse
	ExitOther     = 6
	ExitTopology  = 7 // facet topology does not close
)

// ExitError is a non-zero kernel exit status.
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("kernel: exit %d (%s): %s", e.Code, codeName(e.Code), e.Msg)
}

func exitf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func codeName(code int) string {
	switch code {
	case ExitInput:
		return "input"
	case ExitSingular:
		return "singular"
	case ExitPrecision:
		return "precision"
	case ExitMemory:
		return "memory"
	case ExitQhull:
		return "internal"
	case ExitTopology:
		return "topology"
	default:
		return "other"
	}
}

var errNoWorkspace = exitf(ExitQhull, "no live workspace")
