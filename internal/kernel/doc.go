// Package kernel is the geometry kernel behind every triangulation handle.
//
// It builds convex hulls with a beneath-beyond incremental algorithm and
// reduces Delaunay triangulation to a hull in one dimension higher by lifting
// the input onto the paraboloid z = scale*|x|^2 + shift. Every facet is a
// simplex: facet i stores dim vertices and dim neighbors, and neighbor k is
// the facet across the ridge obtained by dropping vertex k.
//
// The kernel keeps a single package-level workspace, exactly like the
// library it stands in for. Nothing here is safe for concurrent use: callers
// serialize access and virtualize the workspace across logical sessions with
// Save and Restore (see internal/session).
//
// Failures are reported as *ExitError values carrying the kernel's numeric
// exit codes (ExitInput, ExitSingular, ...).
package kernel
