// Package session virtualizes the kernel's single global workspace across
// many logical triangulations.
//
// An Arbiter owns the process-wide mutex in front of the kernel and records
// which Session is resident. Every other initialized Session holds a
// Snapshot: the serialized, compressed and checksummed workspace. Switching
// sessions deactivates the resident one (Save) and activates the requested
// one (Restore). The resident session is left in place after each call, so
// repeated calls on the same session cost nothing.
//
// The active slot is a weak pointer. A Session that is garbage collected
// while resident leaves an orphaned workspace behind, which the Arbiter
// frees before the next restore.
package session
