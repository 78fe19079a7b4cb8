// Package fs abstracts the file operations behind atomic blob writes so
// tests can inject I/O failures.
//
// Production code uses [Default], which is [LocalFS]. Tests wrap it in a
// [FaultyFS] and install rules keyed by a file name pattern:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
//
// Operations take no context.Context. Local file system calls cannot be
// interrupted at the syscall level.
package fs
