// Package mmap maps archive files read-only into memory so the local blob
// store can hand out their contents without an intermediate copy.
package mmap
