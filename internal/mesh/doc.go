// Package mesh converts the kernel's facet list into flat, index-based
// arrays and derives the adjacency tables built on top of them.
//
// Extraction copies everything it reads; a Mesh never refers back to
// kernel memory and stays valid after the workspace is saved or freed.
package mesh
