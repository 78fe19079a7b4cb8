// Package compress implements the framed block compression used for kernel
// workspace snapshots and triangulation archives.
//
// Every encoded block starts with an 8-byte header:
//
//	[UncompressedSize uint32][CompressedSize uint32][Data...]
//
// A CompressedSize of zero means the payload is stored verbatim, which happens
// when the codec does not shrink the input by at least 10%.
//
// LZ4 favours speed and is the default for session snapshots, which are
// written on every session switch. ZSTD favours ratio and is the default for
// archives that leave the process.
package compress
