// Package hash provides the checksums used to guard serialized kernel
// workspaces and archives.
//
// Session snapshots and archive bodies carry a CRC32-Castagnoli (CRC32C)
// checksum that is verified before the bytes are handed back to the kernel.
// A mismatch is reported as corruption by the caller, never repaired.
//
//	sum := hash.CRC32C(blob)
//	if !hash.Verify(blob, sum) {
//	    // corrupt
//	}
//
// Go's hash/crc32 uses SSE4.2 / ARM CRC instructions when available.
package hash
