package session

import (
	"fmt"

	"github.com/hupe1980/delaunay/internal/compress"
	"github.com/hupe1980/delaunay/internal/hash"
)

// Snapshot is a serialized kernel workspace.
type Snapshot struct {
	Compression compress.Type
	// Checksum is the CRC32C of the uncompressed workspace.
	Checksum uint32
	Block    []byte
}

// NewSnapshot compresses raw with ct.
func NewSnapshot(raw []byte, ct compress.Type) (*Snapshot, error) {
	block, err := compress.Encode(raw, ct)
	if err != nil {
		return nil, fmt.Errorf("session: compress snapshot: %w", err)
	}
	return &Snapshot{Compression: ct, Checksum: hash.CRC32C(raw), Block: block}, nil
}

// Decode decompresses the snapshot and verifies its checksum.
func (s *Snapshot) Decode() ([]byte, error) {
	raw, err := compress.Decode(s.Block, s.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if !hash.Verify(raw, s.Checksum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}
	return raw, nil
}

// Size returns the stored (compressed) size in bytes.
func (s *Snapshot) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Block)
}
