package delaunay

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/delaunay/blobstore"
	"github.com/hupe1980/delaunay/codec"
	"github.com/hupe1980/delaunay/internal/compress"
	"github.com/hupe1980/delaunay/internal/conv"
	"github.com/hupe1980/delaunay/internal/hash"
	"github.com/hupe1980/delaunay/internal/kernel"
	"github.com/hupe1980/delaunay/internal/resource"
)

const (
	archiveVersion = 1
	// magic(4) + version(2) + codec name length(1)
	archivePrefixSize = 7
)

var archiveMagic = [4]byte{'D', 'L', 'N', 'A'}

// archiveHeader describes the body of an archive.
type archiveHeader struct {
	NDim          int     `json:"ndim"`
	Mode          string  `json:"mode"`
	KernelOptions string  `json:"kernel_options"`
	Incremental   bool    `json:"incremental"`
	BlockRows     []int   `json:"block_rows"`
	Scale         float64 `json:"scale"`
	Shift         float64 `json:"shift"`
	Compression   string  `json:"compression"`
	Checksum      uint32  `json:"checksum"`
	WorkspaceLen  int     `json:"workspace_len"`
}

// Save flushes pending points and writes the handle, points and kernel
// workspace, to store under name.
func (h *handle) Save(ctx context.Context, store blobstore.Store, name string) error {
	blob, err := h.encodeArchive(ctx)
	if err == nil {
		err = store.Put(ctx, name, blob)
	}
	h.opts.logger.LogArchive(ctx, "save", name, len(blob), err)
	return err
}

func (h *handle) encodeArchive(ctx context.Context) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usable(); err != nil {
		return nil, err
	}
	if _, err := h.flushLocked(false); err != nil {
		return nil, err
	}

	raw, err := h.arbiter.Export(h.sess)
	if err != nil {
		return nil, translateError("save", err)
	}

	hdr := archiveHeader{
		NDim:          h.ndim,
		Mode:          modeName(h.delaunay),
		KernelOptions: h.kernel.String(),
		Incremental:   h.opts.incremental,
		BlockRows:     make([]int, len(h.blocks)),
		Scale:         h.scale,
		Shift:         h.shift,
		Compression:   h.opts.compression.String(),
		WorkspaceLen:  len(raw),
	}

	body := make([]byte, 0, len(h.rows)*h.ndim*8+len(raw))
	for i, b := range h.blocks {
		hdr.BlockRows[i] = len(b) / h.ndim
		for _, x := range b {
			body = binary.LittleEndian.AppendUint64(body, math.Float64bits(x))
		}
	}
	body = append(body, raw...)

	block, err := compress.Encode(body, h.opts.compression)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	hdr.Checksum = hash.CRC32C(block)

	c := h.opts.codec
	hb, err := c.Marshal(hdr)
	if err != nil {
		return nil, fmt.Errorf("save: encode header: %w", err)
	}

	nlen, err := conv.Narrow[uint8](len(c.Name()))
	if err != nil {
		return nil, fmt.Errorf("save: codec name: %w", err)
	}
	hlen, err := conv.Narrow[uint32](len(hb))
	if err != nil {
		return nil, fmt.Errorf("save: header: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(archivePrefixSize + len(c.Name()) + 4 + len(hb) + len(block))
	w := resource.NewRateLimitedWriter(ctx, &buf, h.opts.rc)

	prefix := make([]byte, 0, archivePrefixSize+len(c.Name())+4)
	prefix = append(prefix, archiveMagic[:]...)
	prefix = binary.LittleEndian.AppendUint16(prefix, archiveVersion)
	prefix = append(prefix, nlen)
	prefix = append(prefix, c.Name()...)
	prefix = binary.LittleEndian.AppendUint32(prefix, hlen)

	for _, p := range [][]byte{prefix, hb, block} {
		if _, err := w.Write(p); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// decodeArchive splits an archive into its header and decompressed body.
func decodeArchive(blob []byte) (*archiveHeader, []byte, error) {
	if len(blob) < archivePrefixSize || !bytes.Equal(blob[:4], archiveMagic[:]) {
		return nil, nil, fmt.Errorf("%w: bad magic", ErrCorruptArchive)
	}
	if v := binary.LittleEndian.Uint16(blob[4:6]); v != archiveVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptArchive, v)
	}

	off := archivePrefixSize
	nlen := int(blob[6])
	if len(blob) < off+nlen+4 {
		return nil, nil, fmt.Errorf("%w: truncated prefix", ErrCorruptArchive)
	}
	name := string(blob[off : off+nlen])
	off += nlen
	c, ok := codec.ByName(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown codec %q", ErrCorruptArchive, name)
	}

	hlen, err := conv.Widen(binary.LittleEndian.Uint32(blob[off:]))
	off += 4
	if err != nil || hlen > len(blob)-off {
		return nil, nil, fmt.Errorf("%w: truncated header", ErrCorruptArchive)
	}
	var hdr archiveHeader
	if err := c.Unmarshal(blob[off:off+hlen], &hdr); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %w", ErrCorruptArchive, err)
	}
	off += hlen

	block := blob[off:]
	if !hash.Verify(block, hdr.Checksum) {
		return nil, nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptArchive)
	}
	ct, err := compress.ParseType(hdr.Compression)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	body, err := compress.Decode(block, ct)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	rows := 0
	for _, r := range hdr.BlockRows {
		if r <= 0 {
			return nil, nil, fmt.Errorf("%w: empty point block", ErrCorruptArchive)
		}
		if rows, err = conv.Add(rows, r); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
		}
	}
	if hdr.NDim < 2 {
		return nil, nil, fmt.Errorf("%w: dimension %d", ErrCorruptArchive, hdr.NDim)
	}
	size, err := conv.Mul(rows, hdr.NDim)
	if err == nil {
		size, err = conv.Mul(size, 8)
	}
	if err == nil {
		size, err = conv.Add(size, hdr.WorkspaceLen)
	}
	if err != nil || len(body) != size {
		return nil, nil, fmt.Errorf("%w: body size mismatch", ErrCorruptArchive)
	}
	return &hdr, body, nil
}

// Load restores a Delaunay triangulation saved with Save. The kernel
// workspace is adopted as is, without re-triangulating.
func Load(ctx context.Context, store blobstore.Store, name string, opts ...Option) (*Delaunay, error) {
	h, err := loadHandle(ctx, store, name, true, opts)
	if err != nil {
		return nil, err
	}
	return &Delaunay{handle: h}, nil
}

// LoadConvexHull restores a convex hull saved with Save.
func LoadConvexHull(ctx context.Context, store blobstore.Store, name string, opts ...Option) (*ConvexHull, error) {
	h, err := loadHandle(ctx, store, name, false, opts)
	if err != nil {
		return nil, err
	}
	return &ConvexHull{handle: h}, nil
}

func loadHandle(ctx context.Context, store blobstore.Store, name string, delaunay bool, optFns []Option) (*handle, error) {
	o := applyOptions(optFns)

	blob, err := store.Get(ctx, name)
	var h *handle
	if err == nil {
		h, err = newHandleFromArchive(o, blob, delaunay)
	}
	o.logger.LogArchive(ctx, "load", name, len(blob), err)
	return h, err
}

func newHandleFromArchive(o options, blob []byte, delaunay bool) (*handle, error) {
	hdr, body, err := decodeArchive(blob)
	if err != nil {
		return nil, err
	}
	if hdr.Mode != modeName(delaunay) {
		return nil, fmt.Errorf("%w: archive holds a %s handle", ErrInvalidInput, hdr.Mode)
	}
	k, err := ParseKernelOptions(hdr.KernelOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	o.kernel, o.kernelSet = k, true
	o.incremental = hdr.Incremental
	if _, err := o.kernelOptions(delaunay); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	o.logger = o.logger.WithMode(hdr.Mode).WithDimension(hdr.NDim)

	h := newHandleBase(o, delaunay, k, hdr.NDim)
	h.scale, h.shift = hdr.Scale, hdr.Shift

	off := 0
	for _, r := range hdr.BlockRows {
		flat := make([]float64, r*hdr.NDim)
		for i := range flat {
			flat[i] = math.Float64frombits(binary.LittleEndian.Uint64(body[off:]))
			off += 8
		}
		h.appendBlock(flat)
	}

	if err := h.arbiter.Adopt(h.sess, body[off:]); err != nil {
		return nil, translateError("load", err)
	}

	// Restoring validates the workspace against the points.
	npoints := len(h.rows)
	err = h.arbiter.Do(h.sess, func() error {
		want := hdr.NDim
		if delaunay {
			want++
		}
		if kernel.Dim() != want {
			return fmt.Errorf("%w: workspace dimension %d, want %d", ErrCorruptArchive, kernel.Dim(), want)
		}
		if _, _, n := kernel.Counts(); n < npoints {
			return fmt.Errorf("%w: workspace holds %d points, want %d", ErrCorruptArchive, n, npoints)
		}
		return nil
	})
	if err != nil {
		// The session is initialized and may be resident.
		_ = h.arbiter.Teardown(h.sess)
		return nil, translateError("load", err)
	}
	return h, nil
}
