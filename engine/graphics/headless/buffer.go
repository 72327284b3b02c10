package headless

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Buffer is the headless buffer: a plain byte slab. Every buffer is
// CPU-reachable, but Map still enforces the host-visible usage contract so
// core code cannot accidentally depend on headless leniency.
type Buffer struct {
	desc     graphics.BufferDesc
	data     []byte
	mapped   bool
	released bool
}

// Ensure Buffer implements graphics.Buffer.
var _ graphics.Buffer = (*Buffer)(nil)

func newBuffer(desc graphics.BufferDesc) *Buffer {
	return &Buffer{
		desc: desc,
		data: make([]byte, desc.Size),
	}
}

// Descriptor returns the creation-time description.
func (b *Buffer) Descriptor() graphics.BufferDesc {
	return b.desc
}

// NativeResource returns the backend identity of the buffer.
func (b *Buffer) NativeResource() graphics.NativeResource {
	return graphics.NewNativeResource(unsafe.Pointer(b), graphics.ResourceTypeBuffer)
}

// Map returns the buffer's backing memory. Only host-visible buffers
// (BufferUsageMapWrite or BufferUsageMapRead) are mappable.
//
// Returns:
//   - []byte: the full backing slab
//   - error: an error if the buffer is not host-visible or was released
func (b *Buffer) Map() ([]byte, error) {
	if b.released {
		return nil, fmt.Errorf("headless: map of released buffer %q", b.desc.Label)
	}
	if b.desc.Usage&(graphics.BufferUsageMapWrite|graphics.BufferUsageMapRead) == 0 {
		return nil, fmt.Errorf("headless: buffer %q is not host-visible", b.desc.Label)
	}
	b.mapped = true
	return b.data, nil
}

// Unmap releases the mapping returned by Map.
func (b *Buffer) Unmap() {
	b.mapped = false
}

// CreateShaderResourceView creates a structured SRV over a byte range of
// the buffer. The headless view is the buffer itself; range and stride are
// validated but not materialized.
func (b *Buffer) CreateShaderResourceView(offset, size common.SizeBytes, stride uint32) graphics.NativeView {
	if uint64(offset)+uint64(size) > uint64(len(b.data)) {
		return graphics.NativeView{}
	}
	return graphics.NewNativeView(unsafe.Pointer(b))
}

// Release drops the backing memory. Subsequent Map calls fail.
func (b *Buffer) Release() {
	b.released = true
	b.data = nil
}

// Bytes exposes the raw backing slab for test verification. Returns nil
// after Release.
//
// Returns:
//   - []byte: the backing memory (shared, not a copy)
func (b *Buffer) Bytes() []byte {
	return b.data
}
