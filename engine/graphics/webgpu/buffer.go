package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Buffer wraps a device buffer. Host-visible buffers keep a CPU shadow
// slab: Map returns the shadow and Unmap flushes it to the device through
// the queue, which orders the write before any later submit on the same
// queue timeline.
type Buffer struct {
	desc  graphics.BufferDesc
	raw   *wgpu.Buffer
	queue *wgpu.Queue

	shadow   []byte
	mapped   bool
	released bool
}

// Ensure Buffer implements graphics.Buffer.
var _ graphics.Buffer = (*Buffer)(nil)

func newBuffer(desc graphics.BufferDesc, raw *wgpu.Buffer, queue *wgpu.Queue) *Buffer {
	b := &Buffer{
		desc:  desc,
		raw:   raw,
		queue: queue,
	}
	if desc.Usage&(graphics.BufferUsageMapWrite|graphics.BufferUsageMapRead) != 0 {
		b.shadow = make([]byte, desc.Size)
	}
	return b
}

// Descriptor returns the creation-time description.
func (b *Buffer) Descriptor() graphics.BufferDesc {
	return b.desc
}

// NativeResource returns the backend identity of the buffer.
func (b *Buffer) NativeResource() graphics.NativeResource {
	return graphics.NewNativeResource(unsafe.Pointer(b), graphics.ResourceTypeBuffer)
}

// Map returns the CPU shadow of a host-visible buffer.
//
// Returns:
//   - []byte: the shadow slab covering the whole buffer
//   - error: an error if the buffer is not host-visible or was released
func (b *Buffer) Map() ([]byte, error) {
	if b.released {
		return nil, fmt.Errorf("webgpu: map of released buffer %q", b.desc.Label)
	}
	if b.shadow == nil {
		return nil, fmt.Errorf("webgpu: buffer %q is not host-visible", b.desc.Label)
	}
	b.mapped = true
	return b.shadow, nil
}

// Unmap flushes the shadow to the device for writable mappings.
func (b *Buffer) Unmap() {
	if !b.mapped {
		return
	}
	b.mapped = false
	if b.desc.Usage&graphics.BufferUsageMapWrite != 0 && !b.released {
		b.queue.WriteBuffer(b.raw, 0, b.shadow)
	}
}

// CreateShaderResourceView creates a structured SRV over a byte range of
// the buffer. The backend identity of the underlying buffer is the view;
// wgpu materializes buffer views at bind group creation.
func (b *Buffer) CreateShaderResourceView(offset, size common.SizeBytes, stride uint32) graphics.NativeView {
	if uint64(offset)+uint64(size) > uint64(b.desc.Size) {
		return graphics.NativeView{}
	}
	return graphics.NewNativeView(unsafe.Pointer(b.raw))
}

// Release destroys the device buffer and drops the shadow.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.shadow = nil
	b.raw.Release()
}

// Raw exposes the wrapped wgpu buffer for bind group construction.
func (b *Buffer) Raw() *wgpu.Buffer {
	return b.raw
}

// shadowAt returns the shadow bytes from offset, or nil when the buffer is
// not host-visible. Used by the recorder's copy paths.
func (b *Buffer) shadowAt(offset common.SizeBytes) []byte {
	if b.shadow == nil || uint64(offset) > uint64(len(b.shadow)) {
		return nil
	}
	return b.shadow[offset:]
}
