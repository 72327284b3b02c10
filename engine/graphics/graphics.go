// Package graphics defines the backend-independent graphics API the engine
// core consumes: command queues, command recorders, buffers, textures,
// descriptor allocation, resource state tracking, and deferred reclamation.
// Concrete backends (webgpu, headless) implement the factory and resource
// interfaces; the services in this package (state tracker, reclaimer,
// registry, descriptor allocator) are backend-agnostic.
package graphics

import (
	"github.com/Carmen-Shannon/oxygen-core/common"
)

// QueueRole selects which hardware queue class a submission targets.
type QueueRole int

const (
	// QueueRoleGraphics is the direct queue used for draw work.
	QueueRoleGraphics QueueRole = iota

	// QueueRoleCompute is the async compute queue.
	QueueRoleCompute

	// QueueRoleTransfer is the copy queue used by the upload coordinator.
	QueueRoleTransfer
)

// String implements fmt.Stringer for log output.
func (r QueueRole) String() string {
	switch r {
	case QueueRoleGraphics:
		return "graphics"
	case QueueRoleCompute:
		return "compute"
	case QueueRoleTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// BufferUsage is a bit set describing how a buffer will be used.
type BufferUsage uint32

const (
	// BufferUsageVertex marks a buffer bindable as vertex input.
	BufferUsageVertex BufferUsage = 1 << iota

	// BufferUsageIndex marks a buffer bindable as index input.
	BufferUsageIndex

	// BufferUsageUniform marks a buffer bindable as a CBV/uniform.
	BufferUsageUniform

	// BufferUsageStorage marks a buffer bindable as an SRV/UAV structured buffer.
	BufferUsageStorage

	// BufferUsageCopySrc marks a buffer usable as a copy source.
	BufferUsageCopySrc

	// BufferUsageCopyDst marks a buffer usable as a copy destination.
	BufferUsageCopyDst

	// BufferUsageMapWrite marks a buffer as host-visible, CPU-writable
	// memory (staging memory).
	BufferUsageMapWrite

	// BufferUsageMapRead marks a buffer as host-visible, CPU-readable
	// memory (readback memory).
	BufferUsageMapRead
)

// BufferDesc describes a buffer at creation time.
type BufferDesc struct {
	// Label is a debug name surfaced in errors and backend captures.
	Label string

	// Size is the buffer length in bytes.
	Size common.SizeBytes

	// Usage is the set of usages the buffer must support.
	Usage BufferUsage

	// Stride is the element stride for structured views; 0 for raw buffers.
	Stride uint32
}

// TextureDimension distinguishes the texture shapes the upload path handles.
type TextureDimension int

const (
	// TextureDimension2D is a standard 2D texture (or one face of a cube).
	TextureDimension2D TextureDimension = iota

	// TextureDimension3D is a volume texture.
	TextureDimension3D

	// TextureDimensionCube is a cube texture (6 array slices).
	TextureDimensionCube
)

// TextureDesc describes a texture at creation time.
type TextureDesc struct {
	// Label is a debug name surfaced in errors and backend captures.
	Label string

	// Dimension is the texture shape.
	Dimension TextureDimension

	// Format is the texel format.
	Format Format

	// Width and Height are the level-0 extents in texels.
	Width, Height uint32

	// Depth is the level-0 depth for 3D textures; 1 otherwise.
	Depth uint32

	// MipLevels is the mip chain length (at least 1).
	MipLevels uint32

	// ArraySize is the array slice count; 6 for cube textures.
	ArraySize uint32
}

// SubresourceCount returns the total number of addressable subresources
// (mip levels × array slices).
func (d TextureDesc) SubresourceCount() uint32 {
	mips := d.MipLevels
	if mips == 0 {
		mips = 1
	}
	arr := d.ArraySize
	if arr == 0 {
		arr = 1
	}
	return mips * arr
}

// Buffer is a backend GPU buffer.
type Buffer interface {
	// Descriptor returns the creation-time description.
	Descriptor() BufferDesc

	// NativeResource returns the backend identity of the buffer, used by
	// the state tracker and barrier synthesis.
	NativeResource() NativeResource

	// Map returns the CPU-visible memory of a host-visible buffer. Only
	// valid for buffers created with BufferUsageMapWrite or
	// BufferUsageMapRead; other buffers return an error.
	//
	// Returns:
	//   - []byte: the mapped range covering the whole buffer
	//   - error: an error if the buffer is not host-visible
	Map() ([]byte, error)

	// Unmap releases the mapping returned by Map.
	Unmap()

	// CreateShaderResourceView creates a structured SRV over a byte range
	// of the buffer.
	//
	// Parameters:
	//   - offset: byte offset of the first element
	//   - size: byte length of the viewed range
	//   - stride: element stride in bytes
	//
	// Returns:
	//   - NativeView: the backend view object
	CreateShaderResourceView(offset, size common.SizeBytes, stride uint32) NativeView

	// Release destroys the buffer. Callers that may still have GPU work in
	// flight must route the release through the deferred reclaimer instead
	// of calling this directly.
	Release()
}

// Texture is a backend GPU texture.
type Texture interface {
	// Descriptor returns the creation-time description.
	Descriptor() TextureDesc

	// NativeResource returns the backend identity of the texture.
	NativeResource() NativeResource

	// CreateShaderResourceView creates an SRV over the full mip chain.
	//
	// Returns:
	//   - NativeView: the backend view object
	CreateShaderResourceView() NativeView

	// Release destroys the texture. See Buffer.Release for the deferred
	// release requirement.
	Release()
}

// CommandList is a closed, submittable recording produced by
// CommandRecorder.End.
type CommandList interface {
	// Queue returns the role of the queue this list must be submitted to.
	Queue() QueueRole

	// SetOnExecuted registers a callback invoked exactly once after the
	// GPU has finished executing the list. The commander routes the call
	// through the deferred reclaimer so it fires on the frame slot cycling
	// back after submission.
	//
	// Parameters:
	//   - fn: the callback to invoke post-execution
	SetOnExecuted(fn func())

	// OnExecuted invokes and clears the registered callback. Safe to call
	// when no callback is registered; repeated calls are no-ops.
	OnExecuted()
}

// CommandRecorder is a scoped builder for GPU command lists. Begin places
// the recorder in the recording state; End closes it and yields the
// recorded CommandList. Recorders are not safe for concurrent use.
type CommandRecorder interface {
	// Begin places the recorder in the recording state.
	//
	// Returns:
	//   - error: an error if the recorder is already recording
	Begin() error

	// End closes the recording and returns the recorded command list.
	//
	// Returns:
	//   - CommandList: the closed, submittable list
	//   - error: an error if the recorder was not recording
	End() (CommandList, error)

	// BeginTrackingResourceState records the entry state of a resource for
	// this recording scope. Delegates to the recorder's state tracker.
	//
	// Parameters:
	//   - resource: the backend resource identity
	//   - initial: the resource's logical state on entry
	BeginTrackingResourceState(resource NativeResource, initial ResourceState)

	// RequireResourceState records a pending transition to the desired
	// state. Consecutive requires on the same resource are coalesced; the
	// minimum barrier set is emitted by FlushBarriers.
	//
	// Parameters:
	//   - resource: the backend resource identity
	//   - desired: the state the next command needs the resource in
	RequireResourceState(resource NativeResource, desired ResourceState)

	// FlushBarriers emits all pending barriers into the command stream.
	FlushBarriers()

	// CopyBufferRegion records a buffer-to-buffer copy.
	//
	// Parameters:
	//   - dst: destination buffer
	//   - dstOffset: destination byte offset
	//   - src: source buffer
	//   - srcOffset: source byte offset
	//   - size: number of bytes to copy
	CopyBufferRegion(dst Buffer, dstOffset common.SizeBytes, src Buffer, srcOffset common.SizeBytes, size common.SizeBytes)

	// CopyTextureRegion records a buffer-to-texture copy for one
	// subresource.
	//
	// Parameters:
	//   - dst: destination texture
	//   - slice: destination mip level and array slice
	//   - src: source (staging) buffer
	//   - srcOffset: byte offset of the subresource data in src
	//   - rowPitch: source row stride in bytes (256-aligned by convention)
	//   - slicePitch: source 2D-slice stride in bytes
	CopyTextureRegion(dst Texture, slice TextureSlice, src Buffer, srcOffset common.SizeBytes, rowPitch, slicePitch common.SizeBytes)

	// SetPipelineState binds a pipeline by its cache key.
	//
	// Parameters:
	//   - key: the pipeline cache key (hash of the canonical description)
	SetPipelineState(key uint64)

	// SetGraphicsRoot32BitConstant writes one DWORD of the root-constants
	// block shared by all passes.
	//
	// Parameters:
	//   - rootParameterIndex: index of the root-constants parameter
	//   - value: the 32-bit value to write
	//   - destOffset: DWORD offset within the root-constants block
	SetGraphicsRoot32BitConstant(rootParameterIndex, value, destOffset uint32)

	// Draw records a non-indexed draw.
	//
	// Parameters:
	//   - vertexCount: vertices per instance
	//   - instanceCount: number of instances
	//   - firstVertex: offset of the first vertex
	//   - firstInstance: offset of the first instance
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed records an indexed draw.
	//
	// Parameters:
	//   - indexCount: indices per instance
	//   - instanceCount: number of instances
	//   - firstIndex: offset of the first index
	//   - baseVertex: value added to each index
	//   - firstInstance: offset of the first instance
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// Dispatch records a compute dispatch.
	//
	// Parameters:
	//   - groupsX, groupsY, groupsZ: the workgroup grid
	Dispatch(groupsX, groupsY, groupsZ uint32)
}

// CommandQueue accepts command lists for submission. Each successful submit
// advances a 64-bit monotonic fence.
type CommandQueue interface {
	// Role returns the queue's role.
	Role() QueueRole

	// Submit submits the given lists as one batch and signals the queue
	// fence.
	//
	// Parameters:
	//   - lists: the command lists to execute, in order
	//
	// Returns:
	//   - uint64: the fence value signaled after this batch completes
	//   - error: an error if the backend rejected the submission
	Submit(lists []CommandList) (uint64, error)

	// Signal advances and signals the fence without submitting work.
	//
	// Returns:
	//   - uint64: the newly signaled fence value
	Signal() uint64

	// GetCompletedValue returns the highest fence value the GPU has
	// completed.
	GetCompletedValue() uint64

	// Wait blocks the caller until the queue fence reaches value.
	//
	// Parameters:
	//   - value: the fence value to wait for
	Wait(value uint64)
}

// Surface is a presentable swapchain target. Concrete backends create it
// from platform-specific window data; the core only resizes and presents.
type Surface interface {
	// Resize reconfigures the surface for a new pixel size.
	//
	// Parameters:
	//   - width, height: the new surface extents in pixels
	Resize(width, height uint32)

	// Present queues the current back buffer for display.
	//
	// Returns:
	//   - error: an error if the surface was lost
	Present() error
}

// Graphics is the backend factory and service root the engine core runs
// against. A backend implements all of it; the engine owns exactly one.
type Graphics interface {
	// Name identifies the backend ("headless", "webgpu", ...).
	Name() string

	// CreateBuffer creates a GPU buffer.
	//
	// Parameters:
	//   - desc: the buffer description
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if creation failed or the description is invalid
	CreateBuffer(desc BufferDesc) (Buffer, error)

	// CreateTexture creates a GPU texture.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: an error if creation failed or the description is invalid
	CreateTexture(desc TextureDesc) (Texture, error)

	// Queue returns the queue for the given role. Backends without
	// dedicated compute/transfer queues may return the graphics queue for
	// every role.
	//
	// Parameters:
	//   - role: the queue role to resolve
	Queue(role QueueRole) CommandQueue

	// AcquireCommandRecorder returns a recorder targeting the given queue
	// role. The recorder is owned by the caller until End.
	//
	// Parameters:
	//   - role: the queue role recorded lists will be submitted to
	//
	// Returns:
	//   - CommandRecorder: the recorder, in the initial (not recording) state
	//   - error: an error if the backend cannot allocate a recorder
	AcquireCommandRecorder(role QueueRole) (CommandRecorder, error)

	// DescriptorAllocator returns the process-wide descriptor allocator.
	DescriptorAllocator() DescriptorAllocator

	// Registry returns the resource registry tracking live objects.
	Registry() *ResourceRegistry

	// Reclaimer returns the deferred reclaimer owned by this backend.
	Reclaimer() *DeferredReclaimer

	// Shutdown drains the reclaimer and releases all backend objects.
	// Further work is refused after Shutdown returns.
	Shutdown()
}
