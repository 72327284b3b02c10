package upload

import (
	"fmt"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// TransientStructuredBuffer provides per-frame structured GPU data without
// dedicated buffer objects: each frame slot's allocation lives in the
// coordinator's staging ring, receives a shader-visible SRV, and is
// recycled when the slot cycles. Callers fill the CPU span directly; the
// data is host-visible, so no copy command is needed.
type TransientStructuredBuffer interface {
	// Allocate sizes one contiguous range for the active slot and
	// registers its SRV. A repeated allocation in the same slot releases
	// the previous allocation's descriptor first.
	//
	// Parameters:
	//   - elementCount: number of structured elements to hold
	//
	// Returns:
	//   - error: ErrorStagingAllocFailed or descriptor exhaustion
	Allocate(elementCount uint32) error

	// Span returns the writable CPU memory of the active slot's
	// allocation. Valid until the slot cycles.
	//
	// Returns:
	//   - []byte: the allocation's memory, or nil when nothing is allocated
	Span() []byte

	// DescriptorIndex returns the shader-visible index of the active
	// slot's SRV, or common.InvalidShaderVisibleIndex when nothing is
	// allocated.
	DescriptorIndex() common.ShaderVisibleIndex

	// ElementCount returns the active slot's allocated element count.
	ElementCount() uint32

	// OnFrameStart resets the slot's bookkeeping when its bank recycles.
	// Must follow the coordinator's own OnFrameStart.
	//
	// Parameters:
	//   - slot: the frame slot beginning now
	OnFrameStart(slot common.FrameSlot)

	// Release frees all descriptors across slots. The staging memory
	// itself belongs to the coordinator.
	Release()
}

// transientSlot is one frame slot's live allocation.
type transientSlot struct {
	alloc    stagingAllocation
	view     graphics.NativeView
	handle   graphics.DescriptorHandle
	elements uint32
	valid    bool
}

// transientStructuredBuffer implements TransientStructuredBuffer.
type transientStructuredBuffer struct {
	coord     *coordinator
	allocator graphics.DescriptorAllocator
	stride    uint32
	label     string

	slots      []transientSlot
	activeSlot common.FrameSlot
}

// Ensure transientStructuredBuffer implements TransientStructuredBuffer.
var _ TransientStructuredBuffer = (*transientStructuredBuffer)(nil)

// NewTransientStructuredBuffer creates a transient structured buffer bound
// to a coordinator's staging ring.
//
// Parameters:
//   - coord: the owning coordinator (must have been created by NewCoordinator)
//   - stride: byte stride of one structured element (must be > 0)
//   - label: debug name for error detail
//
// Returns:
//   - TransientStructuredBuffer: the newly created buffer
//   - error: an error if the coordinator is of a foreign type or stride is 0
func NewTransientStructuredBuffer(coord Coordinator, stride uint32, label string) (TransientStructuredBuffer, error) {
	c, ok := coord.(*coordinator)
	if !ok {
		return nil, fmt.Errorf("upload: foreign Coordinator implementation")
	}
	if stride == 0 {
		return nil, fmt.Errorf("upload: transient buffer %q has zero stride", label)
	}
	return &transientStructuredBuffer{
		coord:     c,
		allocator: c.gfx.DescriptorAllocator(),
		stride:    stride,
		label:     label,
		slots:     make([]transientSlot, c.framesInFlight),
	}, nil
}

func (t *transientStructuredBuffer) Allocate(elementCount uint32) error {
	slot := &t.slots[t.activeSlot]
	if slot.valid {
		// Same-slot reallocation: the old descriptor recycles with the
		// reclaimer; the old staging range recycles with the bank.
		t.allocator.Release(slot.handle)
		slot.valid = false
	}

	size := common.SizeBytes(uint64(elementCount) * uint64(t.stride))
	if size == 0 {
		return newError(ErrorInvalidRequest, "%s: zero element count", t.label)
	}

	t.coord.mu.Lock()
	alloc, allocErr := t.coord.staging.allocate(t.activeSlot, size, BufferCopyAlignment)
	t.coord.mu.Unlock()
	if allocErr != nil {
		return allocErr
	}

	view := t.coord.staging.buffer.CreateShaderResourceView(alloc.offset, size, t.stride)
	handle, err := t.allocator.Allocate(graphics.ViewTypeSRV, graphics.VisibilityShader)
	if err != nil {
		return newError(ErrorResourceAllocFailed, "%s: %v", t.label, err)
	}

	*slot = transientSlot{
		alloc:    alloc,
		view:     view,
		handle:   handle,
		elements: elementCount,
		valid:    true,
	}
	return nil
}

func (t *transientStructuredBuffer) Span() []byte {
	slot := &t.slots[t.activeSlot]
	if !slot.valid {
		return nil
	}
	return t.coord.staging.span(slot.alloc)
}

func (t *transientStructuredBuffer) DescriptorIndex() common.ShaderVisibleIndex {
	slot := &t.slots[t.activeSlot]
	if !slot.valid {
		return common.InvalidShaderVisibleIndex
	}
	return t.allocator.GetShaderVisibleIndex(slot.handle)
}

func (t *transientStructuredBuffer) ElementCount() uint32 {
	slot := &t.slots[t.activeSlot]
	if !slot.valid {
		return 0
	}
	return slot.elements
}

func (t *transientStructuredBuffer) OnFrameStart(slot common.FrameSlot) {
	t.activeSlot = slot
	s := &t.slots[slot]
	if s.valid {
		t.allocator.Release(s.handle)
		*s = transientSlot{}
	}
}

func (t *transientStructuredBuffer) Release() {
	for i := range t.slots {
		if t.slots[i].valid {
			t.allocator.Release(t.slots[i].handle)
			t.slots[i] = transientSlot{}
		}
	}
}
