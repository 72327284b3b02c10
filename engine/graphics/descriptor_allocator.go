package graphics

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

// ViewType is the descriptor view class a heap segment serves.
type ViewType int

const (
	// ViewTypeSRV is a shader-resource view descriptor.
	ViewTypeSRV ViewType = iota

	// ViewTypeUAV is an unordered-access view descriptor.
	ViewTypeUAV

	// ViewTypeCBV is a constant-buffer view descriptor.
	ViewTypeCBV

	// ViewTypeSampler is a sampler descriptor.
	ViewTypeSampler

	// ViewTypeRTV is a render-target view descriptor (CPU-only).
	ViewTypeRTV

	// ViewTypeDSV is a depth-stencil view descriptor (CPU-only).
	ViewTypeDSV

	viewTypeCount
)

// Visibility distinguishes shader-visible descriptor segments from CPU-only
// ones.
type Visibility int

const (
	// VisibilityShader places descriptors in the shader-visible heap; they
	// receive a ShaderVisibleIndex.
	VisibilityShader Visibility = iota

	// VisibilityCPU places descriptors in CPU-only storage (RTV/DSV and
	// staging descriptors).
	VisibilityCPU

	visibilityCount
)

// DescriptorHandle refers to one entry in a descriptor heap segment.
// Handles carry a generation for safe recycling: a released-then-reused
// slot invalidates all outstanding handles to it.
type DescriptorHandle struct {
	index      uint32
	generation uint32
	viewType   ViewType
	visibility Visibility
}

// IsValid reports whether the handle was produced by an Allocate call and
// has not been zeroed.
func (h DescriptorHandle) IsValid() bool {
	return h.generation != 0
}

// ViewType returns the view class the handle was allocated for.
func (h DescriptorHandle) ViewType() ViewType {
	return h.viewType
}

// Visibility returns the heap visibility the handle was allocated for.
func (h DescriptorHandle) Visibility() Visibility {
	return h.visibility
}

// DescriptorAllocator hands out descriptor heap entries partitioned by
// (view type × visibility). Implementations must be safe for concurrent
// use; release defers slot recycling until the GPU can no longer reference
// the descriptor.
type DescriptorAllocator interface {
	// Allocate reserves one descriptor in the segment for the given view
	// type and visibility.
	//
	// Parameters:
	//   - viewType: the descriptor view class
	//   - visibility: shader-visible or CPU-only
	//
	// Returns:
	//   - DescriptorHandle: the allocated handle
	//   - error: ErrDescriptorHeapFull if the segment is exhausted
	Allocate(viewType ViewType, visibility Visibility) (DescriptorHandle, error)

	// GetShaderVisibleIndex returns the bindless table index for a
	// shader-visible descriptor, or InvalidShaderVisibleIndex for stale or
	// CPU-only handles.
	//
	// Parameters:
	//   - handle: the descriptor handle to resolve
	GetShaderVisibleIndex(handle DescriptorHandle) common.ShaderVisibleIndex

	// Release returns the descriptor slot to the free list. Recycling is
	// deferred through the reclaimer when one is attached, so in-flight
	// GPU work never observes a reused slot.
	//
	// Parameters:
	//   - handle: the descriptor handle to release
	Release(handle DescriptorHandle)

	// AllocatedCount returns the number of live descriptors in a segment.
	//
	// Parameters:
	//   - viewType: the descriptor view class
	//   - visibility: shader-visible or CPU-only
	AllocatedCount(viewType ViewType, visibility Visibility) int
}

// ErrDescriptorHeapFull is returned by Allocate when a segment's capacity
// is exhausted.
var ErrDescriptorHeapFull = fmt.Errorf("graphics: descriptor heap segment full")

// descriptorSegment is one (view type × visibility) partition of the heap.
type descriptorSegment struct {
	capacity    uint32
	generations []uint32
	freeList    []uint32
	next        uint32 // next never-allocated slot
	live        int
}

// descriptorAllocator implements DescriptorAllocator with a free list and
// per-slot generations. All methods are guarded by a single mutex; the
// allocator is shared across threads (the only graphics service that is).
type descriptorAllocator struct {
	mu        sync.Mutex
	segments  [viewTypeCount][visibilityCount]*descriptorSegment
	reclaimer *DeferredReclaimer
}

// Ensure descriptorAllocator implements DescriptorAllocator.
var _ DescriptorAllocator = (*descriptorAllocator)(nil)

// DefaultDescriptorCapacity is the per-segment capacity used when no
// override is configured.
const DefaultDescriptorCapacity = 4096

// NewDescriptorAllocator creates a DescriptorAllocator with the given
// per-segment capacity.
//
// Parameters:
//   - capacity: maximum descriptors per (view type × visibility) segment;
//     0 uses DefaultDescriptorCapacity
//   - reclaimer: optional reclaimer for deferred slot recycling (may be nil)
//
// Returns:
//   - DescriptorAllocator: the newly created allocator
func NewDescriptorAllocator(capacity uint32, reclaimer *DeferredReclaimer) DescriptorAllocator {
	if capacity == 0 {
		capacity = DefaultDescriptorCapacity
	}
	a := &descriptorAllocator{reclaimer: reclaimer}
	for vt := 0; vt < int(viewTypeCount); vt++ {
		for vis := 0; vis < int(visibilityCount); vis++ {
			a.segments[vt][vis] = &descriptorSegment{
				capacity:    capacity,
				generations: make([]uint32, capacity),
			}
		}
	}
	return a
}

func (a *descriptorAllocator) Allocate(viewType ViewType, visibility Visibility) (DescriptorHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	seg := a.segments[viewType][visibility]

	var index uint32
	switch {
	case len(seg.freeList) > 0:
		index = seg.freeList[len(seg.freeList)-1]
		seg.freeList = seg.freeList[:len(seg.freeList)-1]
	case seg.next < seg.capacity:
		index = seg.next
		seg.next++
	default:
		return DescriptorHandle{}, fmt.Errorf("%w: %d/%d in use", ErrDescriptorHeapFull, seg.live, seg.capacity)
	}

	seg.generations[index]++
	if seg.generations[index] == 0 {
		// Generation 0 means "never allocated"; skip it on wrap.
		seg.generations[index] = 1
	}
	seg.live++

	return DescriptorHandle{
		index:      index,
		generation: seg.generations[index],
		viewType:   viewType,
		visibility: visibility,
	}, nil
}

func (a *descriptorAllocator) GetShaderVisibleIndex(handle DescriptorHandle) common.ShaderVisibleIndex {
	if !handle.IsValid() || handle.visibility != VisibilityShader {
		return common.InvalidShaderVisibleIndex
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	seg := a.segments[handle.viewType][handle.visibility]
	if handle.index >= seg.capacity || seg.generations[handle.index] != handle.generation {
		return common.InvalidShaderVisibleIndex
	}
	return common.ShaderVisibleIndex(handle.index)
}

func (a *descriptorAllocator) Release(handle DescriptorHandle) {
	if !handle.IsValid() {
		return
	}

	if a.reclaimer != nil {
		a.reclaimer.RegisterDeferredAction(func() {
			a.recycle(handle)
		})
		return
	}
	a.recycle(handle)
}

// recycle returns the slot to the free list if the handle still matches the
// live generation. Double releases and stale handles are silently ignored.
func (a *descriptorAllocator) recycle(handle DescriptorHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()

	seg := a.segments[handle.viewType][handle.visibility]
	if handle.index >= seg.capacity || seg.generations[handle.index] != handle.generation {
		return
	}

	seg.generations[handle.index]++
	if seg.generations[handle.index] == 0 {
		seg.generations[handle.index] = 1
	}
	seg.freeList = append(seg.freeList, handle.index)
	seg.live--
}

func (a *descriptorAllocator) AllocatedCount(viewType ViewType, visibility Visibility) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.segments[viewType][visibility].live
}
