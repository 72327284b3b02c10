package graphics

import (
	"fmt"
	"sync"
)

// ErrRegistryFull is returned when the registry's index space is exhausted.
var ErrRegistryFull = fmt.Errorf("graphics: resource registry full")

// registrySlot is one entry of the handle-indexed table.
type registrySlot struct {
	generation uint8
	live       bool
	resource   any
}

// ResourceRegistry is a handle-indexed table of live engine objects. A
// handle resolves to its object only while the slot generation matches;
// recycled slots bump the generation so stale handles read as dead.
//
// The registry is guarded by a mutex: registration happens on the frame
// thread but lookups may come from completion observers.
type ResourceRegistry struct {
	mu       sync.Mutex
	slots    []registrySlot
	freeList []uint32
}

// NewResourceRegistry creates an empty registry.
//
// Returns:
//   - *ResourceRegistry: the newly created registry
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{}
}

// Register stores a resource and returns its stable handle.
//
// Parameters:
//   - rtype: the resource type tag packed into the handle
//   - resource: the object to store (must not be nil)
//
// Returns:
//   - ResourceHandle: the handle referencing the stored object
//   - error: ErrRegistryFull when the 32-bit index space is exhausted
func (r *ResourceRegistry) Register(rtype ResourceType, resource any) (ResourceHandle, error) {
	if resource == nil {
		return InvalidHandle, fmt.Errorf("graphics: cannot register nil resource")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var index uint32
	if n := len(r.freeList); n > 0 {
		index = r.freeList[n-1]
		r.freeList = r.freeList[:n-1]
	} else {
		if uint64(len(r.slots)) >= uint64(handleIndexMask) {
			return InvalidHandle, ErrRegistryFull
		}
		index = uint32(len(r.slots))
		r.slots = append(r.slots, registrySlot{})
	}

	slot := &r.slots[index]
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	slot.live = true
	slot.resource = resource

	return NewHandle(index, slot.generation, rtype, 0), nil
}

// Resolve returns the object a handle refers to, or nil when the handle is
// stale or was never registered.
//
// Parameters:
//   - handle: the handle to resolve
//
// Returns:
//   - any: the stored object, or nil
func (r *ResourceRegistry) Resolve(handle ResourceHandle) any {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := handle.Index()
	if int(index) >= len(r.slots) {
		return nil
	}
	slot := &r.slots[index]
	if !slot.live || slot.generation != handle.Generation() {
		return nil
	}
	return slot.resource
}

// Unregister removes the object a handle refers to and recycles its slot.
// Stale handles are ignored.
//
// Parameters:
//   - handle: the handle to remove
//
// Returns:
//   - bool: true if a live object was removed
func (r *ResourceRegistry) Unregister(handle ResourceHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := handle.Index()
	if int(index) >= len(r.slots) {
		return false
	}
	slot := &r.slots[index]
	if !slot.live || slot.generation != handle.Generation() {
		return false
	}

	slot.live = false
	slot.resource = nil
	r.freeList = append(r.freeList, index)
	return true
}

// LiveCount returns the number of live registrations.
func (r *ResourceRegistry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i := range r.slots {
		if r.slots[i].live {
			n++
		}
	}
	return n
}
