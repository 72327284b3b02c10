package graphics

import "fmt"

// ResourceType tags the concrete kind of object a ResourceHandle refers to.
type ResourceType uint8

const (
	// ResourceTypeUnknown marks a handle that was never assigned a type.
	ResourceTypeUnknown ResourceType = iota

	// ResourceTypeBuffer identifies GPU buffer objects.
	ResourceTypeBuffer

	// ResourceTypeTexture identifies GPU texture objects.
	ResourceTypeTexture

	// ResourceTypeNode identifies scene graph nodes.
	ResourceTypeNode

	// ResourceTypeCommandList identifies recorded command lists.
	ResourceTypeCommandList

	// ResourceTypePipeline identifies cached pipeline state objects.
	ResourceTypePipeline
)

// Bit layout of a ResourceHandle, most significant first:
//
//	[ generation : 8 ][ type : 8 ][ custom : 16 ][ index : 32 ]
//
// The generation detects stale handles after a slot is recycled; the custom
// field carries small per-type payloads (scene id for node handles).
const (
	handleIndexBits  = 32
	handleCustomBits = 16
	handleTypeBits   = 8

	handleIndexMask  = uint64(1)<<handleIndexBits - 1
	handleCustomMask = uint64(1)<<handleCustomBits - 1
	handleTypeMask   = uint64(1)<<handleTypeBits - 1

	handleCustomShift = handleIndexBits
	handleTypeShift   = handleIndexBits + handleCustomBits
	handleGenShift    = handleIndexBits + handleCustomBits + handleTypeBits
)

// ResourceHandle is a 64-bit stable reference to an engine object. Handles
// outlive the pointed-to object; stale handles are detectable by generation
// mismatch against the live slot.
type ResourceHandle uint64

// InvalidHandle is the zero handle; it never resolves to a live object.
const InvalidHandle = ResourceHandle(0)

// NewHandle packs the given fields into a handle value.
//
// Parameters:
//   - index: slot index of the referenced object
//   - generation: generation of the slot at handle creation (must be > 0 for live handles)
//   - rtype: the resource type tag
//   - custom: small per-type payload (16 bits)
//
// Returns:
//   - ResourceHandle: the packed handle
func NewHandle(index uint32, generation uint8, rtype ResourceType, custom uint16) ResourceHandle {
	return ResourceHandle(
		uint64(index) |
			uint64(custom)<<handleCustomShift |
			uint64(rtype)<<handleTypeShift |
			uint64(generation)<<handleGenShift,
	)
}

// Index returns the slot index encoded in the handle.
func (h ResourceHandle) Index() uint32 {
	return uint32(uint64(h) & handleIndexMask)
}

// Generation returns the slot generation encoded in the handle.
func (h ResourceHandle) Generation() uint8 {
	return uint8(uint64(h) >> handleGenShift)
}

// Type returns the resource type tag encoded in the handle.
func (h ResourceHandle) Type() ResourceType {
	return ResourceType(uint64(h) >> handleTypeShift & handleTypeMask)
}

// Custom returns the 16-bit per-type payload encoded in the handle.
func (h ResourceHandle) Custom() uint16 {
	return uint16(uint64(h) >> handleCustomShift & handleCustomMask)
}

// IsValid reports whether the handle could refer to a live object: a typed
// handle with a non-zero generation. It does not check liveness; resolve
// the handle through its owning table for that.
func (h ResourceHandle) IsValid() bool {
	return h.Generation() != 0 && h.Type() != ResourceTypeUnknown
}

// String implements fmt.Stringer for log output.
func (h ResourceHandle) String() string {
	return fmt.Sprintf("handle{type=%d idx=%d gen=%d custom=%d}", h.Type(), h.Index(), h.Generation(), h.Custom())
}

// NodeHandle is a ResourceHandle specialization for scene graph nodes. The
// custom field carries the owning scene's id so node handles are globally
// unique across scenes.
type NodeHandle = ResourceHandle

// NewNodeHandle packs a node handle carrying the owning scene id.
//
// Parameters:
//   - index: node slot index within the scene's node table
//   - generation: slot generation at creation
//   - sceneID: id of the owning scene
//
// Returns:
//   - NodeHandle: the packed node handle
func NewNodeHandle(index uint32, generation uint8, sceneID uint16) NodeHandle {
	return NewHandle(index, generation, ResourceTypeNode, sceneID)
}

// SceneID returns the owning scene id carried by a node handle.
//
// Parameters:
//   - h: the node handle to unpack
//
// Returns:
//   - uint16: the scene id stored in the handle's custom field
func SceneID(h NodeHandle) uint16 {
	return h.Custom()
}
