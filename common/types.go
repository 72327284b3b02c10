// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs and
// strong scalar types that express commonly used data-types at API boundaries.
package common

import "fmt"

// DefaultFramesInFlight is the number of per-frame resource banks the engine
// cycles through when no explicit count is configured.
const DefaultFramesInFlight = 3

// FrameSlot identifies which per-frame resource bank is active. Values are
// always in [0, frames-in-flight).
type FrameSlot uint32

// FrameSequence is the monotonically increasing frame counter. Unlike
// FrameSlot it never wraps; slot = sequence % frames-in-flight.
type FrameSequence uint64

// Slot reduces the sequence number to its frame slot for the given number
// of frames in flight.
//
// Parameters:
//   - framesInFlight: the configured frames-in-flight count (must be > 0)
//
// Returns:
//   - FrameSlot: the per-frame bank this sequence lands on
func (s FrameSequence) Slot(framesInFlight uint32) FrameSlot {
	return FrameSlot(uint64(s) % uint64(framesInFlight))
}

// SizeBytes is an explicit byte count. Wrapping the primitive prevents
// element counts and byte counts from being confused at upload boundaries.
type SizeBytes uint64

// String implements fmt.Stringer for log output.
func (s SizeBytes) String() string {
	return fmt.Sprintf("%dB", uint64(s))
}

// ShaderVisibleIndex is an index into the shader-visible descriptor table,
// as seen by shaders through the bindless root signature.
type ShaderVisibleIndex uint32

// InvalidShaderVisibleIndex marks a descriptor that has no shader-visible
// slot (not allocated, or allocated CPU-only).
const InvalidShaderVisibleIndex = ShaderVisibleIndex(0xFFFFFFFF)

// IsValid reports whether the index refers to an actual descriptor slot.
func (i ShaderVisibleIndex) IsValid() bool {
	return i != InvalidShaderVisibleIndex
}

// NormalizedDistance is a camera-to-object distance divided by the object's
// bounding-sphere radius. LOD distance policies operate on this unit so the
// same thresholds apply to objects of any size.
type NormalizedDistance float32

// ScreenSpaceError is a projected geometric error in pixels, used by the
// screen-space-error LOD policy.
type ScreenSpaceError float32

// Viewport describes the active render viewport in pixels.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}
