package scene

import (
	"github.com/Carmen-Shannon/oxygen-core/common"
)

// TransformComponent stores the node's local translation, rotation, and
// scale, plus the lazily recomputed local and world matrices. Mutation
// marks the transform dirty; the world matrix is resolved by the
// scene-wide update composing transforms top-down.
type TransformComponent struct {
	translation [3]float32
	rotation    [4]float32
	scale       [3]float32

	localMatrix []float32
	worldMatrix []float32

	dirty bool

	// worldChanged is set by the update pass for one frame when the world
	// matrix was recomputed. The bounds refresh step consumes it.
	worldChanged bool
}

// Ensure TransformComponent implements Component.
var _ Component = (*TransformComponent)(nil)

// newTransformComponent creates an identity transform.
func newTransformComponent() *TransformComponent {
	t := &TransformComponent{
		rotation:    [4]float32{0, 0, 0, 1},
		scale:       [3]float32{1, 1, 1},
		localMatrix: make([]float32, 16),
		worldMatrix: make([]float32, 16),
		dirty:       true,
	}
	common.Identity(t.localMatrix)
	common.Identity(t.worldMatrix)
	return t
}

// Type returns the component's stable type id.
func (t *TransformComponent) Type() ComponentType {
	return ComponentTypeTransform
}

// Dependencies returns the component types this component requires.
func (t *TransformComponent) Dependencies() []ComponentType {
	return nil
}

// Translation returns the local translation.
func (t *TransformComponent) Translation() [3]float32 {
	return t.translation
}

// SetTranslation sets the local translation and marks the transform dirty.
func (t *TransformComponent) SetTranslation(v [3]float32) {
	t.translation = v
	t.dirty = true
}

// Rotation returns the local rotation quaternion (x, y, z, w).
func (t *TransformComponent) Rotation() [4]float32 {
	return t.rotation
}

// SetRotation sets the local rotation quaternion and marks the transform dirty.
func (t *TransformComponent) SetRotation(q [4]float32) {
	t.rotation = q
	t.dirty = true
}

// Scale returns the local scale.
func (t *TransformComponent) Scale() [3]float32 {
	return t.scale
}

// SetScale sets the local scale and marks the transform dirty.
func (t *TransformComponent) SetScale(v [3]float32) {
	t.scale = v
	t.dirty = true
}

// WorldMatrix returns the world matrix resolved by the last scene update.
// The returned slice is owned by the component; callers must not mutate it.
func (t *TransformComponent) WorldMatrix() []float32 {
	return t.worldMatrix
}

// Dirty reports whether the transform awaits resolution.
func (t *TransformComponent) Dirty() bool {
	return t.dirty
}

// WorldChanged reports whether the last scene update recomputed this
// node's world matrix.
func (t *TransformComponent) WorldChanged() bool {
	return t.worldChanged
}

// update recomposes the local matrix when dirty and multiplies by the
// parent world (nil at the root). Called top-down by the scene update;
// parentChanged forces recomputation even when the local T/R/S is clean.
// Returns true when the world matrix was recomputed.
func (t *TransformComponent) update(parentWorld []float32, parentChanged bool) bool {
	t.worldChanged = false
	if !t.dirty && !parentChanged {
		return false
	}
	if t.dirty {
		common.ComposeTRS(t.localMatrix, t.translation, t.rotation, t.scale)
		t.dirty = false
	}
	if parentWorld == nil {
		copy(t.worldMatrix, t.localMatrix)
	} else {
		common.Mul4(t.worldMatrix, parentWorld, t.localMatrix)
	}
	t.worldChanged = true
	return true
}
