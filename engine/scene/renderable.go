package scene

import (
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
)

// RenderableComponent attaches a geometry asset to a node. It depends on
// the transform component: bounds are cached in world space and follow
// the node's resolved world matrix.
type RenderableComponent struct {
	geometry *model.Geometry

	// currentLOD is the level the geometry's policy selected last frame.
	// Stored here, never in the shared mesh objects.
	currentLOD int
}

// Ensure RenderableComponent implements Component.
var _ Component = (*RenderableComponent)(nil)

// NewRenderableComponent creates the component for a geometry asset.
//
// Parameters:
//   - geometry: the asset to render (may be nil; the node draws nothing)
//
// Returns:
//   - *RenderableComponent: the newly created component
func NewRenderableComponent(geometry *model.Geometry) *RenderableComponent {
	return &RenderableComponent{geometry: geometry}
}

// Type returns the component's stable type id.
func (r *RenderableComponent) Type() ComponentType {
	return ComponentTypeRenderable
}

// Dependencies returns the component types this component requires.
func (r *RenderableComponent) Dependencies() []ComponentType {
	return []ComponentType{ComponentTypeTransform, ComponentTypeFlags}
}

// Geometry returns the attached asset, or nil.
func (r *RenderableComponent) Geometry() *model.Geometry {
	return r.geometry
}

// SetGeometry replaces the attached asset.
func (r *RenderableComponent) SetGeometry(geometry *model.Geometry) {
	r.geometry = geometry
	r.currentLOD = 0
}

// CurrentLOD returns the level selected last frame.
func (r *RenderableComponent) CurrentLOD() int {
	return r.currentLOD
}

// SetCurrentLOD stores this frame's selection for next frame's hysteresis.
func (r *RenderableComponent) SetCurrentLOD(lod int) {
	r.currentLOD = lod
}

// invalidateBounds drops the geometry's cached world bounds. Called by
// the scene update when the node's world transform changed.
func (r *RenderableComponent) invalidateBounds() {
	if r.geometry != nil {
		r.geometry.InvalidateWorldBounds()
	}
}
