package scene

import (
	"github.com/Carmen-Shannon/oxygen-core/common"
)

// CameraComponent attaches perspective projection parameters to a node.
// The view matrix is the inverse of the node's world matrix; the scene
// prep stage combines both into the frame's resolved view.
type CameraComponent struct {
	// FovY is the vertical field of view in radians.
	FovY float32

	// Near is the near clip distance.
	Near float32

	// Far is the far clip distance.
	Far float32
}

// Ensure CameraComponent implements Component.
var _ Component = (*CameraComponent)(nil)

// NewCameraComponent creates a camera with common perspective defaults
// (60 degree vertical FOV, 0.1 near, 1000 far).
func NewCameraComponent() *CameraComponent {
	return &CameraComponent{
		FovY: 1.0471976,
		Near: 0.1,
		Far:  1000,
	}
}

// Type returns the component's stable type id.
func (c *CameraComponent) Type() ComponentType {
	return ComponentTypeCamera
}

// Dependencies returns the component types this component requires.
func (c *CameraComponent) Dependencies() []ComponentType {
	return []ComponentType{ComponentTypeTransform}
}

// Projection writes the perspective projection for a viewport aspect.
//
// Parameters:
//   - out: the destination 16-element column-major matrix
//   - viewport: the render target extents
func (c *CameraComponent) Projection(out []float32, viewport common.Viewport) {
	aspect := float32(1)
	if viewport.Height > 0 {
		aspect = float32(viewport.Width) / float32(viewport.Height)
	}
	common.Perspective(out, c.FovY, aspect, c.Near, c.Far)
}

// View writes the view matrix as the inverse of the node's world matrix.
// Falls back to identity when the world matrix is singular.
//
// Parameters:
//   - out: the destination 16-element column-major matrix
//   - world: the camera node's world matrix
func (c *CameraComponent) View(out, world []float32) {
	if !common.Invert4(out, world) {
		common.Identity(out)
	}
}
