// Package sceneprep turns an updated scene into a PreparedSceneFrame: an
// ordered chain of filters, updaters, and producers walks the scene's
// renderables, selects LODs, culls, dedups transforms, and emits packed
// draw metadata partitioned by pass.
package sceneprep

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/scene"
)

// ResolvedView is the immutable per-frame camera state the pipeline
// selects and culls against.
type ResolvedView struct {
	view     []float32
	proj     []float32
	viewProj []float32

	cameraPosition [3]float32
	viewport       common.Viewport
	near           float32
	far            float32

	frustum common.Frustum

	// pixelFocalLength converts world-space size at unit distance into
	// pixels: projection m11 times half the viewport height.
	pixelFocalLength float32
}

// NewResolvedView derives the frame view state from view and projection
// matrices.
//
// Parameters:
//   - view: the column-major view matrix
//   - proj: the column-major projection matrix
//   - viewport: the render target extents
//   - near: the near clip distance
//   - far: the far clip distance
//
// Returns:
//   - *ResolvedView: the derived view state
func NewResolvedView(view, proj []float32, viewport common.Viewport, near, far float32) *ResolvedView {
	v := &ResolvedView{
		view:     append([]float32(nil), view...),
		proj:     append([]float32(nil), proj...),
		viewProj: make([]float32, 16),
		viewport: viewport,
		near:     near,
		far:      far,
	}
	common.Mul4(v.viewProj, v.proj, v.view)
	v.frustum = common.ExtractFrustumFromMatrix(v.viewProj)
	v.pixelFocalLength = proj[5] * float32(viewport.Height) * 0.5

	// Camera position is the inverse view's translation column.
	inv := make([]float32, 16)
	if common.Invert4(inv, view) {
		v.cameraPosition = [3]float32{inv[12], inv[13], inv[14]}
	}
	return v
}

// ResolveViewFromCamera builds the frame view state from a scene node
// carrying a camera component. The scene must be updated first so the
// node's world matrix is current.
//
// Parameters:
//   - sc: the scene owning the camera node
//   - cameraNode: the node with an attached camera component
//   - viewport: the render target extents
//
// Returns:
//   - *ResolvedView: the derived view state
//   - error: an error when the node is stale or has no camera
func ResolveViewFromCamera(sc scene.Scene, cameraNode graphics.NodeHandle, viewport common.Viewport) (*ResolvedView, error) {
	node := sc.Node(cameraNode)
	if node == nil {
		return nil, fmt.Errorf("sceneprep: camera node %s does not resolve", cameraNode)
	}
	cam := node.Camera()
	if cam == nil {
		return nil, fmt.Errorf("sceneprep: node %q has no camera component", node.Name())
	}

	view := make([]float32, 16)
	proj := make([]float32, 16)
	cam.View(view, node.Transform().WorldMatrix())
	cam.Projection(proj, viewport)
	return NewResolvedView(view, proj, viewport, cam.Near, cam.Far), nil
}

// ViewProjection returns the combined view-projection matrix. The slice
// is owned by the view; callers must not mutate it.
func (v *ResolvedView) ViewProjection() []float32 {
	return v.viewProj
}

// CameraPosition returns the camera's world-space position.
func (v *ResolvedView) CameraPosition() [3]float32 {
	return v.cameraPosition
}

// Viewport returns the render target extents.
func (v *ResolvedView) Viewport() common.Viewport {
	return v.viewport
}

// Frustum returns the world-space view frustum.
func (v *ResolvedView) Frustum() *common.Frustum {
	return &v.frustum
}

// PixelFocalLength returns the pixels-per-radian conversion factor.
func (v *ResolvedView) PixelFocalLength() float32 {
	return v.pixelFocalLength
}

// NormalizedDistance returns |camera - center| / radius for a bounding
// sphere, the metric distance-based LOD policies select against.
func (v *ResolvedView) NormalizedDistance(s common.Sphere) common.NormalizedDistance {
	dx := v.cameraPosition[0] - s.Center[0]
	dy := v.cameraPosition[1] - s.Center[1]
	dz := v.cameraPosition[2] - s.Center[2]
	dist := math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if s.Radius <= 0 {
		return common.NormalizedDistance(dist)
	}
	return common.NormalizedDistance(dist / s.Radius)
}

// ScreenSpaceError projects a bounding sphere's radius into pixels at
// its distance from the camera.
func (v *ResolvedView) ScreenSpaceError(s common.Sphere) common.ScreenSpaceError {
	dx := v.cameraPosition[0] - s.Center[0]
	dy := v.cameraPosition[1] - s.Center[1]
	dz := v.cameraPosition[2] - s.Center[2]
	dist := math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if dist < v.near {
		dist = v.near
	}
	if dist <= 0 {
		dist = 1e-6
	}
	return common.ScreenSpaceError(v.pixelFocalLength * s.Radius / dist)
}
