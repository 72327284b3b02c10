package sceneprep

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

func testViewport() common.Viewport {
	return common.Viewport{Width: 1280, Height: 720}
}

func testView(t *testing.T) *ResolvedView {
	t.Helper()
	view := make([]float32, 16)
	proj := make([]float32, 16)
	common.Identity(view)
	common.Perspective(proj, 1.0471976, 1280.0/720.0, 0.1, 1000)
	return NewResolvedView(view, proj, testViewport(), 0.1, 1000)
}

func TestPixelFocalLengthFromProjection(t *testing.T) {
	v := testView(t)

	proj := make([]float32, 16)
	common.Perspective(proj, 1.0471976, 1280.0/720.0, 0.1, 1000)
	want := proj[5] * 720 / 2
	assert.InDelta(t, want, v.PixelFocalLength(), 1e-4)
}

func TestNormalizedDistanceDividesByRadius(t *testing.T) {
	v := testView(t)

	s := common.Sphere{Center: [3]float32{0, 0, -10}, Radius: 2}
	assert.InDelta(t, 5, float32(v.NormalizedDistance(s)), 1e-5)

	// Zero radius degrades to the raw distance.
	s.Radius = 0
	assert.InDelta(t, 10, float32(v.NormalizedDistance(s)), 1e-5)
}

func TestScreenSpaceErrorShrinksWithDistance(t *testing.T) {
	v := testView(t)

	near := v.ScreenSpaceError(common.Sphere{Center: [3]float32{0, 0, -5}, Radius: 1})
	far := v.ScreenSpaceError(common.Sphere{Center: [3]float32{0, 0, -50}, Radius: 1})
	assert.Greater(t, float32(near), float32(far))
	assert.InDelta(t, float32(near)/10, float32(far), 1e-3)
}

func TestCameraPositionFromViewInverse(t *testing.T) {
	view := make([]float32, 16)
	proj := make([]float32, 16)
	common.LookAt(view, 3, 4, 5, 0, 0, 0, 0, 1, 0)
	common.Perspective(proj, 1.0471976, 1, 0.1, 100)

	v := NewResolvedView(view, proj, testViewport(), 0.1, 100)
	pos := v.CameraPosition()
	assert.InDelta(t, 3, pos[0], 1e-4)
	assert.InDelta(t, 4, pos[1], 1e-4)
	assert.InDelta(t, 5, pos[2], 1e-4)
}

func TestFrustumContainsForwardSphere(t *testing.T) {
	v := testView(t)

	inside := common.Sphere{Center: [3]float32{0, 0, -10}, Radius: 1}
	behind := common.Sphere{Center: [3]float32{0, 0, 10}, Radius: 1}
	assert.True(t, v.Frustum().IntersectsSphere(inside))
	assert.False(t, v.Frustum().IntersectsSphere(behind))
}
