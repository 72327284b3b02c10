package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics/headless"
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxygen-core/engine/scene"
	"github.com/Carmen-Shannon/oxygen-core/engine/sceneprep"
)

func newTestEngine(t *testing.T) (Engine, graphics.Graphics) {
	t.Helper()
	gfx := headless.NewGraphics()
	e, err := NewEngine(WithGraphics(gfx), WithViewport(1280, 720))
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e, gfx
}

func testScene(t *testing.T) scene.Scene {
	t.Helper()
	sc := scene.NewScene(scene.WithName("test"))

	camHandle, err := sc.CreateNode("camera", 0)
	require.NoError(t, err)
	require.NoError(t, sc.Node(camHandle).AttachComponent(scene.NewCameraComponent()))

	mat := &model.Material{Name: "stone", Domain: model.MaterialDomainOpaque}
	mesh := &model.Mesh{
		SubMeshes: []model.SubMesh{{
			Material:   mat,
			IndexCount: 36,
			LocalBounds: common.AABB{
				Min: [3]float32{-0.5, -0.5, -0.5},
				Max: [3]float32{0.5, 0.5, 0.5},
			},
		}},
	}
	geo := &model.Geometry{LODs: []*model.Mesh{mesh}}

	for _, pos := range [][3]float32{{-2, 0, -10}, {2, 0, -10}} {
		h, err := sc.CreateNode("cube", 0)
		require.NoError(t, err)
		sc.Node(h).Transform().SetTranslation(pos)
		require.NoError(t, sc.Node(h).AttachComponent(scene.NewRenderableComponent(geo)))
	}
	return sc
}

func opaquePass(t *testing.T) *pass.GraphicsRenderPass {
	t.Helper()
	vs, err := shader.NewRequest(shader.StageVertex, "shaders/mesh.hlsl", "VSMain")
	require.NoError(t, err)
	fs, err := shader.NewRequest(shader.StageFragment, "shaders/mesh.hlsl", "PSMain")
	require.NoError(t, err)
	p, err := pipeline.NewCache().GetOrCreate(pipeline.NewDescription(vs, fs), nil)
	require.NoError(t, err)
	return pass.NewGraphicsRenderPass("opaque", p, sceneprep.PassOpaque)
}

func TestRenderFrameDrawsRegisteredScene(t *testing.T) {
	e, gfx := newTestEngine(t)
	e.AddScene(0, testScene(t))
	p := opaquePass(t)
	e.AddPass(p)

	require.NoError(t, e.RenderFrame())

	assert.Equal(t, 2, p.DrawsIssued())
	queue := gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue)
	assert.Equal(t, 1, queue.SubmitCount())
}

func TestRenderFrameWithoutPassesStillFences(t *testing.T) {
	e, gfx := newTestEngine(t)
	e.AddScene(0, testScene(t))

	queue := gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue)
	before := queue.GetCompletedValue()
	require.NoError(t, e.RenderFrame())
	assert.Greater(t, queue.GetCompletedValue(), before)
}

func TestSceneWithoutCameraIsSkipped(t *testing.T) {
	e, _ := newTestEngine(t)
	sc := scene.NewScene()
	_, err := sc.CreateNode("cube", 0)
	require.NoError(t, err)
	e.AddScene(0, sc)
	p := opaquePass(t)
	e.AddPass(p)

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, 0, p.DrawsIssued())
}

func TestConsecutiveFramesCycleSlots(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddScene(0, testScene(t))
	p := opaquePass(t)
	e.AddPass(p)

	for range 6 {
		require.NoError(t, e.RenderFrame())
	}
	// Each frame reissues both cubes.
	assert.Equal(t, 2, p.DrawsIssued())
}

func TestScenesRenderInAscendingKeyOrder(t *testing.T) {
	e, gfx := newTestEngine(t)
	e.AddScene(5, testScene(t))
	e.AddScene(-1, testScene(t))
	p := opaquePass(t)
	e.AddPass(p)

	require.NoError(t, e.RenderFrame())

	// Each scene records and defers its own list; one flush submits both.
	queue := gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue)
	assert.Equal(t, 1, queue.SubmitCount())
}

func TestAddRemoveScene(t *testing.T) {
	e, _ := newTestEngine(t)
	sc := testScene(t)
	e.AddScene(3, sc)
	assert.Equal(t, sc, e.Scene(3))
	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
}

func TestQuitIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Quit()
	e.Quit()
}
