package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
)

func TestFlagInheritanceResolvesTopDown(t *testing.T) {
	s := NewScene()

	parent, _ := s.CreateNode("parent", 0)
	child, _ := s.CreateNode("child", parent)

	s.Node(parent).Flags().SetLocal(FlagVisible, false)
	s.Node(child).Flags().SetInherited(FlagVisible, true)
	s.Update()

	assert.False(t, s.Node(parent).Flags().Effective(FlagVisible))
	assert.False(t, s.Node(child).Flags().Effective(FlagVisible))
	assert.False(t, s.Node(child).Flags().Dirty())

	// Flipping the parent re-resolves the inheriting child even though
	// the child itself is clean.
	s.Node(parent).Flags().SetLocal(FlagVisible, true)
	s.Update()
	assert.True(t, s.Node(child).Flags().Effective(FlagVisible))
}

func TestPendingFlagAppliesOnNextUpdate(t *testing.T) {
	s := NewScene()
	h, _ := s.CreateNode("a", 0)

	flags := s.Node(h).Flags()
	flags.SetPending(FlagVisible, false)
	assert.True(t, flags.Effective(FlagVisible), "pending does not apply mid-frame")

	s.Update()
	assert.False(t, flags.Effective(FlagVisible))
	assert.False(t, flags.Local(FlagVisible), "pending replaced the local value")
}

func TestWorldEqualsParentWorldTimesLocal(t *testing.T) {
	s := NewScene()

	parent, _ := s.CreateNode("parent", 0)
	child, _ := s.CreateNode("child", parent)

	s.Node(parent).Transform().SetTranslation([3]float32{10, 0, 0})
	s.Node(child).Transform().SetTranslation([3]float32{0, 5, 0})
	s.Update()

	world := s.Node(child).Transform().WorldMatrix()
	pos := common.TransformPoint(world, [3]float32{0, 0, 0})
	assert.InDelta(t, 10, pos[0], 1e-5)
	assert.InDelta(t, 5, pos[1], 1e-5)
	assert.False(t, s.Node(child).Transform().Dirty())
}

func TestDirtyParentForcesDescendantRecompute(t *testing.T) {
	s := NewScene()

	parent, _ := s.CreateNode("parent", 0)
	child, _ := s.CreateNode("child", parent)
	s.Update()

	// Child's local T/R/S is untouched, but the parent moved.
	s.Node(parent).Transform().SetTranslation([3]float32{0, 0, 7})
	s.Update()

	assert.True(t, s.Node(child).Transform().WorldChanged())
	pos := common.TransformPoint(s.Node(child).Transform().WorldMatrix(), [3]float32{0, 0, 0})
	assert.InDelta(t, 7, pos[2], 1e-5)

	// A quiet frame leaves everything untouched.
	s.Update()
	assert.False(t, s.Node(child).Transform().WorldChanged())
}

func TestReParentMarksTransformDirty(t *testing.T) {
	s := NewScene()

	a, _ := s.CreateNode("a", 0)
	b, _ := s.CreateNode("b", 0)
	c, _ := s.CreateNode("c", a)

	s.Node(b).Transform().SetTranslation([3]float32{1, 2, 3})
	s.Update()

	require.NoError(t, s.ReParent(c, b))
	s.Update()

	pos := common.TransformPoint(s.Node(c).Transform().WorldMatrix(), [3]float32{0, 0, 0})
	assert.InDelta(t, 1, pos[0], 1e-5)
	assert.InDelta(t, 2, pos[1], 1e-5)
	assert.InDelta(t, 3, pos[2], 1e-5)
}

func TestMovedRenderableDropsWorldBounds(t *testing.T) {
	s := NewScene()
	h, _ := s.CreateNode("a", 0)
	n := s.Node(h)

	mesh := &model.Mesh{
		SubMeshes: []model.SubMesh{{
			IndexCount: 3,
			LocalBounds: common.AABB{
				Min: [3]float32{-1, -1, -1},
				Max: [3]float32{1, 1, 1},
			},
		}},
	}
	geo := &model.Geometry{LODs: []*model.Mesh{mesh}}
	require.NoError(t, n.AttachComponent(NewRenderableComponent(geo)))

	s.Update()
	first := mesh.WorldBoundingSphere(n.Transform().WorldMatrix())
	assert.InDelta(t, 0, first.Center[0], 1e-5)

	n.Transform().SetTranslation([3]float32{4, 0, 0})
	s.Update()
	moved := mesh.WorldBoundingSphere(n.Transform().WorldMatrix())
	assert.InDelta(t, 4, moved.Center[0], 1e-5)
}
