package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

func TestCreateNodeSiblingOrder(t *testing.T) {
	s := NewScene(WithName("test"))

	a, err := s.CreateNode("a", 0)
	require.NoError(t, err)
	b, err := s.CreateNode("b", 0)
	require.NoError(t, err)
	c, err := s.CreateNode("c", 0)
	require.NoError(t, err)

	assert.Equal(t, []graphics.NodeHandle{a, b, c}, s.Children(s.Root()))
	assert.Equal(t, 3, s.NodeCount())
}

func TestStaleHandleNeverResolvesAfterRecycle(t *testing.T) {
	s := NewScene()

	a, err := s.CreateNode("a", 0)
	require.NoError(t, err)
	require.NoError(t, s.DestroyNode(a))
	assert.Nil(t, s.Node(a))

	// The slot is recycled with a bumped generation; the old handle must
	// stay stale even though the index matches.
	b, err := s.CreateNode("b", 0)
	require.NoError(t, err)
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.Nil(t, s.Node(a))
	assert.NotNil(t, s.Node(b))
}

func TestHandlesAreForeignAcrossScenes(t *testing.T) {
	s1 := NewScene()
	s2 := NewScene()

	h, err := s1.CreateNode("a", 0)
	require.NoError(t, err)
	assert.Nil(t, s2.Node(h))
}

func TestDestroySubtree(t *testing.T) {
	s := NewScene()

	parent, err := s.CreateNode("parent", 0)
	require.NoError(t, err)
	child, err := s.CreateNode("child", parent)
	require.NoError(t, err)
	grandchild, err := s.CreateNode("grandchild", child)
	require.NoError(t, err)

	require.NoError(t, s.DestroyNode(parent))
	assert.Nil(t, s.Node(parent))
	assert.Nil(t, s.Node(child))
	assert.Nil(t, s.Node(grandchild))
	assert.Equal(t, 0, s.NodeCount())
}

func TestReParentCycleFailsUnchanged(t *testing.T) {
	s := NewScene()

	a, _ := s.CreateNode("a", 0)
	b, _ := s.CreateNode("b", a)
	c, _ := s.CreateNode("c", b)

	err := s.ReParent(a, c)
	require.ErrorIs(t, err, ErrCycle)

	// Graph unchanged: a is still a root child, c still under b.
	assert.Equal(t, s.Root(), s.Node(a).Parent())
	assert.Equal(t, b, s.Node(c).Parent())

	require.ErrorIs(t, s.ReParent(a, a), ErrCycle)
}

func TestReParentMovesSubtree(t *testing.T) {
	s := NewScene()

	a, _ := s.CreateNode("a", 0)
	b, _ := s.CreateNode("b", 0)
	c, _ := s.CreateNode("c", a)

	require.NoError(t, s.ReParent(c, b))
	assert.Equal(t, b, s.Node(c).Parent())
	assert.Empty(t, s.Children(a))
	assert.Equal(t, []graphics.NodeHandle{c}, s.Children(b))
}

func TestTraversalOrders(t *testing.T) {
	s := NewScene()

	a, _ := s.CreateNode("a", 0)
	s.CreateNode("b", a)
	s.CreateNode("c", a)
	s.CreateNode("d", 0)

	var pre []string
	s.TraversePreOrder(func(n Node) { pre = append(pre, n.Name()) }, nil)
	assert.Equal(t, []string{"root", "a", "b", "c", "d"}, pre)

	var post []string
	s.TraversePostOrder(func(n Node) { post = append(post, n.Name()) }, nil)
	assert.Equal(t, []string{"b", "c", "a", "d", "root"}, post)
}

func TestTraversalFilterRejectSubtree(t *testing.T) {
	s := NewScene()

	a, _ := s.CreateNode("a", 0)
	s.CreateNode("b", a)
	s.CreateNode("c", 0)

	var visited []string
	s.TraversePreOrder(
		func(n Node) { visited = append(visited, n.Name()) },
		func(n Node) TraversalDecision {
			if n.Name() == "a" {
				return TraversalRejectSubtree
			}
			return TraversalAccept
		},
	)
	assert.Equal(t, []string{"root", "c"}, visited)
}

func TestTraversalFilterRejectStillDescends(t *testing.T) {
	s := NewScene()

	a, _ := s.CreateNode("a", 0)
	s.CreateNode("b", a)

	var visited []string
	s.TraversePreOrder(
		func(n Node) { visited = append(visited, n.Name()) },
		func(n Node) TraversalDecision {
			if n.Name() == "a" {
				return TraversalReject
			}
			return TraversalAccept
		},
	)
	assert.Equal(t, []string{"root", "b"}, visited)
}

func TestTraversalSurvivesVisitorDestroy(t *testing.T) {
	s := NewScene()

	s.CreateNode("a", 0)
	s.CreateNode("b", 0)
	s.CreateNode("c", 0)

	var visited []string
	s.TraversePreOrder(func(n Node) {
		visited = append(visited, n.Name())
		if n.Name() == "a" {
			// Destroying a sibling mid-walk must not break iteration.
			for _, h := range s.Children(s.Root()) {
				if s.Node(h).Name() == "b" {
					_ = s.DestroyNode(h)
				}
			}
		}
	}, nil)
	assert.Equal(t, []string{"root", "a", "c"}, visited)
}

func TestComponentDependencyValidation(t *testing.T) {
	s := NewScene()
	h, _ := s.CreateNode("a", 0)
	n := s.Node(h)

	// Transform and flags are pre-attached, so renderable's deps hold.
	require.NoError(t, n.AttachComponent(NewRenderableComponent(nil)))
	assert.ErrorIs(t, n.AttachComponent(NewRenderableComponent(nil)), ErrDuplicateComponent)
	assert.NotNil(t, n.Renderable())

	assert.Nil(t, n.DetachComponent(ComponentTypeTransform), "transform cannot be detached")
	assert.NotNil(t, n.DetachComponent(ComponentTypeRenderable))
	assert.Nil(t, n.Renderable())
}
