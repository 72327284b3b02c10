// Package scene implements the handle-indexed scene graph: node
// lifecycle, hierarchy edits with cycle detection, component
// composition, resilient traversal, and the per-frame update that
// resolves inheritable flags and world transforms top-down.
package scene

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// nextSceneID hands out scene ids embedded in node handles.
var nextSceneID atomic.Uint32

// TraversalDecision is a filter's verdict for one node.
type TraversalDecision int

const (
	// TraversalAccept visits the node and descends into its children.
	TraversalAccept TraversalDecision = iota
	// TraversalReject skips the node but still descends.
	TraversalReject
	// TraversalRejectSubtree skips the node and its entire subtree.
	TraversalRejectSubtree
)

// Visitor is called once per accepted node during traversal.
type Visitor func(node Node)

// Filter gates traversal per node. A nil filter accepts everything.
type Filter func(node Node) TraversalDecision

// Scene owns a handle-indexed table of nodes forming a single hierarchy
// under an implicit root. Structural mutations and Update must run on
// the frame thread; the scene is not internally synchronized.
type Scene interface {
	// ID returns the scene's id, embedded in every node handle it issues.
	ID() uint16

	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Root returns the handle of the implicit root node.
	Root() graphics.NodeHandle

	// CreateNode creates a node under the given parent. An invalid
	// parent handle parents the node to the root.
	//
	// Parameters:
	//   - name: the node's identifier
	//   - parent: the parent handle, or an invalid handle for the root
	//
	// Returns:
	//   - graphics.NodeHandle: the new node's handle
	//   - error: ErrInvalidHandle when the parent is stale or foreign
	CreateNode(name string, parent graphics.NodeHandle) (graphics.NodeHandle, error)

	// Node resolves a handle to its live node. Returns nil for stale,
	// foreign, or destroyed handles.
	Node(handle graphics.NodeHandle) Node

	// DestroyNode detaches the node from its parent and destroys it and
	// every descendant. Handles into the destroyed subtree become stale.
	//
	// Parameters:
	//   - handle: the node to destroy
	//
	// Returns:
	//   - error: ErrInvalidHandle when the handle does not resolve
	DestroyNode(handle graphics.NodeHandle) error

	// ReParent moves a node (and its subtree) under a new parent,
	// keeping sibling order by appending as the last child. Fails
	// without mutating the graph when the move would create a cycle.
	//
	// Parameters:
	//   - handle: the node to move
	//   - newParent: the destination parent
	//
	// Returns:
	//   - error: ErrInvalidHandle or ErrCycle on failure
	ReParent(handle, newParent graphics.NodeHandle) error

	// Children returns the node's child handles in sibling order.
	Children(handle graphics.NodeHandle) []graphics.NodeHandle

	// TraversePreOrder walks the hierarchy parent-before-children. Each
	// step re-resolves its handle, so visitors may mutate the graph;
	// nodes invalidated by earlier visits are skipped.
	//
	// Parameters:
	//   - visitor: called per accepted node
	//   - filter: gates nodes and subtrees (nil accepts everything)
	TraversePreOrder(visitor Visitor, filter Filter)

	// TraversePostOrder walks the hierarchy children-before-parent with
	// the same resilience and filtering rules as TraversePreOrder.
	TraversePostOrder(visitor Visitor, filter Filter)

	// Update resolves the frame's scene state in three passes: flags
	// top-down, world transforms top-down, then world-bounds
	// invalidation for renderables whose transform changed. Must run
	// once per frame before scene preparation.
	Update()

	// NodeCount returns the number of live nodes, excluding the root.
	NodeCount() int
}

// nodeSlot is one entry of the scene's node table.
type nodeSlot struct {
	generation uint8
	live       bool
	node       *nodeImpl
}

// sceneImpl implements Scene.
type sceneImpl struct {
	id   uint16
	name string

	slots    []nodeSlot
	freeList []uint32

	root graphics.NodeHandle
}

// Ensure sceneImpl implements Scene.
var _ Scene = (*sceneImpl)(nil)

// NewScene creates an empty scene containing only the implicit root.
//
// Parameters:
//   - options: functional options for scene configuration
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &sceneImpl{
		id: uint16(nextSceneID.Add(1)),
	}

	for _, opt := range options {
		opt(s)
	}

	s.root = s.allocNode("root")
	return s
}

func (s *sceneImpl) ID() uint16 {
	return s.id
}

func (s *sceneImpl) Name() string {
	return s.name
}

func (s *sceneImpl) SetName(name string) {
	s.name = name
}

func (s *sceneImpl) Root() graphics.NodeHandle {
	return s.root
}

// allocNode takes a slot from the free list (or grows the table) and
// returns the new node's handle.
func (s *sceneImpl) allocNode(name string) graphics.NodeHandle {
	var index uint32
	if n := len(s.freeList); n > 0 {
		index = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, nodeSlot{})
	}

	slot := &s.slots[index]
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	handle := graphics.NewNodeHandle(index, slot.generation, s.id)
	slot.node = newNode(handle, name)
	slot.live = true
	return handle
}

// resolve returns the live node for a handle, or nil.
func (s *sceneImpl) resolve(handle graphics.NodeHandle) *nodeImpl {
	if !handle.IsValid() || graphics.SceneID(handle) != s.id {
		return nil
	}
	index := handle.Index()
	if index >= uint32(len(s.slots)) {
		return nil
	}
	slot := &s.slots[index]
	if !slot.live || slot.generation != handle.Generation() {
		return nil
	}
	return slot.node
}

func (s *sceneImpl) Node(handle graphics.NodeHandle) Node {
	if n := s.resolve(handle); n != nil {
		return n
	}
	return nil
}

func (s *sceneImpl) CreateNode(name string, parent graphics.NodeHandle) (graphics.NodeHandle, error) {
	parentNode := s.resolve(parent)
	if parentNode == nil {
		if parent.IsValid() {
			return 0, fmt.Errorf("%w: parent %s", ErrInvalidHandle, parent)
		}
		parentNode = s.resolve(s.root)
	}

	handle := s.allocNode(name)
	s.linkChild(parentNode, s.resolve(handle))
	return handle, nil
}

// linkChild appends a detached node as parent's last child.
func (s *sceneImpl) linkChild(parent, child *nodeImpl) {
	child.parent = parent.handle
	child.nextSibling = 0
	child.prevSibling = 0

	if !parent.firstChild.IsValid() {
		parent.firstChild = child.handle
		return
	}
	tail := s.resolve(parent.firstChild)
	for tail.nextSibling.IsValid() {
		tail = s.resolve(tail.nextSibling)
	}
	tail.nextSibling = child.handle
	child.prevSibling = tail.handle
}

// unlink detaches a node from its parent's child list.
func (s *sceneImpl) unlink(node *nodeImpl) {
	if parent := s.resolve(node.parent); parent != nil && parent.firstChild == node.handle {
		parent.firstChild = node.nextSibling
	}
	if prev := s.resolve(node.prevSibling); prev != nil {
		prev.nextSibling = node.nextSibling
	}
	if next := s.resolve(node.nextSibling); next != nil {
		next.prevSibling = node.prevSibling
	}
	node.parent = 0
	node.nextSibling = 0
	node.prevSibling = 0
}

func (s *sceneImpl) DestroyNode(handle graphics.NodeHandle) error {
	node := s.resolve(handle)
	if node == nil || handle == s.root {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, handle)
	}

	s.unlink(node)

	// Free the subtree bottom-up so child links stay resolvable while
	// collecting.
	var free func(n *nodeImpl)
	free = func(n *nodeImpl) {
		child := s.resolve(n.firstChild)
		for child != nil {
			next := s.resolve(child.nextSibling)
			free(child)
			child = next
		}
		index := n.handle.Index()
		slot := &s.slots[index]
		slot.live = false
		slot.node = nil
		s.freeList = append(s.freeList, index)
	}
	free(node)
	return nil
}

func (s *sceneImpl) ReParent(handle, newParent graphics.NodeHandle) error {
	node := s.resolve(handle)
	if node == nil || handle == s.root {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, handle)
	}
	parent := s.resolve(newParent)
	if parent == nil {
		return fmt.Errorf("%w: parent %s", ErrInvalidHandle, newParent)
	}

	// Walk up from the destination; finding the moving node means the
	// move would parent a node beneath its own subtree.
	for cursor := parent; cursor != nil; cursor = s.resolve(cursor.parent) {
		if cursor.handle == handle {
			return fmt.Errorf("%w: %s under %s", ErrCycle, handle, newParent)
		}
	}

	s.unlink(node)
	s.linkChild(parent, node)
	node.Transform().dirty = true
	return nil
}

func (s *sceneImpl) Children(handle graphics.NodeHandle) []graphics.NodeHandle {
	node := s.resolve(handle)
	if node == nil {
		return nil
	}
	var children []graphics.NodeHandle
	for child := s.resolve(node.firstChild); child != nil; child = s.resolve(child.nextSibling) {
		children = append(children, child.handle)
	}
	return children
}

func (s *sceneImpl) TraversePreOrder(visitor Visitor, filter Filter) {
	s.traverse(s.root, visitor, filter, true)
}

func (s *sceneImpl) TraversePostOrder(visitor Visitor, filter Filter) {
	s.traverse(s.root, visitor, filter, false)
}

// traverse walks the subtree at handle. Handles are captured before each
// visit and re-resolved after, so a visitor destroying or moving nodes
// cannot leave the walk holding a dangling pointer.
func (s *sceneImpl) traverse(handle graphics.NodeHandle, visitor Visitor, filter Filter, preOrder bool) {
	node := s.resolve(handle)
	if node == nil {
		return
	}

	decision := TraversalAccept
	if filter != nil {
		decision = filter(node)
	}
	if decision == TraversalRejectSubtree {
		return
	}

	if preOrder && decision == TraversalAccept {
		visitor(node)
		if s.resolve(handle) == nil {
			return
		}
	}

	child := node.firstChild
	for child.IsValid() {
		cur := s.resolve(child)
		if cur == nil {
			break
		}
		// Capture the next link before visiting in case the visitor
		// destroys this child; prefer the live link afterwards since the
		// visitor may have destroyed the captured sibling instead.
		next := cur.nextSibling
		s.traverse(child, visitor, filter, preOrder)
		if c := s.resolve(child); c != nil {
			next = c.nextSibling
		}
		child = next
	}

	if !preOrder && decision == TraversalAccept {
		if s.resolve(handle) != nil {
			visitor(node)
		}
	}
}

func (s *sceneImpl) Update() {
	root := s.resolve(s.root)
	if root == nil {
		return
	}

	// Pass 1: flags top-down.
	var resolveFlags func(n *nodeImpl, parent *FlagsComponent)
	resolveFlags = func(n *nodeImpl, parent *FlagsComponent) {
		flags := n.Flags()
		flags.resolve(parent)
		for child := s.resolve(n.firstChild); child != nil; child = s.resolve(child.nextSibling) {
			resolveFlags(child, flags)
		}
	}
	resolveFlags(root, nil)

	// Pass 2: world transforms top-down. A recomputed parent forces the
	// whole subtree to recompose against the new world.
	var resolveTransforms func(n *nodeImpl, parentWorld []float32, parentChanged bool)
	resolveTransforms = func(n *nodeImpl, parentWorld []float32, parentChanged bool) {
		transform := n.Transform()
		changed := transform.update(parentWorld, parentChanged)
		for child := s.resolve(n.firstChild); child != nil; child = s.resolve(child.nextSibling) {
			resolveTransforms(child, transform.worldMatrix, changed)
		}
	}
	resolveTransforms(root, nil, false)

	// Pass 3: drop stale world bounds on moved renderables.
	var refreshBounds func(n *nodeImpl)
	refreshBounds = func(n *nodeImpl) {
		if r := n.Renderable(); r != nil && n.Transform().worldChanged {
			r.invalidateBounds()
		}
		for child := s.resolve(n.firstChild); child != nil; child = s.resolve(child.nextSibling) {
			refreshBounds(child)
		}
	}
	refreshBounds(root)
}

func (s *sceneImpl) NodeCount() int {
	count := 0
	for i := range s.slots {
		if s.slots[i].live {
			count++
		}
	}
	if count > 0 {
		count--
	}
	return count
}
