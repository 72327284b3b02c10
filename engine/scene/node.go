package scene

import (
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Node is one entry in a scene's node table. All references between
// nodes are handles, never pointers; a Node value obtained from the
// scene is only valid until the next structural mutation.
type Node interface {
	// Handle returns the node's stable handle.
	Handle() graphics.NodeHandle

	// Name returns the node's identifier.
	Name() string

	// SetName sets the node's identifier.
	SetName(name string)

	// Parent returns the parent handle (invalid at the root).
	Parent() graphics.NodeHandle

	// FirstChild returns the first child handle, or an invalid handle.
	FirstChild() graphics.NodeHandle

	// NextSibling returns the next sibling handle, or an invalid handle.
	NextSibling() graphics.NodeHandle

	// PrevSibling returns the previous sibling handle, or an invalid handle.
	PrevSibling() graphics.NodeHandle

	// Transform returns the node's transform component. Never nil.
	Transform() *TransformComponent

	// Flags returns the node's flags component. Never nil.
	Flags() *FlagsComponent

	// Renderable returns the renderable component, or nil.
	Renderable() *RenderableComponent

	// Camera returns the camera component, or nil.
	Camera() *CameraComponent

	// Light returns the light component, or nil.
	Light() *LightComponent

	// AttachComponent adds a component, validating its declared
	// dependency types against the already-attached set.
	//
	// Parameters:
	//   - comp: the component to attach
	//
	// Returns:
	//   - error: ErrDuplicateComponent or ErrMissingDependency on failure
	AttachComponent(comp Component) error

	// Component returns the attached component of the given type, or nil.
	Component(t ComponentType) Component

	// DetachComponent removes and returns the component of the given
	// type. Transform and flags cannot be detached.
	DetachComponent(t ComponentType) Component
}

// nodeImpl implements Node.
type nodeImpl struct {
	handle graphics.NodeHandle
	name   string

	parent      graphics.NodeHandle
	firstChild  graphics.NodeHandle
	nextSibling graphics.NodeHandle
	prevSibling graphics.NodeHandle

	container componentContainer
}

// Ensure nodeImpl implements Node.
var _ Node = (*nodeImpl)(nil)

func newNode(handle graphics.NodeHandle, name string) *nodeImpl {
	n := &nodeImpl{
		handle: handle,
		name:   name,
	}
	// Every node carries a transform and flags; attach cannot fail here.
	_ = n.container.attach(newTransformComponent())
	_ = n.container.attach(newFlagsComponent())
	return n
}

func (n *nodeImpl) Handle() graphics.NodeHandle {
	return n.handle
}

func (n *nodeImpl) Name() string {
	return n.name
}

func (n *nodeImpl) SetName(name string) {
	n.name = name
}

func (n *nodeImpl) Parent() graphics.NodeHandle {
	return n.parent
}

func (n *nodeImpl) FirstChild() graphics.NodeHandle {
	return n.firstChild
}

func (n *nodeImpl) NextSibling() graphics.NodeHandle {
	return n.nextSibling
}

func (n *nodeImpl) PrevSibling() graphics.NodeHandle {
	return n.prevSibling
}

func (n *nodeImpl) Transform() *TransformComponent {
	return n.container.get(ComponentTypeTransform).(*TransformComponent)
}

func (n *nodeImpl) Flags() *FlagsComponent {
	return n.container.get(ComponentTypeFlags).(*FlagsComponent)
}

func (n *nodeImpl) Renderable() *RenderableComponent {
	if c := n.container.get(ComponentTypeRenderable); c != nil {
		return c.(*RenderableComponent)
	}
	return nil
}

func (n *nodeImpl) Camera() *CameraComponent {
	if c := n.container.get(ComponentTypeCamera); c != nil {
		return c.(*CameraComponent)
	}
	return nil
}

func (n *nodeImpl) Light() *LightComponent {
	if c := n.container.get(ComponentTypeLight); c != nil {
		return c.(*LightComponent)
	}
	return nil
}

func (n *nodeImpl) AttachComponent(comp Component) error {
	return n.container.attach(comp)
}

func (n *nodeImpl) Component(t ComponentType) Component {
	return n.container.get(t)
}

func (n *nodeImpl) DetachComponent(t ComponentType) Component {
	if t == ComponentTypeTransform || t == ComponentTypeFlags {
		return nil
	}
	return n.container.detach(t)
}
