package scene

import "fmt"

// ComponentType is the stable type id a component is keyed by within its
// node's container.
type ComponentType int

const (
	ComponentTypeTransform ComponentType = iota
	ComponentTypeFlags
	ComponentTypeRenderable
	ComponentTypeCamera
	ComponentTypeLight

	componentTypeCount
)

// String returns the component type's name.
func (t ComponentType) String() string {
	switch t {
	case ComponentTypeTransform:
		return "Transform"
	case ComponentTypeFlags:
		return "Flags"
	case ComponentTypeRenderable:
		return "Renderable"
	case ComponentTypeCamera:
		return "Camera"
	case ComponentTypeLight:
		return "Light"
	default:
		return "Unknown"
	}
}

// Component is the contract every node component satisfies. Dependencies
// declare the component types that must already be attached before this
// component may be added.
type Component interface {
	// Type returns the component's stable type id.
	Type() ComponentType

	// Dependencies returns the component types this component requires.
	Dependencies() []ComponentType
}

// componentContainer holds a node's components keyed by type id.
type componentContainer struct {
	components [componentTypeCount]Component
}

// attach validates the component's declared dependencies against the
// already-attached set and stores it. Duplicate types are rejected.
func (c *componentContainer) attach(comp Component) error {
	t := comp.Type()
	if c.components[t] != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, t)
	}
	for _, dep := range comp.Dependencies() {
		if c.components[dep] == nil {
			return fmt.Errorf("%w: %s requires %s", ErrMissingDependency, t, dep)
		}
	}
	c.components[t] = comp
	return nil
}

// get returns the component of the given type, or nil.
func (c *componentContainer) get(t ComponentType) Component {
	return c.components[t]
}

// detach removes and returns the component of the given type.
func (c *componentContainer) detach(t ComponentType) Component {
	comp := c.components[t]
	c.components[t] = nil
	return comp
}
