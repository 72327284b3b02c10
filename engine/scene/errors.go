package scene

import "errors"

// Named error kinds for out-of-domain graph mutations. All mutations that
// fail with one of these leave the graph unchanged.
var (
	// ErrInvalidHandle is returned when a handle does not resolve to a
	// live node (stale generation, foreign scene, or destroyed).
	ErrInvalidHandle = errors.New("scene: invalid node handle")

	// ErrCycle is returned when a re-parent would make a node an ancestor
	// of itself.
	ErrCycle = errors.New("scene: re-parent would create a cycle")

	// ErrMissingDependency is returned when attaching a component whose
	// declared dependency types are not present on the node.
	ErrMissingDependency = errors.New("scene: component dependency missing")

	// ErrDuplicateComponent is returned when attaching a component of a
	// type the node already carries.
	ErrDuplicateComponent = errors.New("scene: component already attached")
)
