package scene

// LightKind classifies a light source.
type LightKind int

const (
	// LightKindDirectional illuminates along the node's forward axis.
	LightKindDirectional LightKind = iota
	// LightKindPoint illuminates radially with distance falloff.
	LightKindPoint
	// LightKindSpot illuminates a cone along the node's forward axis.
	LightKindSpot
)

// LightComponent attaches a light source to a node. Position and
// direction derive from the node's world transform.
type LightComponent struct {
	// Kind classifies the source.
	Kind LightKind

	// Color is the RGB emission color.
	Color [3]float32

	// Intensity scales the emission.
	Intensity float32

	// Range is the falloff distance for point and spot lights.
	Range float32
}

// Ensure LightComponent implements Component.
var _ Component = (*LightComponent)(nil)

// NewLightComponent creates a white directional light of unit intensity.
func NewLightComponent(kind LightKind) *LightComponent {
	return &LightComponent{
		Kind:      kind,
		Color:     [3]float32{1, 1, 1},
		Intensity: 1,
	}
}

// Type returns the component's stable type id.
func (l *LightComponent) Type() ComponentType {
	return ComponentTypeLight
}

// Dependencies returns the component types this component requires.
func (l *LightComponent) Dependencies() []ComponentType {
	return []ComponentType{ComponentTypeTransform}
}
