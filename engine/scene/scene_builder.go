package scene

// SceneBuilderOption configures a scene during construction.
type SceneBuilderOption func(*sceneImpl)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene's identifier
//
// Returns:
//   - SceneBuilderOption: the option to pass to NewScene
func WithName(name string) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.name = name
	}
}
