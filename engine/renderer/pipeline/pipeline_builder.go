package pipeline

// DescriptionBuilderOption configures a render pipeline description.
type DescriptionBuilderOption func(*Description)

// WithDepthTest enables or disables depth testing.
//
// Parameters:
//   - enabled: true to test against the depth buffer
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithDepthTest(enabled bool) DescriptionBuilderOption {
	return func(d *Description) {
		d.DepthTestEnabled = enabled
	}
}

// WithDepthWrite enables or disables depth writes.
//
// Parameters:
//   - enabled: true to write the depth buffer
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithDepthWrite(enabled bool) DescriptionBuilderOption {
	return func(d *Description) {
		d.DepthWriteEnabled = enabled
	}
}

// WithDepthBias sets the constant and slope-scaled depth bias, typically
// for shadow passes.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithDepthBias(bias int32, slopeScale float32) DescriptionBuilderOption {
	return func(d *Description) {
		d.DepthBias = bias
		d.DepthBiasSlopeScale = slopeScale
	}
}

// WithBlend enables alpha blending.
//
// Parameters:
//   - enabled: true to blend against the framebuffer
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithBlend(enabled bool) DescriptionBuilderOption {
	return func(d *Description) {
		d.BlendEnabled = enabled
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the winding to discard
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithCullMode(mode CullMode) DescriptionBuilderOption {
	return func(d *Description) {
		d.CullMode = mode
	}
}

// WithTopology sets the primitive assembly mode.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithTopology(topology Topology) DescriptionBuilderOption {
	return func(d *Description) {
		d.Topology = topology
	}
}

// WithFrontFace sets the winding considered front-facing.
//
// Parameters:
//   - face: the front-facing winding
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithFrontFace(face FrontFace) DescriptionBuilderOption {
	return func(d *Description) {
		d.FrontFace = face
	}
}

// WithColorWriteMask sets the RGBA channel write mask.
//
// Parameters:
//   - mask: the channel bits to write (0xF writes all)
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithColorWriteMask(mask uint32) DescriptionBuilderOption {
	return func(d *Description) {
		d.ColorWriteMask = mask
	}
}

// WithRootLayout sets the root-binding layout id the pipeline compiles
// against.
//
// Parameters:
//   - layout: the root layout id
//
// Returns:
//   - DescriptionBuilderOption: the option to pass to NewDescription
func WithRootLayout(layout uint32) DescriptionBuilderOption {
	return func(d *Description) {
		d.RootLayout = layout
	}
}
