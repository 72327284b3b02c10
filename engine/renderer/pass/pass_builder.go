package pass

// PassBuilderOption configures a pass during construction.
type PassBuilderOption func(*basePass)

// WithPrepareResources sets the hook run during PrepareResources, after
// base validation. Passes use it to request resource transitions and
// allocate pass-local descriptors.
//
// Parameters:
//   - fn: the preparation hook
//
// Returns:
//   - PassBuilderOption: the option to pass to the pass constructor
func WithPrepareResources(fn func(ctx *Context) error) PassBuilderOption {
	return func(p *basePass) {
		p.doPrepareResources = fn
	}
}

// WithExecute replaces the pass's default Execute body. The pipeline is
// bound before the hook runs.
//
// Parameters:
//   - fn: the execution hook
//
// Returns:
//   - PassBuilderOption: the option to pass to the pass constructor
func WithExecute(fn func(ctx *Context) error) PassBuilderOption {
	return func(p *basePass) {
		p.doExecute = fn
	}
}
