package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/pipeline"
)

// ComputeRenderPass dispatches a compute pipeline over a fixed grid. By
// default Execute issues one dispatch; custom passes override the hooks.
type ComputeRenderPass struct {
	basePass
	groupsX, groupsY, groupsZ uint32
}

// Ensure ComputeRenderPass implements RenderPass.
var _ RenderPass = (*ComputeRenderPass)(nil)

// NewComputeRenderPass creates a compute pass. Panics on a nil pipeline
// or a non-compute pipeline type.
//
// Parameters:
//   - name: the pass identifier
//   - pso: the compute pipeline the pass dispatches
//   - groupsX: thread groups along x
//   - groupsY: thread groups along y
//   - groupsZ: thread groups along z
//   - options: functional options for pass configuration
//
// Returns:
//   - *ComputeRenderPass: the newly created pass
func NewComputeRenderPass(name string, pso pipeline.Pipeline, groupsX, groupsY, groupsZ uint32, options ...PassBuilderOption) *ComputeRenderPass {
	if pso == nil {
		panic("pass: NewComputeRenderPass requires a non-nil pipeline")
	}
	if pso.Type() != pipeline.PipelineTypeCompute {
		panic(fmt.Sprintf("pass %q: pipeline is not a compute pipeline", name))
	}

	p := &ComputeRenderPass{
		basePass: basePass{name: name, pipeline: pso},
		groupsX:  groupsX,
		groupsY:  groupsY,
		groupsZ:  groupsZ,
	}
	for _, opt := range options {
		opt(&p.basePass)
	}
	return p
}

// PrepareResources validates configuration and runs the prepare hook.
func (p *ComputeRenderPass) PrepareResources(ctx *Context) error {
	return p.prepare(ctx)
}

// Execute binds the pipeline and either runs the execute hook or issues
// the configured dispatch.
func (p *ComputeRenderPass) Execute(ctx *Context) error {
	if p.doExecute != nil {
		return p.execute(ctx)
	}
	if p.groupsX == 0 || p.groupsY == 0 || p.groupsZ == 0 {
		return fmt.Errorf("pass %q: zero dispatch grid", p.name)
	}
	ctx.Recorder.SetPipelineState(p.pipeline.Key())
	ctx.Recorder.Dispatch(p.groupsX, p.groupsY, p.groupsZ)
	return nil
}
