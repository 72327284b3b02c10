package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxygen-core/engine/sceneprep"
)

// GraphicsRenderPass renders scene draws through a render pipeline. By
// default Execute issues every draw in the partitions matching the
// configured pass bit; custom passes override the hooks.
type GraphicsRenderPass struct {
	basePass
	passBit sceneprep.PassMask
}

// Ensure GraphicsRenderPass implements RenderPass.
var _ RenderPass = (*GraphicsRenderPass)(nil)

// NewGraphicsRenderPass creates a graphics pass. Panics on a nil
// pipeline or a non-render pipeline type.
//
// Parameters:
//   - name: the pass identifier
//   - pso: the render pipeline the pass executes with
//   - passBit: the partition bit the pass consumes
//   - options: functional options for pass configuration
//
// Returns:
//   - *GraphicsRenderPass: the newly created pass
func NewGraphicsRenderPass(name string, pso pipeline.Pipeline, passBit sceneprep.PassMask, options ...PassBuilderOption) *GraphicsRenderPass {
	if pso == nil {
		panic("pass: NewGraphicsRenderPass requires a non-nil pipeline")
	}
	if pso.Type() != pipeline.PipelineTypeRender {
		panic(fmt.Sprintf("pass %q: pipeline is not a render pipeline", name))
	}

	p := &GraphicsRenderPass{
		basePass: basePass{name: name, pipeline: pso},
		passBit:  passBit,
	}
	for _, opt := range options {
		opt(&p.basePass)
	}
	return p
}

// PassBit returns the partition bit the pass consumes.
func (p *GraphicsRenderPass) PassBit() sceneprep.PassMask {
	return p.passBit
}

// PrepareResources validates configuration and runs the prepare hook.
func (p *GraphicsRenderPass) PrepareResources(ctx *Context) error {
	return p.prepare(ctx)
}

// Execute binds the pipeline and either runs the execute hook or issues
// all draws for the configured pass bit.
func (p *GraphicsRenderPass) Execute(ctx *Context) error {
	if p.doExecute != nil {
		return p.execute(ctx)
	}
	ctx.Recorder.SetPipelineState(p.pipeline.Key())
	p.IssueDrawCallsOverPass(ctx, p.passBit)
	return nil
}
