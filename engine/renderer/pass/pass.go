// Package pass implements the render-pass base shared by every pass:
// the fixed bindless root signature, root-constant binding helpers, and
// partition-driven draw-call issuing over a prepared scene frame.
package pass

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxygen-core/engine/sceneprep"
)

// Root parameter slots of the shared root signature. Every pass and
// shader compiles against this layout; the numbering is the shader ABI.
const (
	// RootParamBindlessTable is the unbounded SRV/UAV/sampler table.
	RootParamBindlessTable = 0

	// RootParamSceneConstants is the per-frame scene constants CBV.
	RootParamSceneConstants = 1

	// RootParamRootConstants is the 32-bit root constants block.
	RootParamRootConstants = 2

	// RootParamTransientTable is the optional transient-ring table.
	RootParamTransientTable = 3
)

// DWORD offsets within the root constants block.
const (
	// RootConstantDrawIndex is the per-draw record index.
	RootConstantDrawIndex = 0

	// RootConstantPassConstantsIndex is the bindless slot of the pass
	// constants buffer.
	RootConstantPassConstantsIndex = 1
)

// Context carries the per-frame inputs a pass records against.
type Context struct {
	// Recorder is the target command recorder, already recording.
	Recorder graphics.CommandRecorder

	// Frame is the published scene frame. May be nil for passes that do
	// not consume scene draws.
	Frame *sceneprep.PreparedSceneFrame
}

// RenderPass is one pass of the frame graph. PrepareResources runs
// before any pass executes; Execute records the pass's commands.
type RenderPass interface {
	// Name returns the pass identifier for logs.
	Name() string

	// PrepareResources validates configuration and lets the pass request
	// resource transitions and pass-local descriptors.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: a configuration or preparation error
	PrepareResources(ctx *Context) error

	// Execute binds the pass pipeline and records its commands.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: an execution error (per-draw failures do not surface here)
	Execute(ctx *Context) error
}

// basePass carries the state and helpers shared by the graphics and
// compute pass bases.
type basePass struct {
	name     string
	pipeline pipeline.Pipeline

	// hooks supplied by the concrete pass.
	doPrepareResources func(ctx *Context) error
	doExecute          func(ctx *Context) error

	// draw failure accounting for the current Execute.
	drawsIssued  int
	drawsSkipped int
	drawsFailed  int
}

// Name returns the pass identifier.
func (p *basePass) Name() string {
	return p.name
}

// Pipeline returns the pass's pipeline state.
func (p *basePass) Pipeline() pipeline.Pipeline {
	return p.pipeline
}

// DrawsIssued returns the draw count of the last Execute.
func (p *basePass) DrawsIssued() int {
	return p.drawsIssued
}

// DrawsSkipped returns the zero-count records skipped by the last Execute.
func (p *basePass) DrawsSkipped() int {
	return p.drawsSkipped
}

// DrawsFailed returns the recovered per-draw failures of the last Execute.
func (p *basePass) DrawsFailed() int {
	return p.drawsFailed
}

func (p *basePass) prepare(ctx *Context) error {
	if p.pipeline == nil {
		return fmt.Errorf("pass %q: no pipeline configured", p.name)
	}
	if ctx == nil || ctx.Recorder == nil {
		return fmt.Errorf("pass %q: no recorder", p.name)
	}
	if p.doPrepareResources != nil {
		return p.doPrepareResources(ctx)
	}
	return nil
}

func (p *basePass) execute(ctx *Context) error {
	ctx.Recorder.SetPipelineState(p.pipeline.Key())
	if p.doExecute != nil {
		return p.doExecute(ctx)
	}
	return nil
}

// BindDrawIndexConstant writes the draw index into DWORD0 of the root
// constants block.
//
// Parameters:
//   - recorder: the recording target
//   - drawIndex: the record index within the frame's draw metadata
func BindDrawIndexConstant(recorder graphics.CommandRecorder, drawIndex uint32) {
	recorder.SetGraphicsRoot32BitConstant(RootParamRootConstants, drawIndex, RootConstantDrawIndex)
}

// BindPassConstantsIndex writes the pass constants bindless slot into
// DWORD1 of the root constants block.
//
// Parameters:
//   - recorder: the recording target
//   - slot: the shader-visible slot of the pass constants buffer
func BindPassConstantsIndex(recorder graphics.CommandRecorder, slot common.ShaderVisibleIndex) {
	recorder.SetGraphicsRoot32BitConstant(RootParamRootConstants, uint32(slot), RootConstantPassConstantsIndex)
}

// IssueDrawCallsOverPass walks the frame's partitions relevant to
// passBit and emits one draw per record. Records with zero counts are
// skipped; a panic during a single draw is recovered, counted, and
// logged without aborting the pass.
func (p *basePass) IssueDrawCallsOverPass(ctx *Context, passBit sceneprep.PassMask) {
	p.drawsIssued, p.drawsSkipped, p.drawsFailed = 0, 0, 0
	if ctx.Frame == nil || ctx.Frame.DrawCount == 0 {
		return
	}
	records := common.BytesToSlice[sceneprep.DrawMetadata](ctx.Frame.DrawMetadataBytes)

	for _, part := range ctx.Frame.Partitions {
		if !part.Mask.Has(passBit) {
			continue
		}
		for i := part.Begin; i < part.End; i++ {
			record := &records[i]
			if !record.Valid() {
				p.drawsSkipped++
				continue
			}
			p.issueOne(ctx, i, record)
		}
	}

	if p.drawsFailed > 0 {
		log.Printf("pass %q: %d of %d draws failed", p.name, p.drawsFailed, p.drawsFailed+p.drawsIssued)
	}
}

// issueOne emits a single draw, converting a panic into a counted
// failure so one bad record cannot take down the pass.
func (p *basePass) issueOne(ctx *Context, drawIndex uint32, record *sceneprep.DrawMetadata) {
	defer func() {
		if r := recover(); r != nil {
			p.drawsFailed++
			log.Printf("pass %q: draw %d panicked: %v", p.name, drawIndex, r)
		}
	}()

	BindDrawIndexConstant(ctx.Recorder, drawIndex)
	if record.IsIndexed != 0 {
		ctx.Recorder.DrawIndexed(record.IndexCount, record.InstanceCount, record.FirstIndex, 0, 0)
	} else {
		ctx.Recorder.Draw(record.VertexCount, record.InstanceCount, record.FirstVertex, 0)
	}
	p.drawsIssued++
}
