package webgpu

import (
	"fmt"
	"log"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// CommandList wraps a finished command buffer until the queue consumes it.
type CommandList struct {
	role       graphics.QueueRole
	buffer     *wgpu.CommandBuffer
	onExecuted func()
}

// Ensure CommandList implements graphics.CommandList.
var _ graphics.CommandList = (*CommandList)(nil)

// Queue returns the role of the queue this list targets.
func (c *CommandList) Queue() graphics.QueueRole {
	return c.role
}

// SetOnExecuted registers the post-execution callback.
func (c *CommandList) SetOnExecuted(fn func()) {
	c.onExecuted = fn
}

// OnExecuted invokes and clears the registered callback.
func (c *CommandList) OnExecuted() {
	if c.onExecuted != nil {
		fn := c.onExecuted
		c.onExecuted = nil
		fn()
	}
}

// Recorder records into a command encoder. Render and compute passes open
// lazily on the first draw or dispatch and close before any copy, because
// wgpu encoders refuse copies while a pass is open.
//
// WebGPU orders queue.WriteBuffer before later submits on the same queue,
// so staging copies whose source is a shadowed host-visible buffer flush
// through the queue at record time instead of re-encoding the data.
type Recorder struct {
	backend *wgpuGraphics
	role    graphics.QueueRole
	tracker *graphics.ResourceStateTracker

	recording bool
	encoder   *wgpu.CommandEncoder

	renderPass  *wgpu.RenderPassEncoder
	computePass *wgpu.ComputePassEncoder

	// Pending pipeline key, applied when a pass opens.
	pipelineKey uint64
	hasPipeline bool

	// Pending root-constant DWORDs, flushed to the backend's draw
	// constants ring before each draw.
	rootConstants      [rootConstantDWORDs]uint32
	rootConstantsDirty bool
}

// Ensure Recorder implements graphics.CommandRecorder.
var _ graphics.CommandRecorder = (*Recorder)(nil)

func newRecorder(backend *wgpuGraphics, role graphics.QueueRole) *Recorder {
	return &Recorder{
		backend: backend,
		role:    role,
		tracker: graphics.NewResourceStateTracker(),
	}
}

// Begin places the recorder in the recording state.
func (r *Recorder) Begin() error {
	if r.recording {
		return fmt.Errorf("webgpu: recorder already recording")
	}
	encoder, err := r.backend.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("webgpu: create command encoder: %w", err)
	}
	r.encoder = encoder
	r.recording = true
	r.hasPipeline = false
	return nil
}

// End closes any open pass and returns the recorded command list.
func (r *Recorder) End() (graphics.CommandList, error) {
	if !r.recording {
		return nil, fmt.Errorf("webgpu: recorder not recording")
	}
	r.closePasses()
	r.recording = false

	buffer, err := r.encoder.Finish(nil)
	r.encoder.Release()
	r.encoder = nil
	if err != nil {
		return nil, fmt.Errorf("webgpu: finish encoder: %w", err)
	}
	return &CommandList{role: r.role, buffer: buffer}, nil
}

// BeginTrackingResourceState records the entry state of a resource.
func (r *Recorder) BeginTrackingResourceState(resource graphics.NativeResource, initial graphics.ResourceState) {
	r.tracker.BeginTrackingResourceState(resource, initial)
}

// RequireResourceState records a pending transition. WebGPU synthesizes
// barriers internally; the tracker still validates transition legality.
func (r *Recorder) RequireResourceState(resource graphics.NativeResource, desired graphics.ResourceState) {
	r.tracker.RequireResourceState(resource, desired)
}

// FlushBarriers drains the tracker. The driver owns hazard tracking, so
// the synthesized barriers are dropped after validation.
func (r *Recorder) FlushBarriers() {
	r.tracker.FlushBarriers()
}

// CopyBufferRegion records a buffer-to-buffer copy. Shadowed staging
// sources flush through the queue; device-local sources are not supported
// because the engine's upload path always copies out of staging memory.
func (r *Recorder) CopyBufferRegion(dst graphics.Buffer, dstOffset common.SizeBytes, src graphics.Buffer, srcOffset common.SizeBytes, size common.SizeBytes) {
	if !r.recording {
		return
	}
	r.closePasses()
	r.FlushBarriers()

	wd, okDst := dst.(*Buffer)
	ws, okSrc := src.(*Buffer)
	if !okDst || !okSrc {
		log.Printf("webgpu: buffer copy between foreign resources dropped")
		return
	}

	data := ws.shadowAt(srcOffset)
	if data == nil || uint64(len(data)) < uint64(size) {
		log.Printf("webgpu: copy source %q is not shadowed staging memory", ws.desc.Label)
		return
	}
	r.backend.deviceQueue.WriteBuffer(wd.raw, uint64(dstOffset), data[:size])
}

// CopyTextureRegion records a buffer-to-texture copy for one subresource.
func (r *Recorder) CopyTextureRegion(dst graphics.Texture, slice graphics.TextureSlice, src graphics.Buffer, srcOffset common.SizeBytes, rowPitch, slicePitch common.SizeBytes) {
	if !r.recording {
		return
	}
	r.closePasses()
	r.FlushBarriers()

	wt, okDst := dst.(*Texture)
	ws, okSrc := src.(*Buffer)
	if !okDst || !okSrc {
		log.Printf("webgpu: texture copy between foreign resources dropped")
		return
	}

	data := ws.shadowAt(srcOffset)
	if data == nil {
		log.Printf("webgpu: copy source %q is not shadowed staging memory", ws.desc.Label)
		return
	}

	desc := wt.desc
	width := max(desc.Width>>slice.MipLevel, 1)
	height := max(desc.Height>>slice.MipLevel, 1)

	r.backend.deviceQueue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  wt.raw,
			MipLevel: slice.MipLevel,
			Origin:   wgpu.Origin3D{Z: slice.ArraySlice},
			Aspect:   wgpu.TextureAspectAll,
		},
		data[:slicePitch],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rowPitch),
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
}

// SetPipelineState binds a pipeline by its cache key. The bind is deferred
// until a pass opens because the pass kind selects the pipeline map.
func (r *Recorder) SetPipelineState(key uint64) {
	if !r.recording {
		return
	}
	r.pipelineKey = key
	r.hasPipeline = true

	if r.renderPass != nil {
		if p := r.backend.renderPipeline(key); p != nil {
			r.renderPass.SetPipeline(p)
		}
	}
	if r.computePass != nil {
		if p := r.backend.computePipeline(key); p != nil {
			r.computePass.SetPipeline(p)
		}
	}
}

// SetGraphicsRoot32BitConstant writes one DWORD of the root-constants
// block. WebGPU has no root constants, so DWORDs accumulate locally and
// flush to the backend's draw constants ring before the next draw, where
// the pass bind groups read them at the same DWORD offsets.
func (r *Recorder) SetGraphicsRoot32BitConstant(rootParameterIndex, value, destOffset uint32) {
	if !r.recording || destOffset >= rootConstantDWORDs {
		return
	}
	r.rootConstants[destOffset] = value
	r.rootConstantsDirty = true
}

// Draw records a non-indexed draw.
func (r *Recorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if !r.ensureRenderPass() {
		return
	}
	r.flushRootConstants()
	r.renderPass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// DrawIndexed records an indexed draw.
func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if !r.ensureRenderPass() {
		return
	}
	r.flushRootConstants()
	r.renderPass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// flushRootConstants writes the pending DWORD block into the draw
// constants ring.
func (r *Recorder) flushRootConstants() {
	if !r.rootConstantsDirty {
		return
	}
	r.rootConstantsDirty = false
	r.backend.writeDrawConstants(r.rootConstants)
}

// Dispatch records a compute dispatch.
func (r *Recorder) Dispatch(groupsX, groupsY, groupsZ uint32) {
	if !r.recording {
		return
	}
	if r.computePass == nil {
		r.closePasses()
		r.computePass = r.encoder.BeginComputePass(nil)
		if r.hasPipeline {
			if p := r.backend.computePipeline(r.pipelineKey); p != nil {
				r.computePass.SetPipeline(p)
			}
		}
	}
	r.computePass.DispatchWorkgroups(groupsX, groupsY, groupsZ)
}

// ensureRenderPass opens the render pass against the backend's current
// surface target. Draws without a configured target are dropped; the
// headless deployments that need targetless recording use the headless
// backend instead.
func (r *Recorder) ensureRenderPass() bool {
	if !r.recording {
		return false
	}
	if r.renderPass != nil {
		return true
	}

	target := r.backend.currentTarget()
	if target == nil || target.colorView == nil {
		log.Printf("webgpu: draw dropped, no surface target configured")
		return false
	}

	if r.computePass != nil {
		r.computePass.End()
		r.computePass = nil
	}

	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    target.colorView,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: 0.1, G: 0.1, B: 0.1, A: 1.0,
			},
		}},
	}
	if target.depthView != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            target.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		}
	}

	r.renderPass = r.encoder.BeginRenderPass(desc)
	if r.hasPipeline {
		if p := r.backend.renderPipeline(r.pipelineKey); p != nil {
			r.renderPass.SetPipeline(p)
		}
	}
	return true
}

// closePasses ends any open pass encoders.
func (r *Recorder) closePasses() {
	if r.renderPass != nil {
		r.renderPass.End()
		r.renderPass = nil
	}
	if r.computePass != nil {
		r.computePass.End()
		r.computePass = nil
	}
}
