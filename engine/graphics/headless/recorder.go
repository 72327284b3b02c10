package headless

import (
	"fmt"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// RecorderStats counts the commands a recorder has recorded. Exposed for
// test verification.
type RecorderStats struct {
	DrawCalls         int
	DispatchCalls     int
	CopyBufferCalls   int
	CopyTextureCalls  int
	BarrierCount      int
	RootConstantsSeen []uint32
}

// CommandList is the headless recorded list: an ordered slice of deferred
// command closures executed by the queue at submit time.
type CommandList struct {
	role       graphics.QueueRole
	ops        []func() error
	onExecuted func()
	stats      RecorderStats
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

// Stats returns the command counts recorded into this list.
func (c *CommandList) Stats() RecorderStats {
	return c.stats
}

// execute runs every recorded command in order.
func (c *CommandList) execute() error {
	for _, op := range c.ops {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}

// Recorder is the headless command recorder. Commands are captured as
// closures and applied when the queue submits the closed list, mirroring
// how a real backend defers work to GPU execution.
type Recorder struct {
	role      graphics.QueueRole
	tracker   *graphics.ResourceStateTracker
	recording bool
	list      *CommandList
}

// Ensure Recorder implements graphics.CommandRecorder.
var _ graphics.CommandRecorder = (*Recorder)(nil)

func newRecorder(role graphics.QueueRole) *Recorder {
	return &Recorder{
		role:    role,
		tracker: graphics.NewResourceStateTracker(),
	}
}

// Begin places the recorder in the recording state.
func (r *Recorder) Begin() error {
	if r.recording {
		return fmt.Errorf("headless: recorder already recording")
	}
	r.recording = true
	r.list = &CommandList{role: r.role}
	return nil
}

// End closes the recording and returns the recorded command list.
func (r *Recorder) End() (graphics.CommandList, error) {
	if !r.recording {
		return nil, fmt.Errorf("headless: recorder not recording")
	}
	r.FlushBarriers()
	r.recording = false
	list := r.list
	r.list = nil
	return list, nil
}

// BeginTrackingResourceState records the entry state of a resource.
func (r *Recorder) BeginTrackingResourceState(resource graphics.NativeResource, initial graphics.ResourceState) {
	r.tracker.BeginTrackingResourceState(resource, initial)
}

// RequireResourceState records a pending transition.
func (r *Recorder) RequireResourceState(resource graphics.NativeResource, desired graphics.ResourceState) {
	r.tracker.RequireResourceState(resource, desired)
}

// FlushBarriers emits pending barriers into the command stream. Headless
// barriers only count; there is no memory system to synchronize.
func (r *Recorder) FlushBarriers() {
	if r.list == nil {
		return
	}
	barriers := r.tracker.FlushBarriers()
	r.list.stats.BarrierCount += len(barriers)
}

// CopyBufferRegion records a buffer-to-buffer copy.
func (r *Recorder) CopyBufferRegion(dst graphics.Buffer, dstOffset common.SizeBytes, src graphics.Buffer, srcOffset common.SizeBytes, size common.SizeBytes) {
	if !r.recording {
		return
	}
	r.FlushBarriers()
	r.list.stats.CopyBufferCalls++

	hd, okDst := dst.(*Buffer)
	hs, okSrc := src.(*Buffer)
	r.list.ops = append(r.list.ops, func() error {
		if !okDst || !okSrc {
			return fmt.Errorf("headless: copy between foreign buffers")
		}
		if uint64(dstOffset)+uint64(size) > uint64(len(hd.data)) {
			return fmt.Errorf("headless: copy overruns destination %q", hd.desc.Label)
		}
		if uint64(srcOffset)+uint64(size) > uint64(len(hs.data)) {
			return fmt.Errorf("headless: copy overruns source %q", hs.desc.Label)
		}
		copy(hd.data[dstOffset:uint64(dstOffset)+uint64(size)], hs.data[srcOffset:uint64(srcOffset)+uint64(size)])
		return nil
	})
}

// CopyTextureRegion records a buffer-to-texture copy for one subresource.
func (r *Recorder) CopyTextureRegion(dst graphics.Texture, slice graphics.TextureSlice, src graphics.Buffer, srcOffset common.SizeBytes, rowPitch, slicePitch common.SizeBytes) {
	if !r.recording {
		return
	}
	r.FlushBarriers()
	r.list.stats.CopyTextureCalls++

	ht, okDst := dst.(*Texture)
	hs, okSrc := src.(*Buffer)
	r.list.ops = append(r.list.ops, func() error {
		if !okDst || !okSrc {
			return fmt.Errorf("headless: copy between foreign resources")
		}
		if uint64(srcOffset) > uint64(len(hs.data)) {
			return fmt.Errorf("headless: texture copy source offset out of range")
		}
		ht.writeSubresource(slice, hs.data[srcOffset:], uint64(rowPitch))
		return nil
	})
}

// SetPipelineState binds a pipeline by its cache key.
func (r *Recorder) SetPipelineState(key uint64) {
	if !r.recording {
		return
	}
	r.list.ops = append(r.list.ops, func() error { return nil })
}

// SetGraphicsRoot32BitConstant writes one DWORD of the root-constants block.
func (r *Recorder) SetGraphicsRoot32BitConstant(rootParameterIndex, value, destOffset uint32) {
	if !r.recording {
		return
	}
	r.list.stats.RootConstantsSeen = append(r.list.stats.RootConstantsSeen, value)
}

// Draw records a non-indexed draw.
func (r *Recorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if !r.recording {
		return
	}
	r.FlushBarriers()
	r.list.stats.DrawCalls++
}

// DrawIndexed records an indexed draw.
func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if !r.recording {
		return
	}
	r.FlushBarriers()
	r.list.stats.DrawCalls++
}

// Dispatch records a compute dispatch.
func (r *Recorder) Dispatch(groupsX, groupsY, groupsZ uint32) {
	if !r.recording {
		return
	}
	r.FlushBarriers()
	r.list.stats.DispatchCalls++
}

// List returns the command list currently being recorded, or nil when no
// recording is open. Used by tests to attach callbacks before End.
func (r *Recorder) List() *CommandList {
	return r.list
}

// Stats returns the counts recorded into the current (open) list. Returns
// the zero value when no recording is open.
func (r *Recorder) Stats() RecorderStats {
	if r.list == nil {
		return RecorderStats{}
	}
	return r.list.stats
}
