package webgpu

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Queue wraps the device queue with a monotonic fence emulation. WebGPU
// has no user fences, so completion is tracked conservatively: a fence
// value is considered complete only once the device reports an empty
// queue. That over-synchronizes slightly but never under-synchronizes.
type Queue struct {
	mu     sync.Mutex
	device *wgpu.Device
	raw    *wgpu.Queue

	signaled  uint64
	completed uint64
}

// Ensure Queue implements graphics.CommandQueue.
var _ graphics.CommandQueue = (*Queue)(nil)

func newQueue(device *wgpu.Device, raw *wgpu.Queue) *Queue {
	return &Queue{device: device, raw: raw}
}

// Role returns the queue's role. The single WebGPU queue serves every
// role, reported as graphics.
func (q *Queue) Role() graphics.QueueRole {
	return graphics.QueueRoleGraphics
}

// Submit submits the given lists as one batch and signals the queue fence.
//
// Parameters:
//   - lists: the command lists to execute, in order
//
// Returns:
//   - uint64: the fence value signaled after this batch completes
//   - error: an error if a list came from another backend
func (q *Queue) Submit(lists []graphics.CommandList) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	buffers := make([]*wgpu.CommandBuffer, 0, len(lists))
	for _, l := range lists {
		cl, ok := l.(*CommandList)
		if !ok || cl.buffer == nil {
			continue
		}
		buffers = append(buffers, cl.buffer)
	}

	if len(buffers) > 0 {
		q.raw.Submit(buffers...)
		for _, b := range buffers {
			b.Release()
		}
		for _, l := range lists {
			if cl, ok := l.(*CommandList); ok {
				cl.buffer = nil
			}
		}
	}

	q.signaled++
	q.pollLocked(false)
	return q.signaled, nil
}

// Signal advances and signals the fence without submitting work.
func (q *Queue) Signal() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.signaled++
	q.pollLocked(false)
	return q.signaled
}

// GetCompletedValue returns the highest fence value known complete.
func (q *Queue) GetCompletedValue() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pollLocked(false)
	return q.completed
}

// Wait blocks until the fence reaches value by polling the device until
// the queue drains.
func (q *Queue) Wait(value uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.completed < value {
		q.pollLocked(true)
	}
}

// pollLocked updates completed from the device's queue state. An empty
// device queue means everything signaled so far has executed.
func (q *Queue) pollLocked(wait bool) {
	if q.device.Poll(wait, nil) {
		q.completed = q.signaled
	}
}
