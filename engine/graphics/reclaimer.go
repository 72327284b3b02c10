package graphics

import (
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

// DeferredReclaimer retires resources only after the GPU can no longer
// reference them. It keeps one FIFO bucket of release actions per frame
// slot; cycling a slot at frame begin runs everything registered when that
// slot was last active. Because the engine never begins a frame on a slot
// whose GPU work is still in flight, actions always run after GPU
// retirement.
//
// Registration is lock-guarded and may happen on the record thread;
// dispatch owns the buckets exclusively during OnBeginFrame and runs on the
// frame thread. Actions must not register new deferred actions for the
// slot currently being dispatched.
type DeferredReclaimer struct {
	mu          sync.Mutex
	buckets     [][]func()
	currentSlot common.FrameSlot
}

// NewDeferredReclaimer creates a DeferredReclaimer with one bucket per
// frame slot.
//
// Parameters:
//   - framesInFlight: the number of frame slots; 0 uses common.DefaultFramesInFlight
//
// Returns:
//   - *DeferredReclaimer: the newly created reclaimer, positioned on slot 0
func NewDeferredReclaimer(framesInFlight uint32) *DeferredReclaimer {
	if framesInFlight == 0 {
		framesInFlight = common.DefaultFramesInFlight
	}
	return &DeferredReclaimer{
		buckets: make([][]func(), framesInFlight),
	}
}

// FramesInFlight returns the number of frame slots the reclaimer cycles.
func (r *DeferredReclaimer) FramesInFlight() uint32 {
	return uint32(len(r.buckets))
}

// CurrentSlot returns the slot new registrations are appended to.
func (r *DeferredReclaimer) CurrentSlot() common.FrameSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentSlot
}

// RegisterDeferredAction appends a release action to the bucket of the
// current frame slot. The action runs on the first cycle of that slot
// after registration, in registration order, exactly once.
//
// Parameters:
//   - fn: the release or reset action to defer
func (r *DeferredReclaimer) RegisterDeferredAction(fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.buckets[r.currentSlot] = append(r.buckets[r.currentSlot], fn)
	r.mu.Unlock()
}

// OnBeginFrame cycles the given slot: all actions stored in its bucket run
// before any new frame work, then the bucket is cleared and the slot
// becomes current for new registrations.
//
// Parameters:
//   - slot: the frame slot beginning now
func (r *DeferredReclaimer) OnBeginFrame(slot common.FrameSlot) {
	r.mu.Lock()
	pending := r.buckets[slot]
	r.buckets[slot] = nil
	r.currentSlot = slot
	r.mu.Unlock()

	// Dispatch outside the lock so actions may register into other slots.
	for _, fn := range pending {
		fn()
	}
}

// ProcessAllDeferredReleases drains every bucket in registration order.
// Used at shutdown, after all queues have been waited idle.
func (r *DeferredReclaimer) ProcessAllDeferredReleases() {
	r.mu.Lock()
	all := make([][]func(), len(r.buckets))
	copy(all, r.buckets)
	for i := range r.buckets {
		r.buckets[i] = nil
	}
	r.mu.Unlock()

	for _, bucket := range all {
		for _, fn := range bucket {
			fn()
		}
	}
}

// PendingCount returns the number of actions waiting on the given slot.
//
// Parameters:
//   - slot: the frame slot to inspect
//
// Returns:
//   - int: the bucket length
func (r *DeferredReclaimer) PendingCount(slot common.FrameSlot) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(slot) >= len(r.buckets) {
		return 0
	}
	return len(r.buckets[slot])
}
