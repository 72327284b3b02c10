// Package upload implements the engine's upload coordinator: synchronous
// request acceptance, staging-ring allocation, batched copy recording with
// explicit state barriers, and fence-based completion tracking. A
// TransientStructuredBuffer specialization provides per-frame structured
// data with shader-visible SRVs on top of the same staging memory.
package upload

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Coordinator accepts upload requests, allocates staging, records the
// necessary copy commands, and signals completion through tickets.
// Acceptance and Flush run on the frame thread; completion queries are
// safe from observers.
type Coordinator interface {
	// Submit accepts a request synchronously. Validation failures and
	// producer failures return an immediately completed failed ticket with
	// no staging consumed; a failed request's allocation is rolled back
	// before the ticket is issued.
	//
	// Parameters:
	//   - request: the upload description
	//
	// Returns:
	//   - Ticket: the handle to poll for completion
	Submit(request Request) Ticket

	// Flush requests submission of any batched requests. The coordinator
	// records one transfer command list for the batch and submits it; it
	// does not block on the GPU.
	Flush()

	// IsComplete reports whether the upload behind the ticket has
	// finished, successfully or not.
	//
	// Parameters:
	//   - ticket: the ticket to test
	//
	// Returns:
	//   - bool: true when the queue fence has passed the ticket's value
	IsComplete(ticket Ticket) bool

	// TryGetResult returns the result of a completed ticket. The ticket is
	// consumed on first success; asking again returns ok=false.
	//
	// Parameters:
	//   - ticket: the ticket to resolve
	//
	// Returns:
	//   - Result: the completion report
	//   - bool: false when the ticket is unknown or not yet complete
	TryGetResult(ticket Ticket) (Result, bool)

	// WaitUntilComplete blocks until the ticket completes. Only intended
	// for tooling and tests; frame code polls IsComplete instead.
	//
	// Parameters:
	//   - ticket: the ticket to wait for
	WaitUntilComplete(ticket Ticket)

	// FenceValue returns the transfer queue fence value the ticket
	// completes on. Fences are assigned at flush; 0 means the ticket has
	// not been flushed yet, was sealed at acceptance, or is unknown.
	//
	// Parameters:
	//   - ticket: the ticket to resolve
	//
	// Returns:
	//   - uint64: the assigned fence value, or 0
	FenceValue(ticket Ticket) uint64

	// OnFrameStart resets the staging bank of the slot that is beginning.
	// Must be called after the reclaimer has cycled the slot, so no
	// in-flight GPU work references the bank.
	//
	// Parameters:
	//   - slot: the frame slot beginning now
	OnFrameStart(slot common.FrameSlot)

	// NotifyDeviceLost drains all tickets with ErrorDeviceLost and refuses
	// further work until re-initialization.
	NotifyDeviceLost()

	// StagingInUse returns the bytes currently allocated from the given
	// slot's staging bank.
	//
	// Parameters:
	//   - slot: the frame slot to inspect
	StagingInUse(slot common.FrameSlot) common.SizeBytes

	// Shutdown releases the staging ring. Outstanding tickets seal with
	// ErrorCancelled.
	Shutdown()
}

// pendingItem is one accepted request awaiting flush.
type pendingItem struct {
	ticketID uint64
	regions  []bufferRegion
	texture  []textureRegion
	restore  stateRestore
}

// coordinator implements Coordinator.
type coordinator struct {
	mu sync.Mutex

	gfx     graphics.Graphics
	queue   graphics.CommandQueue
	staging *stagingRing
	tickets *ticketTable

	activeSlot common.FrameSlot
	pending    []pendingItem

	bankSize       common.SizeBytes
	framesInFlight uint32

	lost     bool
	shutdown bool
}

// Ensure coordinator implements Coordinator.
var _ Coordinator = (*coordinator)(nil)

// NewCoordinator creates an upload coordinator with the provided options.
// Panics if the backend is nil or the staging ring cannot be created, as
// the engine cannot run without an upload path.
//
// Parameters:
//   - gfx: the graphics backend supplying the transfer queue and staging memory
//   - options: functional options for coordinator configuration
//
// Returns:
//   - Coordinator: the newly created coordinator
func NewCoordinator(gfx graphics.Graphics, options ...CoordinatorBuilderOption) Coordinator {
	if gfx == nil {
		panic("upload: NewCoordinator requires a non-nil Graphics")
	}

	c := &coordinator{
		gfx:            gfx,
		queue:          gfx.Queue(graphics.QueueRoleTransfer),
		tickets:        newTicketTable(),
		bankSize:       DefaultStagingBankSize,
		framesInFlight: gfx.Reclaimer().FramesInFlight(),
	}

	for _, opt := range options {
		opt(c)
	}

	ring, err := newStagingRing(gfx, c.bankSize, c.framesInFlight)
	if err != nil {
		panic("upload: " + err.Error())
	}
	c.staging = ring

	return c
}

func (c *coordinator) Submit(request Request) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lost {
		return c.tickets.issueFailed(newError(ErrorDeviceLost, "%s: device lost", request.DebugName))
	}
	if c.shutdown {
		return c.tickets.issueFailed(newError(ErrorCancelled, "%s: coordinator shut down", request.DebugName))
	}

	if err := request.validate(); err != nil {
		return c.tickets.issueFailed(err)
	}

	var ticket Ticket
	switch request.Kind {
	case KindBuffer:
		ticket = c.acceptBuffer(&request)
	default:
		ticket = c.acceptTexture(&request)
	}

	if request.Batch == BatchPolicyImmediate {
		c.flushLocked()
	}
	return ticket
}

// acceptBuffer stages a buffer request and queues its copy region.
func (c *coordinator) acceptBuffer(request *Request) Ticket {
	mark := c.staging.mark(c.activeSlot)
	alloc, allocErr := c.staging.allocate(c.activeSlot, request.Size, BufferCopyAlignment)
	if allocErr != nil {
		return c.tickets.issueFailed(allocErr)
	}

	span := c.staging.span(alloc)
	switch {
	case request.Data.Bytes != nil:
		copy(span, request.Data.Bytes)
	case request.Data.Borrowed != nil:
		copy(span, request.Data.Borrowed)
	case request.Data.Produce != nil:
		if !request.Data.Produce(span) {
			// The failed allocation is the bank's newest; hand it back so
			// repeated producer failures cannot exhaust the bank.
			c.staging.rollback(c.activeSlot, mark)
			return c.tickets.issueFailed(newError(ErrorProducerFailed, "%s: producer returned false", request.DebugName))
		}
	}

	ticket := c.tickets.issuePending(request.Size)
	c.pending = append(c.pending, pendingItem{
		ticketID: ticket.id,
		regions: []bufferRegion{{
			dst:       request.DstBuffer,
			dstOffset: request.DstOffset,
			srcOffset: alloc.offset,
			size:      request.Size,
		}},
		restore: stateRestore{
			resource: request.DstBuffer.NativeResource(),
			state:    common.Coalesce(request.DstState, graphics.ResourceStateCommon),
		},
	})
	return ticket
}

// acceptTexture stages a texture request: computes subresource placements,
// fills strided staging memory, and queues one copy region per
// subresource.
func (c *coordinator) acceptTexture(request *Request) Ticket {
	desc := request.DstTexture.Descriptor()
	layouts, total := computeTextureLayout(desc, request.Subresources)

	mark := c.staging.mark(c.activeSlot)
	alloc, allocErr := c.staging.allocate(c.activeSlot, total, TexturePlacementAlignment)
	if allocErr != nil {
		return c.tickets.issueFailed(allocErr)
	}
	span := c.staging.span(alloc)

	var payload common.SizeBytes
	for _, l := range layouts {
		payload += l.payloadBytes
	}

	switch {
	case request.Data.Produce != nil:
		if !request.Data.Produce(span) {
			c.staging.rollback(c.activeSlot, mark)
			return c.tickets.issueFailed(newError(ErrorProducerFailed, "%s: producer returned false", request.DebugName))
		}
	default:
		src := request.Data.Bytes
		if src == nil {
			src = request.Data.Borrowed
		}
		if !spreadRows(span, src, layouts) {
			c.staging.rollback(c.activeSlot, mark)
			return c.tickets.issueFailed(newError(ErrorInvalidRequest,
				"%s: payload %d bytes, need %s", request.DebugName, len(src), payload))
		}
	}

	ticket := c.tickets.issuePending(payload)
	item := pendingItem{
		ticketID: ticket.id,
		restore: stateRestore{
			resource: request.DstTexture.NativeResource(),
			state:    common.Coalesce(request.DstState, graphics.ResourceStateCommon),
		},
	}
	for _, l := range layouts {
		item.texture = append(item.texture, textureRegion{
			dst:          request.DstTexture,
			slice:        l.slice,
			bufferOffset: alloc.offset + l.relOffset,
			rowPitch:     l.rowPitch,
			slicePitch:   l.slicePitch,
		})
	}
	c.pending = append(c.pending, item)
	return ticket
}

// spreadRows copies tightly packed source rows into the strided staging
// span. Returns false when the source is shorter than the layouts require.
func spreadRows(span, src []byte, layouts []subresourceLayout) bool {
	srcOff := uint64(0)
	for _, l := range layouts {
		rows := uint64(l.rowCount) * uint64(l.depth)
		for row := uint64(0); row < rows; row++ {
			if srcOff+uint64(l.rowBytes) > uint64(len(src)) {
				return false
			}
			dstOff := uint64(l.relOffset) + row*uint64(l.rowPitch)
			copy(span[dstOff:dstOff+uint64(l.rowBytes)], src[srcOff:srcOff+uint64(l.rowBytes)])
			srcOff += uint64(l.rowBytes)
		}
	}
	return true
}

func (c *coordinator) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
}

// flushLocked builds the plan for all pending items, records one transfer
// command list, and submits it. Callers hold c.mu.
func (c *coordinator) flushLocked() {
	if len(c.pending) == 0 || c.lost || c.shutdown {
		return
	}

	batch := c.pending
	c.pending = nil

	ids := make([]uint64, len(batch))
	var pl plan
	for i, item := range batch {
		ids[i] = item.ticketID
		pl.bufferRegions = append(pl.bufferRegions, item.regions...)
		pl.textureRegions = append(pl.textureRegions, item.texture...)
		pl.addRestore(item.restore.resource, item.restore.state)
	}
	pl.finalize()
	if pl.isEmpty() {
		c.tickets.seal(ids, newError(ErrorInvalidRequest, "empty batch"))
		return
	}

	recorder, err := c.gfx.AcquireCommandRecorder(graphics.QueueRoleTransfer)
	if err != nil {
		c.tickets.seal(ids, newError(ErrorResourceAllocFailed, "recorder: %v", err))
		return
	}
	if err := recorder.Begin(); err != nil {
		c.tickets.seal(ids, newError(ErrorResourceAllocFailed, "recorder begin: %v", err))
		return
	}

	pl.record(recorder, c.staging.buffer)

	list, err := recorder.End()
	if err != nil {
		c.tickets.seal(ids, newError(ErrorResourceAllocFailed, "recorder end: %v", err))
		return
	}

	fence, err := c.queue.Submit([]graphics.CommandList{list})
	if err != nil {
		// One summary at error severity; per-ticket detail travels on the
		// ticket itself.
		log.Printf("upload: transfer submit failed for %d request(s): %v", len(ids), err)
		c.tickets.seal(ids, newError(ErrorExecutionFailed, "submit: %v", err))
		return
	}

	c.tickets.assignFence(ids, fence)
}

func (c *coordinator) IsComplete(ticket Ticket) bool {
	state, ok := c.tickets.lookup(ticket.id)
	if !ok {
		return true
	}
	if state.sealed {
		return true
	}
	if state.fence == 0 {
		// Accepted but not yet flushed.
		return false
	}
	return c.queue.GetCompletedValue() >= state.fence
}

func (c *coordinator) TryGetResult(ticket Ticket) (Result, bool) {
	state, ok := c.tickets.lookup(ticket.id)
	if !ok {
		return Result{}, false
	}

	if state.sealed {
		c.tickets.drop(ticket.id)
		return Result{Success: false, Error: state.err}, true
	}

	if state.fence == 0 || c.queue.GetCompletedValue() < state.fence {
		return Result{}, false
	}

	c.tickets.drop(ticket.id)
	return Result{Success: true, BytesUploaded: state.bytes}, true
}

func (c *coordinator) WaitUntilComplete(ticket Ticket) {
	state, ok := c.tickets.lookup(ticket.id)
	if !ok || state.sealed {
		return
	}
	if state.fence != 0 {
		c.queue.Wait(state.fence)
	}
}

func (c *coordinator) FenceValue(ticket Ticket) uint64 {
	state, ok := c.tickets.lookup(ticket.id)
	if !ok {
		return 0
	}
	return state.fence
}

func (c *coordinator) OnFrameStart(slot common.FrameSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeSlot = slot
	c.staging.reset(slot)
}

func (c *coordinator) NotifyDeviceLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lost {
		return
	}
	c.lost = true
	c.pending = nil
	c.tickets.sealAll(newError(ErrorDeviceLost, "device lost"))
}

func (c *coordinator) StagingInUse(slot common.FrameSlot) common.SizeBytes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staging.bytesInUse(slot)
}

func (c *coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return
	}
	c.shutdown = true
	c.pending = nil
	c.tickets.sealAll(newError(ErrorCancelled, "coordinator shut down"))
	c.staging.release()
}
