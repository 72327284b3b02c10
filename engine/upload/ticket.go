package upload

import (
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

// Ticket is the opaque handle of an in-flight upload, a monotonic id into
// the coordinator's ticket table. Fence values live in the table because
// they are assigned at flush, after the ticket has been handed out; resolve
// them through Coordinator.FenceValue.
type Ticket struct {
	id uint64
}

// ID returns the ticket's monotonic id.
func (t Ticket) ID() uint64 {
	return t.id
}

// Result is the completion report of one upload.
type Result struct {
	// Success is true when the copy executed and the fence passed.
	Success bool

	// BytesUploaded is the tight payload byte count delivered to the
	// destination; 0 on failure.
	BytesUploaded common.SizeBytes

	// Error carries the failure kind; nil on success.
	Error *Error
}

// ticketState is the coordinator's per-ticket record.
type ticketState struct {
	fence  uint64
	bytes  common.SizeBytes
	err    *Error
	sealed bool // result final; fence checks no longer apply
}

// ticketTable tracks every outstanding ticket. Guarded: acceptance happens
// on the frame thread but completion queries may come from observers.
type ticketTable struct {
	mu     sync.Mutex
	nextID uint64
	states map[uint64]*ticketState
}

func newTicketTable() *ticketTable {
	return &ticketTable{states: make(map[uint64]*ticketState)}
}

// issueFailed creates an immediately completed failed ticket.
func (t *ticketTable) issueFailed(err *Error) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.states[t.nextID] = &ticketState{err: err, sealed: true}
	return Ticket{id: t.nextID}
}

// issuePending creates a ticket awaiting a fence assignment at flush.
func (t *ticketTable) issuePending(bytes common.SizeBytes) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.states[t.nextID] = &ticketState{bytes: bytes}
	return Ticket{id: t.nextID}
}

// assignFence associates a queue fence value with a batch of tickets.
func (t *ticketTable) assignFence(ids []uint64, fence uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		if s, ok := t.states[id]; ok && !s.sealed {
			s.fence = fence
		}
	}
}

// seal finalizes a batch of tickets with a failure.
func (t *ticketTable) seal(ids []uint64, err *Error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		if s, ok := t.states[id]; ok && !s.sealed {
			s.err = err
			s.bytes = 0
			s.sealed = true
		}
	}
}

// lookup returns a copy of a ticket's state.
func (t *ticketTable) lookup(id uint64) (ticketState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[id]
	if !ok {
		return ticketState{}, false
	}
	return *s, true
}

// drop removes a ticket once its result has been consumed.
func (t *ticketTable) drop(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, id)
}

// sealAll finalizes every outstanding ticket, used on device loss.
func (t *ticketTable) sealAll(err *Error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.states {
		if !s.sealed {
			s.err = err
			s.bytes = 0
			s.sealed = true
		}
	}
}
