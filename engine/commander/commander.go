// Package commander orchestrates command recorders: recording-phase scope
// management, deferred-submission batching per queue, and registration of
// post-execution callbacks through the deferred reclaimer.
package commander

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// RecorderScope wraps a recording in progress. Finish closes the recording
// and either submits it immediately or parks the list for the next
// deferred flush; it is safe to defer and call exactly once.
type RecorderScope struct {
	commander *commander
	recorder  graphics.CommandRecorder
	role      graphics.QueueRole
	immediate bool
	finished  bool
}

// Recorder returns the wrapped recorder for command recording.
func (s *RecorderScope) Recorder() graphics.CommandRecorder {
	return s.recorder
}

// Finish closes the recording and finalizes per the scope's submission
// mode. Repeated calls are no-ops.
//
// Returns:
//   - error: an error if closing or immediate submission failed
func (s *RecorderScope) Finish() error {
	if s.finished {
		return nil
	}
	s.finished = true

	list, err := s.recorder.End()
	if err != nil {
		return fmt.Errorf("commander: finalize failed: %w", err)
	}

	if s.immediate {
		return s.commander.submitNow(s.role, []graphics.CommandList{list})
	}

	s.commander.park(s.role, list)
	return nil
}

// Commander coordinates recorder finalization and queue submission for the
// engine. Scopes may be finished on the record thread; the deferred flush
// runs on the frame thread.
type Commander interface {
	// PrepareCommandRecorder begins the recorder and wraps it in a scope
	// whose Finish performs the finalize step. With immediate=true the
	// finalizer submits straight away and registers the list's OnExecuted
	// callback with the reclaimer; with immediate=false it parks the list
	// for the next SubmitDeferredCommandLists.
	//
	// Parameters:
	//   - recorder: the recorder to manage (must not be nil, not recording)
	//   - role: the queue role recorded lists target
	//   - immediate: submission mode
	//
	// Returns:
	//   - *RecorderScope: the managed scope, already recording
	//   - error: an error if the recorder could not begin
	PrepareCommandRecorder(recorder graphics.CommandRecorder, role graphics.QueueRole, immediate bool) (*RecorderScope, error)

	// SubmitDeferredCommandLists atomically swaps the pending lists,
	// groups them by target queue, and issues a single submit per queue.
	// Failures are collected and returned joined after all submits have
	// been attempted, so one queue's failure does not skip another's
	// submission.
	//
	// Returns:
	//   - error: the joined per-queue failures, or nil
	SubmitDeferredCommandLists() error

	// PendingCount returns the number of parked lists awaiting flush.
	PendingCount() int
}

// commander implements Commander.
type commander struct {
	mu        sync.Mutex
	gfx       graphics.Graphics
	reclaimer *graphics.DeferredReclaimer
	pending   []graphics.CommandList
}

// Ensure commander implements Commander.
var _ Commander = (*commander)(nil)

// NewCommander creates a Commander bound to a graphics backend. Panics on
// a nil backend: the engine cannot submit work without one.
//
// Parameters:
//   - gfx: the backend supplying queues and the reclaimer
//
// Returns:
//   - Commander: the newly created commander
func NewCommander(gfx graphics.Graphics) Commander {
	if gfx == nil {
		panic("commander: NewCommander requires a non-nil Graphics")
	}
	return &commander{
		gfx:       gfx,
		reclaimer: gfx.Reclaimer(),
	}
}

func (c *commander) PrepareCommandRecorder(recorder graphics.CommandRecorder, role graphics.QueueRole, immediate bool) (*RecorderScope, error) {
	if recorder == nil {
		return nil, fmt.Errorf("commander: nil recorder")
	}
	if err := recorder.Begin(); err != nil {
		return nil, fmt.Errorf("commander: recorder begin: %w", err)
	}
	return &RecorderScope{
		commander: c,
		recorder:  recorder,
		role:      role,
		immediate: immediate,
	}, nil
}

// park stores a closed list for the next deferred flush.
func (c *commander) park(role graphics.QueueRole, list graphics.CommandList) {
	c.mu.Lock()
	c.pending = append(c.pending, list)
	c.mu.Unlock()
}

// submitNow submits lists to their queue and registers each list's
// OnExecuted callback as a deferred action, so it fires exactly once when
// the current frame slot cycles back after GPU retirement.
func (c *commander) submitNow(role graphics.QueueRole, lists []graphics.CommandList) error {
	queue := c.gfx.Queue(role)
	if _, err := queue.Submit(lists); err != nil {
		return fmt.Errorf("commander: submit to %s queue: %w", role, err)
	}
	for _, list := range lists {
		l := list
		c.reclaimer.RegisterDeferredAction(l.OnExecuted)
	}
	return nil
}

func (c *commander) SubmitDeferredCommandLists() error {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	// Group by queue preserving finalize order within each group.
	groups := make(map[graphics.QueueRole][]graphics.CommandList)
	order := make([]graphics.QueueRole, 0, 3)
	for _, list := range pending {
		role := list.Queue()
		if _, ok := groups[role]; !ok {
			order = append(order, role)
		}
		groups[role] = append(groups[role], list)
	}

	var errs []error
	for _, role := range order {
		if err := c.submitNow(role, groups[role]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *commander) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
