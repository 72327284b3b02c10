package headless

import (
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Queue is the headless command queue. Submitted lists execute
// synchronously during Submit, so the fence completes as soon as the call
// returns; Wait never blocks.
type Queue struct {
	mu        sync.Mutex
	role      graphics.QueueRole
	signaled  uint64
	completed uint64

	// injected failure for the next Submit, consumed on use.
	failNext error

	submitCount int
}

// Ensure Queue implements graphics.CommandQueue.
var _ graphics.CommandQueue = (*Queue)(nil)

func newQueue(role graphics.QueueRole) *Queue {
	return &Queue{role: role}
}

// Role returns the queue's role.
func (q *Queue) Role() graphics.QueueRole {
	return q.role
}

// Submit executes the given lists in order and signals the queue fence.
//
// Parameters:
//   - lists: the command lists to execute
//
// Returns:
//   - uint64: the fence value signaled after this batch
//   - error: an injected failure, or an execution error from a recorded command
func (q *Queue) Submit(lists []graphics.CommandList) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.submitCount++

	if err := q.failNext; err != nil {
		q.failNext = nil
		return q.completed, err
	}

	for _, l := range lists {
		cl, ok := l.(*CommandList)
		if !ok {
			continue
		}
		if err := cl.execute(); err != nil {
			return q.completed, err
		}
	}

	q.signaled++
	q.completed = q.signaled
	return q.signaled, nil
}

// Signal advances and signals the fence without submitting work.
func (q *Queue) Signal() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.signaled++
	q.completed = q.signaled
	return q.signaled
}

// GetCompletedValue returns the highest completed fence value.
func (q *Queue) GetCompletedValue() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completed
}

// Wait returns immediately; headless work completes at submit time.
func (q *Queue) Wait(value uint64) {}

// FailNextSubmit injects an error returned by the next Submit call. Used
// by tests exercising per-queue failure isolation.
//
// Parameters:
//   - err: the error the next Submit returns
func (q *Queue) FailNextSubmit(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failNext = err
}

// SubmitCount returns the number of Submit calls the queue has seen,
// including failed ones. Used by batching tests.
func (q *Queue) SubmitCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submitCount
}
