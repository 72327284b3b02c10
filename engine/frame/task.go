package frame

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled reports that a task was stopped before completion.
var ErrCancelled = errors.New("frame: task cancelled")

// Report is the completion outcome delivered to a task's callback.
type Report struct {
	// Success is true when the task body returned without error.
	Success bool

	// Err is the body's error, or ErrCancelled for stopped tasks.
	Err error
}

// Task is one unit of frame-thread work with a stop token. The
// completion callback fires exactly once, on the frame thread, whether
// the body finished, failed, or was cancelled before ever starting.
type Task struct {
	name string
	body func(ctx context.Context) error

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	finalized  bool
	onComplete func(Report)

	loop *Loop
}

// Name returns the task identifier.
func (t *Task) Name() string {
	return t.name
}

// Stop requests cancellation. The completion callback fires with a
// Cancelled diagnostic if the body has not already finalized the task.
func (t *Task) Stop() {
	t.cancel()
	t.finalize(Report{Success: false, Err: ErrCancelled})
}

// Done returns a channel closed once the task is cancelled or finalized.
func (t *Task) Done() <-chan struct{} {
	return t.ctx.Done()
}

// finalize delivers the completion report exactly once, posting the
// callback to the frame thread.
func (t *Task) finalize(report Report) {
	t.mu.Lock()
	if t.finalized {
		t.mu.Unlock()
		return
	}
	t.finalized = true
	callback := t.onComplete
	t.mu.Unlock()

	t.cancel()
	if callback != nil {
		t.loop.Post(func() { callback(report) })
	}
}

// run executes the body unless the stop token already fired.
func (t *Task) run() {
	if err := t.ctx.Err(); err != nil {
		t.finalize(Report{Success: false, Err: ErrCancelled})
		return
	}
	err := t.body(t.ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			err = ErrCancelled
		}
		t.finalize(Report{Success: false, Err: err})
		return
	}
	t.finalize(Report{Success: true})
}
