// Package frame hosts the frame-thread scheduler: a tick-driven op
// queue, cancellable tasks, fence awaitables polled per tick, and a
// bounded worker pool for CPU offload whose results return to the frame
// thread.
package frame

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// fenceAwait is one registered fence wait, tested on each tick.
type fenceAwait struct {
	queue graphics.CommandQueue
	value uint64
	ready func()
}

// notification carries an offload result back to the frame thread.
type notification struct {
	result   any
	err      error
	complete func(any, error)
}

// Loop is the frame-thread scheduler. All callbacks it delivers run
// inside Tick, which the engine calls once per frame from the frame
// goroutine; the posting side is safe from any goroutine.
type Loop struct {
	mu     sync.Mutex
	posted []func()
	fences []fenceAwait

	notifications chan notification

	pool       worker.DynamicWorkerPool
	nextTaskID int
}

// NewLoop creates a frame loop with its offload worker pool.
//
// Parameters:
//   - options: functional options for loop configuration
//
// Returns:
//   - *Loop: the newly created loop
func NewLoop(options ...LoopBuilderOption) *Loop {
	cfg := loopConfig{
		workers:           4,
		notificationDepth: 256,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	return &Loop{
		notifications: make(chan notification, cfg.notificationDepth),
		pool:          worker.NewDynamicWorkerPool(cfg.workers, 256, 1*time.Second),
	}
}

// Post queues fn to run on the next Tick. Safe from any goroutine.
//
// Parameters:
//   - fn: the op to run on the frame thread
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// StartTask launches a cancellable task. The body runs on its own
// goroutine; the completion callback is delivered on the frame thread
// exactly once.
//
// Parameters:
//   - name: the task identifier
//   - body: the work, observing ctx for cancellation
//   - onComplete: the completion callback (may be nil)
//
// Returns:
//   - *Task: the running task
func (l *Loop) StartTask(name string, body func(ctx context.Context) error, onComplete func(Report)) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		name:       name,
		body:       body,
		ctx:        ctx,
		cancel:     cancel,
		onComplete: onComplete,
		loop:       l,
	}
	go t.run()
	return t
}

// AwaitFence registers ready to run on the frame thread once the
// queue's completed value reaches value. Tested on each Tick; no
// polling happens between ticks.
//
// Parameters:
//   - queue: the queue whose fence is awaited
//   - value: the fence value to reach
//   - ready: the callback run once the fence completes
func (l *Loop) AwaitFence(queue graphics.CommandQueue, value uint64, ready func()) {
	l.mu.Lock()
	l.fences = append(l.fences, fenceAwait{queue: queue, value: value, ready: ready})
	l.mu.Unlock()
}

// Offload runs do on the worker pool and delivers its result to
// complete on the frame thread during a later Tick.
//
// Parameters:
//   - do: the CPU-bound work
//   - complete: the frame-thread completion callback (may be nil)
func (l *Loop) Offload(do func() (any, error), complete func(any, error)) {
	l.mu.Lock()
	id := l.nextTaskID
	l.nextTaskID++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			result, err := do()
			l.notifications <- notification{result: result, err: err, complete: complete}
			return result, err
		},
	})
}

// Tick runs one scheduler turn on the frame thread: posted ops in
// order, completed fence waits, and any queued offload notifications.
func (l *Loop) Tick() {
	l.mu.Lock()
	ops := l.posted
	l.posted = nil

	var ready []func()
	remaining := l.fences[:0]
	for _, f := range l.fences {
		if f.queue.GetCompletedValue() >= f.value {
			ready = append(ready, f.ready)
		} else {
			remaining = append(remaining, f)
		}
	}
	l.fences = remaining
	l.mu.Unlock()

	for _, op := range ops {
		op()
	}
	for _, fn := range ready {
		fn()
	}

	for {
		select {
		case n := <-l.notifications:
			if n.complete != nil {
				n.complete(n.result, n.err)
			}
		default:
			return
		}
	}
}

// PendingOps returns the number of ops queued for the next Tick.
func (l *Loop) PendingOps() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted)
}

// PendingFences returns the number of unsatisfied fence waits.
func (l *Loop) PendingFences() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fences)
}
