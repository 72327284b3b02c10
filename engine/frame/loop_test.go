package frame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics/headless"
)

// tickUntil pumps the loop until the condition holds or the deadline
// passes.
func tickUntil(t *testing.T, l *Loop, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		l.Tick()
		time.Sleep(time.Millisecond)
	}
}

func TestPostedOpsRunInOrderOnTick(t *testing.T) {
	l := NewLoop()

	var order []int
	l.Post(func() { order = append(order, 1) })
	l.Post(func() { order = append(order, 2) })
	assert.Equal(t, 2, l.PendingOps())

	l.Tick()
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, l.PendingOps())
}

func TestTaskCompletionDeliveredOnFrameThread(t *testing.T) {
	l := NewLoop()

	var reports []Report
	l.StartTask("ok", func(ctx context.Context) error { return nil },
		func(r Report) { reports = append(reports, r) })

	tickUntil(t, l, func() bool { return len(reports) == 1 })
	assert.True(t, reports[0].Success)
	assert.NoError(t, reports[0].Err)
}

func TestTaskFailureReportsBodyError(t *testing.T) {
	l := NewLoop()
	boom := errors.New("boom")

	var reports []Report
	l.StartTask("fail", func(ctx context.Context) error { return boom },
		func(r Report) { reports = append(reports, r) })

	tickUntil(t, l, func() bool { return len(reports) == 1 })
	assert.False(t, reports[0].Success)
	assert.ErrorIs(t, reports[0].Err, boom)
}

func TestStopFiresCancelledExactlyOnce(t *testing.T) {
	l := NewLoop()

	release := make(chan struct{})
	var reports []Report
	task := l.StartTask("blocked", func(ctx context.Context) error {
		<-release
		return nil
	}, func(r Report) { reports = append(reports, r) })

	task.Stop()
	close(release)

	tickUntil(t, l, func() bool { return len(reports) >= 1 })
	// The body finishing after Stop must not re-finalize.
	time.Sleep(10 * time.Millisecond)
	l.Tick()

	require.Len(t, reports, 1)
	assert.False(t, reports[0].Success)
	assert.ErrorIs(t, reports[0].Err, ErrCancelled)
}

func TestStopBeforeBodyStillFiresCompletion(t *testing.T) {
	l := NewLoop()

	var reports []Report
	task := l.StartTask("instant-stop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, func(r Report) { reports = append(reports, r) })
	task.Stop()

	tickUntil(t, l, func() bool { return len(reports) == 1 })
	assert.ErrorIs(t, reports[0].Err, ErrCancelled)
}

func TestFenceAwaitFiresAfterSignal(t *testing.T) {
	l := NewLoop()
	gfx := headless.NewGraphics()
	defer gfx.Shutdown()
	queue := gfx.Queue(graphics.QueueRoleGraphics)

	fired := false
	l.AwaitFence(queue, 1, func() { fired = true })

	l.Tick()
	assert.False(t, fired, "fence not signaled yet")
	assert.Equal(t, 1, l.PendingFences())

	queue.Signal()
	l.Tick()
	assert.True(t, fired)
	assert.Equal(t, 0, l.PendingFences())
}

func TestOffloadResultReturnsToFrameThread(t *testing.T) {
	l := NewLoop(WithWorkers(2))

	var got any
	var gotErr error
	done := false
	l.Offload(
		func() (any, error) { return 42, nil },
		func(result any, err error) { got, gotErr, done = result, err, true },
	)

	tickUntil(t, l, func() bool { return done })
	assert.Equal(t, 42, got)
	assert.NoError(t, gotErr)
}
