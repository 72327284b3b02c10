package commander

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics/headless"
)

func newTestGraphics(t *testing.T) graphics.Graphics {
	t.Helper()
	gfx := headless.NewGraphics()
	t.Cleanup(gfx.Shutdown)
	return gfx
}

func TestImmediateScopeSubmitsOnFinish(t *testing.T) {
	gfx := newTestGraphics(t)
	cmd := NewCommander(gfx)

	rec, err := gfx.AcquireCommandRecorder(graphics.QueueRoleGraphics)
	require.NoError(t, err)

	scope, err := cmd.PrepareCommandRecorder(rec, graphics.QueueRoleGraphics, true)
	require.NoError(t, err)
	scope.Recorder().Draw(3, 1, 0, 0)

	queue := gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue)
	assert.Equal(t, 0, queue.SubmitCount())

	require.NoError(t, scope.Finish())
	assert.Equal(t, 1, queue.SubmitCount())
	assert.Equal(t, 0, cmd.PendingCount())
}

func TestFinishIsIdempotent(t *testing.T) {
	gfx := newTestGraphics(t)
	cmd := NewCommander(gfx)

	rec, err := gfx.AcquireCommandRecorder(graphics.QueueRoleGraphics)
	require.NoError(t, err)
	scope, err := cmd.PrepareCommandRecorder(rec, graphics.QueueRoleGraphics, true)
	require.NoError(t, err)

	require.NoError(t, scope.Finish())
	require.NoError(t, scope.Finish())

	queue := gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue)
	assert.Equal(t, 1, queue.SubmitCount())
}

func TestDeferredListsGroupedPerQueue(t *testing.T) {
	gfx := newTestGraphics(t)
	cmd := NewCommander(gfx)

	record := func(role graphics.QueueRole) {
		rec, err := gfx.AcquireCommandRecorder(role)
		require.NoError(t, err)
		scope, err := cmd.PrepareCommandRecorder(rec, role, false)
		require.NoError(t, err)
		require.NoError(t, scope.Finish())
	}

	record(graphics.QueueRoleGraphics)
	record(graphics.QueueRoleGraphics)
	record(graphics.QueueRoleCompute)
	assert.Equal(t, 3, cmd.PendingCount())

	require.NoError(t, cmd.SubmitDeferredCommandLists())
	assert.Equal(t, 0, cmd.PendingCount())

	gq := gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue)
	cq := gfx.Queue(graphics.QueueRoleCompute).(*headless.Queue)
	assert.Equal(t, 1, gq.SubmitCount(), "two graphics lists should share one submit")
	assert.Equal(t, 1, cq.SubmitCount())
}

func TestDeferredFlushIsolatesQueueFailures(t *testing.T) {
	gfx := newTestGraphics(t)
	cmd := NewCommander(gfx)

	record := func(role graphics.QueueRole) {
		rec, err := gfx.AcquireCommandRecorder(role)
		require.NoError(t, err)
		scope, err := cmd.PrepareCommandRecorder(rec, role, false)
		require.NoError(t, err)
		require.NoError(t, scope.Finish())
	}

	record(graphics.QueueRoleGraphics)
	record(graphics.QueueRoleCompute)

	injected := errors.New("boom")
	gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue).FailNextSubmit(injected)

	err := cmd.SubmitDeferredCommandLists()
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)

	// The compute queue was still flushed despite the graphics failure.
	cq := gfx.Queue(graphics.QueueRoleCompute).(*headless.Queue)
	assert.Equal(t, 1, cq.SubmitCount())
}

func TestOnExecutedRunsAfterFrameCycle(t *testing.T) {
	gfx := newTestGraphics(t)
	cmd := NewCommander(gfx)

	rec, err := gfx.AcquireCommandRecorder(graphics.QueueRoleGraphics)
	require.NoError(t, err)
	scope, err := cmd.PrepareCommandRecorder(rec, graphics.QueueRoleGraphics, true)
	require.NoError(t, err)

	fired := 0
	scope.Recorder().(*headless.Recorder).List().SetOnExecuted(func() { fired++ })
	require.NoError(t, scope.Finish())
	assert.Equal(t, 0, fired, "callback is deferred, not synchronous")

	reclaimer := gfx.Reclaimer()
	for slot := uint32(1); slot <= reclaimer.FramesInFlight(); slot++ {
		reclaimer.OnBeginFrame(common.FrameSlot(slot % reclaimer.FramesInFlight()))
	}
	assert.Equal(t, 1, fired)
}

func TestEmptyDeferredFlushIsNoop(t *testing.T) {
	gfx := newTestGraphics(t)
	cmd := NewCommander(gfx)
	require.NoError(t, cmd.SubmitDeferredCommandLists())
	gq := gfx.Queue(graphics.QueueRoleGraphics).(*headless.Queue)
	assert.Equal(t, 0, gq.SubmitCount())
}
