package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

func TestActionsRunWhenSlotCycles(t *testing.T) {
	r := NewDeferredReclaimer(2)

	ran := 0
	r.RegisterDeferredAction(func() { ran++ })
	assert.Equal(t, 1, r.PendingCount(0))

	// Cycling the other slot must not trigger slot 0's bucket.
	r.OnBeginFrame(1)
	assert.Equal(t, 0, ran)

	r.OnBeginFrame(0)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 0, r.PendingCount(0))
}

func TestActionsRunInRegistrationOrder(t *testing.T) {
	r := NewDeferredReclaimer(2)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		r.RegisterDeferredAction(func() { order = append(order, i) })
	}

	r.OnBeginFrame(1)
	r.OnBeginFrame(0)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRegistrationFollowsCurrentSlot(t *testing.T) {
	r := NewDeferredReclaimer(3)
	assert.Equal(t, common.FrameSlot(0), r.CurrentSlot())

	r.OnBeginFrame(2)
	assert.Equal(t, common.FrameSlot(2), r.CurrentSlot())

	r.RegisterDeferredAction(func() {})
	assert.Equal(t, 0, r.PendingCount(0))
	assert.Equal(t, 1, r.PendingCount(2))
}

func TestActionsRunExactlyOnce(t *testing.T) {
	r := NewDeferredReclaimer(2)

	ran := 0
	r.RegisterDeferredAction(func() { ran++ })

	r.OnBeginFrame(1)
	r.OnBeginFrame(0)
	r.OnBeginFrame(1)
	r.OnBeginFrame(0)
	assert.Equal(t, 1, ran)
}

func TestProcessAllDrainsEveryBucket(t *testing.T) {
	r := NewDeferredReclaimer(3)

	ran := 0
	r.RegisterDeferredAction(func() { ran++ })
	r.OnBeginFrame(1)
	r.RegisterDeferredAction(func() { ran++ })
	r.OnBeginFrame(2)
	r.RegisterDeferredAction(func() { ran++ })

	r.ProcessAllDeferredReleases()
	assert.Equal(t, 3, ran)
	for slot := common.FrameSlot(0); slot < 3; slot++ {
		assert.Equal(t, 0, r.PendingCount(slot))
	}
}

func TestActionMayRegisterIntoAnotherSlot(t *testing.T) {
	r := NewDeferredReclaimer(2)

	second := false
	r.RegisterDeferredAction(func() {
		// Runs while slot 0 dispatches; the nested action lands in the
		// now-current slot 0 bucket and fires on its next cycle.
		r.RegisterDeferredAction(func() { second = true })
	})

	r.OnBeginFrame(1)
	r.OnBeginFrame(0)
	assert.False(t, second)
	assert.Equal(t, 1, r.PendingCount(0))

	r.OnBeginFrame(1)
	r.OnBeginFrame(0)
	assert.True(t, second)
}

func TestNilActionIgnored(t *testing.T) {
	r := NewDeferredReclaimer(2)
	r.RegisterDeferredAction(nil)
	assert.Equal(t, 0, r.PendingCount(0))
}

func TestZeroFramesInFlightUsesDefault(t *testing.T) {
	r := NewDeferredReclaimer(0)
	assert.Equal(t, uint32(common.DefaultFramesInFlight), r.FramesInFlight())
}
