package upload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransient(t *testing.T, options ...CoordinatorBuilderOption) (Coordinator, TransientStructuredBuffer) {
	t.Helper()
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx, options...)
	t.Cleanup(coord.Shutdown)

	buf, err := NewTransientStructuredBuffer(coord, 16, "test-transient")
	require.NoError(t, err)
	t.Cleanup(buf.Release)
	return coord, buf
}

func TestTransientAllocateExposesSpanAndDescriptor(t *testing.T) {
	_, buf := newTestTransient(t)

	assert.Nil(t, buf.Span())
	assert.False(t, buf.DescriptorIndex().IsValid())
	assert.Equal(t, uint32(0), buf.ElementCount())

	require.NoError(t, buf.Allocate(4))

	span := buf.Span()
	require.Len(t, span, 64)
	assert.True(t, buf.DescriptorIndex().IsValid())
	assert.Equal(t, uint32(4), buf.ElementCount())

	// The span is writable staging memory; fills must stick.
	for i := range span {
		span[i] = byte(i)
	}
	assert.Equal(t, byte(63), buf.Span()[63])
}

func TestTransientSameSlotReallocation(t *testing.T) {
	_, buf := newTestTransient(t)

	require.NoError(t, buf.Allocate(4))
	first := buf.Span()
	require.NoError(t, buf.Allocate(8))

	span := buf.Span()
	assert.Len(t, span, 128)
	assert.Equal(t, uint32(8), buf.ElementCount())
	assert.True(t, buf.DescriptorIndex().IsValid())
	assert.NotSame(t, &first[0], &span[0], "reallocation must claim a fresh staging range")
}

func TestTransientFrameCycleResetsSlot(t *testing.T) {
	coord, buf := newTestTransient(t, WithFramesInFlight(2))

	require.NoError(t, buf.Allocate(4))
	require.NotNil(t, buf.Span())

	coord.OnFrameStart(1)
	buf.OnFrameStart(1)
	assert.Nil(t, buf.Span(), "the new slot starts empty")
	assert.Equal(t, uint32(0), buf.ElementCount())
	assert.False(t, buf.DescriptorIndex().IsValid())

	require.NoError(t, buf.Allocate(2))
	assert.Len(t, buf.Span(), 32)

	// Returning to slot 0 recycles its allocation with the bank.
	coord.OnFrameStart(0)
	buf.OnFrameStart(0)
	assert.Nil(t, buf.Span())
}

func TestTransientZeroStrideRejected(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	t.Cleanup(coord.Shutdown)

	_, err := NewTransientStructuredBuffer(coord, 0, "zero-stride")
	assert.Error(t, err)
}

func TestTransientZeroElementAllocationFails(t *testing.T) {
	_, buf := newTestTransient(t)

	err := buf.Allocate(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &Error{Kind: ErrorInvalidRequest}))
}

func TestTransientStagingExhaustion(t *testing.T) {
	_, buf := newTestTransient(t, WithStagingBankSize(64))

	err := buf.Allocate(16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &Error{Kind: ErrorStagingAllocFailed}))
	assert.Nil(t, buf.Span())
}

func TestTransientReleaseClearsAllSlots(t *testing.T) {
	_, buf := newTestTransient(t)

	require.NoError(t, buf.Allocate(4))
	buf.Release()

	assert.Nil(t, buf.Span())
	assert.False(t, buf.DescriptorIndex().IsValid())
	assert.Equal(t, uint32(0), buf.ElementCount())
}
