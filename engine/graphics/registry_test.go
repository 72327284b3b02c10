package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndResolve(t *testing.T) {
	r := NewResourceRegistry()

	obj := &struct{ name string }{name: "mesh"}
	handle, err := r.Register(ResourceTypeBuffer, obj)
	require.NoError(t, err)
	assert.True(t, handle.IsValid())
	assert.Equal(t, ResourceTypeBuffer, handle.Type())

	assert.Same(t, obj, r.Resolve(handle))
	assert.Equal(t, 1, r.LiveCount())
}

func TestNilRegistrationRejected(t *testing.T) {
	r := NewResourceRegistry()
	_, err := r.Register(ResourceTypeBuffer, nil)
	assert.Error(t, err)
}

func TestUnregisterInvalidatesHandle(t *testing.T) {
	r := NewResourceRegistry()

	handle, err := r.Register(ResourceTypeTexture, "texture")
	require.NoError(t, err)

	assert.True(t, r.Unregister(handle))
	assert.Nil(t, r.Resolve(handle))
	assert.False(t, r.Unregister(handle), "second unregister must report no live object")
	assert.Equal(t, 0, r.LiveCount())
}

func TestRecycledSlotRejectsStaleHandle(t *testing.T) {
	r := NewResourceRegistry()

	old, err := r.Register(ResourceTypePipeline, "old")
	require.NoError(t, err)
	require.True(t, r.Unregister(old))

	fresh, err := r.Register(ResourceTypePipeline, "fresh")
	require.NoError(t, err)

	// Same slot, new generation.
	assert.Equal(t, old.Index(), fresh.Index())
	assert.NotEqual(t, old.Generation(), fresh.Generation())
	assert.Nil(t, r.Resolve(old))
	assert.Equal(t, "fresh", r.Resolve(fresh))
}

func TestResolveUnknownHandle(t *testing.T) {
	r := NewResourceRegistry()
	assert.Nil(t, r.Resolve(InvalidHandle))
	assert.Nil(t, r.Resolve(NewHandle(42, 1, ResourceTypeBuffer, 0)))
}

func TestHandleBitPacking(t *testing.T) {
	h := NewHandle(0xDEADBEEF, 0x7F, ResourceTypeTexture, 0xABCD)
	assert.Equal(t, uint32(0xDEADBEEF), h.Index())
	assert.Equal(t, uint8(0x7F), h.Generation())
	assert.Equal(t, ResourceTypeTexture, h.Type())
	assert.Equal(t, uint16(0xABCD), h.Custom())
	assert.True(t, h.IsValid())
}

func TestZeroHandleIsInvalid(t *testing.T) {
	assert.False(t, InvalidHandle.IsValid())
	assert.False(t, NewHandle(3, 0, ResourceTypeBuffer, 0).IsValid(), "zero generation never validates")
	assert.False(t, NewHandle(3, 1, ResourceTypeUnknown, 0).IsValid(), "untyped handles never validate")
}

func TestNodeHandleCarriesSceneID(t *testing.T) {
	h := NewNodeHandle(7, 2, 12)
	assert.Equal(t, ResourceTypeNode, h.Type())
	assert.Equal(t, uint32(7), h.Index())
	assert.Equal(t, uint16(12), SceneID(h))
}
