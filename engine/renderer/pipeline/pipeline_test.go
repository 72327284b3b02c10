package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/shader"
)

func testShaders(t *testing.T) (shader.Request, shader.Request) {
	t.Helper()
	vs, err := shader.NewRequest(shader.StageVertex, "shaders/mesh.hlsl", "VSMain")
	require.NoError(t, err)
	fs, err := shader.NewRequest(shader.StageFragment, "shaders/mesh.hlsl", "PSMain")
	require.NoError(t, err)
	return vs, fs
}

func TestEqualDescriptionsShareAPipeline(t *testing.T) {
	vs, fs := testShaders(t)
	cache := NewCache()

	compiles := 0
	compile := func(Description) error { compiles++; return nil }

	a, err := cache.GetOrCreate(NewDescription(vs, fs), compile)
	require.NoError(t, err)
	b, err := cache.GetOrCreate(NewDescription(vs, fs), compile)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, compiles)
	assert.Equal(t, 1, cache.Len())
}

func TestFixedFunctionStateChangesTheKey(t *testing.T) {
	vs, fs := testShaders(t)

	base := NewDescription(vs, fs)
	blend := NewDescription(vs, fs, WithBlend(true))
	bias := NewDescription(vs, fs, WithDepthBias(2, 1.5))
	cull := NewDescription(vs, fs, WithCullMode(CullModeNone))

	assert.NotEqual(t, base.Hash(), blend.Hash())
	assert.NotEqual(t, base.Hash(), bias.Hash())
	assert.NotEqual(t, base.Hash(), cull.Hash())
	assert.NotEqual(t, blend.Hash(), bias.Hash())
}

func TestShaderDefinesChangeTheKey(t *testing.T) {
	vs, fs := testShaders(t)
	vsSkinned, err := shader.NewRequest(shader.StageVertex, "shaders/mesh.hlsl", "VSMain",
		shader.Define{Name: "SKINNED", Value: "1"})
	require.NoError(t, err)

	assert.NotEqual(t, NewDescription(vs, fs).Hash(), NewDescription(vsSkinned, fs).Hash())
}

func TestComputeAndRenderNeverCollide(t *testing.T) {
	cs, err := shader.NewRequest(shader.StageCompute, "shaders/cull.hlsl", "CSMain")
	require.NoError(t, err)
	vs, fs := testShaders(t)

	assert.NotEqual(t, NewComputeDescription(cs).Hash(), NewDescription(vs, fs).Hash())
}

func TestCompileFailureIsNotCached(t *testing.T) {
	vs, fs := testShaders(t)
	cache := NewCache()
	boom := errors.New("boom")

	_, err := cache.GetOrCreate(NewDescription(vs, fs), func(Description) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())

	// A later attempt with a working compiler succeeds.
	p, err := cache.GetOrCreate(NewDescription(vs, fs), func(Description) error { return nil })
	require.NoError(t, err)
	assert.NotNil(t, p)
}
