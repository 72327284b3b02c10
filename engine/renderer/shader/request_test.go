package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualRequestsHashEqual(t *testing.T) {
	a, err := NewRequest(StageVertex, "shaders\\mesh.hlsl", "VSMain",
		Define{Name: "B", Value: "2"}, Define{Name: "A", Value: "1"})
	require.NoError(t, err)

	b, err := NewRequest(StageVertex, "shaders/mesh.hlsl", "VSMain",
		Define{Name: "A", Value: "1"}, Define{Name: "B", Value: "2"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestDistinctRequestsHashDifferently(t *testing.T) {
	base, err := NewRequest(StageVertex, "shaders/mesh.hlsl", "VSMain")
	require.NoError(t, err)

	stage, _ := NewRequest(StageFragment, "shaders/mesh.hlsl", "VSMain")
	entry, _ := NewRequest(StageVertex, "shaders/mesh.hlsl", "VSOther")
	defines, _ := NewRequest(StageVertex, "shaders/mesh.hlsl", "VSMain", Define{Name: "X"})

	assert.NotEqual(t, base.Hash(), stage.Hash())
	assert.NotEqual(t, base.Hash(), entry.Hash())
	assert.NotEqual(t, base.Hash(), defines.Hash())
}

func TestPathValidation(t *testing.T) {
	_, err := NewRequest(StageVertex, "/abs/mesh.hlsl", "VSMain")
	assert.Error(t, err)

	_, err = NewRequest(StageVertex, "C:\\abs\\mesh.hlsl", "VSMain")
	assert.Error(t, err)

	_, err = NewRequest(StageVertex, "shaders/../../mesh.hlsl", "VSMain")
	assert.Error(t, err)

	_, err = NewRequest(StageVertex, "", "VSMain")
	assert.Error(t, err)
}

func TestEntryPointValidation(t *testing.T) {
	_, err := NewRequest(StageCompute, "cs.hlsl", "1Main")
	assert.Error(t, err)

	_, err = NewRequest(StageCompute, "cs.hlsl", "Main-CS")
	assert.Error(t, err)

	_, err = NewRequest(StageCompute, "cs.hlsl", "")
	assert.Error(t, err)

	r, err := NewRequest(StageCompute, "cs.hlsl", "_Main7")
	require.NoError(t, err)
	assert.Equal(t, "_Main7", r.EntryPoint)
}

func TestDuplicateDefinesRejected(t *testing.T) {
	_, err := NewRequest(StageVertex, "mesh.hlsl", "VSMain",
		Define{Name: "A", Value: "1"}, Define{Name: "A", Value: "2"})
	assert.Error(t, err)
}
