package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

func TestFixedPolicyClamps(t *testing.T) {
	p := &FixedLODPolicy{Index: 7}
	assert.Equal(t, 2, p.SelectLOD(LODContext{}, 0, 3))

	p.Index = -1
	assert.Equal(t, 0, p.SelectLOD(LODContext{}, 2, 3))
}

func TestDistancePolicyWalksThresholds(t *testing.T) {
	p := &DistanceLODPolicy{Thresholds: []float32{10, 20}, Hysteresis: 1}

	ctx := func(d float32) LODContext {
		return LODContext{Distance: common.NormalizedDistance(d)}
	}

	assert.Equal(t, 0, p.SelectLOD(ctx(5), 0, 3))
	assert.Equal(t, 1, p.SelectLOD(ctx(12), 0, 3))
	assert.Equal(t, 2, p.SelectLOD(ctx(25), 0, 3))
	// Far jump crosses both thresholds in one frame.
	assert.Equal(t, 0, p.SelectLOD(ctx(3), 2, 3))
}

func TestDistancePolicyHysteresisHoldsNearThreshold(t *testing.T) {
	p := &DistanceLODPolicy{Thresholds: []float32{10}, Hysteresis: 1}

	ctx := func(d float32) LODContext {
		return LODContext{Distance: common.NormalizedDistance(d)}
	}

	// Inside the dead band (9..11) the previous selection wins.
	assert.Equal(t, 0, p.SelectLOD(ctx(10.5), 0, 2))
	assert.Equal(t, 1, p.SelectLOD(ctx(9.5), 1, 2))
	// Outside it the selection flips.
	assert.Equal(t, 1, p.SelectLOD(ctx(11.5), 0, 2))
	assert.Equal(t, 0, p.SelectLOD(ctx(8.5), 1, 2))
}

func TestScreenSpaceErrorDirectionalHysteresis(t *testing.T) {
	p := &ScreenSpaceErrorLODPolicy{
		EnterFiner:  []float32{170},
		ExitCoarser: []float32{150},
	}

	ctx := func(sse float32) LODContext {
		return LODContext{ScreenSpaceError: common.ScreenSpaceError(sse)}
	}

	errors := []float32{180, 160, 140, 160, 180}
	want := []int{0, 0, 1, 1, 0}

	current := 0
	for i, sse := range errors {
		current = p.SelectLOD(ctx(sse), current, 2)
		assert.Equalf(t, want[i], current, "step %d (sse=%v)", i, sse)
	}
}

func TestGeometrySelectLODDefaults(t *testing.T) {
	g := &Geometry{LODs: []*Mesh{{}, {}}}
	assert.Equal(t, 0, g.SelectLOD(LODContext{Distance: 99}, 1), "nil policy pins LOD 0")

	g.Policy = &FixedLODPolicy{Index: 1}
	assert.Equal(t, 1, g.SelectLOD(LODContext{}, 0))
	assert.Same(t, g.LODs[1], g.MeshAt(5))
}
