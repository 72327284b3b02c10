package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

func unitCubeSubMesh(mat *Material) SubMesh {
	return SubMesh{
		Material:   mat,
		IndexCount: 36,
		LocalBounds: common.AABB{
			Min: [3]float32{-0.5, -0.5, -0.5},
			Max: [3]float32{0.5, 0.5, 0.5},
		},
	}
}

func translation(x, y, z float32) []float32 {
	m := make([]float32, 16)
	common.Identity(m)
	m[12], m[13], m[14] = x, y, z
	return m
}

func TestWorldSubMeshAABBFollowsTransform(t *testing.T) {
	mesh := &Mesh{SubMeshes: []SubMesh{unitCubeSubMesh(nil)}}

	world := translation(10, 0, 0)
	bounds := mesh.WorldSubMeshAABB(0, world)
	assert.InDelta(t, 9.5, bounds.Min[0], 1e-6)
	assert.InDelta(t, 10.5, bounds.Max[0], 1e-6)

	// The cache holds until invalidated.
	stale := mesh.WorldSubMeshAABB(0, translation(99, 0, 0))
	assert.Equal(t, bounds, stale)

	mesh.InvalidateWorldBounds()
	fresh := mesh.WorldSubMeshAABB(0, translation(99, 0, 0))
	assert.InDelta(t, 98.5, fresh.Min[0], 1e-6)
}

func TestWorldBoundingSphereAggregatesSubMeshes(t *testing.T) {
	near := unitCubeSubMesh(nil)
	far := unitCubeSubMesh(nil)
	far.LocalBounds = common.AABB{
		Min: [3]float32{3.5, -0.5, -0.5},
		Max: [3]float32{4.5, 0.5, 0.5},
	}
	mesh := &Mesh{SubMeshes: []SubMesh{near, far}}

	world := make([]float32, 16)
	common.Identity(world)

	sphere := mesh.WorldBoundingSphere(world)
	assert.InDelta(t, 2.0, sphere.Center[0], 1e-6)
	assert.Greater(t, sphere.Radius, float32(2.0))
}

func TestLocalBoundsMergesAllSubMeshes(t *testing.T) {
	a := unitCubeSubMesh(nil)
	b := unitCubeSubMesh(nil)
	b.LocalBounds = common.AABB{
		Min: [3]float32{1, 1, 1},
		Max: [3]float32{2, 2, 2},
	}
	mesh := &Mesh{SubMeshes: []SubMesh{a, b}}

	bounds := mesh.LocalBounds()
	assert.Equal(t, [3]float32{-0.5, -0.5, -0.5}, bounds.Min)
	assert.Equal(t, [3]float32{2, 2, 2}, bounds.Max)
}
