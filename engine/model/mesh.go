package model

import (
	"github.com/Carmen-Shannon/oxygen-core/common"
)

// SubMesh is one material-homogeneous range of a mesh's index (or
// vertex) buffer. The world AABB is cached on demand and invalidated by
// the owning node when its world transform changes.
type SubMesh struct {
	// Material is the surface this range renders with.
	Material *Material

	// FirstIndex is the starting index into the mesh index buffer.
	FirstIndex uint32

	// IndexCount is the number of indices in this range (0 for non-indexed).
	IndexCount uint32

	// FirstVertex is the starting vertex for non-indexed ranges.
	FirstVertex uint32

	// VertexCount is the vertex count for non-indexed ranges.
	VertexCount uint32

	// LocalBounds is the submesh AABB in mesh space.
	LocalBounds common.AABB

	worldBounds      common.AABB
	worldBoundsValid bool
}

// Indexed reports whether this submesh draws through the index buffer.
func (s *SubMesh) Indexed() bool {
	return s.IndexCount > 0
}

// Mesh is a set of interleaved vertices plus an index buffer carved into
// submeshes. Meshes are owned by a single renderable; the cached world
// bounds are relative to that owner's transform.
type Mesh struct {
	// Label identifies the mesh for debugging.
	Label string

	// VertexData is the interleaved vertex stream.
	VertexData []byte

	// VertexStride is the byte stride of one vertex.
	VertexStride uint32

	// VertexCount is the total number of vertices.
	VertexCount uint32

	// IndexData is the uint32 index stream.
	IndexData []byte

	// IndexCount is the total number of indices.
	IndexCount uint32

	// SubMeshes carve the mesh into material-homogeneous ranges.
	SubMeshes []SubMesh

	worldSphere      common.Sphere
	worldSphereValid bool
}

// LocalBounds returns the mesh AABB merged from every submesh.
func (m *Mesh) LocalBounds() common.AABB {
	bounds := common.EmptyAABB()
	for i := range m.SubMeshes {
		bounds.Merge(m.SubMeshes[i].LocalBounds)
	}
	return bounds
}

// WorldSubMeshAABB returns submesh i's AABB transformed by world,
// computing and caching it on first access since the last invalidation.
//
// Parameters:
//   - i: the submesh index
//   - world: the owner's column-major world matrix
//
// Returns:
//   - common.AABB: the submesh bounds in world space
func (m *Mesh) WorldSubMeshAABB(i int, world []float32) common.AABB {
	sm := &m.SubMeshes[i]
	if !sm.worldBoundsValid {
		sm.worldBounds = sm.LocalBounds.Transform(world)
		sm.worldBoundsValid = true
	}
	return sm.worldBounds
}

// WorldBoundingSphere returns the aggregated world bounding sphere,
// recomputing it from the submesh world AABBs when invalidated.
//
// Parameters:
//   - world: the owner's column-major world matrix
//
// Returns:
//   - common.Sphere: the mesh bounds in world space
func (m *Mesh) WorldBoundingSphere(world []float32) common.Sphere {
	if !m.worldSphereValid {
		bounds := common.EmptyAABB()
		for i := range m.SubMeshes {
			bounds.Merge(m.WorldSubMeshAABB(i, world))
		}
		m.worldSphere = bounds.BoundingSphere()
		m.worldSphereValid = true
	}
	return m.worldSphere
}

// InvalidateWorldBounds drops every cached world-space bound. Called by
// the owner when its world transform changes.
func (m *Mesh) InvalidateWorldBounds() {
	for i := range m.SubMeshes {
		m.SubMeshes[i].worldBoundsValid = false
	}
	m.worldSphereValid = false
}
