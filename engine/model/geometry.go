package model

// Geometry is a renderable asset: an ordered list of LOD meshes (index 0
// finest) and the policy that selects among them.
type Geometry struct {
	// Label identifies the asset for debugging.
	Label string

	// LODs are the meshes ordered finest to coarsest. Must not be empty.
	LODs []*Mesh

	// Policy selects the LOD each frame. Nil falls back to LOD 0.
	Policy LODPolicy
}

// LODCount returns the number of available levels.
func (g *Geometry) LODCount() int {
	return len(g.LODs)
}

// MeshAt returns the mesh for a level, clamping out-of-range indices.
//
// Parameters:
//   - lod: the level index
//
// Returns:
//   - *Mesh: the mesh, or nil when the geometry has no levels
func (g *Geometry) MeshAt(lod int) *Mesh {
	if len(g.LODs) == 0 {
		return nil
	}
	return g.LODs[clampLOD(lod, len(g.LODs))]
}

// SelectLOD runs the geometry's policy for this frame.
//
// Parameters:
//   - ctx: the frame's selection metrics
//   - current: the index selected last frame
//
// Returns:
//   - int: the selected index in [0, LODCount)
func (g *Geometry) SelectLOD(ctx LODContext, current int) int {
	if len(g.LODs) == 0 {
		return 0
	}
	if g.Policy == nil {
		return 0
	}
	return g.Policy.SelectLOD(ctx, current, len(g.LODs))
}

// InvalidateWorldBounds drops every LOD's cached world bounds.
func (g *Geometry) InvalidateWorldBounds() {
	for _, m := range g.LODs {
		m.InvalidateWorldBounds()
	}
}
