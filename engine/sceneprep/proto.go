package sceneprep

import (
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
)

// RenderItemProto is the per-node working record traversal produces.
// Successive pipeline stages mutate it in place; a stage returning false
// (or setting Dropped) removes the item from the frame.
type RenderItemProto struct {
	// Node is the originating scene node.
	Node graphics.NodeHandle

	// World is the node's resolved world matrix, owned by the transform
	// component.
	World []float32

	// Geometry is the resolved asset, set by the geometry stage.
	Geometry *model.Geometry

	// Mesh is the LOD-selected mesh, set by the LOD stage.
	Mesh *model.Mesh

	// LODIndex is the level the LOD stage selected.
	LODIndex int

	// SubmeshMask has bit i set when submesh i survived culling. Items
	// with a single submesh use bit 0.
	SubmeshMask uint64

	// TransformHandle is the deduped transform slot, set by the dedup
	// stage.
	TransformHandle TransformHandle

	// CastsShadows and ReceivesShadows mirror the node's effective flags.
	CastsShadows    bool
	ReceivesShadows bool

	// Dropped removes the item without running later stages.
	Dropped bool
}

// SubmeshVisible reports whether submesh i survived culling.
func (p *RenderItemProto) SubmeshVisible(i int) bool {
	return p.SubmeshMask&(1<<uint(i)) != 0
}
