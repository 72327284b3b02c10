package sceneprep

import (
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
	"github.com/Carmen-Shannon/oxygen-core/engine/scene"
)

// Context carries the immutable frame inputs every stage reads.
type Context struct {
	// View is the frame's resolved camera state.
	View *ResolvedView

	// Scene is the scene under preparation.
	Scene scene.Scene

	// State is the frame's working set.
	State *ScenePrepState
}

// FilterStage drops the item when it returns false.
type FilterStage func(proto *RenderItemProto, ctx *Context) bool

// UpdaterStage mutates the proto in place.
type UpdaterStage func(proto *RenderItemProto, ctx *Context)

// ProducerStage emits zero or more draw records into the state.
type ProducerStage func(proto *RenderItemProto, ctx *Context)

// stage is one link of the pipeline chain.
type stage struct {
	name     string
	filter   FilterStage
	updater  UpdaterStage
	producer ProducerStage
}

// Pipeline is the ordered stage chain run once per renderable node.
type Pipeline struct {
	stages []stage
}

// NewStandardPipeline builds the default chain: visibility filter,
// geometry resolution, LOD selection, frustum culling, transform dedup,
// and draw-metadata emission, in that order.
func NewStandardPipeline() *Pipeline {
	return &Pipeline{stages: []stage{
		{name: "visibility", filter: visibilityFilter},
		{name: "geometry", filter: geometryFilter},
		{name: "lod", updater: lodUpdater},
		{name: "cull", filter: cullFilter},
		{name: "dedup", updater: dedupUpdater},
		{name: "emit", producer: emitProducer},
	}}
}

// Run executes the chain on one proto. Returns false when a stage
// dropped the item.
func (p *Pipeline) Run(proto *RenderItemProto, ctx *Context) bool {
	for i := range p.stages {
		st := &p.stages[i]
		switch {
		case st.filter != nil:
			if !st.filter(proto, ctx) {
				proto.Dropped = true
				return false
			}
		case st.updater != nil:
			st.updater(proto, ctx)
		case st.producer != nil:
			st.producer(proto, ctx)
		}
		if proto.Dropped {
			return false
		}
	}
	return true
}

// visibilityFilter rejects nodes whose effective visibility is off.
func visibilityFilter(proto *RenderItemProto, ctx *Context) bool {
	node := ctx.Scene.Node(proto.Node)
	if node == nil {
		return false
	}
	flags := node.Flags()
	if !flags.Effective(scene.FlagVisible) {
		return false
	}
	proto.CastsShadows = flags.Effective(scene.FlagCastsShadows)
	proto.ReceivesShadows = flags.Effective(scene.FlagReceivesShadows)
	return true
}

// geometryFilter resolves the geometry pointer and drops nodes without
// one.
func geometryFilter(proto *RenderItemProto, ctx *Context) bool {
	node := ctx.Scene.Node(proto.Node)
	if node == nil {
		return false
	}
	renderable := node.Renderable()
	if renderable == nil {
		return false
	}
	geometry := renderable.Geometry()
	if geometry == nil || geometry.LODCount() == 0 {
		return false
	}
	proto.Geometry = geometry
	proto.World = node.Transform().WorldMatrix()
	return true
}

// lodUpdater runs the geometry's LOD policy against the frame view and
// stores the selection in the proto and back on the renderable for next
// frame's hysteresis. The mesh objects are never written.
func lodUpdater(proto *RenderItemProto, ctx *Context) {
	node := ctx.Scene.Node(proto.Node)
	renderable := node.Renderable()

	sphere := proto.Geometry.MeshAt(renderable.CurrentLOD()).WorldBoundingSphere(proto.World)
	lodCtx := model.LODContext{
		Distance:         ctx.View.NormalizedDistance(sphere),
		ScreenSpaceError: ctx.View.ScreenSpaceError(sphere),
	}
	selected := proto.Geometry.SelectLOD(lodCtx, renderable.CurrentLOD())
	renderable.SetCurrentLOD(selected)

	proto.LODIndex = selected
	proto.Mesh = proto.Geometry.MeshAt(selected)
}

// cullFilter rejects items whose world bounding sphere is outside the
// frustum, then narrows multi-submesh survivors with per-submesh AABBs.
func cullFilter(proto *RenderItemProto, ctx *Context) bool {
	sphere := proto.Mesh.WorldBoundingSphere(proto.World)
	if !ctx.View.Frustum().IntersectsSphere(sphere) {
		return false
	}

	if len(proto.Mesh.SubMeshes) <= 1 {
		proto.SubmeshMask = 1
		return true
	}

	proto.SubmeshMask = 0
	for i := range proto.Mesh.SubMeshes {
		bounds := proto.Mesh.WorldSubMeshAABB(i, proto.World)
		if ctx.View.Frustum().IntersectsAABB(bounds) {
			proto.SubmeshMask |= 1 << uint(i)
		}
	}
	return proto.SubmeshMask != 0
}

// dedupUpdater collapses the world matrix into a shared transform slot.
func dedupUpdater(proto *RenderItemProto, ctx *Context) {
	proto.TransformHandle = ctx.State.DedupTransform(proto.World)
}

// emitProducer writes one draw record per surviving submesh.
func emitProducer(proto *RenderItemProto, ctx *Context) {
	for i := range proto.Mesh.SubMeshes {
		if !proto.SubmeshVisible(i) {
			continue
		}
		sm := &proto.Mesh.SubMeshes[i]

		record := DrawMetadata{
			TransformIndex: uint32(proto.TransformHandle),
			InstanceCount:  1,
			Flags:          passMaskFor(sm.Material, proto),
		}
		if sm.Material != nil {
			record.MaterialIndex = sm.Material.Index
		}
		if sm.Indexed() {
			record.IsIndexed = 1
			record.FirstIndex = sm.FirstIndex
			record.IndexCount = sm.IndexCount
		} else {
			record.FirstVertex = sm.FirstVertex
			record.VertexCount = sm.VertexCount
		}
		ctx.State.Emit(record)
	}
}

// passMaskFor derives the pass bits from the material domain and the
// node's shadow flags.
func passMaskFor(mat *model.Material, proto *RenderItemProto) PassMask {
	var mask PassMask
	domain := model.MaterialDomainOpaque
	if mat != nil {
		domain = mat.Domain
	}
	switch domain {
	case model.MaterialDomainMasked:
		mask |= PassMasked
	case model.MaterialDomainTransparent:
		mask |= PassTransparent
	default:
		mask |= PassOpaque | PassDepth
	}
	if proto.CastsShadows && domain != model.MaterialDomainTransparent {
		mask |= PassShadow
	}
	return mask
}
