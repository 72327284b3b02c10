package sceneprep

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/scene"
	"github.com/Carmen-Shannon/oxygen-core/engine/upload"
)

// drawResourceIndices is the per-draw GPU lookup record published
// through the draw-resource-indices structured buffer.
type drawResourceIndices struct {
	TransformIndex uint32
	MaterialIndex  uint32
}

// PreparedSceneFrame is the read-only result of scene preparation,
// published once per frame and valid until the next frame's publication.
type PreparedSceneFrame struct {
	// DrawMetadataBytes is the packed DrawMetadata array.
	DrawMetadataBytes []byte

	// DrawCount is the number of records in DrawMetadataBytes.
	DrawCount uint32

	// Partitions are disjoint record ranges sorted by Begin, covering
	// every record, each tagged with the passes that render it.
	Partitions []PartitionRange

	// WorldsSRVIndex is the shader-visible slot of the world matrices SRV.
	WorldsSRVIndex common.ShaderVisibleIndex

	// NormalsSRVIndex is the shader-visible slot of the normal matrices SRV.
	NormalsSRVIndex common.ShaderVisibleIndex

	// DrawResourceIndicesSlot is the bindless slot of the per-draw
	// resource-indices structured buffer.
	DrawResourceIndicesSlot common.ShaderVisibleIndex
}

// Preparer runs the scene-prep pipeline and publishes the frame's GPU
// working set through transient structured buffers.
type Preparer interface {
	// Prepare walks the scene's renderables through the stage chain and
	// publishes the resulting PreparedSceneFrame. The scene must have
	// been updated this frame or the frame's transforms are stale.
	//
	// Parameters:
	//   - sc: the scene to prepare
	//   - view: the frame's resolved camera state
	//
	// Returns:
	//   - *PreparedSceneFrame: the published frame
	//   - error: an error when transient GPU allocation fails
	Prepare(sc scene.Scene, view *ResolvedView) (*PreparedSceneFrame, error)

	// OnFrameStart rotates the transient buffers to the new frame slot.
	OnFrameStart(slot common.FrameSlot)

	// Release frees the transient GPU resources.
	Release()
}

// preparer implements Preparer.
type preparer struct {
	pipeline *Pipeline
	state    *ScenePrepState

	worlds      upload.TransientStructuredBuffer
	normals     upload.TransientStructuredBuffer
	drawIndices upload.TransientStructuredBuffer
}

// Ensure preparer implements Preparer.
var _ Preparer = (*preparer)(nil)

// NewPreparer creates a Preparer publishing through the given upload
// coordinator's staging memory. Panics on a nil coordinator.
//
// Parameters:
//   - coord: the upload coordinator backing the transient buffers
//
// Returns:
//   - Preparer: the newly created preparer
//   - error: an error when a transient buffer cannot be created
func NewPreparer(coord upload.Coordinator) (Preparer, error) {
	if coord == nil {
		panic("sceneprep: NewPreparer requires a non-nil Coordinator")
	}

	worlds, err := upload.NewTransientStructuredBuffer(coord, 64, "sceneprep.worlds")
	if err != nil {
		return nil, fmt.Errorf("sceneprep: worlds buffer: %w", err)
	}
	normals, err := upload.NewTransientStructuredBuffer(coord, 64, "sceneprep.normals")
	if err != nil {
		return nil, fmt.Errorf("sceneprep: normals buffer: %w", err)
	}
	drawIndices, err := upload.NewTransientStructuredBuffer(coord, 8, "sceneprep.drawindices")
	if err != nil {
		return nil, fmt.Errorf("sceneprep: draw indices buffer: %w", err)
	}

	return &preparer{
		pipeline:    NewStandardPipeline(),
		state:       NewScenePrepState(),
		worlds:      worlds,
		normals:     normals,
		drawIndices: drawIndices,
	}, nil
}

func (p *preparer) Prepare(sc scene.Scene, view *ResolvedView) (*PreparedSceneFrame, error) {
	p.state.Reset()
	ctx := &Context{View: view, Scene: sc, State: p.state}

	sc.TraversePreOrder(func(node scene.Node) {
		if node.Renderable() == nil {
			return
		}
		proto := RenderItemProto{Node: node.Handle()}
		p.pipeline.Run(&proto, ctx)
	}, nil)

	// Group records by pass mask so partitions come out as few
	// contiguous runs as possible, ordered opaque before masked before
	// transparent. The stable sort keeps emission order within a mask.
	records := p.state.DrawData()
	sort.SliceStable(records, func(i, j int) bool {
		oi, oj := domainOrder(records[i].Flags), domainOrder(records[j].Flags)
		if oi != oj {
			return oi < oj
		}
		return records[i].Flags < records[j].Flags
	})

	frame := &PreparedSceneFrame{
		DrawCount:               uint32(len(records)),
		Partitions:              p.state.buildPartitions(),
		WorldsSRVIndex:          common.InvalidShaderVisibleIndex,
		NormalsSRVIndex:         common.InvalidShaderVisibleIndex,
		DrawResourceIndicesSlot: common.InvalidShaderVisibleIndex,
	}
	if len(records) == 0 {
		return frame, nil
	}
	frame.DrawMetadataBytes = common.SliceToBytes(records)

	count := uint32(p.state.TransformCount())
	if err := p.worlds.Allocate(count); err != nil {
		return nil, fmt.Errorf("sceneprep: allocate worlds: %w", err)
	}
	copy(p.worlds.Span(), common.SliceToBytes(p.state.Worlds()))

	if err := p.normals.Allocate(count); err != nil {
		return nil, fmt.Errorf("sceneprep: allocate normals: %w", err)
	}
	copy(p.normals.Span(), common.SliceToBytes(p.state.Normals()))

	if err := p.drawIndices.Allocate(uint32(len(records))); err != nil {
		return nil, fmt.Errorf("sceneprep: allocate draw indices: %w", err)
	}
	indices := common.BytesToSlice[drawResourceIndices](p.drawIndices.Span())
	for i := range records {
		indices[i] = drawResourceIndices{
			TransformIndex: records[i].TransformIndex,
			MaterialIndex:  records[i].MaterialIndex,
		}
	}

	frame.WorldsSRVIndex = p.worlds.DescriptorIndex()
	frame.NormalsSRVIndex = p.normals.DescriptorIndex()
	frame.DrawResourceIndicesSlot = p.drawIndices.DescriptorIndex()
	return frame, nil
}

// domainOrder ranks a mask by its surface domain so draw records sort
// opaque, then masked, then transparent.
func domainOrder(mask PassMask) int {
	switch {
	case mask.Has(PassOpaque):
		return 0
	case mask.Has(PassMasked):
		return 1
	case mask.Has(PassTransparent):
		return 2
	default:
		return 3
	}
}

func (p *preparer) OnFrameStart(slot common.FrameSlot) {
	p.worlds.OnFrameStart(slot)
	p.normals.OnFrameStart(slot)
	p.drawIndices.OnFrameStart(slot)
}

func (p *preparer) Release() {
	p.worlds.Release()
	p.normals.Release()
	p.drawIndices.Release()
}
