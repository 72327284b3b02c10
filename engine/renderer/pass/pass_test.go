package pass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics/headless"
	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxygen-core/engine/sceneprep"
)

func testRenderPipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewRequest(shader.StageVertex, "shaders/mesh.hlsl", "VSMain")
	require.NoError(t, err)
	fs, err := shader.NewRequest(shader.StageFragment, "shaders/mesh.hlsl", "PSMain")
	require.NoError(t, err)
	p, err := pipeline.NewCache().GetOrCreate(pipeline.NewDescription(vs, fs), nil)
	require.NoError(t, err)
	return p
}

func testComputePipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()
	cs, err := shader.NewRequest(shader.StageCompute, "shaders/cull.hlsl", "CSMain")
	require.NoError(t, err)
	p, err := pipeline.NewCache().GetOrCreate(pipeline.NewComputeDescription(cs), nil)
	require.NoError(t, err)
	return p
}

func testRecorder(t *testing.T) *headless.Recorder {
	t.Helper()
	gfx := headless.NewGraphics()
	t.Cleanup(gfx.Shutdown)
	rec, err := gfx.AcquireCommandRecorder(graphics.QueueRoleGraphics)
	require.NoError(t, err)
	require.NoError(t, rec.Begin())
	return rec.(*headless.Recorder)
}

func frameOf(records []sceneprep.DrawMetadata, partitions []sceneprep.PartitionRange) *sceneprep.PreparedSceneFrame {
	return &sceneprep.PreparedSceneFrame{
		DrawMetadataBytes: common.SliceToBytes(records),
		DrawCount:         uint32(len(records)),
		Partitions:        partitions,
	}
}

func TestGraphicsPassIssuesMatchingPartitionsOnly(t *testing.T) {
	rec := testRecorder(t)
	records := []sceneprep.DrawMetadata{
		{IndexCount: 36, InstanceCount: 1, IsIndexed: 1, Flags: sceneprep.PassOpaque},
		{IndexCount: 12, InstanceCount: 1, IsIndexed: 1, Flags: sceneprep.PassOpaque},
		{VertexCount: 6, InstanceCount: 1, Flags: sceneprep.PassTransparent},
	}
	frame := frameOf(records, []sceneprep.PartitionRange{
		{Begin: 0, End: 2, Mask: sceneprep.PassOpaque},
		{Begin: 2, End: 3, Mask: sceneprep.PassTransparent},
	})

	p := NewGraphicsRenderPass("opaque", testRenderPipeline(t), sceneprep.PassOpaque)
	ctx := &Context{Recorder: rec, Frame: frame}
	require.NoError(t, p.PrepareResources(ctx))
	require.NoError(t, p.Execute(ctx))

	assert.Equal(t, 2, p.DrawsIssued())
	stats := rec.Stats()
	assert.Equal(t, 2, stats.DrawCalls)
	// One draw-index root constant per issued draw.
	assert.Equal(t, []uint32{0, 1}, stats.RootConstantsSeen)
}

func TestZeroCountRecordsAreSkipped(t *testing.T) {
	rec := testRecorder(t)
	records := []sceneprep.DrawMetadata{
		{IndexCount: 0, InstanceCount: 1, IsIndexed: 1, Flags: sceneprep.PassOpaque},
		{IndexCount: 36, InstanceCount: 0, IsIndexed: 1, Flags: sceneprep.PassOpaque},
		{IndexCount: 36, InstanceCount: 1, IsIndexed: 1, Flags: sceneprep.PassOpaque},
	}
	frame := frameOf(records, []sceneprep.PartitionRange{
		{Begin: 0, End: 3, Mask: sceneprep.PassOpaque},
	})

	p := NewGraphicsRenderPass("opaque", testRenderPipeline(t), sceneprep.PassOpaque)
	require.NoError(t, p.Execute(&Context{Recorder: rec, Frame: frame}))

	assert.Equal(t, 1, p.DrawsIssued())
	assert.Equal(t, 2, p.DrawsSkipped())
	assert.Equal(t, 1, rec.Stats().DrawCalls)
}

// panicRecorder fails a specific indexed draw to exercise per-draw
// recovery.
type panicRecorder struct {
	graphics.CommandRecorder
	panicOnIndexCount uint32
}

func (r *panicRecorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if indexCount == r.panicOnIndexCount {
		panic("bad record")
	}
	r.CommandRecorder.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func TestPerDrawPanicDoesNotAbortThePass(t *testing.T) {
	rec := testRecorder(t)
	records := []sceneprep.DrawMetadata{
		{IndexCount: 36, InstanceCount: 1, IsIndexed: 1, Flags: sceneprep.PassOpaque},
		{IndexCount: 13, InstanceCount: 1, IsIndexed: 1, Flags: sceneprep.PassOpaque},
		{IndexCount: 36, InstanceCount: 1, IsIndexed: 1, Flags: sceneprep.PassOpaque},
	}
	frame := frameOf(records, []sceneprep.PartitionRange{
		{Begin: 0, End: 3, Mask: sceneprep.PassOpaque},
	})

	p := NewGraphicsRenderPass("opaque", testRenderPipeline(t), sceneprep.PassOpaque)
	wrapped := &panicRecorder{CommandRecorder: rec, panicOnIndexCount: 13}
	require.NoError(t, p.Execute(&Context{Recorder: wrapped, Frame: frame}))

	assert.Equal(t, 2, p.DrawsIssued())
	assert.Equal(t, 1, p.DrawsFailed())
	assert.Equal(t, 2, rec.Stats().DrawCalls)
}

func TestPrepareValidatesConfiguration(t *testing.T) {
	p := NewGraphicsRenderPass("opaque", testRenderPipeline(t), sceneprep.PassOpaque)
	assert.Error(t, p.PrepareResources(nil))
	assert.Error(t, p.PrepareResources(&Context{}))

	assert.Panics(t, func() {
		NewGraphicsRenderPass("bad", testComputePipeline(t), sceneprep.PassOpaque)
	})
}

func TestComputePassDispatches(t *testing.T) {
	rec := testRecorder(t)
	p := NewComputeRenderPass("cull", testComputePipeline(t), 8, 8, 1)
	require.NoError(t, p.Execute(&Context{Recorder: rec}))
	assert.Equal(t, 1, rec.Stats().DispatchCalls)

	zero := NewComputeRenderPass("cull0", testComputePipeline(t), 0, 1, 1)
	assert.Error(t, zero.Execute(&Context{Recorder: rec}))
}

func TestBindPassConstantsIndexWritesDWORD1(t *testing.T) {
	rec := testRecorder(t)
	BindPassConstantsIndex(rec, common.ShaderVisibleIndex(42))
	assert.Equal(t, []uint32{42}, rec.Stats().RootConstantsSeen)
}
