package upload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics/headless"
)

func newTestBackend(t *testing.T) graphics.Graphics {
	t.Helper()
	gfx := headless.NewGraphics()
	t.Cleanup(gfx.Shutdown)
	return gfx
}

func transferQueue(gfx graphics.Graphics) *headless.Queue {
	return gfx.Queue(graphics.QueueRoleTransfer).(*headless.Queue)
}

func newDestBuffer(t *testing.T, gfx graphics.Graphics, size common.SizeBytes) graphics.Buffer {
	t.Helper()
	buf, err := gfx.CreateBuffer(graphics.BufferDesc{
		Label: "test-dest",
		Size:  size,
		Usage: graphics.BufferUsageStorage | graphics.BufferUsageCopyDst,
	})
	require.NoError(t, err)
	return buf
}

func pattern(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}

func TestBufferUploadCompletesOnFlush(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 256)
	payload := pattern(64, 0x10)

	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: payload},
		DebugName: "roundtrip",
	})

	assert.False(t, coord.IsComplete(ticket), "deferred upload should not complete before Flush")
	_, ok := coord.TryGetResult(ticket)
	assert.False(t, ok)

	coord.Flush()

	require.True(t, coord.IsComplete(ticket))
	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, common.SizeBytes(64), result.BytesUploaded)
	assert.Nil(t, result.Error)

	// Results are consumed on the first successful read.
	_, ok = coord.TryGetResult(ticket)
	assert.False(t, ok)

	assert.Equal(t, payload, dst.(*headless.Buffer).Bytes()[:64])
}

func TestDeferredRequestsShareOneSubmit(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 256)
	tickets := make([]Ticket, 3)
	for i := range tickets {
		tickets[i] = coord.Submit(Request{
			Kind:      KindBuffer,
			DstBuffer: dst,
			DstOffset: common.SizeBytes(i * 64),
			Size:      64,
			Data:      DataSource{Borrowed: pattern(64, byte(i+1))},
			DebugName: "batched",
		})
	}

	queue := transferQueue(gfx)
	assert.Equal(t, 0, queue.SubmitCount())

	coord.Flush()

	assert.Equal(t, 1, queue.SubmitCount(), "one flush should produce one submission")
	assert.Equal(t, common.SizeBytes(192), coord.StagingInUse(0))

	data := dst.(*headless.Buffer).Bytes()
	for i, ticket := range tickets {
		result, ok := coord.TryGetResult(ticket)
		require.True(t, ok)
		assert.True(t, result.Success)
		assert.Equal(t, pattern(64, byte(i+1)), data[i*64:(i+1)*64])
	}
}

func TestImmediatePolicySubmitsOnAccept(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 128)
	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      32,
		Data:      DataSource{Borrowed: pattern(32, 0x40)},
		Batch:     BatchPolicyImmediate,
		DebugName: "immediate",
	})

	assert.Equal(t, 1, transferQueue(gfx).SubmitCount())
	assert.True(t, coord.IsComplete(ticket))
}

func TestProducerFailureSealsTicket(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 128)
	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Produce: func(dst []byte) bool { return false }},
		DebugName: "failing-producer",
	})

	assert.True(t, coord.IsComplete(ticket))
	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorProducerFailed}))

	// Nothing was recorded for the aborted request.
	coord.Flush()
	assert.Equal(t, 0, transferQueue(gfx).SubmitCount())
}

func TestStagingBankExhaustion(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx, WithStagingBankSize(128))
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 512)
	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      256,
		Data:      DataSource{Borrowed: pattern(256, 0)},
		DebugName: "oversized",
	})

	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorStagingAllocFailed}))

	// A request that fits the bank still succeeds afterwards.
	small := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0x01)},
		Batch:     BatchPolicyImmediate,
		DebugName: "fits",
	})
	result, ok = coord.TryGetResult(small)
	require.True(t, ok)
	assert.True(t, result.Success)
}

func TestInvalidRequestsRejectedAtAcceptance(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 64)
	cases := []struct {
		name    string
		request Request
	}{
		{"nil destination", Request{Kind: KindBuffer, Size: 16, Data: DataSource{Bytes: pattern(16, 0)}}},
		{"no data source", Request{Kind: KindBuffer, DstBuffer: dst, Size: 16}},
		{"range overflow", Request{Kind: KindBuffer, DstBuffer: dst, DstOffset: 32, Size: 64, Data: DataSource{Bytes: pattern(64, 0)}}},
		{"multiple sources", Request{Kind: KindBuffer, DstBuffer: dst, Size: 16, Data: DataSource{Bytes: pattern(16, 0), Borrowed: pattern(16, 0)}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticket := coord.Submit(tc.request)
			result, ok := coord.TryGetResult(ticket)
			require.True(t, ok)
			assert.False(t, result.Success)
			assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorInvalidRequest}))
		})
	}
}

func TestTextureUploadDepitchesRows(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	tex, err := gfx.CreateTexture(graphics.TextureDesc{
		Label:     "test-texture",
		Format:    graphics.FormatRGBA8Unorm,
		Width:     4,
		Height:    4,
		Depth:     1,
		MipLevels: 1,
		ArraySize: 1,
	})
	require.NoError(t, err)

	// 4 rows of 16 tight bytes; the staging copy restrides them to the
	// 256-byte row pitch and the headless texture de-pitches them back.
	payload := pattern(64, 0x80)
	ticket := coord.Submit(Request{
		Kind:       KindTexture2D,
		DstTexture: tex,
		Data:       DataSource{Borrowed: payload},
		DebugName:  "texture-2d",
	})

	coord.Flush()

	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, common.SizeBytes(64), result.BytesUploaded)

	slab := tex.(*headless.Texture).SubresourceBytes(graphics.TextureSlice{})
	assert.Equal(t, payload, slab)

	// Staging holds the strided form: rowPitch(256) x 4 rows.
	assert.Equal(t, common.SizeBytes(1024), coord.StagingInUse(0))
}

func TestCubeFacesUploadInOneRequest(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	tex, err := gfx.CreateTexture(graphics.TextureDesc{
		Label:     "test-cube",
		Format:    graphics.FormatRGBA8Unorm,
		Width:     64,
		Height:    64,
		Depth:     1,
		MipLevels: 1,
		ArraySize: 6,
	})
	require.NoError(t, err)

	const faceBytes = 64 * 64 * 4
	subs := make([]SubresourceRequest, 6)
	payload := make([]byte, 0, 6*faceBytes)
	for face := range subs {
		subs[face] = SubresourceRequest{Slice: graphics.TextureSlice{ArraySlice: uint32(face)}}
		facePayload := make([]byte, faceBytes)
		for i := range facePayload {
			facePayload[i] = byte(face + 1)
		}
		payload = append(payload, facePayload...)
	}

	ticket := coord.Submit(Request{
		Kind:         KindTextureCube,
		DstTexture:   tex,
		Subresources: subs,
		Data:         DataSource{Borrowed: payload},
		Batch:        BatchPolicyImmediate,
		DebugName:    "cube",
	})

	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, common.SizeBytes(6*faceBytes), result.BytesUploaded)

	ht := tex.(*headless.Texture)
	for face := 0; face < 6; face++ {
		slab := ht.SubresourceBytes(graphics.TextureSlice{ArraySlice: uint32(face)})
		require.Len(t, slab, faceBytes, "face %d", face)
		assert.Equal(t, byte(face+1), slab[0], "face %d", face)
		assert.Equal(t, byte(face+1), slab[faceBytes-1], "face %d", face)
	}
}

func TestExplicitPitchValidation(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	tex, err := gfx.CreateTexture(graphics.TextureDesc{
		Label:     "test-pitch",
		Format:    graphics.FormatRGBA8Unorm,
		Width:     128,
		Height:    8,
		Depth:     1,
		MipLevels: 1,
		ArraySize: 1,
	})
	require.NoError(t, err)

	// 128 texels x 4 bytes = 512 per row; a 256-aligned pitch below that
	// must be rejected.
	ticket := coord.Submit(Request{
		Kind:       KindTexture2D,
		DstTexture: tex,
		Subresources: []SubresourceRequest{
			{RowPitch: 256},
		},
		Data:      DataSource{Borrowed: make([]byte, 512*8)},
		DebugName: "short-pitch",
	})

	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorInvalidRequest}))
}

func TestFrameSlotCycleRecyclesStaging(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx, WithFramesInFlight(2))
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 128)
	coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0)},
		Batch:     BatchPolicyImmediate,
		DebugName: "slot-0",
	})
	assert.Equal(t, common.SizeBytes(64), coord.StagingInUse(0))

	coord.OnFrameStart(1)
	assert.Equal(t, common.SizeBytes(64), coord.StagingInUse(0), "other banks keep their contents")
	assert.Equal(t, common.SizeBytes(0), coord.StagingInUse(1))

	coord.OnFrameStart(0)
	assert.Equal(t, common.SizeBytes(0), coord.StagingInUse(0), "returning to a slot resets its bank")
}

func TestDeviceLostSealsOutstandingTickets(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 128)
	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0)},
		DebugName: "pre-loss",
	})

	coord.NotifyDeviceLost()

	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorDeviceLost}))

	// Further work is refused until re-initialization.
	after := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0)},
		DebugName: "post-loss",
	})
	result, ok = coord.TryGetResult(after)
	require.True(t, ok)
	assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorDeviceLost}))

	coord.Flush()
	assert.Equal(t, 0, transferQueue(gfx).SubmitCount())
}

func TestShutdownCancelsNewRequests(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)

	dst := newDestBuffer(t, gfx, 128)
	coord.Shutdown()

	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0)},
		DebugName: "post-shutdown",
	})
	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorCancelled}))
}

func TestSubmitFailureSealsBatch(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 128)
	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0)},
		DebugName: "doomed",
	})

	transferQueue(gfx).FailNextSubmit(errors.New("queue unavailable"))
	coord.Flush()

	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, &Error{Kind: ErrorExecutionFailed}))
}

func TestFailedProducerReleasesStaging(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 256)
	failing := Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Produce: func([]byte) bool { return false }},
		DebugName: "aborted",
	}

	// Repeated failures within one frame must not eat into the bank.
	for i := 0; i < 4; i++ {
		coord.Submit(failing)
	}
	assert.Equal(t, common.SizeBytes(0), coord.StagingInUse(0))

	ticket := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0x20)},
		Batch:     BatchPolicyImmediate,
		DebugName: "after-aborts",
	})
	assert.Equal(t, common.SizeBytes(64), coord.StagingInUse(0), "the recycled staging is reused")

	result, ok := coord.TryGetResult(ticket)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, pattern(64, 0x20), dst.(*headless.Buffer).Bytes()[:64])
}

func TestFailedTextureRequestReleasesStaging(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	tex, err := gfx.CreateTexture(graphics.TextureDesc{
		Label:     "test-texture",
		Format:    graphics.FormatRGBA8Unorm,
		Width:     4,
		Height:    4,
		Depth:     1,
		MipLevels: 1,
		ArraySize: 1,
	})
	require.NoError(t, err)

	coord.Submit(Request{
		Kind:       KindTexture2D,
		DstTexture: tex,
		Data:       DataSource{Produce: func([]byte) bool { return false }},
		DebugName:  "aborted-producer",
	})
	assert.Equal(t, common.SizeBytes(0), coord.StagingInUse(0))

	// A payload shorter than the subresource needs is rejected the same way.
	coord.Submit(Request{
		Kind:       KindTexture2D,
		DstTexture: tex,
		Data:       DataSource{Borrowed: pattern(16, 0)},
		DebugName:  "short-payload",
	})
	assert.Equal(t, common.SizeBytes(0), coord.StagingInUse(0))
}

func TestFenceValueResolvesAtFlush(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 256)
	deferred := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0x01)},
		DebugName: "deferred",
	})
	assert.Equal(t, uint64(0), coord.FenceValue(deferred), "no fence before flush")

	coord.Flush()

	fence := coord.FenceValue(deferred)
	require.NotZero(t, fence)
	assert.GreaterOrEqual(t, transferQueue(gfx).GetCompletedValue(), fence)

	immediate := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		DstOffset: 64,
		Size:      64,
		Data:      DataSource{Borrowed: pattern(64, 0x02)},
		Batch:     BatchPolicyImmediate,
		DebugName: "immediate",
	})
	require.True(t, coord.IsComplete(immediate))
	assert.Greater(t, coord.FenceValue(immediate), fence, "each submission advances the fence")

	failed := coord.Submit(Request{
		Kind:      KindBuffer,
		DstBuffer: dst,
		Size:      64,
		Data:      DataSource{Produce: func([]byte) bool { return false }},
		DebugName: "sealed",
	})
	assert.Equal(t, uint64(0), coord.FenceValue(failed), "sealed tickets carry no fence")
}

func TestOutOfOrderSubmissionsLandAtTheirOffsets(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	dst := newDestBuffer(t, gfx, 256)
	submissions := []struct {
		offset common.SizeBytes
		seed   byte
	}{
		{0, 0x01},
		{128, 0x03},
		{64, 0x02},
	}
	for _, s := range submissions {
		coord.Submit(Request{
			Kind:      KindBuffer,
			DstBuffer: dst,
			DstOffset: s.offset,
			Size:      64,
			Data:      DataSource{Borrowed: pattern(64, s.seed)},
			DebugName: "unordered",
		})
	}

	coord.Flush()
	assert.Equal(t, 1, transferQueue(gfx).SubmitCount())

	data := dst.(*headless.Buffer).Bytes()
	assert.Equal(t, pattern(64, 0x01), data[0:64])
	assert.Equal(t, pattern(64, 0x02), data[64:128])
	assert.Equal(t, pattern(64, 0x03), data[128:192])
}

func TestUnknownTicketIsComplete(t *testing.T) {
	gfx := newTestBackend(t)
	coord := NewCoordinator(gfx)
	defer coord.Shutdown()

	assert.True(t, coord.IsComplete(Ticket{}))
	_, ok := coord.TryGetResult(Ticket{})
	assert.False(t, ok)
}
