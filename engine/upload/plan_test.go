package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

func TestPlanFinalizeOrdersRegionsByDestinationOffset(t *testing.T) {
	gfx := newTestBackend(t)
	dst := newDestBuffer(t, gfx, 256)

	// Requests arrived at destination offsets 0, 128, 64; staging sources
	// were handed out in arrival order.
	p := plan{bufferRegions: []bufferRegion{
		{dst: dst, dstOffset: 0, srcOffset: 0, size: 64},
		{dst: dst, dstOffset: 128, srcOffset: 64, size: 64},
		{dst: dst, dstOffset: 64, srcOffset: 128, size: 64},
	}}
	p.finalize()

	require.Len(t, p.bufferRegions, 3)
	for i, want := range []common.SizeBytes{0, 64, 128} {
		assert.Equal(t, want, p.bufferRegions[i].dstOffset, "region %d", i)
	}
	// The sort keeps each region's source with it; sources that end up
	// non-contiguous must not merge.
	assert.Equal(t, common.SizeBytes(128), p.bufferRegions[1].srcOffset)
	assert.Equal(t, common.SizeBytes(64), p.bufferRegions[2].srcOffset)
}

func TestPlanFinalizeCoalescesAdjacentRanges(t *testing.T) {
	gfx := newTestBackend(t)
	a := newDestBuffer(t, gfx, 256)
	b := newDestBuffer(t, gfx, 256)

	p := plan{bufferRegions: []bufferRegion{
		{dst: a, dstOffset: 64, srcOffset: 64, size: 64},
		{dst: a, dstOffset: 0, srcOffset: 0, size: 64},
		{dst: a, dstOffset: 192, srcOffset: 256, size: 32},
		{dst: b, dstOffset: 128, srcOffset: 128, size: 64},
	}}
	p.finalize()

	// The two ranges contiguous in both destination and staging merge;
	// the gap region and the other destination stay separate.
	require.Len(t, p.bufferRegions, 3)

	var merged *bufferRegion
	for i := range p.bufferRegions {
		if p.bufferRegions[i].size == 128 {
			merged = &p.bufferRegions[i]
		}
	}
	require.NotNil(t, merged)
	assert.True(t, merged.dst == a)
	assert.Equal(t, common.SizeBytes(0), merged.dstOffset)
	assert.Equal(t, common.SizeBytes(0), merged.srcOffset)
}
