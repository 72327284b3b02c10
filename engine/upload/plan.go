package upload

import (
	"sort"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// bufferRegion is one planned buffer copy: staging source range to
// destination range.
type bufferRegion struct {
	dst       graphics.Buffer
	dstOffset common.SizeBytes
	srcOffset common.SizeBytes
	size      common.SizeBytes
}

// textureRegion is one planned subresource copy out of linear staging
// memory.
type textureRegion struct {
	dst          graphics.Texture
	slice        graphics.TextureSlice
	bufferOffset common.SizeBytes
	rowPitch     common.SizeBytes
	slicePitch   common.SizeBytes
}

// subresourceLayout is the computed placement of one subresource within a
// request's staging allocation.
type subresourceLayout struct {
	slice        graphics.TextureSlice
	relOffset    common.SizeBytes // offset within the allocation, TexturePlacementAlignment-aligned
	rowPitch     common.SizeBytes
	slicePitch   common.SizeBytes
	rowBytes     common.SizeBytes // tight bytes per row
	rowCount     uint32           // rows per 2D slice
	depth        uint32           // 2D slices (1 for 2D/cube faces)
	payloadBytes common.SizeBytes // tight payload byte count
}

// computeTextureLayout derives per-subresource placements for a texture
// request. Row pitch is aligned to TextureRowPitchAlignment; slice pitch is
// rowPitch × rows; each subresource starts at a
// TexturePlacementAlignment-aligned offset.
//
// Parameters:
//   - desc: the destination texture description
//   - subs: the requested subresources (empty = mip 0 / slice 0)
//
// Returns:
//   - []subresourceLayout: placements in request order
//   - common.SizeBytes: the total staging bytes the request needs
func computeTextureLayout(desc graphics.TextureDesc, subs []SubresourceRequest) ([]subresourceLayout, common.SizeBytes) {
	if len(subs) == 0 {
		subs = []SubresourceRequest{{}}
	}

	block := desc.Format.BlockSize()
	layouts := make([]subresourceLayout, 0, len(subs))
	offset := uint64(0)

	for _, sub := range subs {
		w := max(desc.Width>>sub.Slice.MipLevel, 1)
		h := max(desc.Height>>sub.Slice.MipLevel, 1)
		depth := uint32(1)
		if desc.Dimension == graphics.TextureDimension3D {
			depth = max(desc.Depth>>sub.Slice.MipLevel, 1)
		}

		rowBytes := uint64(w) * block
		rowPitch := common.AlignUp(rowBytes, TextureRowPitchAlignment)
		if sub.RowPitch != 0 {
			rowPitch = uint64(sub.RowPitch)
		}
		slicePitch := rowPitch * uint64(h)
		if sub.SlicePitch != 0 {
			slicePitch = uint64(sub.SlicePitch)
		}

		offset = common.AlignUp(offset, TexturePlacementAlignment)
		layouts = append(layouts, subresourceLayout{
			slice:        sub.Slice,
			relOffset:    common.SizeBytes(offset),
			rowPitch:     common.SizeBytes(rowPitch),
			slicePitch:   common.SizeBytes(slicePitch),
			rowBytes:     common.SizeBytes(rowBytes),
			rowCount:     h,
			depth:        depth,
			payloadBytes: common.SizeBytes(rowBytes * uint64(h) * uint64(depth)),
		})
		offset += slicePitch * uint64(depth)
	}

	return layouts, common.SizeBytes(offset)
}

// stateRestore captures a destination's prior logical state for the
// post-copy barrier.
type stateRestore struct {
	resource graphics.NativeResource
	state    graphics.ResourceState
}

// plan is the coordinator's internal, validated form of a batch of
// requests: ordered copy regions per destination plus the barriers needed
// around them.
type plan struct {
	bufferRegions  []bufferRegion
	textureRegions []textureRegion
	restores       []stateRestore
}

// addRestore records a destination's restore state once per resource.
func (p *plan) addRestore(resource graphics.NativeResource, state graphics.ResourceState) {
	for _, r := range p.restores {
		if r.resource == resource {
			return
		}
	}
	p.restores = append(p.restores, stateRestore{resource: resource, state: state})
}

// finalize orders buffer regions by (destination, offset) and coalesces
// adjacent ranges that are contiguous in both destination and staging
// memory.
func (p *plan) finalize() {
	sort.SliceStable(p.bufferRegions, func(i, j int) bool {
		a, b := p.bufferRegions[i], p.bufferRegions[j]
		pa := uintptr(a.dst.NativeResource().Pointer())
		pb := uintptr(b.dst.NativeResource().Pointer())
		if pa != pb {
			return pa < pb
		}
		return a.dstOffset < b.dstOffset
	})

	coalesced := p.bufferRegions[:0]
	for _, region := range p.bufferRegions {
		if n := len(coalesced); n > 0 {
			prev := &coalesced[n-1]
			if prev.dst == region.dst &&
				prev.dstOffset+prev.size == region.dstOffset &&
				prev.srcOffset+prev.size == region.srcOffset {
				prev.size += region.size
				continue
			}
		}
		coalesced = append(coalesced, region)
	}
	p.bufferRegions = coalesced
}

// record emits the plan into a command recorder: transition every
// destination to CopyDest, issue the copies, then restore prior states.
//
// Parameters:
//   - recorder: the transfer recorder, already recording
//   - staging: the staging ring backing all source offsets
func (p *plan) record(recorder graphics.CommandRecorder, staging graphics.Buffer) {
	for _, r := range p.restores {
		recorder.BeginTrackingResourceState(r.resource, r.state)
		recorder.RequireResourceState(r.resource, graphics.ResourceStateCopyDest)
	}
	recorder.FlushBarriers()

	for _, region := range p.bufferRegions {
		recorder.CopyBufferRegion(region.dst, region.dstOffset, staging, region.srcOffset, region.size)
	}
	for _, region := range p.textureRegions {
		recorder.CopyTextureRegion(region.dst, region.slice, staging, region.bufferOffset, region.rowPitch, region.slicePitch)
	}

	for _, r := range p.restores {
		recorder.RequireResourceState(r.resource, r.state)
	}
	recorder.FlushBarriers()
}

// isEmpty reports whether the plan carries no copies.
func (p *plan) isEmpty() bool {
	return len(p.bufferRegions) == 0 && len(p.textureRegions) == 0
}
