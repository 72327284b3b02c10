package upload

import (
	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Kind identifies the destination shape of an upload request.
type Kind int

const (
	// KindBuffer copies bytes into a destination buffer range.
	KindBuffer Kind = iota

	// KindTexture2D fills subresources of a 2D texture.
	KindTexture2D

	// KindTexture3D fills subresources of a volume texture.
	KindTexture3D

	// KindTextureCube fills faces of a cube texture.
	KindTextureCube
)

// BatchPolicy controls when an accepted request is recorded and submitted.
type BatchPolicy int

const (
	// BatchPolicyDeferred holds the request until the next Flush; requests
	// accepted between flushes share one submission. The default.
	BatchPolicyDeferred BatchPolicy = iota

	// BatchPolicyImmediate records and submits the request on acceptance.
	BatchPolicyImmediate
)

// Producer fills a writable staging span with the request's payload.
// Returning false aborts the request with ErrorProducerFailed; nothing is
// recorded and the staging range is recycled with the frame slot.
type Producer func(dst []byte) bool

// DataSource describes where the payload comes from. Exactly one of the
// three fields may be set.
type DataSource struct {
	// Bytes is payload the request owns; the coordinator may keep the
	// reference until the copy is recorded.
	Bytes []byte

	// Borrowed is caller-owned payload copied into staging during
	// acceptance; the caller may reuse it as soon as Submit returns.
	Borrowed []byte

	// Produce is invoked with the staging span during acceptance.
	Produce Producer
}

// isZero reports whether no source was provided.
func (d DataSource) isZero() bool {
	return d.Bytes == nil && d.Borrowed == nil && d.Produce == nil
}

// SubresourceRequest addresses one texture subresource and optionally
// overrides the source pitches. Pitches of 0 derive from the destination
// format and extent.
type SubresourceRequest struct {
	// Slice is the destination mip level and array slice.
	Slice graphics.TextureSlice

	// RowPitch is the explicit source row stride in bytes; must be
	// 256-aligned and at least width × block size when set.
	RowPitch common.SizeBytes

	// SlicePitch is the explicit source 2D-slice stride in bytes; must be
	// consistent with RowPitch × rows when set.
	SlicePitch common.SizeBytes
}

// Request is the caller-facing description of one upload. Requests are
// accepted synchronously by Coordinator.Submit and assigned a Ticket.
type Request struct {
	// Kind selects the destination shape.
	Kind Kind

	// DstBuffer is the destination for KindBuffer requests.
	DstBuffer graphics.Buffer

	// DstOffset is the destination byte offset for KindBuffer requests.
	DstOffset common.SizeBytes

	// Size is the payload byte count for KindBuffer requests. Texture
	// requests derive sizes from the destination description.
	Size common.SizeBytes

	// DstTexture is the destination for texture requests.
	DstTexture graphics.Texture

	// Subresources lists the texture subresources to fill, in payload
	// order. Empty means mip 0 / slice 0.
	Subresources []SubresourceRequest

	// Data is the payload source.
	Data DataSource

	// Batch controls submission timing.
	Batch BatchPolicy

	// DstState is the logical state to restore the destination to after
	// the copy. Zero value restores ResourceStateCommon.
	DstState graphics.ResourceState

	// DebugName appears in error detail and failure logs.
	DebugName string
}

// validate rejects malformed requests before any staging is consumed.
func (r *Request) validate() *Error {
	if r.Data.isZero() {
		return newError(ErrorInvalidRequest, "%s: no data source", r.DebugName)
	}
	set := 0
	if r.Data.Bytes != nil {
		set++
	}
	if r.Data.Borrowed != nil {
		set++
	}
	if r.Data.Produce != nil {
		set++
	}
	if set > 1 {
		return newError(ErrorInvalidRequest, "%s: multiple data sources", r.DebugName)
	}

	switch r.Kind {
	case KindBuffer:
		if r.DstBuffer == nil {
			return newError(ErrorInvalidRequest, "%s: nil destination buffer", r.DebugName)
		}
		if r.Size == 0 {
			return newError(ErrorInvalidRequest, "%s: zero size", r.DebugName)
		}
		desc := r.DstBuffer.Descriptor()
		if uint64(r.DstOffset)+uint64(r.Size) > uint64(desc.Size) {
			return newError(ErrorInvalidRequest, "%s: range [%d, %d) exceeds buffer size %s",
				r.DebugName, r.DstOffset, uint64(r.DstOffset)+uint64(r.Size), desc.Size)
		}

	case KindTexture2D, KindTexture3D, KindTextureCube:
		if r.DstTexture == nil {
			return newError(ErrorInvalidRequest, "%s: nil destination texture", r.DebugName)
		}
		desc := r.DstTexture.Descriptor()
		if desc.Format.BlockSize() == 0 {
			return newError(ErrorInvalidRequest, "%s: destination format unknown", r.DebugName)
		}
		if r.Kind == KindTexture3D && desc.Dimension != graphics.TextureDimension3D {
			return newError(ErrorInvalidRequest, "%s: 3D request targets non-3D texture", r.DebugName)
		}
		for _, sub := range r.Subresources {
			if sub.Slice.MipLevel >= max(desc.MipLevels, 1) {
				return newError(ErrorInvalidRequest, "%s: mip %d out of range", r.DebugName, sub.Slice.MipLevel)
			}
			if sub.Slice.ArraySlice >= max(desc.ArraySize, 1) {
				return newError(ErrorInvalidRequest, "%s: array slice %d out of range", r.DebugName, sub.Slice.ArraySlice)
			}
			if sub.RowPitch != 0 {
				w := max(desc.Width>>sub.Slice.MipLevel, 1)
				minPitch := uint64(w) * desc.Format.BlockSize()
				if uint64(sub.RowPitch) < minPitch {
					return newError(ErrorInvalidRequest, "%s: row pitch %d below minimum %d", r.DebugName, sub.RowPitch, minPitch)
				}
				if uint64(sub.RowPitch)%TextureRowPitchAlignment != 0 {
					return newError(ErrorInvalidRequest, "%s: row pitch %d not %d-aligned", r.DebugName, sub.RowPitch, TextureRowPitchAlignment)
				}
				if sub.SlicePitch != 0 && uint64(sub.SlicePitch)%uint64(sub.RowPitch) != 0 {
					return newError(ErrorInvalidRequest, "%s: slice pitch %d inconsistent with row pitch %d", r.DebugName, sub.SlicePitch, sub.RowPitch)
				}
			}
		}

	default:
		return newError(ErrorInvalidRequest, "%s: unknown kind %d", r.DebugName, r.Kind)
	}

	return nil
}
