package headless

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Texture is the headless texture: one tightly packed byte slab per
// subresource, indexed by (mip, array slice).
type Texture struct {
	desc     graphics.TextureDesc
	slabs    map[graphics.TextureSlice][]byte
	released bool
}

// Ensure Texture implements graphics.Texture.
var _ graphics.Texture = (*Texture)(nil)

func newTexture(desc graphics.TextureDesc) *Texture {
	return &Texture{
		desc:  desc,
		slabs: make(map[graphics.TextureSlice][]byte),
	}
}

// Descriptor returns the creation-time description.
func (t *Texture) Descriptor() graphics.TextureDesc {
	return t.desc
}

// NativeResource returns the backend identity of the texture.
func (t *Texture) NativeResource() graphics.NativeResource {
	return graphics.NewNativeResource(unsafe.Pointer(t), graphics.ResourceTypeTexture)
}

// CreateShaderResourceView creates an SRV over the full mip chain.
func (t *Texture) CreateShaderResourceView() graphics.NativeView {
	return graphics.NewNativeView(unsafe.Pointer(t))
}

// Release drops all subresource slabs.
func (t *Texture) Release() {
	t.released = true
	t.slabs = nil
}

// mipExtent returns the width and height of the given mip level.
func (t *Texture) mipExtent(mip uint32) (uint32, uint32) {
	w := t.desc.Width >> mip
	h := t.desc.Height >> mip
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return w, h
}

// writeSubresource copies de-pitched rows from staging memory into the
// subresource slab. src holds rowPitch-strided rows; the slab stores rows
// tightly packed (width * blockSize).
func (t *Texture) writeSubresource(slice graphics.TextureSlice, src []byte, rowPitch uint64) {
	if t.released {
		return
	}
	w, h := t.mipExtent(slice.MipLevel)
	block := t.desc.Format.BlockSize()
	rowBytes := uint64(w) * block

	depth := uint64(1)
	if t.desc.Dimension == graphics.TextureDimension3D {
		depth = uint64(t.desc.Depth) >> slice.MipLevel
		if depth == 0 {
			depth = 1
		}
	}

	slab := make([]byte, rowBytes*uint64(h)*depth)
	for z := uint64(0); z < depth; z++ {
		for row := uint64(0); row < uint64(h); row++ {
			srcOff := (z*uint64(h) + row) * rowPitch
			dstOff := (z*uint64(h) + row) * rowBytes
			if srcOff+rowBytes > uint64(len(src)) {
				break
			}
			copy(slab[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])
		}
	}
	t.slabs[slice] = slab
}

// SubresourceBytes exposes a subresource's tightly packed texel data for
// test verification. Returns nil when the subresource was never written.
//
// Parameters:
//   - slice: the mip level and array slice to read
//
// Returns:
//   - []byte: the packed texel data (shared, not a copy)
func (t *Texture) SubresourceBytes(slice graphics.TextureSlice) []byte {
	return t.slabs[slice]
}
