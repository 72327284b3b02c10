package webgpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Texture wraps a device texture.
type Texture struct {
	desc     graphics.TextureDesc
	raw      *wgpu.Texture
	released bool
}

// Ensure Texture implements graphics.Texture.
var _ graphics.Texture = (*Texture)(nil)

func newTexture(desc graphics.TextureDesc, raw *wgpu.Texture) *Texture {
	return &Texture{desc: desc, raw: raw}
}

// Descriptor returns the creation-time description.
func (t *Texture) Descriptor() graphics.TextureDesc {
	return t.desc
}

// NativeResource returns the backend identity of the texture.
func (t *Texture) NativeResource() graphics.NativeResource {
	return graphics.NewNativeResource(unsafe.Pointer(t), graphics.ResourceTypeTexture)
}

// CreateShaderResourceView creates a view over the full mip chain.
func (t *Texture) CreateShaderResourceView() graphics.NativeView {
	view, err := t.raw.CreateView(nil)
	if err != nil {
		return graphics.NativeView{}
	}
	return graphics.NewNativeView(unsafe.Pointer(view))
}

// Release destroys the device texture.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.raw.Release()
}

// Raw exposes the wrapped wgpu texture for bind group construction.
func (t *Texture) Raw() *wgpu.Texture {
	return t.raw
}
