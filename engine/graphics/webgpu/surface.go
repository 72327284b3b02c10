package webgpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Surface is the presentable swapchain target. The host creates it from a
// platform surface descriptor; the backend acquires the current texture
// lazily when a frame's first draw needs a target and releases it on
// Present.
type Surface struct {
	mu      sync.Mutex
	backend *wgpuGraphics
	raw     *wgpu.Surface

	format        wgpu.TextureFormat
	width, height uint32

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	current     *wgpu.Texture
	currentView *wgpu.TextureView
}

// Ensure Surface implements graphics.Surface.
var _ graphics.Surface = (*Surface)(nil)

// CreateSurface wraps a platform surface and configures it at the given
// size. The caller owns the surface descriptor; windowing sits outside the
// engine core.
//
// Parameters:
//   - gfx: the webgpu backend the surface presents through
//   - descriptor: the platform surface descriptor
//   - width, height: initial surface extents in pixels
//
// Returns:
//   - *Surface: the configured surface
//   - error: an error if gfx is not a webgpu backend
func CreateSurface(gfx graphics.Graphics, descriptor *wgpu.SurfaceDescriptor, width, height uint32) (*Surface, error) {
	backend, ok := gfx.(*wgpuGraphics)
	if !ok {
		return nil, fmt.Errorf("webgpu: surface requires the webgpu backend, got %q", gfx.Name())
	}

	s := &Surface{
		backend: backend,
		raw:     backend.instance.CreateSurface(descriptor),
	}
	s.Resize(width, height)
	return s, nil
}

// Resize reconfigures the surface and recreates the depth attachment.
//
// Parameters:
//   - width, height: the new surface extents in pixels
func (s *Surface) Resize(width, height uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width, s.height = width, height

	capabilities := s.raw.GetCapabilities(s.backend.adapter)
	s.format = capabilities.Formats[0]

	s.raw.Configure(s.backend.adapter, s.backend.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if s.depthView != nil {
		s.depthView.Release()
		s.depthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}

	depth, err := s.backend.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Surface Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return
	}
	view, err := depth.CreateView(nil)
	if err != nil {
		depth.Release()
		return
	}
	s.depthTexture = depth
	s.depthView = view
}

// Acquire obtains the current swapchain texture and installs it as the
// backend's render target. Idempotent within a frame.
//
// Returns:
//   - error: an error if the swapchain texture could not be acquired
func (s *Surface) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil
	}

	texture, err := s.raw.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("webgpu: acquire surface texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return fmt.Errorf("webgpu: create surface view: %w", err)
	}

	s.current = texture
	s.currentView = view
	s.backend.setTarget(&renderTarget{colorView: view, depthView: s.depthView})
	return nil
}

// Present presents the acquired texture and clears the backend's target.
//
// Returns:
//   - error: an error if no texture was acquired this frame
func (s *Surface) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return fmt.Errorf("webgpu: present without an acquired surface texture")
	}

	s.raw.Present()

	s.backend.setTarget(nil)
	s.currentView.Release()
	s.currentView = nil
	s.current.Release()
	s.current = nil
	return nil
}

// Release drops the surface and its depth attachment.
func (s *Surface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentView != nil {
		s.currentView.Release()
		s.currentView = nil
	}
	if s.current != nil {
		s.current.Release()
		s.current = nil
	}
	if s.depthView != nil {
		s.depthView.Release()
		s.depthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
	s.raw.Release()
}
