// Package webgpu implements the backend-independent graphics API over
// cogentcore/webgpu (wgpu-native). WebGPU exposes a single hardware queue,
// so every queue role maps onto it; fences are emulated conservatively by
// polling the device. Draw recording requires a configured surface target;
// copy and dispatch recording work headless.
package webgpu

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// wgpuGraphics implements the graphics.Graphics factory.
type wgpuGraphics struct {
	mu sync.Mutex

	instance    *wgpu.Instance
	adapter     *wgpu.Adapter
	device      *wgpu.Device
	deviceQueue *wgpu.Queue

	// WebGPU has one queue; all roles share it and its fence timeline.
	queue *Queue

	allocator graphics.DescriptorAllocator
	registry  *graphics.ResourceRegistry
	reclaimer *graphics.DeferredReclaimer

	// Compiled pipelines keyed by the pipeline cache key the recorder
	// binds with.
	renderPipelines  map[uint64]*wgpu.RenderPipeline
	computePipelines map[uint64]*wgpu.ComputePipeline

	// The active surface target draws render into, nil when headless.
	target *renderTarget

	// Uniform ring carrying per-draw root constant blocks. WebGPU has no
	// root constants; shaders read the block through a dynamic-offset
	// uniform binding instead.
	drawConstants       *wgpu.Buffer
	drawConstantsOffset uint64

	framesInFlight       uint32
	descriptorCapacity   uint32
	forceFallbackAdapter bool
	shutdown             bool
}

// renderTarget is the color and depth attachment pair an open render pass
// draws into.
type renderTarget struct {
	colorView *wgpu.TextureView
	depthView *wgpu.TextureView
}

// rootConstantDWORDs is the size of the per-draw root constants block.
const rootConstantDWORDs = 8

// drawConstantsStride is the ring step per draw, padded to the WebGPU
// uniform dynamic-offset alignment.
const drawConstantsStride = 256

// drawConstantsCapacity is the number of draws the ring holds before it
// wraps.
const drawConstantsCapacity = 4096

// Ensure wgpuGraphics implements graphics.Graphics.
var _ graphics.Graphics = (*wgpuGraphics)(nil)

// GraphicsBuilderOption configures the webgpu backend during construction.
type GraphicsBuilderOption func(*wgpuGraphics)

// WithFramesInFlight sets the number of frame slots the reclaimer cycles.
//
// Parameters:
//   - n: the frames-in-flight count (0 keeps the default)
//
// Returns:
//   - GraphicsBuilderOption: the option to pass to NewGraphics
func WithFramesInFlight(n uint32) GraphicsBuilderOption {
	return func(g *wgpuGraphics) {
		if n > 0 {
			g.framesInFlight = n
		}
	}
}

// WithDescriptorCapacity sets the per-segment descriptor heap capacity.
//
// Parameters:
//   - n: descriptors per (view type × visibility) segment (0 keeps the default)
//
// Returns:
//   - GraphicsBuilderOption: the option to pass to NewGraphics
func WithDescriptorCapacity(n uint32) GraphicsBuilderOption {
	return func(g *wgpuGraphics) {
		g.descriptorCapacity = n
	}
}

// WithForceFallbackAdapter requests the software rasterizer adapter. Used
// by CI environments without a GPU.
//
// Returns:
//   - GraphicsBuilderOption: the option to pass to NewGraphics
func WithForceFallbackAdapter() GraphicsBuilderOption {
	return func(g *wgpuGraphics) {
		g.forceFallbackAdapter = true
	}
}

// NewGraphics creates the webgpu backend: instance, adapter, device, and
// queue, plus the shared descriptor allocator, registry, and reclaimer.
// Locks the calling goroutine to its OS thread; wgpu-native requires the
// device to be driven from one thread.
//
// Parameters:
//   - options: functional options for backend configuration
//
// Returns:
//   - graphics.Graphics: the newly created backend
//   - error: an error if no adapter or device is available
func NewGraphics(options ...GraphicsBuilderOption) (graphics.Graphics, error) {
	runtime.LockOSThread()

	g := &wgpuGraphics{
		renderPipelines:  make(map[uint64]*wgpu.RenderPipeline),
		computePipelines: make(map[uint64]*wgpu.ComputePipeline),
	}

	for _, opt := range options {
		opt(g)
	}

	g.instance = wgpu.CreateInstance(nil)

	adapter, err := g.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: g.forceFallbackAdapter,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}
	g.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: request device: %w", err)
	}
	g.device = device
	g.deviceQueue = device.GetQueue()

	g.reclaimer = graphics.NewDeferredReclaimer(g.framesInFlight)
	g.allocator = graphics.NewDescriptorAllocator(g.descriptorCapacity, g.reclaimer)
	g.registry = graphics.NewResourceRegistry()
	g.queue = newQueue(g.device, g.deviceQueue)

	return g, nil
}

// Name identifies the backend.
func (g *wgpuGraphics) Name() string {
	return "webgpu"
}

// CreateBuffer creates a device buffer. Host-visible buffers carry a CPU
// shadow slab flushed through the queue on Unmap.
func (g *wgpuGraphics) CreateBuffer(desc graphics.BufferDesc) (graphics.Buffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shutdown {
		return nil, fmt.Errorf("webgpu: backend is shut down")
	}
	if desc.Size == 0 {
		return nil, fmt.Errorf("webgpu: buffer %q has zero size", desc.Label)
	}

	raw, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(desc.Size),
		Usage: toWGPUBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create buffer %q: %w", desc.Label, err)
	}
	return newBuffer(desc, raw, g.deviceQueue), nil
}

// CreateTexture creates a device texture.
func (g *wgpuGraphics) CreateTexture(desc graphics.TextureDesc) (graphics.Texture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shutdown {
		return nil, fmt.Errorf("webgpu: backend is shut down")
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("webgpu: texture %q has zero extent", desc.Label)
	}
	format, ok := toWGPUFormat(desc.Format)
	if !ok {
		return nil, fmt.Errorf("webgpu: texture %q has unknown format", desc.Label)
	}

	depth := desc.Depth
	if desc.Dimension != graphics.TextureDimension3D {
		depth = desc.ArraySize
		if depth == 0 {
			depth = 1
		}
	}
	mips := desc.MipLevels
	if mips == 0 {
		mips = 1
	}

	raw, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: depth,
		},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     toWGPUDimension(desc.Dimension),
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create texture %q: %w", desc.Label, err)
	}
	return newTexture(desc, raw), nil
}

// Queue returns the queue for the given role. WebGPU exposes one queue, so
// every role resolves to it.
func (g *wgpuGraphics) Queue(role graphics.QueueRole) graphics.CommandQueue {
	return g.queue
}

// AcquireCommandRecorder returns a recorder targeting the given queue role.
func (g *wgpuGraphics) AcquireCommandRecorder(role graphics.QueueRole) (graphics.CommandRecorder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shutdown {
		return nil, fmt.Errorf("webgpu: backend is shut down")
	}
	return newRecorder(g, role), nil
}

// DescriptorAllocator returns the backend's descriptor allocator.
func (g *wgpuGraphics) DescriptorAllocator() graphics.DescriptorAllocator {
	return g.allocator
}

// Registry returns the resource registry.
func (g *wgpuGraphics) Registry() *graphics.ResourceRegistry {
	return g.registry
}

// Reclaimer returns the deferred reclaimer.
func (g *wgpuGraphics) Reclaimer() *graphics.DeferredReclaimer {
	return g.reclaimer
}

// Shutdown waits for the device to idle, drains the reclaimer, and
// releases the device objects.
func (g *wgpuGraphics) Shutdown() {
	g.mu.Lock()
	if g.shutdown {
		g.mu.Unlock()
		return
	}
	g.shutdown = true
	g.mu.Unlock()

	g.device.Poll(true, nil)
	g.reclaimer.ProcessAllDeferredReleases()

	if g.drawConstants != nil {
		g.drawConstants.Release()
		g.drawConstants = nil
	}
	g.device.Release()
	g.adapter.Release()
	g.instance.Release()
}

// RegisterRenderPipeline stores a compiled render pipeline under its cache
// key so recorders can bind it with SetPipelineState. The renderer's
// pipeline bootstrap compiles descriptions and registers the results here.
//
// Parameters:
//   - key: the pipeline cache key
//   - p: the compiled render pipeline
func (g *wgpuGraphics) RegisterRenderPipeline(key uint64, p *wgpu.RenderPipeline) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.renderPipelines[key] = p
}

// RegisterComputePipeline stores a compiled compute pipeline under its
// cache key.
//
// Parameters:
//   - key: the pipeline cache key
//   - p: the compiled compute pipeline
func (g *wgpuGraphics) RegisterComputePipeline(key uint64, p *wgpu.ComputePipeline) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.computePipelines[key] = p
}

// Device exposes the raw device for surface configuration and pipeline
// compilation.
func (g *wgpuGraphics) Device() *wgpu.Device {
	return g.device
}

// Instance exposes the raw instance for surface creation.
func (g *wgpuGraphics) Instance() *wgpu.Instance {
	return g.instance
}

// Adapter exposes the raw adapter for surface capability queries.
func (g *wgpuGraphics) Adapter() *wgpu.Adapter {
	return g.adapter
}

func (g *wgpuGraphics) renderPipeline(key uint64) *wgpu.RenderPipeline {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.renderPipelines[key]
}

func (g *wgpuGraphics) computePipeline(key uint64) *wgpu.ComputePipeline {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.computePipelines[key]
}

// writeDrawConstants stores one root-constant block at the next ring slot
// and advances the ring.
func (g *wgpuGraphics) writeDrawConstants(block [rootConstantDWORDs]uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.drawConstants == nil {
		buf, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Draw Constants Ring",
			Size:  uint64(drawConstantsStride * drawConstantsCapacity),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return
		}
		g.drawConstants = buf
	}

	g.deviceQueue.WriteBuffer(g.drawConstants, g.drawConstantsOffset, wgpu.ToBytes(block[:]))
	g.drawConstantsOffset += drawConstantsStride
	if g.drawConstantsOffset >= drawConstantsStride*drawConstantsCapacity {
		g.drawConstantsOffset = 0
	}
}

// DrawConstantsBuffer exposes the draw constants ring for bind group
// construction; nil until the first draw writes constants.
func (g *wgpuGraphics) DrawConstantsBuffer() *wgpu.Buffer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.drawConstants
}

func (g *wgpuGraphics) setTarget(t *renderTarget) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.target = t
}

func (g *wgpuGraphics) currentTarget() *renderTarget {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

// toWGPUBufferUsage maps the portable usage bits onto wgpu usage flags.
// Host-visible buffers are shadowed in CPU memory and flushed with
// WriteBuffer, so they only need CopyDst on the device side; MapWrite
// staging additionally needs CopySrc for recorded staging-to-dest copies.
func toWGPUBufferUsage(u graphics.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&graphics.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&graphics.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&graphics.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&graphics.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&graphics.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&graphics.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&graphics.BufferUsageMapWrite != 0 {
		out |= wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst
	}
	if u&graphics.BufferUsageMapRead != 0 {
		out |= wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead
	}
	return out
}

// toWGPUFormat maps a portable format onto a wgpu texture format.
func toWGPUFormat(f graphics.Format) (wgpu.TextureFormat, bool) {
	switch f {
	case graphics.FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, true
	case graphics.FormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm, true
	case graphics.FormatRG16Float:
		return wgpu.TextureFormatRG16Float, true
	case graphics.FormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float, true
	case graphics.FormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float, true
	case graphics.FormatR32Uint:
		return wgpu.TextureFormatR32Uint, true
	case graphics.FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float, true
	default:
		return wgpu.TextureFormatUndefined, false
	}
}

// toWGPUDimension maps a portable texture dimension onto wgpu. Cube
// textures are 2D textures with six array layers.
func toWGPUDimension(d graphics.TextureDimension) wgpu.TextureDimension {
	if d == graphics.TextureDimension3D {
		return wgpu.TextureDimension3D
	}
	return wgpu.TextureDimension2D
}
