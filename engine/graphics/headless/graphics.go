// Package headless implements the backend-independent graphics API with
// plain in-memory objects: buffers are byte slabs, copies apply at submit
// time, and fences complete synchronously. It backs the engine's tests and
// server-side (no display) deployments.
package headless

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// headlessGraphics implements the graphics.Graphics factory.
type headlessGraphics struct {
	mu sync.Mutex

	queues    [3]*Queue
	allocator graphics.DescriptorAllocator
	registry  *graphics.ResourceRegistry
	reclaimer *graphics.DeferredReclaimer

	framesInFlight     uint32
	descriptorCapacity uint32
	shutdown           bool
}

// Ensure headlessGraphics implements graphics.Graphics.
var _ graphics.Graphics = (*headlessGraphics)(nil)

// GraphicsBuilderOption configures the headless backend during construction.
type GraphicsBuilderOption func(*headlessGraphics)

// WithFramesInFlight sets the number of frame slots the reclaimer cycles.
//
// Parameters:
//   - n: the frames-in-flight count (0 keeps the default)
//
// Returns:
//   - GraphicsBuilderOption: the option to pass to NewGraphics
func WithFramesInFlight(n uint32) GraphicsBuilderOption {
	return func(g *headlessGraphics) {
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
	return func(g *headlessGraphics) {
		g.descriptorCapacity = n
	}
}

// NewGraphics creates the headless backend with the provided options.
//
// Parameters:
//   - options: functional options for backend configuration
//
// Returns:
//   - graphics.Graphics: the newly created backend
func NewGraphics(options ...GraphicsBuilderOption) graphics.Graphics {
	g := &headlessGraphics{}

	for _, opt := range options {
		opt(g)
	}

	g.reclaimer = graphics.NewDeferredReclaimer(g.framesInFlight)
	g.allocator = graphics.NewDescriptorAllocator(g.descriptorCapacity, g.reclaimer)
	g.registry = graphics.NewResourceRegistry()
	g.queues[graphics.QueueRoleGraphics] = newQueue(graphics.QueueRoleGraphics)
	g.queues[graphics.QueueRoleCompute] = newQueue(graphics.QueueRoleCompute)
	g.queues[graphics.QueueRoleTransfer] = newQueue(graphics.QueueRoleTransfer)

	return g
}

// Name identifies the backend.
func (g *headlessGraphics) Name() string {
	return "headless"
}

// CreateBuffer creates an in-memory buffer.
func (g *headlessGraphics) CreateBuffer(desc graphics.BufferDesc) (graphics.Buffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shutdown {
		return nil, fmt.Errorf("headless: backend is shut down")
	}
	if desc.Size == 0 {
		return nil, fmt.Errorf("headless: buffer %q has zero size", desc.Label)
	}
	return newBuffer(desc), nil
}

// CreateTexture creates an in-memory texture.
func (g *headlessGraphics) CreateTexture(desc graphics.TextureDesc) (graphics.Texture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shutdown {
		return nil, fmt.Errorf("headless: backend is shut down")
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("headless: texture %q has zero extent", desc.Label)
	}
	if desc.Format.BlockSize() == 0 {
		return nil, fmt.Errorf("headless: texture %q has unknown format", desc.Label)
	}
	return newTexture(desc), nil
}

// Queue returns the queue for the given role.
func (g *headlessGraphics) Queue(role graphics.QueueRole) graphics.CommandQueue {
	return g.queues[role]
}

// AcquireCommandRecorder returns a recorder targeting the given queue role.
func (g *headlessGraphics) AcquireCommandRecorder(role graphics.QueueRole) (graphics.CommandRecorder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shutdown {
		return nil, fmt.Errorf("headless: backend is shut down")
	}
	return newRecorder(role), nil
}

// DescriptorAllocator returns the backend's descriptor allocator.
func (g *headlessGraphics) DescriptorAllocator() graphics.DescriptorAllocator {
	return g.allocator
}

// Registry returns the resource registry.
func (g *headlessGraphics) Registry() *graphics.ResourceRegistry {
	return g.registry
}

// Reclaimer returns the deferred reclaimer.
func (g *headlessGraphics) Reclaimer() *graphics.DeferredReclaimer {
	return g.reclaimer
}

// Shutdown drains the reclaimer and refuses further work.
func (g *headlessGraphics) Shutdown() {
	g.mu.Lock()
	if g.shutdown {
		g.mu.Unlock()
		return
	}
	g.shutdown = true
	g.mu.Unlock()

	g.reclaimer.ProcessAllDeferredReleases()
}
