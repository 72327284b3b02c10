package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/frame"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithGraphics sets the graphics backend the engine runs against.
// Required; NewEngine panics when no backend is supplied.
//
// Parameters:
//   - gfx: the backend instance (headless, webgpu, ...)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGraphics(gfx graphics.Graphics) EngineBuilderOption {
	return func(e *engine) {
		e.gfx = gfx
	}
}

// WithFramesInFlight sets how many frames may be in flight on the GPU at
// once. Staging banks, reclaimer buckets, and transient buffers are all
// sized by this count. Values <= 0 keep the default.
//
// Parameters:
//   - n: the frames-in-flight count (default 3)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFramesInFlight(n uint32) EngineBuilderOption {
	return func(e *engine) {
		if n > 0 {
			e.framesInFlight = n
		}
	}
}

// WithViewport sets the render viewport used when resolving camera
// projections.
//
// Parameters:
//   - width, height: viewport extents in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewport(width, height uint32) EngineBuilderOption {
	return func(e *engine) {
		e.viewport = common.Viewport{Width: float32(width), Height: float32(height)}
	}
}

// WithFrameLoop sets a pre-configured frame-thread scheduler rather than
// letting the engine create one with defaults.
//
// Parameters:
//   - l: a pre-configured Loop instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLoop(l *frame.Loop) EngineBuilderOption {
	return func(e *engine) {
		e.loop = l
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// The tick callback will be called at this rate for game logic updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
// Scenes are rendered in ascending key order during the render loop.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
