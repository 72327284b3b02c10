// Package engine orchestrates the frame execution core: per-frame slot
// cycling through the deferred reclaimer, scene update and preparation,
// upload flushing, pass recording through the commander, and fenced
// submission across frames in flight.
package engine

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/commander"
	"github.com/Carmen-Shannon/oxygen-core/engine/frame"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/profiler"
	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxygen-core/engine/scene"
	"github.com/Carmen-Shannon/oxygen-core/engine/sceneprep"
	"github.com/Carmen-Shannon/oxygen-core/engine/upload"
)

// engine implements the Engine interface.
// Coordinates the tick and render goroutines over the shared frame state.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	gfx       graphics.Graphics
	uploads   upload.Coordinator
	commander commander.Commander
	preparer  sceneprep.Preparer
	loop      *frame.Loop

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	scenes map[int]scene.Scene
	passes []pass.RenderPass

	viewport       common.Viewport
	framesInFlight uint32

	// frameSequence never wraps; the active slot derives from it.
	// slotFences[slot] holds the graphics fence that must complete
	// before that slot's resources can be reused.
	frameSequence common.FrameSequence
	slotFences    []uint64

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the frame execution core. It owns
// the graphics backend, the upload coordinator, the command submission
// layer, and the registered scenes and render passes, and it drives them
// through the per-frame lifecycle.
type Engine interface {
	// Graphics returns the backend the engine was built with.
	//
	// Returns:
	//   - graphics.Graphics: the backend instance
	Graphics() graphics.Graphics

	// Uploads returns the upload coordinator owned by the engine.
	//
	// Returns:
	//   - upload.Coordinator: the coordinator instance
	Uploads() upload.Coordinator

	// Commander returns the command submission layer owned by the engine.
	//
	// Returns:
	//   - commander.Commander: the commander instance
	Commander() commander.Commander

	// Loop returns the frame-thread scheduler. Work posted to it runs at
	// a deterministic point early in each frame.
	//
	// Returns:
	//   - *frame.Loop: the scheduler instance
	Loop() *frame.Loop

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the render loop at the given frame rate.
	// Pass 0 to uncap (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key. Scenes update
	// and render in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining order (lower first)
	//   - s: the scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene unregisters the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index to look up
	//
	// Returns:
	//   - scene.Scene: the registered scene, or nil
	Scene(key int) scene.Scene

	// AddPass appends a render pass to the frame's pass list. Passes
	// prepare and execute in registration order within each scene.
	//
	// Parameters:
	//   - p: the pass to register
	AddPass(p pass.RenderPass)

	// RenderFrame executes one complete frame: slot cycling and fence
	// waits, reclaimer and staging rotation, scene update, preparation,
	// upload flush, pass recording, and deferred submission. Exposed so
	// headless hosts and tests can drive frames directly without Run.
	//
	// Returns:
	//   - error: the error that invalidated the frame, if any; the slot
	//     still retires and the next frame may proceed
	RenderFrame() error

	// Run starts the engine and render goroutines and blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple
	// times; subsequent calls are no-ops.
	Quit()

	// Shutdown quits, releases engine-owned frame resources, and shuts
	// down the upload coordinator and graphics backend. Further frames
	// are refused after Shutdown returns.
	Shutdown()
}

var _ Engine = (*engine)(nil)

// NewEngine creates an engine around a graphics backend, wiring the
// upload coordinator, commander, scene preparer, and frame loop.
// Panics when no backend is supplied via WithGraphics.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if a subsystem could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		viewport:        common.Viewport{Width: 1280, Height: 720},
		framesInFlight:  common.DefaultFramesInFlight,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.gfx == nil {
		panic("engine: NewEngine requires a graphics backend via WithGraphics")
	}
	if e.loop == nil {
		e.loop = frame.NewLoop()
	}

	e.uploads = upload.NewCoordinator(e.gfx, upload.WithFramesInFlight(e.framesInFlight))
	e.commander = commander.NewCommander(e.gfx)

	preparer, err := sceneprep.NewPreparer(e.uploads)
	if err != nil {
		return nil, fmt.Errorf("engine: create scene preparer: %w", err)
	}
	e.preparer = preparer

	e.slotFences = make([]uint64, e.framesInFlight)
	return e, nil
}

func (e *engine) Graphics() graphics.Graphics {
	return e.gfx
}

func (e *engine) Uploads() upload.Coordinator {
	return e.uploads
}

func (e *engine) Commander() commander.Commander {
	return e.commander
}

func (e *engine) Loop() *frame.Loop {
	return e.loop
}

func (e *engine) Run() {
	e.running = true
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Shutdown() {
	e.signalQuit()
	e.preparer.Release()
	e.uploads.Shutdown()
	e.gfx.Shutdown()
}

// signalQuit closes the quit channel exactly once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Fires the tick callback at the configured rate and listens for
// dynamic rate changes via tickRateChannel.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the frame loop in its own goroutine. Recovers from
// panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			start := time.Now()
			if err := e.RenderFrame(); err != nil {
				log.Printf("frame %d aborted: %v", e.frameSequence, err)
			}

			if e.renderFrameLimit > 0 {
				if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) RenderFrame() error {
	// Advance the frame slot, waiting out the GPU if the slot's previous
	// submission has not retired yet. OnBeginFrame then runs the slot's
	// deferred release bucket before anything re-records into it.
	e.frameSequence++
	slot := e.frameSequence.Slot(e.framesInFlight)
	queue := e.gfx.Queue(graphics.QueueRoleGraphics)
	if fence := e.slotFences[slot]; fence != 0 && queue.GetCompletedValue() < fence {
		e.profiler.RecordSlotStall()
		queue.Wait(fence)
	}
	e.gfx.Reclaimer().OnBeginFrame(slot)
	e.uploads.OnFrameStart(slot)
	e.preparer.OnFrameStart(slot)
	e.loop.Tick()

	// Update and prepare every registered scene in z order, then flush
	// staged uploads before the GPU consumes the transient buffers.
	frameErr := e.renderScenes()
	e.uploads.Flush()

	if err := e.commander.SubmitDeferredCommandLists(); err != nil && frameErr == nil {
		frameErr = err
	}
	e.slotFences[slot] = queue.Signal()

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return frameErr
}

// renderScenes updates, prepares, and records passes for each scene in
// ascending z order. The first error aborts the remaining scenes; the
// frame still submits and fences so the slot retires normally.
func (e *engine) renderScenes() error {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		sc := e.scenes[k]
		sc.Update()

		camera := findCameraNode(sc)
		if !camera.IsValid() {
			continue
		}
		view, err := sceneprep.ResolveViewFromCamera(sc, camera, e.viewport)
		if err != nil {
			return err
		}
		prepared, err := e.preparer.Prepare(sc, view)
		if err != nil {
			return err
		}

		if err := e.recordPasses(prepared); err != nil {
			return err
		}

		if e.profilingEnabled {
			e.profiler.AddDrawCalls(int(prepared.DrawCount))
		}
	}
	return nil
}

// recordPasses records every registered pass into one deferred command
// list, finished through the commander so execution callbacks retire
// with the frame slot.
func (e *engine) recordPasses(prepared *sceneprep.PreparedSceneFrame) error {
	if len(e.passes) == 0 {
		return nil
	}

	recorder, err := e.gfx.AcquireCommandRecorder(graphics.QueueRoleGraphics)
	if err != nil {
		return err
	}
	scope, err := e.commander.PrepareCommandRecorder(recorder, graphics.QueueRoleGraphics, false)
	if err != nil {
		return err
	}

	ctx := &pass.Context{Recorder: scope.Recorder(), Frame: prepared}
	for _, p := range e.passes {
		if err := p.PrepareResources(ctx); err != nil {
			_ = scope.Finish()
			return fmt.Errorf("pass %q prepare: %w", p.Name(), err)
		}
	}
	for _, p := range e.passes {
		if err := p.Execute(ctx); err != nil {
			_ = scope.Finish()
			return fmt.Errorf("pass %q execute: %w", p.Name(), err)
		}
	}
	return scope.Finish()
}

// findCameraNode returns the handle of the first node carrying a camera
// component in pre-order, or the zero handle when the scene has none.
func findCameraNode(sc scene.Scene) graphics.NodeHandle {
	var found graphics.NodeHandle
	sc.TraversePreOrder(func(n scene.Node) {
		if !found.IsValid() && n.Camera() != nil {
			found = n.Handle()
		}
	}, nil)
	return found
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send; replace any pending value.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit caps the render loop frame rate.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) AddPass(p pass.RenderPass) {
	e.passes = append(e.passes, p)
}
