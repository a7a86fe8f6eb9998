// Package engine drives scenes frame by frame: a fixed-rate tick loop for application logic
// and a render loop that updates, culls and draws every registered scene layer.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/culler"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
)

// Layer is one scene drawn by one renderer, culled against the renderer's camera.
type Layer struct {
	Scene    scene.Scene
	Renderer renderer.Renderer

	culler culler.Culler
	dirty  bool
}

// engine implements the Engine interface.
// Coordinates the tick and render goroutines.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	// frameMu serializes tick callbacks with render frames so callbacks may mutate scenes.
	frameMu sync.Mutex

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	layers map[int]*Layer

	renderFrameLimit atomic.Int64 // minimum frame duration in nanoseconds; 0 = uncapped
	frames           atomic.Uint64
}

// Engine is the main entry point for the engine.
// It orchestrates the tick loop and the render loop over scene layers.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the profiler fed by every rendered frame.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for application logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// The callback runs exclusively of render frames and may modify scenes.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key, drawn by r from r's camera.
	// Shaders are built before the first frame that draws the layer.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	//   - r: the Renderer drawing the scene
	AddScene(key int, s scene.Scene, r renderer.Renderer)

	// RemoveScene removes the layer at the given z-index key and releases the backend
	// resources its renderer held for the scene's geometries.
	//
	// Parameters:
	//   - key: the z-index of the layer to remove
	RemoveScene(key int)

	// Layer retrieves the layer registered at the given z-index key.
	// Returns nil if no layer exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the layer to retrieve
	//
	// Returns:
	//   - *Layer: the layer at the key, or nil if not found
	Layer(key int) *Layer

	// Scenes returns all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scene map
	Scenes() map[int]scene.Scene

	// Invalidate marks the layer's shaders for rebuilding before its next frame. Call it
	// after attaching or detaching content or changing effects. After the rebuild the
	// renderer releases replaced program clones and detached geometries.
	//
	// Parameters:
	//   - key: the z-index of the layer
	Invalidate(key int)

	// RenderFrame renders one frame of every layer in ascending key order and feeds the
	// profiler. A failing layer does not stop later layers.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - error: the errors of every failing layer, joined
	RenderFrame(dt float32) error

	// Frames returns the number of frames rendered.
	Frames() uint64

	// Run starts the tick and render loops and blocks until Quit is called.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		layers:          make(map[int]*Layer),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	return e
}

func (e *engine) Run() {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
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

			e.frameMu.Lock()
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
			e.frameMu.Unlock()
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("engine: render goroutine recovered from panic", "panic", r)
			e.Quit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if err := e.RenderFrame(dt); err != nil {
			common.Logger().Warn("engine: frame failed", "frame", e.Frames(), "error", err)
		}

		if limit := time.Duration(e.renderFrameLimit.Load()); limit > 0 {
			if remaining := limit - time.Since(lastRender); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) RenderFrame(dt float32) error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	keys := make([]int, 0, len(e.layers))
	for k := range e.layers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var (
		fs   profiler.FrameStats
		errs []error
	)
	for _, k := range keys {
		if err := e.renderLayer(k, e.layers[k], &fs); err != nil {
			errs = append(errs, err)
		}
	}

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	if e.profilingEnabled {
		e.profiler.Tick(fs)
	}
	e.frames.Add(1)

	return errors.Join(errs...)
}

// renderLayer runs one layer's frame: update, shader build if invalidated, cull and draw.
// Cull and draw counters are added to fs.
func (e *engine) renderLayer(key int, l *Layer, fs *profiler.FrameStats) error {
	l.Scene.Update()
	if l.dirty {
		if err := l.Scene.BuildShaders(); err != nil {
			// Geometries that did build still draw; failed ones are skipped by the renderer.
			common.Logger().Warn("engine: shader build failed", "scene", l.Scene.Name(), "error", err)
		}
		l.dirty = false
		l.Renderer.Prune(e.rendererGeometries(l.Renderer))
	}

	if cam := l.Renderer.Camera(); l.culler.Camera() != cam {
		l.culler.SetCamera(cam)
	}
	visible := l.culler.ComputeVisibleSet(l.Scene.Root())
	cs := l.culler.Stats()
	fs.Cull.Tested += cs.Tested
	fs.Cull.Rejected += cs.Rejected
	fs.Cull.Visible += cs.Visible

	err := l.Renderer.Draw(visible)
	ds := l.Renderer.Stats()
	fs.Draw.DrawCalls += ds.DrawCalls
	fs.Draw.Skipped += ds.Skipped
	fs.Draw.PipelinesCreated += ds.PipelinesCreated
	if err != nil {
		return fmt.Errorf("scene %d (%s): %w", key, l.Scene.Name(), err)
	}
	return nil
}

// rendererGeometries returns the geometries of every layer drawn by r.
func (e *engine) rendererGeometries(r renderer.Renderer) []*scene.Geometry {
	var out []*scene.Geometry
	for _, l := range e.layers {
		if l.Renderer == r {
			out = append(out, l.Scene.Geometries()...)
		}
	}
	return out
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.frameMu.Lock()
	e.profilingEnabled = true
	e.frameMu.Unlock()
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.frameMu.Lock()
	e.profilingEnabled = false
	e.frameMu.Unlock()
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send; a pending update is replaced.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.frameMu.Lock()
	e.tickCallback = callback
	e.frameMu.Unlock()
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.frameMu.Lock()
	e.renderCallback = callback
	e.frameMu.Unlock()
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit.Store(int64(frameDuration(fps)))
}

func (e *engine) AddScene(key int, s scene.Scene, r renderer.Renderer) {
	if s == nil || r == nil {
		panic("engine: AddScene requires a non-nil Scene and Renderer")
	}
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	e.layers[key] = newLayer(s, r)
}

func (e *engine) RemoveScene(key int) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	l, ok := e.layers[key]
	if !ok {
		return
	}
	delete(e.layers, key)
	l.Renderer.ReleaseGeometries(l.Scene.Geometries()...)
}

func (e *engine) Layer(key int) *Layer {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	return e.layers[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	cp := make(map[int]scene.Scene, len(e.layers))
	for k, l := range e.layers {
		cp[k] = l.Scene
	}
	return cp
}

func (e *engine) Invalidate(key int) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	if l, ok := e.layers[key]; ok {
		l.dirty = true
	}
}

func newLayer(s scene.Scene, r renderer.Renderer) *Layer {
	return &Layer{
		Scene:    s,
		Renderer: r,
		culler:   culler.NewCuller(r.Camera()),
		dirty:    true,
	}
}

// frameDuration converts a frame rate to a frame duration; 0 for rates <= 0.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
