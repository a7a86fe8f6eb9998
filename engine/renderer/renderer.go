package renderer

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/culler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// Renderer constant semantics pushed before every draw. Programs that do not declare one
// simply skip it.
const (
	WorldSemantic                 = "World"
	ViewSemantic                  = "View"
	ProjectionSemantic            = "Projection"
	ViewProjectionSemantic        = "ViewProjection"
	WorldViewProjectionSemantic   = "WorldViewProjection"
	CameraPositionSemantic        = "CameraPosition"
	InverseViewSemantic           = "InverseView"
	WorldInverseTransposeSemantic = "WorldInverseTranspose"
)

// ErrNoProgram is returned for a visible geometry whose shader was never built.
var ErrNoProgram = errors.New("renderer: geometry has no program")

// DrawStats counts the work of the last Draw.
type DrawStats struct {
	// DrawCalls is the number of draw calls handed to the backend.
	DrawCalls int
	// Skipped is the number of visible geometries that could not be drawn.
	Skipped int
	// PipelinesCreated is the number of pipelines registered during the frame.
	PipelinesCreated int
}

// drawnGeometry is the backend state a geometry keeps alive.
type drawnGeometry struct {
	program shader.Program
	mesh    *scene.Mesh
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	cam         camera.Camera
	backendType RendererBackendType
	backend     RendererBackend
	stats       DrawStats

	// drawn holds the program clone and mesh each geometry was last drawn with; meshRefs
	// counts the tracked geometries per mesh.
	drawn    map[*scene.Geometry]drawnGeometry
	meshRefs map[*scene.Mesh]int

	// Pre-creation config collected from builder options
	wgpuConfig wgpuBackendConfig
	pending    []pipeline.Pipeline
}

// Renderer draws the visible set produced by a culler. For every geometry it resolves a
// pipeline for the program and render state, pushes the renderer constants, applies the bound
// effects and hands a DrawCall to its backend. Pipelines are cached by key.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the backend objects for one or more pipelines and caches them
	// by PipelineKey. Keys already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// PipelineFor resolves the pipeline for a geometry's program and render state snapshot,
	// creating and registering it on first use.
	//
	// Parameters:
	//   - g: a geometry whose shader has been built
	//
	// Returns:
	//   - pipeline.Pipeline: the cached pipeline
	//   - error: ErrNoProgram, or an error if registration fails
	PipelineFor(g *scene.Geometry) (pipeline.Pipeline, error)

	// Draw renders one frame of the visible set in its order. Geometries that fail are
	// skipped and their errors joined; the frame is still ended.
	//
	// Parameters:
	//   - visible: the culler's visible set
	//
	// Returns:
	//   - error: the joined per-geometry errors, or a frame error from the backend
	Draw(visible *culler.VisibleSet) error

	// Camera returns the camera supplying the view and projection constants.
	Camera() camera.Camera

	// SetCamera replaces the camera.
	//
	// Parameters:
	//   - cam: the new camera (must not be nil)
	SetCamera(cam camera.Camera)

	// Resize updates the camera aspect ratio and, if the backend renders into a target,
	// resizes it.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the backend target cannot be resized
	Resize(width, height uint32) error

	// ReleaseGeometries frees the backend resources of geometries that will not be drawn
	// again: their program clones, and their meshes once no other drawn geometry uses them.
	//
	// Parameters:
	//   - geometries: the discarded geometries
	ReleaseGeometries(geometries ...*scene.Geometry)

	// Prune releases the resources of every tracked geometry not in live, and the replaced
	// program clones of geometries in live whose shader was rebuilt.
	//
	// Parameters:
	//   - live: every geometry still drawn by this renderer
	Prune(live []*scene.Geometry)

	// Backend returns the backend executing draw calls.
	Backend() RendererBackend

	// Stats returns the counters of the last Draw.
	Stats() DrawStats

	// Release frees the backend and clears the pipeline cache.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing from cam's point of view. Without WithBackend a
// backend of the configured type is created, the headless WebGPU backend by default.
//
// Parameters:
//   - cam: the camera (must not be nil)
//   - options: builder options
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the backend cannot be created or a pre-registered pipeline fails
func NewRenderer(cam camera.Camera, options ...RendererBuilderOption) (Renderer, error) {
	if cam == nil {
		panic("renderer: NewRenderer requires a camera")
	}
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		drawn:         make(map[*scene.Geometry]drawnGeometry),
		meshRefs:      make(map[*scene.Mesh]int),
		cam:           cam,
		backendType:   BackendTypeWGPU,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch r.backendType {
		case BackendTypeRecording:
			r.backend = NewRecordingBackend()
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(r.wgpuConfig)
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}
	r.backendType = r.backend.Type()

	if err := r.RegisterPipelines(r.pending...); err != nil {
		r.backend.Release()
		return nil, err
	}
	r.pending = nil
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		if _, err := r.register(p); err != nil {
			return err
		}
	}
	return nil
}

// register creates p on the backend unless its key is cached, returning the cached pipeline.
// The caller holds r.mu.
func (r *renderer) register(p pipeline.Pipeline) (pipeline.Pipeline, error) {
	if cached, ok := r.pipelineCache[p.PipelineKey()]; ok {
		return cached, nil
	}
	if err := r.backend.RegisterRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("renderer: register pipeline %s: %w", p.PipelineKey(), err)
	}
	r.pipelineCache[p.PipelineKey()] = p
	r.stats.PipelinesCreated++
	common.Logger().Info("renderer: pipeline registered", "key", p.PipelineKey())
	return p, nil
}

// PipelineKey is the cache key of the pipeline drawing g: program label, vertex layout and
// render state snapshot.
//
// Parameters:
//   - g: a geometry whose shader has been built
//
// Returns:
//   - string: the key, empty if g has no program
func PipelineKey(g *scene.Geometry) string {
	pi := g.Program()
	if pi == nil {
		return ""
	}
	return pi.Program().Label() + "|" + pi.VertexLayout().String() + "|" + g.States().Key()
}

func (r *renderer) PipelineFor(g *scene.Geometry) (pipeline.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineFor(g)
}

func (r *renderer) pipelineFor(g *scene.Geometry) (pipeline.Pipeline, error) {
	pi := g.Program()
	if pi == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProgram, g.Name())
	}
	key := PipelineKey(g)
	if cached, ok := r.pipelineCache[key]; ok {
		return cached, nil
	}
	opts := append([]pipeline.PipelineBuilderOption{
		pipeline.WithProgram(pi.Program()),
		pipeline.WithVertexLayout(pi.VertexLayout()),
		pipeline.WithTopology(g.Mesh().Topology),
	}, g.States().PipelineOptions()...)
	return r.register(pipeline.NewPipeline(key, opts...))
}

func (r *renderer) Draw(visible *culler.VisibleSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = DrawStats{}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}

	view := r.cam.ViewMatrix()
	proj := r.cam.ProjectionMatrix()
	viewProj := r.cam.ViewProjectionMatrix()
	ex, ey, ez := r.cam.Position()
	eye := [3]float32{ex, ey, ez}

	var errs []error
	for _, g := range visible.Geometries() {
		if err := r.drawGeometry(g, view, proj, viewProj, eye); err != nil {
			r.stats.Skipped++
			errs = append(errs, err)
			continue
		}
		r.stats.DrawCalls++
	}

	if err := r.backend.EndFrame(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		common.Logger().Warn("renderer: frame had failed draws", "skipped", r.stats.Skipped)
	}
	common.Logger().Debug("renderer: frame drawn",
		"draws", r.stats.DrawCalls, "skipped", r.stats.Skipped, "pipelines", r.stats.PipelinesCreated)
	return errors.Join(errs...)
}

func (r *renderer) drawGeometry(g *scene.Geometry, view, proj, viewProj [16]float32, eye [3]float32) error {
	p, err := r.pipelineFor(g)
	if err != nil {
		return err
	}
	pi := g.Program()
	r.track(g, pi.Program())

	world := g.WorldTransform()
	var wvp [16]float32
	common.Mul4(wvp[:], viewProj[:], world[:])
	for semantic, m := range map[string][16]float32{
		WorldSemantic:                 world,
		ViewSemantic:                  view,
		ProjectionSemantic:            proj,
		ViewProjectionSemantic:        viewProj,
		WorldViewProjectionSemantic:   wvp,
		InverseViewSemantic:           inverse(view),
		WorldInverseTransposeSemantic: inverseTranspose(world),
	} {
		if err := setConstant(pi, semantic, func(h shader.ParameterHandle) error { return h.SetMatrix(m) }); err != nil {
			return fmt.Errorf("renderer: %s: %w", g.Name(), err)
		}
	}
	if err := setConstant(pi, CameraPositionSemantic, func(h shader.ParameterHandle) error {
		return h.SetFloats(eye[0], eye[1], eye[2])
	}); err != nil {
		return fmt.Errorf("renderer: %s: %w", g.Name(), err)
	}

	if err := g.ApplyEffects(); err != nil {
		return err
	}

	return r.backend.Draw(DrawCall{
		Label:            g.Name(),
		Pipeline:         p,
		Program:          pi.Program(),
		Mesh:             g.Mesh(),
		StencilReference: p.StencilReference(),
	})
}

// inverse returns the inverse of m, or identity when m is singular.
func inverse(m [16]float32) [16]float32 {
	var out [16]float32
	common.Identity(out[:])
	common.Invert4(out[:], m[:])
	return out
}

func inverseTranspose(m [16]float32) [16]float32 {
	out := inverse(m)
	common.Transpose4(out[:], out[:])
	return out
}

// track records the program clone and mesh g draws with, releasing a replaced clone.
func (r *renderer) track(g *scene.Geometry, program shader.Program) {
	d, ok := r.drawn[g]
	if !ok {
		r.meshRefs[g.Mesh()]++
		r.drawn[g] = drawnGeometry{program: program, mesh: g.Mesh()}
		return
	}
	if d.program == program {
		return
	}
	if d.program != nil {
		r.backend.ReleaseProgram(d.program)
	}
	d.program = program
	r.drawn[g] = d
}

// forget releases everything tracked for g.
func (r *renderer) forget(g *scene.Geometry) {
	d, ok := r.drawn[g]
	if !ok {
		return
	}
	delete(r.drawn, g)
	if d.program != nil {
		r.backend.ReleaseProgram(d.program)
	}
	r.meshRefs[d.mesh]--
	if r.meshRefs[d.mesh] <= 0 {
		delete(r.meshRefs, d.mesh)
		r.backend.ReleaseMesh(d.mesh)
	}
}

func (r *renderer) ReleaseGeometries(geometries ...*scene.Geometry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range geometries {
		r.forget(g)
	}
}

func (r *renderer) Prune(live []*scene.Geometry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := make(map[*scene.Geometry]struct{}, len(live))
	for _, g := range live {
		keep[g] = struct{}{}
	}
	for g := range r.drawn {
		if _, ok := keep[g]; !ok {
			r.forget(g)
		}
	}
	for _, g := range live {
		if _, ok := r.drawn[g]; !ok {
			continue
		}
		var program shader.Program
		if pi := g.Program(); pi != nil {
			program = pi.Program()
		}
		r.track(g, program)
	}
}

// setConstant writes a renderer constant if the program declares it.
func setConstant(pi *shader.ProgramInstance, semantic string, set func(shader.ParameterHandle) error) error {
	h, ok := pi.RendererConstant(semantic)
	if !ok {
		return nil
	}
	if err := set(h); err != nil {
		return fmt.Errorf("set %s: %w", semantic, err)
	}
	return nil
}

func (r *renderer) Camera() camera.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cam
}

func (r *renderer) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("renderer: SetCamera requires a camera")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cam = cam
}

// resizableBackend is implemented by backends that own a render target.
type resizableBackend interface {
	Resize(width, height uint32) error
}

func (r *renderer) Resize(width, height uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == 0 || height == 0 {
		return fmt.Errorf("renderer: invalid size %dx%d", width, height)
	}
	r.cam.SetAspect(float32(width) / float32(height))
	if rb, ok := r.backend.(resizableBackend); ok {
		return rb.Resize(width, height)
	}
	return nil
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Stats() DrawStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
	clear(r.pipelineCache)
	clear(r.drawn)
	clear(r.meshRefs)
}
