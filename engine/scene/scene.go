package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu       *sync.RWMutex
	name     string
	root     *Node
	defaults *render_state.Defaults
	catalog  shader.Catalog
	globals  []effect.ShaderEffect

	builder      *ShaderBuilder
	buildWorkers int
}

// Scene defines the interface for a scene: a root node, the shader catalog its geometries
// resolve against and the render-state defaults its traversals start from.
//
// A frame runs Update, then culling against the root, then drawing. BuildShaders runs once
// after content is attached and again whenever effects or meshes change.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name of the scene
	Name() string

	// Root returns the scene's root node.
	//
	// Returns:
	//   - *Node: the root node
	Root() *Node

	// Catalog returns the shader catalog geometries resolve against.
	//
	// Returns:
	//   - shader.Catalog: the catalog
	Catalog() shader.Catalog

	// Defaults returns the render-state defaults every UpdateRenderState pass starts from.
	//
	// Returns:
	//   - *render_state.Defaults: the default table
	Defaults() *render_state.Defaults

	// GlobalEffects returns the effects applied to every geometry in the scene.
	//
	// Returns:
	//   - []effect.ShaderEffect: the scene-wide effects, root first
	GlobalEffects() []effect.ShaderEffect

	// Update refreshes world transforms and bounds, then propagates render state from fresh
	// stacks seeded with the scene defaults.
	Update()

	// BuildShaders resolves a program instance for every geometry in parallel.
	//
	// Returns:
	//   - error: every build failure joined
	BuildShaders() error

	// Geometries returns every geometry below the root in depth-first order.
	//
	// Returns:
	//   - []*Geometry: the geometries
	Geometries() []*Geometry

	// Close releases the scene's build workers.
	Close()
}

var _ Scene = &scene{}

// NewScene creates a Scene resolving shaders against catalog. NewScene panics if catalog is nil.
//
// Parameters:
//   - name: the name of the scene
//   - catalog: the shader catalog (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, catalog shader.Catalog, options ...SceneBuilderOption) Scene {
	if catalog == nil {
		panic("scene: NewScene requires a non-nil Catalog")
	}
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		catalog:  catalog,
		defaults: render_state.NewDefaults(),
	}
	for _, option := range options {
		option(s)
	}
	if s.root == nil {
		s.root = NewNode(common.Coalesce(name, "scene") + "/root")
	}

	var builderOpts []ShaderBuilderOption
	if s.buildWorkers > 0 {
		builderOpts = append(builderOpts, WithBuildWorkers(s.buildWorkers))
	}
	s.builder = NewShaderBuilder(catalog, builderOpts...)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Root() *Node {
	return s.root
}

func (s *scene) Catalog() shader.Catalog {
	return s.catalog
}

func (s *scene) Defaults() *render_state.Defaults {
	return s.defaults
}

func (s *scene) GlobalEffects() []effect.ShaderEffect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]effect.ShaderEffect(nil), s.globals...)
}

func (s *scene) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root.UpdateGeometricState()
	s.root.UpdateRenderState(render_state.NewStackCollection(s.defaults))
}

func (s *scene) BuildShaders() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Build(s.root, NewEffectStack(s.globals...))
}

func (s *scene) Geometries() []*Geometry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Geometry
	s.root.Walk(func(sp Spatial) bool {
		if g, ok := sp.(*Geometry); ok {
			out = append(out, g)
		}
		return true
	})
	return out
}

func (s *scene) Close() {
	s.builder.Close()
}
