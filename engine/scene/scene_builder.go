package scene

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithRoot sets the scene's root node.
//
// Parameters:
//   - root: the root node
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRoot(root *Node) SceneBuilderOption {
	return func(s *scene) {
		s.root = root
	}
}

// WithDefaults sets the render-state defaults every UpdateRenderState pass starts from.
//
// Parameters:
//   - defaults: the default table, nil keeps the built-in defaults
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDefaults(defaults *render_state.Defaults) SceneBuilderOption {
	return func(s *scene) {
		if defaults != nil {
			s.defaults = defaults
		}
	}
}

// WithGlobalEffects sets effects applied to every geometry, such as scene-wide lights. They
// are requested before any effect attached inside the graph.
//
// Parameters:
//   - effects: the scene-wide effects
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGlobalEffects(effects ...effect.ShaderEffect) SceneBuilderOption {
	return func(s *scene) {
		s.globals = append(s.globals, effects...)
	}
}

// WithSceneBuildWorkers sets the number of worker goroutines used by BuildShaders. Defaults to
// runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of build workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSceneBuildWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.buildWorkers = max(n, 1)
	}
}
