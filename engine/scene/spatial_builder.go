package scene

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
)

// SpatialBuilderOption is a functional option for configuring a Node or Geometry.
type SpatialBuilderOption func(*spatial)

// WithLocalTransform sets the spatial's transform relative to its parent.
//
// Parameters:
//   - t: the local transform
//
// Returns:
//   - SpatialBuilderOption: option function to apply
func WithLocalTransform(t common.Transform) SpatialBuilderOption {
	return func(s *spatial) {
		s.local = t
	}
}

// WithTranslation sets only the translation of the spatial's local transform.
//
// Parameters:
//   - x, y, z: the translation
//
// Returns:
//   - SpatialBuilderOption: option function to apply
func WithTranslation(x, y, z float32) SpatialBuilderOption {
	return func(s *spatial) {
		s.local.Translation = [3]float32{x, y, z}
	}
}

// WithEffects attaches effects to the spatial.
//
// Parameters:
//   - effects: the effects, in attachment order
//
// Returns:
//   - SpatialBuilderOption: option function to apply
func WithEffects(effects ...effect.ShaderEffect) SpatialBuilderOption {
	return func(s *spatial) {
		for _, e := range effects {
			s.AttachEffect(e)
		}
	}
}

// WithStates installs local render-state overrides.
//
// Parameters:
//   - states: the overrides, later values replace earlier ones on the same axis
//
// Returns:
//   - SpatialBuilderOption: option function to apply
func WithStates(states ...render_state.State) SpatialBuilderOption {
	return func(s *spatial) {
		for _, st := range states {
			s.overrides.Set(st)
		}
	}
}

// WithNoCull makes the spatial and its subtree bypass frustum culling.
//
// Returns:
//   - SpatialBuilderOption: option function to apply
func WithNoCull() SpatialBuilderOption {
	return func(s *spatial) {
		s.noCull = true
	}
}
