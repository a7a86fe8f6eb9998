package scene

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
)

// EffectStack is the scoped stack of effects visible at the current point of a shader-build
// traversal, ordered root to leaf.
type EffectStack struct {
	effects []effect.ShaderEffect
}

// NewEffectStack creates a stack seeded with effects that apply to every geometry built
// through it, such as scene-wide lights.
//
// Parameters:
//   - effects: the seed effects, root first
//
// Returns:
//   - *EffectStack: the new stack
func NewEffectStack(effects ...effect.ShaderEffect) *EffectStack {
	return &EffectStack{effects: slices.Clone(effects)}
}

// Push appends effects and returns the function that removes them. Callers defer the returned
// function so the stack is restored on every exit path.
//
// Parameters:
//   - effects: the effects to push
//
// Returns:
//   - func(): truncates the stack back to its depth before Push
func (s *EffectStack) Push(effects ...effect.ShaderEffect) func() {
	depth := len(s.effects)
	s.effects = append(s.effects, effects...)
	return func() {
		clear(s.effects[depth:])
		s.effects = s.effects[:depth]
	}
}

// Len returns the number of effects on the stack.
func (s *EffectStack) Len() int {
	return len(s.effects)
}

// Effects returns a snapshot of the stack, root first.
func (s *EffectStack) Effects() []effect.ShaderEffect {
	return slices.Clone(s.effects)
}
