// Package scene implements the scene graph: spatials carrying local and world transforms,
// bounds, render-state overrides and shader effects, with the update and shader-build
// traversals that run over it.
package scene

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// Spatial is an element of the scene graph, either a *Node or a *Geometry.
//
// World transforms, world bounds and state snapshots are only valid after the most recent
// UpdateGeometricState and UpdateRenderState passes. Mutating a local transform or override
// does not refresh them.
type Spatial interface {
	// Name returns the spatial's name.
	Name() string

	// Parent returns the node this spatial is attached to, or nil for a root.
	Parent() *Node

	// LocalTransform returns the transform relative to the parent.
	LocalTransform() common.Transform

	// SetLocalTransform replaces the transform relative to the parent.
	//
	// Parameters:
	//   - t: the new local transform
	SetLocalTransform(t common.Transform)

	// WorldTransform returns the model-to-world matrix computed by the last geometric update.
	WorldTransform() [16]float32

	// WorldBound returns the world-space bound computed by the last geometric update.
	WorldBound() common.BoundingSphere

	// NoCull reports whether the spatial and its subtree bypass frustum culling.
	NoCull() bool

	// SetNoCull sets whether the spatial and its subtree bypass frustum culling.
	SetNoCull(noCull bool)

	// SetState installs a local render-state override for the axis s belongs to.
	//
	// Parameters:
	//   - s: the override
	SetState(s render_state.State)

	// ClearState removes the local override of one axis.
	//
	// Parameters:
	//   - t: the axis
	ClearState(t render_state.StateType)

	// LocalStates returns a copy of the local overrides.
	LocalStates() render_state.Overrides

	// States returns the render state captured by the last UpdateRenderState pass.
	States() render_state.Collection

	// Effects returns the effects attached to this spatial in attachment order.
	Effects() []effect.ShaderEffect

	// AttachEffect appends an effect. Effects apply to this spatial and every descendant.
	//
	// Parameters:
	//   - e: the effect to attach
	AttachEffect(e effect.ShaderEffect)

	// DetachEffect removes an effect.
	//
	// Parameters:
	//   - e: the effect to remove
	//
	// Returns:
	//   - bool: false if e was not attached
	DetachEffect(e effect.ShaderEffect) bool

	// UpdateGeometricState recomputes world transforms top-down and world bounds bottom-up
	// for this spatial and its subtree. A spatial with a parent composes with the parent's
	// current world transform.
	UpdateGeometricState()

	// UpdateRenderState pushes this spatial's local overrides, descends, snapshots the stack
	// tops and pops the overrides again. Every stack is back at its entry depth on return.
	//
	// Parameters:
	//   - stacks: the per-traversal state stacks
	UpdateRenderState(stacks *render_state.StackCollection)

	// BuildShader resolves a program instance for every geometry in the subtree. Effects
	// attached to this spatial are visible to the whole subtree and to nothing else.
	//
	// Parameters:
	//   - catalog: the shader catalog to resolve requests against
	//   - stack: the effects attached to this spatial's ancestors
	//
	// Returns:
	//   - error: the first lookup or bind failure
	BuildShader(catalog shader.Catalog, stack *EffectStack) error

	base() *spatial
}

// spatial holds the state shared by nodes and geometries.
type spatial struct {
	name       string
	parent     *Node
	local      common.Transform
	world      [16]float32
	worldBound common.BoundingSphere
	overrides  render_state.Overrides
	states     render_state.Collection
	effects    []effect.ShaderEffect
	noCull     bool
}

func newSpatial(name string) spatial {
	return spatial{
		name:       name,
		local:      common.IdentityTransform(),
		world:      common.IdentityMatrix(),
		worldBound: common.EmptyBound(),
		states:     render_state.NewDefaults().Collection,
	}
}

func (s *spatial) base() *spatial {
	return s
}

func (s *spatial) Name() string {
	return s.name
}

func (s *spatial) Parent() *Node {
	return s.parent
}

func (s *spatial) LocalTransform() common.Transform {
	return s.local
}

func (s *spatial) SetLocalTransform(t common.Transform) {
	s.local = t
}

func (s *spatial) WorldTransform() [16]float32 {
	return s.world
}

func (s *spatial) WorldBound() common.BoundingSphere {
	return s.worldBound
}

func (s *spatial) NoCull() bool {
	return s.noCull
}

func (s *spatial) SetNoCull(noCull bool) {
	s.noCull = noCull
}

func (s *spatial) SetState(st render_state.State) {
	s.overrides.Set(st)
}

func (s *spatial) ClearState(t render_state.StateType) {
	s.overrides.Clear(t)
}

func (s *spatial) LocalStates() render_state.Overrides {
	return s.overrides
}

func (s *spatial) States() render_state.Collection {
	return s.states
}

func (s *spatial) Effects() []effect.ShaderEffect {
	return slices.Clone(s.effects)
}

func (s *spatial) AttachEffect(e effect.ShaderEffect) {
	if e == nil {
		panic("scene: AttachEffect requires a non-nil effect")
	}
	s.effects = append(s.effects, e)
}

func (s *spatial) DetachEffect(e effect.ShaderEffect) bool {
	i := slices.Index(s.effects, e)
	if i < 0 {
		return false
	}
	s.effects = slices.Delete(s.effects, i, i+1)
	return true
}

// updateWorldTransform composes the local transform with the parent's world transform.
func (s *spatial) updateWorldTransform() {
	local := s.local.Matrix()
	if s.parent == nil {
		s.world = local
		return
	}
	common.Mul4(s.world[:], s.parent.world[:], local[:])
}
