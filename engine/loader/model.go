package loader

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// modelMaterial is a material ready to attach: its effect, an untextured fallback for
// primitives without texture coordinates, and the render states it implies.
type modelMaterial struct {
	name       string
	effect     effect.ShaderEffect
	untextured effect.ShaderEffect
	states     []render_state.State
}

// Model is an imported static scene. Meshes and materials are shared by every instance,
// so the renderer uploads each mesh once however many times the model is placed.
type Model struct {
	name      string
	nodes     []modelNode
	roots     []int
	meshes    [][]gltfPrimitiveMesh
	materials []modelMaterial
	fallback  modelMaterial
}

// Name returns the model's name.
func (m *Model) Name() string {
	return m.name
}

// Meshes returns every primitive mesh of the model in document order.
//
// Returns:
//   - []*scene.Mesh: the meshes
func (m *Model) Meshes() []*scene.Mesh {
	var out []*scene.Mesh
	for _, prims := range m.meshes {
		for _, p := range prims {
			out = append(out, p.Mesh)
		}
	}
	return out
}

// MaterialEffects returns the effect of every material in document order.
//
// Returns:
//   - []effect.ShaderEffect: the material effects
func (m *Model) MaterialEffects() []effect.ShaderEffect {
	out := make([]effect.ShaderEffect, len(m.materials))
	for i, mat := range m.materials {
		out[i] = mat.effect
	}
	return out
}

// Instantiate builds a new scene subtree for the model. The returned node is named after
// the model and holds one child per scene root; every glTF node becomes a scene.Node and
// every primitive a Geometry child carrying its material effect and states.
//
// Returns:
//   - *scene.Node: the root of the new subtree
func (m *Model) Instantiate() *scene.Node {
	root := scene.NewNode(m.name)
	for _, r := range m.roots {
		root.AttachChild(m.instantiateNode(r))
	}
	return root
}

func (m *Model) instantiateNode(i int) *scene.Node {
	mn := &m.nodes[i]
	node := scene.NewNode(mn.name, scene.WithLocalTransform(mn.transform))
	if mn.mesh >= 0 {
		for _, prim := range m.meshes[mn.mesh] {
			mat := m.material(prim.MaterialIndex)
			eff := mat.effect
			if mat.untextured != nil && !prim.Mesh.Layout.Has(shader.VertexUsageTextureCoordinate) {
				eff = mat.untextured
			}
			node.AttachChild(scene.NewGeometry(prim.Name, prim.Mesh,
				scene.WithEffects(eff),
				scene.WithStates(mat.states...),
			))
		}
	}
	for _, c := range mn.children {
		node.AttachChild(m.instantiateNode(c))
	}
	return node
}

// material returns the material at index, or the fallback for -1 and out of range indices.
func (m *Model) material(index int) *modelMaterial {
	if index < 0 || index >= len(m.materials) {
		return &m.fallback
	}
	return &m.materials[index]
}
