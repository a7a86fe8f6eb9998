package scene

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Mesh is the vertex and index data a Geometry draws.
type Mesh struct {
	// Layout describes one interleaved vertex in Vertices.
	Layout shader.VertexLayout

	// Vertices holds interleaved vertex data matching Layout.
	Vertices []byte

	// Indices holds the index buffer. Empty for non-indexed drawing.
	Indices []uint32

	// Topology is the primitive type the indices describe.
	Topology wgpu.PrimitiveTopology

	// FirstIndex and IndexCount select the primitive range to draw. For non-indexed meshes
	// they count vertices instead.
	FirstIndex uint32
	IndexCount uint32

	// Bound is the model-space bounding sphere.
	Bound common.BoundingSphere
}

// NewMesh creates an indexed triangle-list Mesh drawing every index, with a bound computed
// from positions.
//
// Parameters:
//   - layout: the vertex layout of vertices
//   - vertices: interleaved vertex data
//   - indices: the index buffer, may be empty
//   - positions: the vertex positions used for the bound
//
// Returns:
//   - *Mesh: the new mesh
func NewMesh(layout shader.VertexLayout, vertices []byte, indices []uint32, positions [][3]float32) *Mesh {
	count := uint32(len(indices))
	if count == 0 {
		count = uint32(len(positions))
	}
	return &Mesh{
		Layout:     layout,
		Vertices:   vertices,
		Indices:    indices,
		Topology:   wgpu.PrimitiveTopologyTriangleList,
		IndexCount: count,
		Bound:      common.ComputeBound(positions),
	}
}

// VertexCount returns the number of vertices held in Vertices.
func (m *Mesh) VertexCount() uint32 {
	stride := m.Layout.Stride()
	if stride == 0 {
		return 0
	}
	return uint32(uint64(len(m.Vertices)) / stride)
}

// Geometry is a drawable scene-graph leaf.
type Geometry struct {
	spatial
	mesh    *Mesh
	program *shader.ProgramInstance
	bound   []effect.ShaderEffect
}

var _ Spatial = &Geometry{}

// NewGeometry creates a Geometry drawing mesh.
//
// Parameters:
//   - name: the geometry name, "geometry" if empty
//   - mesh: the mesh to draw (must not be nil)
//   - options: functional options to configure the geometry
//
// Returns:
//   - *Geometry: the new geometry
func NewGeometry(name string, mesh *Mesh, options ...SpatialBuilderOption) *Geometry {
	if mesh == nil {
		panic("scene: NewGeometry requires a non-nil Mesh")
	}
	g := &Geometry{spatial: newSpatial(common.Coalesce(name, "geometry")), mesh: mesh}
	for _, opt := range options {
		opt(&g.spatial)
	}
	return g
}

// Mesh returns the geometry's mesh.
func (g *Geometry) Mesh() *Mesh {
	return g.mesh
}

// Program returns the program instance bound by the last successful BuildShader, or nil.
func (g *Geometry) Program() *shader.ProgramInstance {
	return g.program
}

// BoundEffects returns the effects bound to the geometry's program instance, root first.
func (g *Geometry) BoundEffects() []effect.ShaderEffect {
	return slices.Clone(g.bound)
}

func (g *Geometry) UpdateGeometricState() {
	g.updateWorldTransform()
	g.worldBound = g.mesh.Bound.Transformed(g.world)
}

func (g *Geometry) UpdateRenderState(stacks *render_state.StackCollection) {
	defer stacks.PushOverrides(&g.overrides)()
	g.states = stacks.Top()
}

func (g *Geometry) BuildShader(catalog shader.Catalog, stack *EffectStack) error {
	defer stack.Push(g.effects...)()
	return g.buildShader(catalog, stack.Effects())
}

// buildShader requests one fragment per effect plus the system fragments for the mesh layout,
// then binds every effect to the returned instance. effects must already include the
// geometry's own effects.
func (g *Geometry) buildShader(catalog shader.Catalog, effects []effect.ShaderEffect) error {
	requests := make([]shader.FragmentRequest, 0, len(effects)+2)
	for _, e := range effects {
		requests = append(requests, shader.FragmentRequest{Name: e.ShaderFragmentName(), Owner: e})
	}
	for _, name := range SystemFragments(g.mesh.Layout) {
		requests = append(requests, shader.FragmentRequest{Name: name})
	}

	pi, err := catalog.GetShader(requests, g.mesh.Layout)
	if err != nil {
		return fmt.Errorf("scene: build shader for %s: %w", g.name, err)
	}

	g.releaseProgram()
	for i, e := range effects {
		if err := e.Bind(pi); err != nil {
			for _, bound := range effects[:i] {
				bound.Unbind(pi)
			}
			return fmt.Errorf("scene: build shader for %s: %w", g.name, err)
		}
	}
	g.program = pi
	g.bound = effects
	return nil
}

// releaseProgram unbinds the effects bound to the current program instance.
func (g *Geometry) releaseProgram() {
	if g.program == nil {
		return
	}
	for _, e := range g.bound {
		e.Unbind(g.program)
	}
	g.program = nil
	g.bound = nil
}

// ApplyEffects asks every effect bound to the geometry's program to push its values.
//
// Returns:
//   - error: an error if no program is bound, or the first effect error
func (g *Geometry) ApplyEffects() error {
	if g.program == nil {
		return fmt.Errorf("scene: geometry %s has no program", g.name)
	}
	for _, e := range g.bound {
		if err := e.Apply(g.program); err != nil {
			return fmt.Errorf("scene: geometry %s: %w", g.name, err)
		}
	}
	return nil
}
