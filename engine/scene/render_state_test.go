package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

// buildTree returns a root with two child nodes of two geometries each.
func buildTree(opts func(depth int) []SpatialBuilderOption) (*Node, []*Geometry) {
	root := NewNode("root", opts(0)...)
	var leaves []*Geometry
	for range 2 {
		n := NewNode("branch", opts(1)...)
		root.AttachChild(n)
		for range 2 {
			g := NewGeometry("leaf", cubeMesh(), opts(2)...)
			n.AttachChild(g)
			leaves = append(leaves, g)
		}
	}
	return root, leaves
}

func TestUpdateRenderStateBalance(t *testing.T) {
	wire := render_state.WireframeState{Enabled: true}
	noCull := render_state.CullState{Enabled: false}
	blend := render_state.AlphaState{BlendEnabled: true, SrcBlend: wgpu.BlendFactorOne, DstBlend: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd}

	shapes := map[string]func(int) []SpatialBuilderOption{
		"none": func(int) []SpatialBuilderOption { return nil },
		"every node": func(int) []SpatialBuilderOption {
			return []SpatialBuilderOption{WithStates(wire, noCull, blend)}
		},
		"leaves only": func(depth int) []SpatialBuilderOption {
			if depth < 2 {
				return nil
			}
			return []SpatialBuilderOption{WithStates(blend)}
		},
		"root only": func(depth int) []SpatialBuilderOption {
			if depth > 0 {
				return nil
			}
			return []SpatialBuilderOption{WithStates(wire, noCull)}
		},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			root, _ := buildTree(shape)
			stacks := render_state.NewStackCollection(nil)
			stacks.Push(render_state.DepthBufferState{Enabled: false})
			before := stacks.Depths()

			root.UpdateRenderState(stacks)

			assert.Equal(t, before, stacks.Depths())
			assert.False(t, stacks.Top().DepthBuffer.Enabled)
		})
	}
}

func TestUpdateRenderStateSnapshots(t *testing.T) {
	root := NewNode("root", WithStates(render_state.WireframeState{Enabled: true}))
	left := NewNode("left", WithStates(render_state.CullState{Enabled: false}))
	right := NewNode("right")
	a := NewGeometry("a", cubeMesh())
	b := NewGeometry("b", cubeMesh(), WithStates(render_state.WireframeState{Enabled: false}))
	c := NewGeometry("c", cubeMesh())
	root.AttachChild(left)
	root.AttachChild(right)
	left.AttachChild(a)
	left.AttachChild(b)
	right.AttachChild(c)

	root.UpdateRenderState(render_state.NewStackCollection(nil))

	assert.True(t, a.States().Wireframe.Enabled)
	assert.False(t, a.States().Cull.Enabled)
	assert.False(t, b.States().Wireframe.Enabled)
	assert.False(t, b.States().Cull.Enabled)
	assert.True(t, c.States().Wireframe.Enabled)
	assert.True(t, c.States().Cull.Enabled)
	assert.Equal(t, wgpu.CompareFunctionLessEqual, c.States().DepthBuffer.Compare)

	left.ClearState(render_state.StateTypeCull)
	root.UpdateRenderState(render_state.NewStackCollection(nil))
	assert.True(t, a.States().Cull.Enabled)
}

func TestUpdateRenderStateRestoresOnPanic(t *testing.T) {
	root := NewNode("root", WithStates(render_state.WireframeState{Enabled: true}))
	bad := NewNode("bad", WithStates(render_state.CullState{}))
	root.AttachChild(bad)
	bad.children = append(bad.children, nil)

	stacks := render_state.NewStackCollection(nil)
	before := stacks.Depths()
	assert.Panics(t, func() { root.UpdateRenderState(stacks) })
	assert.Equal(t, before, stacks.Depths())
}
