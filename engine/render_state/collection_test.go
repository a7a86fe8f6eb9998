package render_state

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackCollectionSeededWithDefaults(t *testing.T) {
	d := NewDefaults()
	s := NewStackCollection(d)

	assert.Equal(t, d.Collection, s.Top())
	for ty := StateType(0); ty < StateTypeCount; ty++ {
		assert.Equal(t, 1, s.Depth(ty), ty.String())
	}
	assert.Panics(t, func() { s.Pop(StateTypeCull) })
}

func TestStackCollectionPushPop(t *testing.T) {
	s := NewStackCollection(nil)
	wire := WireframeState{Enabled: true}
	s.Push(wire)

	assert.True(t, s.Top().Wireframe.Enabled)
	assert.Equal(t, 2, s.Depth(StateTypeWireframe))
	assert.Equal(t, wire, s.Pop(StateTypeWireframe))
	assert.False(t, s.Top().Wireframe.Enabled)
}

func TestPushOverridesRestoresDepths(t *testing.T) {
	s := NewStackCollection(nil)
	before := s.Depths()

	var o Overrides
	o.Set(AlphaState{BlendEnabled: true, SrcBlend: wgpu.BlendFactorOne, DstBlend: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd})
	o.Set(CullState{Enabled: false})
	o.Set(StencilState{Enabled: true, Compare: wgpu.CompareFunctionEqual, Reference: 1})
	require.Equal(t, 3, o.Len())

	restore := s.PushOverrides(&o)
	top := s.Top()
	assert.True(t, top.Alpha.BlendEnabled)
	assert.False(t, top.Cull.Enabled)
	assert.Equal(t, uint32(1), top.Stencil.Reference)
	assert.Equal(t, before[StateTypeDepthBuffer], s.Depth(StateTypeDepthBuffer))

	restore()
	assert.Equal(t, before, s.Depths())
	assert.Equal(t, NewDefaults().Collection, s.Top())

	s.PushOverrides(nil)()
	assert.Equal(t, before, s.Depths())
}

func TestOverridesReplaceAndClear(t *testing.T) {
	var o Overrides
	o.Set(WireframeState{Enabled: true})
	o.Set(WireframeState{Enabled: false})
	got, ok := o.Get(StateTypeWireframe)
	require.True(t, ok)
	assert.Equal(t, WireframeState{Enabled: false}, got)

	o.Clear(StateTypeWireframe)
	_, ok = o.Get(StateTypeWireframe)
	assert.False(t, ok)
	assert.Equal(t, 0, o.Len())
}

func TestCollectionGetSet(t *testing.T) {
	var c Collection
	c.Set(DepthBufferState{Enabled: true, Compare: wgpu.CompareFunctionGreater})
	assert.Equal(t, DepthBufferState{Enabled: true, Compare: wgpu.CompareFunctionGreater}, c.Get(StateTypeDepthBuffer))
	assert.NotEqual(t, c.Key(), NewDefaults().Key())
	assert.Equal(t, NewDefaults().Key(), NewDefaults().Key())
}
