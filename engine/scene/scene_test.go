package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShaderBindsMaterialToItsFragment(t *testing.T) {
	cat := testCatalog(t)
	mat := effect.NewBasicMaterial(effect.WithDiffuseColor(0, 1, 0))
	light := effect.NewDirectionalLight()
	g := NewGeometry("box", cubeMesh(), WithEffects(mat, light))

	stack := NewEffectStack()
	require.NoError(t, g.BuildShader(cat, stack))
	assert.Equal(t, 0, stack.Len())

	pi := g.Program()
	require.NotNil(t, pi)
	assert.Equal(t, "material_directional", pi.Program().Label())
	for _, f := range pi.Fragments() {
		switch f.Name() {
		case effect.BasicMaterialFragmentName:
			assert.Same(t, mat, f.Owner())
		case effect.DirectionalLightFragmentName:
			assert.Same(t, light, f.Owner())
		default:
			assert.Nil(t, f.Owner())
		}
	}
	assert.Same(t, pi.FragmentFor(mat), mat.Fragment(pi))

	require.NoError(t, g.ApplyEffects())
	h, err := mat.Fragment(pi).Parameter("DiffuseColor")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, h.Floats())
}

func TestBuildShaderNodeEffectsDoNotLeakToSiblings(t *testing.T) {
	cat := testCatalog(t)
	light := effect.NewDirectionalLight()
	fogged := NewGeometry("fogged", cubeMesh(), WithEffects(effect.NewBasicMaterial(), effect.NewFog([3]float32{1, 1, 1}, 1, 10)))
	plain := NewGeometry("plain", cubeMesh(), WithEffects(effect.NewBasicMaterial()))
	root := NewNode("root", WithEffects(light))
	root.AttachChild(fogged)
	root.AttachChild(plain)

	stack := NewEffectStack()
	require.NoError(t, root.BuildShader(cat, stack))
	assert.Equal(t, 0, stack.Len())

	assert.Equal(t, "material_directional_fog", fogged.Program().Program().Label())
	assert.Equal(t, "material_directional", plain.Program().Program().Label())
	assert.Equal(t, 2, light.Bindings())
	assert.NotSame(t, fogged.Program(), plain.Program())
}

func TestBuildShaderFailureRestoresStack(t *testing.T) {
	cat := testCatalog(t)
	outer := effect.NewDirectionalLight()
	bad := NewGeometry("bad", cubeMesh(), WithEffects(effect.NewPointLight()))
	root := NewNode("root", WithEffects(outer))
	root.AttachChild(bad)

	stack := NewEffectStack(effect.NewAmbientLight(0, 0, 0))
	err := root.BuildShader(cat, stack)
	require.Error(t, err)
	assert.ErrorIs(t, err, shader.ErrNoMatchingShader)
	assert.Equal(t, 1, stack.Len())
	assert.Nil(t, bad.Program())
	assert.Equal(t, 0, outer.Bindings())
}

func TestBuildShaderWrongLayoutFails(t *testing.T) {
	cat := testCatalog(t)
	mesh := cubeMesh()
	mesh.Layout = shader.VertexLayout{meshLayout[1], meshLayout[0], meshLayout[2]}
	g := NewGeometry("swapped", mesh, WithEffects(effect.NewBasicMaterial()))
	assert.ErrorIs(t, g.BuildShader(cat, NewEffectStack()), shader.ErrNoMatchingShader)
}

func TestRebuildUnbindsPreviousProgram(t *testing.T) {
	cat := testCatalog(t)
	mat := effect.NewBasicMaterial()
	g := NewGeometry("box", cubeMesh(), WithEffects(mat))

	require.NoError(t, g.BuildShader(cat, NewEffectStack()))
	first := g.Program()
	require.NoError(t, g.BuildShader(cat, NewEffectStack()))

	assert.NotSame(t, first, g.Program())
	assert.Equal(t, 1, mat.Bindings())
	assert.Nil(t, mat.Fragment(first))
}

func TestSystemFragments(t *testing.T) {
	assert.Equal(t, []string{VertexPassThruFragmentName, PixelFinalFragmentName}, SystemFragments(meshLayout))
	colored := append(shader.VertexLayout{{Usage: shader.VertexUsageColor, Format: wgpu.VertexFormatFloat32x4}}, meshLayout...)
	assert.Equal(t, []string{VertexColorPassThruFragmentName, PixelFinalFragmentName}, SystemFragments(colored))
}

func TestUpdateGeometricState(t *testing.T) {
	root := NewNode("root", WithLocalTransform(translated(5, 0, 0)))
	child := NewNode("child", WithLocalTransform(translated(0, 2, 0)))
	leaf := NewGeometry("leaf", cubeMesh())
	far := NewGeometry("far", cubeMesh(), WithTranslation(0, 0, 10))
	root.AttachChild(child)
	child.AttachChild(leaf)
	root.AttachChild(far)

	root.UpdateGeometricState()

	wb := leaf.WorldBound()
	assert.InDeltaSlice(t, []float32{5, 2, 0}, wb.Center[:], 1e-5)
	assert.InDelta(t, 1.7320508, wb.Radius, 1e-5)
	fc := far.WorldBound().Center
	assert.InDeltaSlice(t, []float32{5, 0, 10}, fc[:], 1e-5)

	rb := root.WorldBound()
	for _, b := range []common.BoundingSphere{leaf.WorldBound(), far.WorldBound()} {
		assert.InDelta(t, rb.Radius, rb.Merge(b).Radius, 1e-4)
	}

	empty := NewNode("empty")
	empty.UpdateGeometricState()
	assert.True(t, empty.WorldBound().Empty())
}

func TestAttachDetachChild(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	g := NewGeometry("", cubeMesh())
	assert.Equal(t, "geometry", g.Name())

	a.AttachChild(g)
	assert.Same(t, a, g.Parent())
	b.AttachChild(g)
	assert.Same(t, b, g.Parent())
	assert.Empty(t, a.Children())
	assert.Len(t, b.Children(), 1)

	assert.True(t, b.DetachChild(g))
	assert.False(t, b.DetachChild(g))
	assert.Nil(t, g.Parent())

	a.AttachChild(b)
	assert.Panics(t, func() { b.AttachChild(a) })
	assert.Panics(t, func() { a.AttachChild(a) })
}

func TestEffectsAttachDetach(t *testing.T) {
	n := NewNode("n")
	m := effect.NewBasicMaterial()
	n.AttachEffect(m)
	assert.Len(t, n.Effects(), 1)
	assert.True(t, n.DetachEffect(m))
	assert.False(t, n.DetachEffect(m))
	assert.Panics(t, func() { n.AttachEffect(nil) })
}

func TestSceneUpdateAndBuild(t *testing.T) {
	light := effect.NewDirectionalLight()
	s := NewScene("test", testCatalog(t), WithGlobalEffects(light), WithSceneBuildWorkers(2))
	defer s.Close()

	g := NewGeometry("box", cubeMesh(), WithEffects(effect.NewBasicMaterial()), WithStates(render_state.WireframeState{Enabled: true}))
	s.Root().AttachChild(g)

	s.Update()
	assert.True(t, g.States().Wireframe.Enabled)
	assert.True(t, g.States().Cull.Enabled)

	require.NoError(t, s.BuildShaders())
	assert.Equal(t, "material_directional", g.Program().Program().Label())
	assert.Equal(t, []*Geometry{g}, s.Geometries())
	assert.Equal(t, "test/root", s.Root().Name())
	assert.Panics(t, func() { NewScene("nil", nil) })
}
