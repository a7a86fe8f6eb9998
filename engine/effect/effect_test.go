package effect

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLayout = shader.VertexLayout{
	{Usage: shader.VertexUsagePosition, Format: wgpu.VertexFormatFloat32x3},
	{Usage: shader.VertexUsageNormal, Format: wgpu.VertexFormatFloat32x3},
}

func linkCatalog(t *testing.T, names ...string) shader.Catalog {
	t.Helper()
	frags := Fragments()
	descs := []shader.FragmentDescriptor{shader.NewFragmentDescriptor("VertexPassThru", shader.FragmentClassVertex)}
	for _, n := range names {
		descs = append(descs, frags[n])
	}
	descs = append(descs, shader.NewFragmentDescriptor("PixelFinal", shader.FragmentClassPixelFinal))
	pi, err := shader.Link("test", descs, testLayout)
	require.NoError(t, err)
	return shader.NewCatalog(shader.WithPrograms(pi))
}

func requestFor(effects ...ShaderEffect) []shader.FragmentRequest {
	reqs := []shader.FragmentRequest{{Name: "VertexPassThru"}}
	for _, e := range effects {
		reqs = append(reqs, shader.FragmentRequest{Name: e.ShaderFragmentName(), Owner: e})
	}
	return append(reqs, shader.FragmentRequest{Name: "PixelFinal"})
}

func floats(t *testing.T, f *shader.CompiledFragment, name string) []float32 {
	t.Helper()
	h, err := f.Parameter(name)
	require.NoError(t, err)
	return h.Floats()
}

func TestBindAndApply(t *testing.T) {
	cat := linkCatalog(t, BasicMaterialFragmentName, DirectionalLightFragmentName)
	mat := NewBasicMaterial(WithDiffuseColor(1, 0, 0), WithAlpha(0.5))
	light := NewDirectionalLight(WithDirection(0, -2, 0), WithIntensity(3))

	pi, err := cat.GetShader(requestFor(mat, light), testLayout)
	require.NoError(t, err)
	require.NoError(t, mat.Bind(pi))
	require.NoError(t, light.Bind(pi))

	require.NoError(t, mat.Apply(pi))
	require.NoError(t, light.Apply(pi))

	mf := mat.Fragment(pi)
	require.NotNil(t, mf)
	assert.Same(t, mat, mf.Owner())
	assert.Equal(t, []float32{1, 0, 0}, floats(t, mf, "DiffuseColor"))
	assert.Equal(t, []float32{0.5}, floats(t, mf, "Alpha"))

	lf := light.Fragment(pi)
	assert.Equal(t, []float32{0, -1, 0}, floats(t, lf, "Direction"))
	assert.Equal(t, []float32{3}, floats(t, lf, "Intensity"))
}

func TestApplyWithoutBind(t *testing.T) {
	cat := linkCatalog(t, AmbientLightFragmentName)
	amb := NewAmbientLight(0.1, 0.1, 0.1)
	pi, err := cat.GetShader(requestFor(amb), testLayout)
	require.NoError(t, err)

	assert.ErrorIs(t, amb.Apply(pi), ErrNotBound)

	other := NewAmbientLight(1, 1, 1)
	assert.ErrorIs(t, other.Bind(pi), ErrNotBound)

	require.NoError(t, amb.Bind(pi))
	assert.Equal(t, 1, amb.Bindings())
	amb.Unbind(pi)
	assert.Equal(t, 0, amb.Bindings())
}

func TestSharedEffectBindsPerInstance(t *testing.T) {
	cat := linkCatalog(t, PointLightFragmentName)
	light := NewPointLight(WithPointPosition(1, 2, 3), WithRange(5))

	a, err := cat.GetShader(requestFor(light), testLayout)
	require.NoError(t, err)
	b, err := cat.GetShader(requestFor(light), testLayout)
	require.NoError(t, err)
	require.NoError(t, light.Bind(a))
	require.NoError(t, light.Bind(b))
	assert.Equal(t, 2, light.Bindings())

	require.NoError(t, light.Apply(a))
	assert.Equal(t, []float32{1, 2, 3}, floats(t, light.Fragment(a), "Position"))
	assert.Equal(t, []float32{0, 0, 0}, floats(t, light.Fragment(b), "Position"))
}

func TestEffectAttachedTwiceFillsEverySlot(t *testing.T) {
	cat := linkCatalog(t, DirectionalLightFragmentName, DirectionalLightFragmentName)
	light := NewDirectionalLight(WithDirection(0, -2, 0), WithIntensity(2))

	pi, err := cat.GetShader(requestFor(light, light), testLayout)
	require.NoError(t, err)
	require.NoError(t, light.Bind(pi))
	assert.Equal(t, 1, light.Bindings())
	require.NoError(t, light.Apply(pi))

	owned := pi.FragmentsFor(light)
	require.Len(t, owned, 2)
	assert.Same(t, owned[0], light.Fragment(pi))
	for _, f := range owned {
		assert.Equal(t, []float32{0, -1, 0}, floats(t, f, "Direction"))
		assert.Equal(t, []float32{2}, floats(t, f, "Intensity"))
	}
}

func TestTextureMaterialApply(t *testing.T) {
	cat := linkCatalog(t, TextureMaterialFragmentName)
	tex := &common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	sampler := common.SamplerStagingData{MagFilter: wgpu.FilterModeNearest}
	mat := NewTextureMaterial(tex, sampler)

	pi, err := cat.GetShader(requestFor(mat), testLayout)
	require.NoError(t, err)
	require.NoError(t, mat.Bind(pi))
	require.NoError(t, mat.Apply(pi))

	h, err := mat.Fragment(pi).Parameter("Diffuse")
	require.NoError(t, err)
	gotTex, gotSampler := h.Texture()
	assert.Same(t, tex, gotTex)
	assert.Equal(t, sampler, gotSampler)
}

func TestTextureMaterialFromImportedError(t *testing.T) {
	_, err := NewTextureMaterialFromImported(&common.ImportedTexture{Name: "missing"}, common.SamplerStagingData{})
	assert.Error(t, err)
}

func TestFogAndVertexTransform(t *testing.T) {
	cat := linkCatalog(t, VertexTransformFragmentName, FogFragmentName)
	xf := common.IdentityTransform()
	xf.Translation = [3]float32{4, 5, 6}
	vt := NewVertexTransform(xf)
	fog := NewFog([3]float32{0.5, 0.5, 0.5}, 10, 50)

	pi, err := cat.GetShader(requestFor(vt, fog), testLayout)
	require.NoError(t, err)
	require.NoError(t, vt.Bind(pi))
	require.NoError(t, fog.Bind(pi))
	require.NoError(t, pi.SetParameterValues())

	m := floats(t, vt.Fragment(pi), "Transform")
	assert.Equal(t, []float32{4, 5, 6}, m[12:15])
	assert.Equal(t, []float32{50}, floats(t, fog.Fragment(pi), "End"))

	assert.Panics(t, func() { NewFog([3]float32{}, 10, 1) })
}
