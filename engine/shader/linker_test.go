package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkResolvesTexturesAndSemantics(t *testing.T) {
	pi, err := Link("textured",
		[]FragmentDescriptor{
			plainFragment("VertexPassThru", FragmentClassVertex),
			litFragment("", ""),
			plainFragment("PixelFinal", FragmentClassPixelFinal),
		},
		positionNormal,
		RendererConstant{Semantic: "View", DataType: "float4x4"},
	)
	require.NoError(t, err)

	f := pi.Fragments()[1]
	assert.Equal(t, "TextureMaterial1_", f.MangledNamePrefix())
	assert.Equal(t, []string{"DiffuseColor", "World", "Diffuse"}, f.ParameterNames())

	diffuse, err := f.Parameter("Diffuse")
	require.NoError(t, err)
	assert.True(t, diffuse.IsTexture())

	world, ok := pi.Program().SemanticParameter("World")
	require.True(t, ok)
	assert.Equal(t, "TextureMaterial1_World", world.Name())

	_, ok = pi.RendererConstant("View")
	assert.True(t, ok)
	_, ok = pi.RendererConstant("Projection")
	assert.False(t, ok)
}

func TestLinkEmitsSharedFunctionsOncePerFragmentName(t *testing.T) {
	light := NewFragmentDescriptor("DirectionalLight", FragmentClassLight,
		WithParameters(FragmentParameter{DataType: "float3", Name: "Direction"}),
		WithFunctions(`
fn directional_light(n: vec3<f32>, dir: vec3<f32>) -> f32 {
	return max(dot(n, -dir), 0.0);
}`),
	)
	pi := mustLink(t, "two_lights", positionNormal,
		plainFragment("VertexPassThru", FragmentClassVertex),
		colorFragment("BasicMaterial", FragmentClassMaterial),
		light,
		light,
		plainFragment("PixelFinal", FragmentClassPixelFinal),
	)

	source := string(pi.Program().Blob())
	assert.Equal(t, 1, strings.Count(source, "fn directional_light("))
	assert.Contains(t, source, "DirectionalLight2_Direction")
	assert.Contains(t, source, "DirectionalLight3_Direction")
}
