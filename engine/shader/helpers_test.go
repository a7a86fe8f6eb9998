package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"
)

type testOwner struct {
	name  string
	color [4]float32
	calls int
}

func (o *testOwner) ShaderFragmentName() string {
	return o.name
}

func (o *testOwner) SetParameterValues(f *CompiledFragment) error {
	o.calls++
	return f.SetFloats("Color", o.color[:]...)
}

var positionNormal = VertexLayout{
	{Usage: VertexUsagePosition, Format: wgpu.VertexFormatFloat32x3},
	{Usage: VertexUsageNormal, Format: wgpu.VertexFormatFloat32x3},
}

var normalPosition = VertexLayout{
	{Usage: VertexUsageNormal, Format: wgpu.VertexFormatFloat32x3},
	{Usage: VertexUsagePosition, Format: wgpu.VertexFormatFloat32x3},
}

func colorFragment(name string, class FragmentClass) FragmentDescriptor {
	return NewFragmentDescriptor(name, class,
		WithParameters(FragmentParameter{DataType: "float4", Name: "Color"}),
		WithPixelProgram("  // "+name+"\n"),
	)
}

func plainFragment(name string, class FragmentClass) FragmentDescriptor {
	return NewFragmentDescriptor(name, class)
}

func mustLink(t *testing.T, label string, layout VertexLayout, fragments ...FragmentDescriptor) *ProgramInstance {
	t.Helper()
	pi, err := Link(label, fragments, layout,
		RendererConstant{Semantic: "World", DataType: "float4x4"},
		RendererConstant{Semantic: "WorldViewProjection", DataType: "float4x4"},
	)
	require.NoError(t, err)
	return pi
}

func basicCatalog(t *testing.T) Catalog {
	t.Helper()
	return NewCatalog(WithPrograms(
		mustLink(t, "basic_directional", positionNormal,
			plainFragment("VertexPassThru", FragmentClassVertex),
			colorFragment("BasicMaterial", FragmentClassMaterial),
			colorFragment("DirectionalLight", FragmentClassLight),
			plainFragment("PixelFinal", FragmentClassPixelFinal),
		),
		mustLink(t, "basic_two_lights", positionNormal,
			plainFragment("VertexPassThru", FragmentClassVertex),
			colorFragment("BasicMaterial", FragmentClassMaterial),
			colorFragment("DirectionalLight", FragmentClassLight),
			colorFragment("DirectionalLight", FragmentClassLight),
			plainFragment("PixelFinal", FragmentClassPixelFinal),
		),
		mustLink(t, "basic_unlit", positionNormal,
			plainFragment("VertexPassThru", FragmentClassVertex),
			colorFragment("BasicMaterial", FragmentClassMaterial),
			plainFragment("PixelFinal", FragmentClassPixelFinal),
		),
	))
}
