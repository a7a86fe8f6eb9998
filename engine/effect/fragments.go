package effect

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// Catalog fragment names requested by the effects in this package.
const (
	BasicMaterialFragmentName    = "BasicMaterial"
	TextureMaterialFragmentName  = "TextureMaterial"
	DirectionalLightFragmentName = "DirectionalLight"
	PointLightFragmentName       = "PointLight"
	AmbientLightFragmentName     = "AmbientLight"
	VertexTransformFragmentName  = "VertexTransform"
	FogFragmentName              = "Fog"
)

// Fragments returns the authoring descriptors for every effect fragment, ready to be linked
// into catalog programs.
//
// Returns:
//   - map[string]shader.FragmentDescriptor: descriptors keyed by fragment name
func Fragments() map[string]shader.FragmentDescriptor {
	return map[string]shader.FragmentDescriptor{
		BasicMaterialFragmentName: shader.NewFragmentDescriptor(BasicMaterialFragmentName, shader.FragmentClassMaterial,
			shader.WithParameters(
				shader.FragmentParameter{DataType: "float3", Name: "DiffuseColor"},
				shader.FragmentParameter{DataType: "float3", Name: "EmissiveColor"},
				shader.FragmentParameter{DataType: "float3", Name: "SpecularColor"},
				shader.FragmentParameter{DataType: "float", Name: "SpecularPower"},
				shader.FragmentParameter{DataType: "float", Name: "Alpha"},
			),
			shader.WithFunctions(`
fn basic_material(diffuse: vec3<f32>, emissive: vec3<f32>, lit: vec3<f32>) -> vec3<f32> {
	return emissive + diffuse * lit;
}`),
		),
		TextureMaterialFragmentName: shader.NewFragmentDescriptor(TextureMaterialFragmentName, shader.FragmentClassMaterial,
			shader.WithParameters(shader.FragmentParameter{DataType: "float4", Name: "DiffuseColor"}),
			shader.WithTextures(shader.FragmentTexture{
				Name:      "Diffuse",
				MipFilter: "linear",
				MinFilter: "linear",
				MagFilter: "linear",
				AddressU:  "wrap",
				AddressV:  "wrap",
			}),
		),
		DirectionalLightFragmentName: shader.NewFragmentDescriptor(DirectionalLightFragmentName, shader.FragmentClassLight,
			shader.WithParameters(
				shader.FragmentParameter{DataType: "float3", Name: "Direction"},
				shader.FragmentParameter{DataType: "float3", Name: "DiffuseColor"},
				shader.FragmentParameter{DataType: "float3", Name: "SpecularColor"},
				shader.FragmentParameter{DataType: "float", Name: "Intensity"},
			),
			shader.WithFunctions(`
fn directional_light(n: vec3<f32>, dir: vec3<f32>, color: vec3<f32>) -> vec3<f32> {
	return color * max(dot(n, -dir), 0.0);
}`),
		),
		PointLightFragmentName: shader.NewFragmentDescriptor(PointLightFragmentName, shader.FragmentClassLight,
			shader.WithParameters(
				shader.FragmentParameter{DataType: "float3", Name: "Position"},
				shader.FragmentParameter{DataType: "float3", Name: "Color"},
				shader.FragmentParameter{DataType: "float", Name: "Intensity"},
				shader.FragmentParameter{DataType: "float", Name: "Range"},
			),
		),
		AmbientLightFragmentName: shader.NewFragmentDescriptor(AmbientLightFragmentName, shader.FragmentClassLight,
			shader.WithParameters(shader.FragmentParameter{DataType: "float3", Name: "Color"}),
		),
		VertexTransformFragmentName: shader.NewFragmentDescriptor(VertexTransformFragmentName, shader.FragmentClassVertexTransform,
			shader.WithParameters(shader.FragmentParameter{DataType: "float4x4", Name: "Transform"}),
		),
		FogFragmentName: shader.NewFragmentDescriptor(FogFragmentName, shader.FragmentClassPixelFinal,
			shader.WithParameters(
				shader.FragmentParameter{DataType: "float3", Name: "Color"},
				shader.FragmentParameter{DataType: "float", Name: "Start"},
				shader.FragmentParameter{DataType: "float", Name: "End"},
			),
		),
	}
}
