package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"
)

var meshLayout = shader.VertexLayout{
	{Usage: shader.VertexUsagePosition, UsageIndex: 0, Format: wgpu.VertexFormatFloat32x3},
	{Usage: shader.VertexUsageNormal, UsageIndex: 0, Format: wgpu.VertexFormatFloat32x3},
	{Usage: shader.VertexUsageTextureCoordinate, UsageIndex: 0, Format: wgpu.VertexFormatFloat32x2},
}

var cubeCorners = [][3]float32{
	{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
}

func cubeMesh() *Mesh {
	vertices := make([]byte, len(cubeCorners)*int(meshLayout.Stride()))
	return NewMesh(meshLayout, vertices, []uint32{0, 1, 2, 2, 1, 3}, cubeCorners)
}

func translated(x, y, z float32) common.Transform {
	t := common.IdentityTransform()
	t.Translation = [3]float32{x, y, z}
	return t
}

// linkProgram links the system fragments around the named effect fragments.
func linkProgram(t *testing.T, label string, names ...string) *shader.ProgramInstance {
	t.Helper()
	frags := effect.Fragments()
	descs := []shader.FragmentDescriptor{shader.NewFragmentDescriptor(VertexPassThruFragmentName, shader.FragmentClassVertex)}
	for _, n := range names {
		d, ok := frags[n]
		require.True(t, ok, n)
		descs = append(descs, d)
	}
	descs = append(descs, shader.NewFragmentDescriptor(PixelFinalFragmentName, shader.FragmentClassPixelFinal))
	pi, err := shader.Link(label, descs, meshLayout,
		shader.RendererConstant{Semantic: "World", DataType: "float4x4"},
		shader.RendererConstant{Semantic: "WorldViewProjection", DataType: "float4x4"},
	)
	require.NoError(t, err)
	return pi
}

func testCatalog(t *testing.T) shader.Catalog {
	t.Helper()
	return shader.NewCatalog(shader.WithPrograms(
		linkProgram(t, "material_directional", effect.BasicMaterialFragmentName, effect.DirectionalLightFragmentName),
		linkProgram(t, "material_directional_fog", effect.BasicMaterialFragmentName, effect.DirectionalLightFragmentName, effect.FogFragmentName),
		linkProgram(t, "material", effect.BasicMaterialFragmentName),
	))
}
