package shader

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litFragment(vertex, pixel string) FragmentDescriptor {
	return NewFragmentDescriptor("TextureMaterial", FragmentClassMaterial,
		WithParameters(
			FragmentParameter{DataType: "float4", Name: "DiffuseColor", Description: "base color"},
			FragmentParameter{DataType: "float4x4", Name: "World", Semantic: "World"},
		),
		WithTextures(FragmentTexture{
			Name:      "Diffuse",
			MipFilter: "Linear",
			MinFilter: "Point",
			MagFilter: "Linear",
			AddressU:  "Clamp",
			AddressV:  "Wrap",
		}),
		WithVertexInputs(FragmentParameter{DataType: "float2", Name: "uv", Semantic: "TEXCOORD0"}),
		WithInterpolators(FragmentParameter{DataType: "float2", Name: "uv"}),
		WithVertexProgram(vertex),
		WithPixelProgram(pixel),
	)
}

func TestFragmentRoundTrip(t *testing.T) {
	f := litFragment("out.uv = in.uv;", "color *= textureSample(Diffuse, DiffuseSampler, in.uv);")

	var buf bytes.Buffer
	require.NoError(t, WriteFragment(&buf, f))

	decoded, err := ReadFragment(&buf)
	require.NoError(t, err)
	assert.Equal(t, f.Name(), decoded.Name())
	assert.Equal(t, f.Class(), decoded.Class())
	assert.Equal(t, f.Parameters(), decoded.Parameters())
	assert.Equal(t, f.Textures(), decoded.Textures())
	assert.Equal(t, f.VertexInputs(), decoded.VertexInputs())
	assert.Equal(t, f.Interpolators(), decoded.Interpolators())
	assert.Equal(t, f.VertexProgram(), decoded.VertexProgram())
	assert.Equal(t, f.PixelProgram(), decoded.PixelProgram())
	assert.Equal(t, f.ContentHash(), decoded.ContentHash())
}

func TestFragmentProgramsAreTrimmed(t *testing.T) {
	a := litFragment("out.uv = in.uv;", "color = c;")
	b := litFragment("\n\t out.uv = in.uv;  \n", "  color = c;\n\n")
	c := litFragment("out.uv = in.uv * 2.0;", "color = c;")

	assert.Equal(t, "out.uv = in.uv;", b.VertexProgram())
	assert.Equal(t, a.ContentHash(), b.ContentHash())
	assert.NotEqual(t, a.ContentHash(), c.ContentHash())
}

func TestReadFragmentRejectsTruncatedRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFragment(&buf, litFragment("a;", "b;")))
	data := buf.Bytes()

	for _, n := range []int{0, 1, 8, len(data) / 2, len(data) - 1} {
		_, err := ReadFragment(bytes.NewReader(data[:n]))
		assert.ErrorIs(t, err, ErrMalformedFragmentStream, "prefix of %d bytes", n)
	}
}

func TestFragmentTextureSamplerData(t *testing.T) {
	tex := litFragment("", "").Textures()[0]
	s := tex.SamplerData()
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, s.AddressModeV)
	assert.Equal(t, wgpu.FilterModeNearest, s.MinFilter)
	assert.Equal(t, wgpu.FilterModeLinear, s.MagFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, s.MipmapFilter)
}

func TestReadFragmentLeavesFollowingDataUnread(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFragment(&buf, litFragment("a;", "b;")))
	require.NoError(t, WriteFragment(&buf, litFragment("c;", "d;")))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(1234)))

	// A reader without ReadByte, so decoding cannot rely on buffering.
	r := struct{ io.Reader }{&buf}

	first, err := ReadFragment(r)
	require.NoError(t, err)
	assert.Equal(t, "a;", first.VertexProgram())

	second, err := ReadFragment(r)
	require.NoError(t, err)
	assert.Equal(t, "d;", second.PixelProgram())

	var marker int32
	require.NoError(t, binary.Read(r, binary.LittleEndian, &marker))
	assert.Equal(t, int32(1234), marker)
}
