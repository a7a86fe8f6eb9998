package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProgramSource = `
struct Light {
	direction: vec3<f32>,
	intensity: f32,
}

struct Frame {
	alpha: f32,
	tint: vec3<f32>,
	//@oxy:semantic WorldViewProjection wvp
	wvp: mat4x4<f32>,
	lights: array<Light, 2>,
}

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var<uniform> exposure: f32;
@group(1) @binding(0) var albedo: texture_2d<f32>;
@group(1) @binding(1) var albedoSampler: sampler;
@group(1) @binding(2) var shadow: texture_depth_2d;

@vertex
fn vs_main(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
	return frame.wvp * vec4<f32>(pos, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return vec4<f32>(frame.tint, frame.alpha);
}
`

func TestNewWGSLProgramLaysOutUniforms(t *testing.T) {
	p, err := NewWGSLProgram("test", testProgramSource)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", p.VertexEntryPoint())
	assert.Equal(t, "fs_main", p.FragmentEntryPoint())
	assert.Equal(t, []string{"alpha", "tint", "wvp", "lights", "exposure", "albedo", "shadow"}, p.ParameterNames())

	impl := p.(*wgslProgram)
	assert.Equal(t, uniformSlot{block: 0, offset: 0, size: 4}, impl.layout.uniforms["alpha"])
	assert.Equal(t, uniformSlot{block: 0, offset: 16, size: 12}, impl.layout.uniforms["tint"])
	assert.Equal(t, uniformSlot{block: 0, offset: 32, size: 64}, impl.layout.uniforms["wvp"])
	assert.Equal(t, uniformSlot{block: 0, offset: 96, size: 32}, impl.layout.uniforms["lights"])
	assert.Equal(t, uniformSlot{block: 1, offset: 0, size: 4}, impl.layout.uniforms["exposure"])

	blocks := p.UniformBlocks()
	require.Len(t, blocks, 2)
	assert.Len(t, blocks[0].Data, 128)
	assert.Len(t, blocks[1].Data, 16)

	groups := p.BindGroupLayoutDescriptors()
	require.Len(t, groups, 2)
	require.Len(t, groups[1].Entries, 3)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, groups[0].Entries[0].Buffer.Type)
	assert.Equal(t, uint64(128), groups[0].Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, groups[1].Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, groups[1].Entries[1].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, groups[1].Entries[2].Texture.SampleType)

	textures := p.TextureBindings()
	require.Len(t, textures, 2)
	assert.Equal(t, "albedo", textures[0].Name)
	assert.Equal(t, 1, textures[0].SamplerBinding)
	assert.Equal(t, -1, textures[1].SamplerBinding)
}

func TestWGSLProgramParameterWrites(t *testing.T) {
	p, err := NewWGSLProgram("test", testProgramSource)
	require.NoError(t, err)

	tint, ok := p.Parameter("tint")
	require.True(t, ok)
	require.NoError(t, tint.SetFloats(0.25, 0.5, 0.75))
	assert.Equal(t, []float32{0.25, 0.5, 0.75}, tint.Floats())
	assert.Error(t, tint.SetFloats(1, 2, 3, 4))
	assert.Error(t, tint.SetTexture(nil, common.SamplerStagingData{}))

	wvp, ok := p.SemanticParameter("WorldViewProjection")
	require.True(t, ok)
	assert.Equal(t, "wvp", wvp.Name())
	require.NoError(t, wvp.SetMatrix(common.IdentityMatrix()))
	assert.Equal(t, float32(1), wvp.Floats()[15])

	albedo, ok := p.Parameter("albedo")
	require.True(t, ok)
	assert.True(t, albedo.IsTexture())
	tex := &common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	require.NoError(t, albedo.SetTexture(tex, common.SamplerStagingData{MaxAnisotropy: 1}))
	got, _ := albedo.Texture()
	assert.Same(t, tex, got)
	assert.Error(t, albedo.SetFloats(1))

	_, ok = p.Parameter("missing")
	assert.False(t, ok)
}

func TestWGSLProgramCloneIsolation(t *testing.T) {
	p, err := NewWGSLProgram("test", testProgramSource)
	require.NoError(t, err)
	alpha, _ := p.Parameter("alpha")
	require.NoError(t, alpha.SetFloats(0.5))

	c := p.Clone()
	cloneAlpha, _ := c.Parameter("alpha")
	assert.Equal(t, []float32{0.5}, cloneAlpha.Floats())

	require.NoError(t, cloneAlpha.SetFloats(1))
	assert.Equal(t, []float32{0.5}, alpha.Floats())
	assert.Same(t, p.Module(), c.Module())
}

func TestNewWGSLProgramErrors(t *testing.T) {
	_, err := NewWGSLProgram("bad", "//@oxy:semantic World nothing\n")
	assert.ErrorIs(t, err, ErrUnknownParameter)

	_, err = NewWGSLProgram("bad", "//@oxy:semantic World\n")
	assert.Error(t, err)

	_, err = NewWGSLProgram("bad", "//@oxy:include camera\n")
	assert.Error(t, err)

	dup := "struct A { x: f32, }\n@group(0) @binding(0) var<uniform> a: A;\n@group(0) @binding(1) var<uniform> b: A;\n"
	_, err = NewWGSLProgram("dup", dup)
	assert.Error(t, err)
}

func TestStripComments(t *testing.T) {
	src := "a /* b /* nested */ c */ d // tail\ne"
	assert.Equal(t, "a  d \ne", stripComments(src))
}
