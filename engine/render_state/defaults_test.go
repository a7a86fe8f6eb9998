package render_state

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsYAMLOverlaysBuiltins(t *testing.T) {
	doc := `
cull:
  mode: front
depth_buffer:
  compare: less
stencil:
  enabled: true
  reference: 3
  on_pass: replace
`
	d, err := LoadDefaultsYAML(strings.NewReader(doc))
	require.NoError(t, err)

	assert.True(t, d.Cull.Enabled)
	assert.Equal(t, wgpu.CullModeFront, d.Cull.Mode)
	assert.Equal(t, wgpu.CompareFunctionLess, d.DepthBuffer.Compare)
	assert.True(t, d.DepthBuffer.Writable)
	assert.True(t, d.Stencil.Enabled)
	assert.Equal(t, uint32(3), d.Stencil.Reference)
	assert.Equal(t, wgpu.StencilOperationReplace, d.Stencil.OnPass)
	assert.Equal(t, wgpu.StencilOperationKeep, d.Stencil.OnFail)
	assert.Equal(t, NewDefaults().Alpha, d.Alpha)
}

func TestLoadDefaultsYAMLEmptyDocument(t *testing.T) {
	d, err := LoadDefaultsYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, NewDefaults(), d)
}

func TestLoadDefaultsTOML(t *testing.T) {
	doc := `
[alpha]
blend_enabled = true
src_blend = "one"
dst_blend = "one_minus_src_alpha"

[wireframe]
enabled = true

[polygon_offset]
fill_enabled = true
scale = 1.5
bias = 2.0
`
	d, err := LoadDefaultsTOML(strings.NewReader(doc))
	require.NoError(t, err)

	assert.True(t, d.Alpha.BlendEnabled)
	assert.Equal(t, wgpu.BlendFactorOne, d.Alpha.SrcBlend)
	assert.True(t, d.Wireframe.Enabled)
	assert.Equal(t, PolygonOffsetState{FillEnabled: true, Scale: 1.5, Bias: 2}, d.PolygonOffset)
}

func TestLoadDefaultsRejectsUnknownNames(t *testing.T) {
	_, err := LoadDefaultsYAML(strings.NewReader("cull:\n  mode: sideways\n"))
	assert.ErrorContains(t, err, "cull.mode")

	_, err = LoadDefaultsYAML(strings.NewReader("fog:\n  enabled: true\n"))
	assert.Error(t, err)

	_, err = LoadDefaultsTOML(strings.NewReader("[depth_buffer]\ncompare = \"sometimes\"\n"))
	assert.ErrorContains(t, err, "depth_buffer.compare")

	_, err = LoadDefaultsTOML(strings.NewReader("[cull]\nangle = 3\n"))
	assert.Error(t, err)
}

func TestDefaultsDocumentsRoundTrip(t *testing.T) {
	d := NewDefaults()
	d.Cull.Mode = wgpu.CullModeFront
	d.Stencil.OnPass = wgpu.StencilOperationIncrementWrap
	d.PolygonOffset = PolygonOffsetState{FillEnabled: true, Scale: 0.5, Bias: 4}

	y, err := d.MarshalYAMLDocument()
	require.NoError(t, err)
	fromYAML, err := LoadDefaultsYAML(bytes.NewReader(y))
	require.NoError(t, err)
	assert.Equal(t, d, fromYAML)

	tm, err := d.MarshalTOMLDocument()
	require.NoError(t, err)
	fromTOML, err := LoadDefaultsTOML(bytes.NewReader(tm))
	require.NoError(t, err)
	assert.Equal(t, d, fromTOML)
}
