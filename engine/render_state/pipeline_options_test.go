package render_state

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestPipelineOptionsFromDefaults(t *testing.T) {
	p := pipeline.NewPipeline("defaults", NewDefaults().PipelineOptions()...)

	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLessEqual, p.DepthCompare())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.False(t, p.StencilEnabled())
	assert.Equal(t, int32(0), p.DepthBias())
}

func TestPipelineOptionsOverrides(t *testing.T) {
	c := NewDefaults().Collection
	c.Cull.Enabled = false
	c.Wireframe.Enabled = true
	c.PolygonOffset = PolygonOffsetState{FillEnabled: true, Scale: 1, Bias: 2}
	c.Stencil.Enabled = true
	c.Stencil.Reference = 7
	c.Alpha.BlendEnabled = true

	p := pipeline.NewPipeline("overridden", c.PipelineOptions()...)

	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.Equal(t, float32(1), p.DepthBiasSlopeScale())
	assert.True(t, p.StencilEnabled())
	assert.Equal(t, uint32(7), p.StencilReference())

	target := p.ColorTargetState(wgpu.TextureFormatBGRA8Unorm)
	if assert.NotNil(t, target.Blend) {
		assert.Equal(t, wgpu.BlendFactorSrcAlpha, target.Blend.Color.SrcFactor)
	}
	ds := p.DepthStencilState(wgpu.TextureFormatDepth24Plus)
	assert.Equal(t, uint32(0xFFFFFFFF), ds.StencilReadMask)
}
