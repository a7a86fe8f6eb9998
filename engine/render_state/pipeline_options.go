package render_state

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineOptions translates the collection into pipeline builder options. Wireframe switches
// the topology to a line list; otherwise the topology is left to the caller.
//
// Returns:
//   - []pipeline.PipelineBuilderOption: the options reproducing this state
func (c Collection) PipelineOptions() []pipeline.PipelineBuilderOption {
	blend := wgpu.BlendComponent{
		SrcFactor: c.Alpha.SrcBlend,
		DstFactor: c.Alpha.DstBlend,
		Operation: c.Alpha.Operation,
	}
	cullMode := wgpu.CullModeNone
	if c.Cull.Enabled {
		cullMode = c.Cull.Mode
	}

	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithBlendEnabled(c.Alpha.BlendEnabled),
		pipeline.WithBlendState(&wgpu.BlendState{Color: blend, Alpha: blend}),
		pipeline.WithCullMode(cullMode),
		pipeline.WithFrontFace(c.Cull.FrontFace),
		pipeline.WithDepthTestEnabled(c.DepthBuffer.Enabled),
		pipeline.WithDepthWriteEnabled(c.DepthBuffer.Writable),
		pipeline.WithDepthCompare(c.DepthBuffer.Compare),
	}
	if c.PolygonOffset.FillEnabled {
		opts = append(opts, pipeline.WithDepthBias(int32(c.PolygonOffset.Bias), c.PolygonOffset.Scale))
	}
	if c.Stencil.Enabled {
		opts = append(opts, pipeline.WithStencil(wgpu.StencilFaceState{
			Compare:     c.Stencil.Compare,
			FailOp:      c.Stencil.OnFail,
			DepthFailOp: c.Stencil.OnDepthFail,
			PassOp:      c.Stencil.OnPass,
		}, c.Stencil.ReadMask, c.Stencil.WriteMask, c.Stencil.Reference))
	}
	if c.Wireframe.Enabled {
		opts = append(opts, pipeline.WithTopology(wgpu.PrimitiveTopologyLineList))
	}
	return opts
}
