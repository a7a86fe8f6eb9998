package pipeline

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the fixed-function configuration of one render pipeline and the GPU object once created.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// program and vertexLayout are required before a backend can create the GPU pipeline.
	program      shader.Program
	vertexLayout shader.VertexLayout

	// renderPipeline is nil until a backend creates the GPU object
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthCompare        wgpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	blendState          *wgpu.BlendState
	writeMask           wgpu.ColorWriteMask
	cullMode            wgpu.CullMode
	frontFace           wgpu.FrontFace
	topology            wgpu.PrimitiveTopology

	stencilEnabled   bool
	stencilFace      wgpu.StencilFaceState
	stencilReadMask  uint32
	stencilWriteMask uint32
	stencilReference uint32
}

// Pipeline describes one GPU render pipeline: the linked program it runs, the vertex layout it
// consumes and the depth, stencil, blend, cull and topology configuration derived from render state.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Program returns the linked program the pipeline runs.
	//
	// Returns:
	//   - shader.Program: the program, or nil if not set
	Program() shader.Program

	// VertexLayout returns the vertex layout the pipeline consumes.
	//
	// Returns:
	//   - shader.VertexLayout: the vertex layout
	VertexLayout() shader.VertexLayout

	// RenderPipeline returns the GPU render pipeline created by a backend.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline, or nil if not yet created
	RenderPipeline() *wgpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function used when depth testing is enabled.
	DepthCompare() wgpu.CompareFunction

	// DepthBias returns the depth bias value configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, applied only when blending is enabled
	BlendState() *wgpu.BlendState

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// StencilEnabled returns whether stencil testing is enabled for this pipeline.
	StencilEnabled() bool

	// StencilReference returns the stencil reference value set on the render pass when drawing.
	StencilReference() uint32

	// PrimitiveState builds the primitive state for pipeline creation.
	//
	// Returns:
	//   - wgpu.PrimitiveState: the topology, front face and cull mode
	PrimitiveState() wgpu.PrimitiveState

	// ColorTargetState builds the color target for the given surface format.
	//
	// Parameters:
	//   - format: the surface texture format
	//
	// Returns:
	//   - wgpu.ColorTargetState: the color target, blending included only when enabled
	ColorTargetState(format wgpu.TextureFormat) wgpu.ColorTargetState

	// DepthStencilState builds the depth/stencil state for the given depth format.
	//
	// Parameters:
	//   - format: the depth texture format
	//
	// Returns:
	//   - *wgpu.DepthStencilState: the depth/stencil configuration
	DepthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
		stencilFace: wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		},
		stencilReadMask:  0xFFFFFFFF,
		stencilWriteMask: 0xFFFFFFFF,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Program() shader.Program {
	return p.program
}

func (p *pipeline) VertexLayout() shader.VertexLayout {
	return p.vertexLayout
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) StencilEnabled() bool {
	return p.stencilEnabled
}

func (p *pipeline) StencilReference() uint32 {
	return p.stencilReference
}

func (p *pipeline) PrimitiveState() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  p.topology,
		FrontFace: p.frontFace,
		CullMode:  p.cullMode,
	}
}

func (p *pipeline) ColorTargetState(format wgpu.TextureFormat) wgpu.ColorTargetState {
	state := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: p.writeMask,
	}
	if p.blendEnabled {
		state.Blend = p.blendState
	}
	return state
}

func (p *pipeline) DepthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	depthCompare := p.depthCompare
	if !p.depthTestEnabled {
		depthCompare = wgpu.CompareFunctionAlways
	}
	face := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	readMask, writeMask := uint32(0), uint32(0)
	if p.stencilEnabled {
		face = p.stencilFace
		readMask, writeMask = p.stencilReadMask, p.stencilWriteMask
	}
	return &wgpu.DepthStencilState{
		Format:              format,
		DepthWriteEnabled:   p.depthWriteEnabled,
		DepthCompare:        depthCompare,
		DepthBias:           p.depthBias,
		DepthBiasSlopeScale: p.depthBiasSlopeScale,
		StencilFront:        face,
		StencilBack:         face,
		StencilReadMask:     readMask,
		StencilWriteMask:    writeMask,
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
