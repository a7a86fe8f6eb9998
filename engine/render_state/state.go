// Package render_state models the fixed-function render state a scene graph propagates to its
// geometry: six orthogonal axes, each with a documented default, stacked during traversal.
package render_state

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// StateType identifies one render state axis.
type StateType int

const (
	StateTypeAlpha StateType = iota
	StateTypeCull
	StateTypePolygonOffset
	StateTypeStencil
	StateTypeWireframe
	StateTypeDepthBuffer

	// StateTypeCount is the number of axes.
	StateTypeCount
)

func (t StateType) String() string {
	switch t {
	case StateTypeAlpha:
		return "alpha"
	case StateTypeCull:
		return "cull"
	case StateTypePolygonOffset:
		return "polygon_offset"
	case StateTypeStencil:
		return "stencil"
	case StateTypeWireframe:
		return "wireframe"
	case StateTypeDepthBuffer:
		return "depth_buffer"
	default:
		return fmt.Sprintf("StateType(%d)", int(t))
	}
}

// State is a value of one render state axis.
type State interface {
	// Type returns the axis the value belongs to.
	Type() StateType
}

// AlphaState configures color blending.
type AlphaState struct {
	BlendEnabled bool
	SrcBlend     wgpu.BlendFactor
	DstBlend     wgpu.BlendFactor
	Operation    wgpu.BlendOperation
}

// CullState configures back-face culling. When Enabled is false no faces are culled.
type CullState struct {
	Enabled   bool
	FrontFace wgpu.FrontFace
	Mode      wgpu.CullMode
}

// PolygonOffsetState configures depth bias for filled polygons.
type PolygonOffsetState struct {
	FillEnabled bool
	Scale       float32
	Bias        float32
}

// StencilState configures the stencil test, applied identically to front and back faces.
type StencilState struct {
	Enabled     bool
	Compare     wgpu.CompareFunction
	Reference   uint32
	ReadMask    uint32
	WriteMask   uint32
	OnFail      wgpu.StencilOperation
	OnDepthFail wgpu.StencilOperation
	OnPass      wgpu.StencilOperation
}

// WireframeState switches line rendering on.
type WireframeState struct {
	Enabled bool
}

// DepthBufferState configures depth testing and depth writes.
type DepthBufferState struct {
	Enabled  bool
	Writable bool
	Compare  wgpu.CompareFunction
}

func (AlphaState) Type() StateType         { return StateTypeAlpha }
func (CullState) Type() StateType          { return StateTypeCull }
func (PolygonOffsetState) Type() StateType { return StateTypePolygonOffset }
func (StencilState) Type() StateType       { return StateTypeStencil }
func (WireframeState) Type() StateType     { return StateTypeWireframe }
func (DepthBufferState) Type() StateType   { return StateTypeDepthBuffer }
