package renderer

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the headless WebGPU backend rendering into an offscreen target.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeRecording selects a backend that records draw calls without a GPU.
	BackendTypeRecording
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// DrawCall is everything a backend needs to issue one draw: the pipeline resolved for the
// geometry's program and render state, the program whose parameter storage holds the uniform
// and texture values, and the mesh.
type DrawCall struct {
	// Label names the geometry being drawn.
	Label string

	// Pipeline is the cached pipeline for the program label, vertex layout and render state.
	Pipeline pipeline.Pipeline

	// Program is the geometry's own program clone. Its UniformBlocks and TextureBindings are
	// current when the call reaches the backend.
	Program shader.Program

	// Mesh holds the vertex and index data and the primitive range.
	Mesh *scene.Mesh

	// StencilReference is the reference value for the stencil test.
	StencilReference uint32
}

// RendererBackend executes draw calls produced by the Renderer. Calls between BeginFrame and
// EndFrame form one frame.
type RendererBackend interface {
	// Type returns the backend implementation type.
	Type() RendererBackendType

	// RegisterRenderPipeline creates the backend object for a pipeline. Called once per
	// pipeline key before the pipeline's first draw.
	//
	// Parameters:
	//   - p: the pipeline to create
	//
	// Returns:
	//   - error: an error if creation fails
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// BeginFrame starts a frame.
	//
	// Returns:
	//   - error: an error if a frame is already in progress or the frame cannot be started
	BeginFrame() error

	// Draw encodes one draw call into the current frame.
	//
	// Parameters:
	//   - call: the draw call
	//
	// Returns:
	//   - error: an error if no frame is in progress or the call cannot be encoded
	Draw(call DrawCall) error

	// EndFrame finishes the current frame and submits it.
	//
	// Returns:
	//   - error: an error if no frame is in progress or submission fails
	EndFrame() error

	// ReleaseProgram frees the resources held for a program clone, such as its uniform
	// buffers and bind groups. Unknown programs are ignored.
	//
	// Parameters:
	//   - program: the program clone that will not be drawn again
	ReleaseProgram(program shader.Program)

	// ReleaseMesh frees the buffers uploaded for a mesh. Unknown meshes are ignored.
	//
	// Parameters:
	//   - m: the mesh that will not be drawn again
	ReleaseMesh(m *scene.Mesh)

	// Release frees every backend resource.
	Release()
}
