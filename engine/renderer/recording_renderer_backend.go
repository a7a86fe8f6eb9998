package renderer

import (
	"errors"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

var (
	// ErrFrameInProgress is returned by BeginFrame when the previous frame was not ended.
	ErrFrameInProgress = errors.New("renderer: frame already in progress")

	// ErrNoFrame is returned by Draw and EndFrame outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("renderer: no frame in progress")
)

// RecordedDraw is a copy of one draw call taken when it reached the RecordingBackend.
type RecordedDraw struct {
	Label            string
	PipelineKey      string
	ProgramLabel     string
	FirstIndex       uint32
	IndexCount       uint32
	Indexed          bool
	StencilReference uint32
	Uniforms         []shader.UniformBlock
	Textures         []shader.TextureBinding
}

// Uniform returns the recorded bytes of the named uniform block.
//
// Parameters:
//   - name: the uniform block name
//
// Returns:
//   - []byte: the block data
//   - bool: false if the draw recorded no such block
func (d RecordedDraw) Uniform(name string) ([]byte, bool) {
	for _, u := range d.Uniforms {
		if u.Name == name {
			return u.Data, true
		}
	}
	return nil, false
}

// RecordingBackend is a RendererBackend that keeps a copy of every draw call of the last
// completed frame instead of talking to a GPU.
type RecordingBackend struct {
	mu         sync.Mutex
	registered []string
	inFrame    bool
	current    []RecordedDraw
	last       []RecordedDraw
	frames     int

	releasedPrograms []string
	releasedMeshes   []*scene.Mesh
}

var _ RendererBackend = &RecordingBackend{}

// NewRecordingBackend creates an empty RecordingBackend.
//
// Returns:
//   - *RecordingBackend: the backend
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{}
}

func (b *RecordingBackend) Type() RendererBackendType {
	return BackendTypeRecording
}

func (b *RecordingBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.Program() == nil {
		return errors.New("renderer: pipeline has no program")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = append(b.registered, p.PipelineKey())
	return nil
}

func (b *RecordingBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFrame {
		return ErrFrameInProgress
	}
	b.inFrame = true
	b.current = nil
	return nil
}

func (b *RecordingBackend) Draw(call DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return ErrNoFrame
	}

	uniforms := call.Program.UniformBlocks()
	for i := range uniforms {
		uniforms[i].Data = slices.Clone(uniforms[i].Data)
	}
	b.current = append(b.current, RecordedDraw{
		Label:            call.Label,
		PipelineKey:      call.Pipeline.PipelineKey(),
		ProgramLabel:     call.Program.Label(),
		FirstIndex:       call.Mesh.FirstIndex,
		IndexCount:       call.Mesh.IndexCount,
		Indexed:          len(call.Mesh.Indices) > 0,
		StencilReference: call.StencilReference,
		Uniforms:         uniforms,
		Textures:         call.Program.TextureBindings(),
	})
	return nil
}

func (b *RecordingBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return ErrNoFrame
	}
	b.inFrame = false
	b.last = b.current
	b.current = nil
	b.frames++
	return nil
}

func (b *RecordingBackend) ReleaseProgram(program shader.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releasedPrograms = append(b.releasedPrograms, program.Label())
}

func (b *RecordingBackend) ReleaseMesh(m *scene.Mesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releasedMeshes = append(b.releasedMeshes, m)
}

// ReleasedPrograms returns the labels of every released program in release order.
func (b *RecordingBackend) ReleasedPrograms() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.releasedPrograms)
}

// ReleasedMeshes returns every released mesh in release order.
func (b *RecordingBackend) ReleasedMeshes() []*scene.Mesh {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.releasedMeshes)
}

func (b *RecordingBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = nil
	b.current = nil
	b.last = nil
	b.inFrame = false
}

// Draws returns the draw calls of the last completed frame.
func (b *RecordingBackend) Draws() []RecordedDraw {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.last)
}

// Registered returns the keys of every registered pipeline in registration order.
func (b *RecordingBackend) Registered() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.registered)
}

// Frames returns the number of completed frames.
func (b *RecordingBackend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}
