package shader

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ParameterHandle writes values into one parameter of one Program. Handles obtained from a
// clone write only into that clone's private storage.
type ParameterHandle interface {
	// Name returns the mangled parameter name the handle was resolved from.
	Name() string

	// IsTexture reports whether the handle refers to a texture binding rather than a
	// uniform value.
	IsTexture() bool

	// SetFloats writes consecutive float32 values starting at the parameter's offset.
	// Matrices and arrays are written in their WGSL memory layout, padding included.
	//
	// Parameters:
	//   - values: the values to write
	//
	// Returns:
	//   - error: an error if the handle is a texture or the values overflow the parameter
	SetFloats(values ...float32) error

	// SetInts writes consecutive int32 values starting at the parameter's offset.
	//
	// Parameters:
	//   - values: the values to write
	//
	// Returns:
	//   - error: an error if the handle is a texture or the values overflow the parameter
	SetInts(values ...int32) error

	// SetMatrix writes a column-major 4x4 matrix.
	//
	// Parameters:
	//   - m: the matrix to write
	//
	// Returns:
	//   - error: an error if the parameter is smaller than a mat4x4
	SetMatrix(m [16]float32) error

	// Floats reads the parameter's current contents as float32 values.
	//
	// Returns:
	//   - []float32: a copy of the stored values, nil for texture handles
	Floats() []float32

	// SetTexture stores the texture and sampler to bind for a texture parameter.
	//
	// Parameters:
	//   - tex: the texture staging data, nil clears the binding
	//   - sampler: the sampler configuration
	//
	// Returns:
	//   - error: an error if the handle is not a texture
	SetTexture(tex *common.TextureStagingData, sampler common.SamplerStagingData) error

	// Texture returns the texture and sampler currently stored for a texture parameter.
	//
	// Returns:
	//   - *common.TextureStagingData: the bound texture, or nil
	//   - common.SamplerStagingData: the sampler configuration
	Texture() (*common.TextureStagingData, common.SamplerStagingData)
}

// UniformBlock is the CPU staging copy of one uniform buffer binding.
type UniformBlock struct {
	Group   int
	Binding int
	Name    string
	Data    []byte
}

// TextureBinding is the current texture assignment of one texture binding. SamplerBinding is
// -1 when the program declares no sampler paired with the texture.
type TextureBinding struct {
	Group          int
	Binding        int
	SamplerBinding int
	Name           string
	Texture        *common.TextureStagingData
	Sampler        common.SamplerStagingData
}

// Program is a fully linked GPU program together with its parameter storage. Clones share the
// immutable compiled data and own private parameter storage.
type Program interface {
	// Label returns the program label stored in the catalog.
	Label() string

	// Blob returns the serialized program bytes the program was loaded from.
	//
	// Returns:
	//   - []byte: the program bytes
	Blob() []byte

	// Module returns the shader module descriptor used to create the GPU module.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor, shared by all clones
	Module() *wgpu.ShaderModuleDescriptor

	// VertexEntryPoint returns the vertex stage entry point name.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment stage entry point name.
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptors returns the bind group layouts declared by the program.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// Parameter resolves a parameter by its mangled name.
	//
	// Parameters:
	//   - name: the mangled parameter name
	//
	// Returns:
	//   - ParameterHandle: the handle writing into this program's storage
	//   - bool: false if the program declares no such parameter
	Parameter(name string) (ParameterHandle, bool)

	// ParameterNames returns every parameter name in declaration order.
	ParameterNames() []string

	// SemanticParameter resolves a parameter by its renderer semantic, e.g. "WorldViewProjection".
	//
	// Parameters:
	//   - semantic: the semantic name
	//
	// Returns:
	//   - ParameterHandle: the handle writing into this program's storage
	//   - bool: false if no parameter carries the semantic
	SemanticParameter(semantic string) (ParameterHandle, bool)

	// UniformBlocks returns the staging data of every uniform binding. The Data slices alias
	// the program's storage and are valid until the next parameter write.
	UniformBlocks() []UniformBlock

	// TextureBindings returns the current texture assignments.
	TextureBindings() []TextureBinding

	// Clone returns a program sharing this program's compiled data with a private copy of
	// its parameter storage.
	//
	// Returns:
	//   - Program: the clone
	Clone() Program
}

// ProgramLoader turns the label and bytes of a catalog program blob into a Program.
type ProgramLoader func(label string, blob []byte) (Program, error)

// LoadWGSLProgram is the default ProgramLoader. It treats the blob as WGSL source text.
//
// Parameters:
//   - label: the program label
//   - blob: the WGSL source bytes
//
// Returns:
//   - Program: the parsed program
//   - error: an error if the source cannot be parsed
func LoadWGSLProgram(label string, blob []byte) (Program, error) {
	return NewWGSLProgram(label, string(blob))
}
