package shader

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// FragmentClass categorizes an authored fragment. It is informational only and is never
// consulted by catalog matching.
type FragmentClass int32

const (
	FragmentClassVertex FragmentClass = iota
	FragmentClassVertexTransform
	FragmentClassMaterial
	FragmentClassLight
	FragmentClassLightingModel
	FragmentClassPixelFinal
)

func (c FragmentClass) String() string {
	switch c {
	case FragmentClassVertex:
		return "Vertex"
	case FragmentClassVertexTransform:
		return "VertexTransform"
	case FragmentClassMaterial:
		return "Material"
	case FragmentClassLight:
		return "Light"
	case FragmentClassLightingModel:
		return "LightingModel"
	case FragmentClassPixelFinal:
		return "PixelFinal"
	default:
		return fmt.Sprintf("FragmentClass(%d)", int32(c))
	}
}

// FragmentParameter declares one uniform, vertex input or interpolator of a fragment.
type FragmentParameter struct {
	DataType    string
	Name        string
	Semantic    string
	Description string
}

// FragmentTexture declares one texture input of a fragment together with its sampler
// configuration. Filter values are "Linear", "Point" or "Nearest"; address values are
// "Wrap", "Clamp" or "Mirror". Empty strings fall back to linear filtering and wrapping.
type FragmentTexture struct {
	Name        string
	SamplerName string
	SamplerType string
	MipFilter   string
	MinFilter   string
	MagFilter   string
	AddressU    string
	AddressV    string
	Description string
}

// SamplerData translates the texture's sampler strings into sampler staging data for the
// renderer.
//
// Returns:
//   - common.SamplerStagingData: the translated sampler configuration
func (t FragmentTexture) SamplerData() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  addressMode(t.AddressU),
		AddressModeV:  addressMode(t.AddressV),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     filterMode(t.MagFilter),
		MinFilter:     filterMode(t.MinFilter),
		MipmapFilter:  mipmapFilterMode(t.MipFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	}
}

func filterMode(s string) wgpu.FilterMode {
	switch strings.ToLower(s) {
	case "point", "nearest":
		return wgpu.FilterModeNearest
	default:
		return wgpu.FilterModeLinear
	}
}

func mipmapFilterMode(s string) wgpu.MipmapFilterMode {
	switch strings.ToLower(s) {
	case "point", "nearest":
		return wgpu.MipmapFilterModeNearest
	default:
		return wgpu.MipmapFilterModeLinear
	}
}

func addressMode(s string) wgpu.AddressMode {
	switch strings.ToLower(s) {
	case "clamp":
		return wgpu.AddressModeClampToEdge
	case "mirror":
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

// fragmentDescriptor is the implementation of the FragmentDescriptor interface.
type fragmentDescriptor struct {
	name          string
	class         FragmentClass
	parameters    []FragmentParameter
	textures      []FragmentTexture
	vertexInputs  []FragmentParameter
	interpolators []FragmentParameter
	vertexProgram string
	pixelProgram  string
	functions     string
}

// FragmentDescriptor is an authored, linkable shader fragment: its declared uniforms,
// textures, vertex inputs and interpolators plus the vertex and pixel program text it
// contributes. Descriptors are immutable once built and are consumed by the offline linker
// that produces catalogs.
type FragmentDescriptor interface {
	// Name returns the fragment name used as the catalog matching key.
	//
	// Returns:
	//   - string: the fragment name
	Name() string

	// Class returns the fragment's informational category.
	//
	// Returns:
	//   - FragmentClass: the class
	Class() FragmentClass

	// Parameters returns the declared uniform parameters in declaration order.
	//
	// Returns:
	//   - []FragmentParameter: a copy of the parameter list
	Parameters() []FragmentParameter

	// Textures returns the declared textures in declaration order.
	//
	// Returns:
	//   - []FragmentTexture: a copy of the texture list
	Textures() []FragmentTexture

	// VertexInputs returns the vertex attributes consumed by the fragment.
	//
	// Returns:
	//   - []FragmentParameter: a copy of the vertex input list
	VertexInputs() []FragmentParameter

	// Interpolators returns the values passed from the vertex to the pixel stage.
	//
	// Returns:
	//   - []FragmentParameter: a copy of the interpolator list
	Interpolators() []FragmentParameter

	// VertexProgram returns the trimmed vertex stage source text.
	VertexProgram() string

	// PixelProgram returns the trimmed pixel stage source text.
	PixelProgram() string

	// Functions returns the trimmed shared helper functions block, or an empty string.
	Functions() string

	// ContentHash returns a stable hex digest over every field of the descriptor. Program text
	// is hashed after trimming, so whitespace-only edits around it do not change the hash.
	//
	// Returns:
	//   - string: the lowercase hex SHA-256 digest
	ContentHash() string
}

var _ FragmentDescriptor = &fragmentDescriptor{}

// NewFragmentDescriptor creates a FragmentDescriptor with the given name and class and all
// specified options applied.
//
// Parameters:
//   - name: the fragment name, must not be empty
//   - class: the informational fragment class
//   - options: functional options populating parameters, textures and program text
//
// Returns:
//   - FragmentDescriptor: the immutable descriptor
func NewFragmentDescriptor(name string, class FragmentClass, options ...FragmentDescriptorBuilderOption) FragmentDescriptor {
	if name == "" {
		panic("shader: fragment descriptor requires a name")
	}
	f := &fragmentDescriptor{
		name:  name,
		class: class,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *fragmentDescriptor) Name() string {
	return f.name
}

func (f *fragmentDescriptor) Class() FragmentClass {
	return f.class
}

func (f *fragmentDescriptor) Parameters() []FragmentParameter {
	return append([]FragmentParameter(nil), f.parameters...)
}

func (f *fragmentDescriptor) Textures() []FragmentTexture {
	return append([]FragmentTexture(nil), f.textures...)
}

func (f *fragmentDescriptor) VertexInputs() []FragmentParameter {
	return append([]FragmentParameter(nil), f.vertexInputs...)
}

func (f *fragmentDescriptor) Interpolators() []FragmentParameter {
	return append([]FragmentParameter(nil), f.interpolators...)
}

func (f *fragmentDescriptor) VertexProgram() string {
	return f.vertexProgram
}

func (f *fragmentDescriptor) PixelProgram() string {
	return f.pixelProgram
}

func (f *fragmentDescriptor) Functions() string {
	return f.functions
}

func (f *fragmentDescriptor) ContentHash() string {
	h := sha256.New()
	writeString := func(s string) {
		var n [binary.MaxVarintLen64]byte
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(s)))])
		h.Write([]byte(s))
	}
	writeParams := func(params []FragmentParameter) {
		writeString(fmt.Sprint(len(params)))
		for _, p := range params {
			writeString(p.DataType)
			writeString(p.Name)
			writeString(p.Semantic)
			writeString(p.Description)
		}
	}

	writeString(f.name)
	writeString(f.class.String())
	writeParams(f.parameters)
	writeString(fmt.Sprint(len(f.textures)))
	for _, t := range f.textures {
		for _, s := range []string{t.Name, t.SamplerName, t.SamplerType, t.MipFilter, t.MinFilter, t.MagFilter, t.AddressU, t.AddressV, t.Description} {
			writeString(s)
		}
	}
	writeParams(f.vertexInputs)
	writeParams(f.interpolators)
	writeString(f.vertexProgram)
	writeString(f.pixelProgram)
	writeString(f.functions)
	return hex.EncodeToString(h.Sum(nil))
}
