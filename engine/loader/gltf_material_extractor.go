package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/cogentcore/webgpu/wgpu"
)

// gltfMaterialData is a glTF material reduced to what the engine's materials can express.
type gltfMaterialData struct {
	Name string

	// BaseColor is the linear RGBA base color factor.
	BaseColor [4]float32

	// Emissive is the RGB emissive factor.
	Emissive [3]float32

	// BaseColorTexture is the base color image, nil when the material has none.
	BaseColorTexture *common.ImportedTexture

	// AlphaMode is one of OPAQUE, MASK or BLEND.
	AlphaMode string

	// DoubleSided disables back-face culling.
	DoubleSided bool
}

// defaultGLTFMaterial is used by primitives without a material.
func defaultGLTFMaterial() gltfMaterialData {
	return gltfMaterialData{
		Name:      "default",
		BaseColor: [4]float32{1, 1, 1, 1},
		AlphaMode: gltfAlphaModeOpaque,
	}
}

// basicEffect builds an untextured material from the base color and emissive factors.
//
// Returns:
//   - *effect.BasicMaterial: the material
func (m *gltfMaterialData) basicEffect() *effect.BasicMaterial {
	return effect.NewBasicMaterial(
		effect.WithDiffuseColor(m.BaseColor[0], m.BaseColor[1], m.BaseColor[2]),
		effect.WithEmissiveColor(m.Emissive[0], m.Emissive[1], m.Emissive[2]),
		effect.WithAlpha(m.BaseColor[3]),
	)
}

// textureEffect decodes the base color texture into a TextureMaterial tinted by the base color.
//
// Parameters:
//   - fallback: the sampler used when the glTF texture declares none
//
// Returns:
//   - *effect.TextureMaterial: the material
//   - error: error if the image cannot be decoded
func (m *gltfMaterialData) textureEffect(fallback common.SamplerStagingData) (*effect.TextureMaterial, error) {
	tm, err := effect.NewTextureMaterialFromImported(m.BaseColorTexture, fallback)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", m.Name, err)
	}
	tm.DiffuseColor = m.BaseColor
	return tm, nil
}

// states returns the render state overrides the material implies.
//
// Returns:
//   - []render_state.State: blending for BLEND materials and no culling for double-sided ones
func (m *gltfMaterialData) states() []render_state.State {
	var states []render_state.State
	if m.AlphaMode == gltfAlphaModeBlend {
		states = append(states, render_state.AlphaState{
			BlendEnabled: true,
			SrcBlend:     wgpu.BlendFactorSrcAlpha,
			DstBlend:     wgpu.BlendFactorOneMinusSrcAlpha,
			Operation:    wgpu.BlendOperationAdd,
		})
	}
	if m.DoubleSided {
		states = append(states, render_state.CullState{Enabled: false})
	}
	return states
}

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor defines the interface for extracting material and texture data
// from a parsed glTF document.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, including loading any referenced texture data.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - gltfMaterialData: the extracted material with any embedded texture data loaded
	//   - error: error if extraction fails
	ExtractMaterial(materialIndex int) (gltfMaterialData, error)

	// ExtractAllMaterials extracts all materials from the document.
	//
	// Returns:
	//   - []gltfMaterialData: all extracted materials, indexed like doc.Materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]gltfMaterialData, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (gltfMaterialData, error) {
	doc := e.parser.Document()
	if doc == nil {
		return gltfMaterialData{}, errNoDocument
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return gltfMaterialData{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	result := defaultGLTFMaterial()
	result.Name = mat.Name
	if result.Name == "" {
		result.Name = fmt.Sprintf("material_%d", materialIndex)
	}
	if mat.AlphaMode != "" {
		result.AlphaMode = mat.AlphaMode
	}
	result.DoubleSided = mat.DoubleSided
	if mat.EmissiveFactor != nil {
		result.Emissive = *mat.EmissiveFactor
	}

	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			result.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.BaseColorTexture != nil {
			tex, err := e.loadTexture(pbr.BaseColorTexture.Index)
			if err != nil {
				return gltfMaterialData{}, fmt.Errorf("material %q: base color texture: %w", result.Name, err)
			}
			result.BaseColorTexture = tex
		}
	}

	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]gltfMaterialData, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	materials := make([]gltfMaterialData, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = mat
	}
	return materials, nil
}

// loadTexture resolves a glTF texture index into an ImportedTexture with loaded image data.
// Embedded images (buffer view or data URI) carry their bytes; external files carry their
// resolved path and, when readable, their bytes.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}

	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}

	var samplerData *common.SamplerStagingData
	if tex.Sampler != nil && *tex.Sampler >= 0 && *tex.Sampler < len(doc.Samplers) {
		samplerData = gltfSamplerToStagingData(&doc.Samplers[*tex.Sampler])
	}

	imageIndex := *tex.Source
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", imageIndex)
	}
	img := &doc.Images[imageIndex]

	result := &common.ImportedTexture{
		Name:        img.Name,
		MimeType:    img.MimeType,
		SamplerData: samplerData,
	}

	switch {
	case img.BufferView != nil:
		data, err := e.readBufferViewRaw(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := gltfDecodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		result.Data = data
		if result.MimeType == "" {
			result.MimeType = mimeType
		}
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), img.URI)
		// Unreadable files keep only the path; decoding reports the failure later.
		if data, err := os.ReadFile(result.Path); err == nil {
			result.Data = data
		}
	default:
		return nil, nil
	}
	return result, nil
}

// readBufferViewRaw reads raw bytes from a buffer view by index (not through an accessor).
// This is used for image data which is stored directly in buffer views without accessor interpretation.
func (e *gltfMaterialExtractorImpl) readBufferViewRaw(bufferViewIndex int) ([]byte, error) {
	doc := e.parser.Document()
	if bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", bufferViewIndex)
	}

	bv := &doc.BufferViews[bufferViewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}

	buf := &doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if end > len(buf.Data) {
		return nil, fmt.Errorf("bufferView exceeds buffer bounds: offset=%d length=%d bufSize=%d", bv.ByteOffset, bv.ByteLength, len(buf.Data))
	}

	data := make([]byte, bv.ByteLength)
	copy(data, buf.Data[bv.ByteOffset:end])
	return data, nil
}

// gltfSamplerToStagingData converts a glTF sampler definition into engine-ready SamplerStagingData.
// Any unset fields in the glTF sampler fall back to the glTF spec defaults (linear filtering, repeat wrapping).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
//
// Parameters:
//   - s: the glTF sampler to convert
//
// Returns:
//   - *common.SamplerStagingData: the converted sampler staging data
func gltfSamplerToStagingData(s *gltfSampler) *common.SamplerStagingData {
	result := &common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}

	if s.MagFilter != nil {
		switch *s.MagFilter {
		case gltfFilterNearest:
			result.MagFilter = wgpu.FilterModeNearest
		case gltfFilterLinear:
			result.MagFilter = wgpu.FilterModeLinear
		}
	}

	if s.MinFilter != nil {
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
			result.MinFilter = wgpu.FilterModeNearest
		case gltfFilterLinear, gltfFilterLinearMipmapNearest, gltfFilterLinearMipmapLinear:
			result.MinFilter = wgpu.FilterModeLinear
		}
		// Also set the mipmap filter based on the minification filter variant
		switch *s.MinFilter {
		case gltfFilterNearestMipmapNearest, gltfFilterLinearMipmapNearest:
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
		case gltfFilterNearestMipmapLinear, gltfFilterLinearMipmapLinear:
			result.MipmapFilter = wgpu.MipmapFilterModeLinear
		case gltfFilterNearest, gltfFilterLinear:
			// Non-mipmapped filters: set mipmap to nearest as a conservative default
			result.MipmapFilter = wgpu.MipmapFilterModeNearest
		}
	}

	if s.WrapS != nil {
		result.AddressModeU = gltfWrapToAddressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		result.AddressModeV = gltfWrapToAddressMode(*s.WrapT)
	}

	return result
}

// gltfWrapToAddressMode converts a glTF wrap mode constant to a wgpu AddressMode.
//
// Parameters:
//   - wrap: the glTF wrap mode constant
//
// Returns:
//   - wgpu.AddressMode: the corresponding wgpu address mode
func gltfWrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case gltfWrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltfWrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	case gltfWrapRepeat:
		return wgpu.AddressModeRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
