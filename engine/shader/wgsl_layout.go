package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslTypeLayout holds the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// fieldLayout is the placement of one struct member inside its uniform block.
type fieldLayout struct {
	name     string
	typeName string
	offset   uint64
	size     uint64
}

// wgslPrimitiveLayoutMap maps WGSL scalar, vector and matrix type names to their size and
// alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	// matCxR<f32>: C columns of vecR<f32>
	"mat2x2<f32>": {16, 8},
	"mat2x2f":     {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// wgslTextureDimensionMap maps sampled and depth texture base names to their view dimension.
var wgslTextureDimensionMap = map[string]wgpu.TextureViewDimension{
	"texture_1d":             wgpu.TextureViewDimension1D,
	"texture_2d":             wgpu.TextureViewDimension2D,
	"texture_2d_array":       wgpu.TextureViewDimension2DArray,
	"texture_3d":             wgpu.TextureViewDimension3D,
	"texture_cube":           wgpu.TextureViewDimensionCube,
	"texture_cube_array":     wgpu.TextureViewDimensionCubeArray,
	"texture_depth_2d":       wgpu.TextureViewDimension2D,
	"texture_depth_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_depth_cube":     wgpu.TextureViewDimensionCube,
}

// wgslSampleTypeMap maps WGSL scalar type parameters to their texture sample type
var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// roundUpAlign rounds value up to the next multiple of alignment, a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type to its size and alignment using the primitive table
// and already-computed struct layouts. Fixed-size arrays are supported; runtime-sized arrays
// and unknown types are not.
//
// Parameters:
//   - typeName: the WGSL type name, e.g. "f32", "LightData", "array<LightData, 4>"
//   - knownTypes: already-resolved struct layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false if the type could not be resolved
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	base, params := splitTypeParams(typeName)
	if base != "array" {
		return wgslTypeLayout{}, false
	}
	parts := splitAtTopLevelCommas(params)
	if len(parts) != 2 {
		return wgslTypeLayout{}, false
	}
	elem, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	// uniform arrays have a 16-byte element stride
	stride := roundUpAlign(16, roundUpAlign(elem.align, elem.size))
	return wgslTypeLayout{count * stride, max(elem.align, 16)}, true
}

// layoutStructFields places every non-builtin member of ps by the WGSL struct layout rules
// and returns the member placements with the struct's own layout.
//
// Parameters:
//   - ps: the struct to lay out
//   - knownTypes: already-resolved struct layouts
//
// Returns:
//   - []fieldLayout: the placement of each member in declaration order
//   - wgslTypeLayout: the struct's size and alignment
//   - bool: false if any member type could not be resolved
func layoutStructFields(ps parsedStruct, knownTypes map[string]wgslTypeLayout) ([]fieldLayout, wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	fields := make([]fieldLayout, 0, len(ps.fields))

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return nil, wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset)
		fields = append(fields, fieldLayout{
			name:     field.name,
			typeName: field.typeName,
			offset:   offset,
			size:     fl.size,
		})
		offset += fl.size
		maxAlign = max(maxAlign, fl.align)
	}

	// uniform structs are aligned to 16 bytes
	maxAlign = max(maxAlign, 16)
	return fields, wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves the layout of every struct, iterating until structs that embed
// other structs settle.
//
// Parameters:
//   - structs: all parsed struct blocks
//
// Returns:
//   - map[string]wgslTypeLayout: struct name to layout
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		progress := false
		next := remaining[:0]
		for _, ps := range remaining {
			if _, layout, ok := layoutStructFields(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}
		remaining = next
		if !progress {
			break
		}
	}

	return resolved
}

// classifyResource creates the bind group layout entry for one resource declaration.
//
// Parameters:
//   - decl: the parsed declaration
//   - size: the resolved byte size for uniform buffers, 0 otherwise
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the populated layout entry
func classifyResource(decl resourceDecl, size uint64) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(decl.binding),
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	}

	switch {
	case decl.addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = size
	case strings.HasPrefix(decl.addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case decl.typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case decl.typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(decl.typeName, "texture_depth_"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = wgslTextureDimensionMap[decl.typeName]
	case strings.HasPrefix(decl.typeName, "texture_"):
		base, param := splitTypeParams(decl.typeName)
		entry.Texture.ViewDimension = wgslTextureDimensionMap[base]
		entry.Texture.SampleType = wgslSampleTypeMap[param]
	}

	return entry
}

// isTextureType reports whether a WGSL type is a sampled or depth texture.
func isTextureType(typeName string) bool {
	return strings.HasPrefix(typeName, "texture_") && !strings.HasPrefix(typeName, "texture_storage_")
}
