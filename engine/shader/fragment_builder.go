package shader

import "strings"

// FragmentDescriptorBuilderOption is a functional option for configuring a FragmentDescriptor.
type FragmentDescriptorBuilderOption func(*fragmentDescriptor)

// WithParameters appends uniform parameter declarations.
//
// Parameters:
//   - params: the parameters in declaration order
//
// Returns:
//   - FragmentDescriptorBuilderOption: a function that applies the parameters
func WithParameters(params ...FragmentParameter) FragmentDescriptorBuilderOption {
	return func(f *fragmentDescriptor) {
		f.parameters = append(f.parameters, params...)
	}
}

// WithTextures appends texture declarations.
//
// Parameters:
//   - textures: the textures in declaration order
//
// Returns:
//   - FragmentDescriptorBuilderOption: a function that applies the textures
func WithTextures(textures ...FragmentTexture) FragmentDescriptorBuilderOption {
	return func(f *fragmentDescriptor) {
		f.textures = append(f.textures, textures...)
	}
}

// WithVertexInputs appends vertex attribute declarations.
func WithVertexInputs(inputs ...FragmentParameter) FragmentDescriptorBuilderOption {
	return func(f *fragmentDescriptor) {
		f.vertexInputs = append(f.vertexInputs, inputs...)
	}
}

// WithInterpolators appends vertex-to-pixel interpolator declarations.
func WithInterpolators(interpolators ...FragmentParameter) FragmentDescriptorBuilderOption {
	return func(f *fragmentDescriptor) {
		f.interpolators = append(f.interpolators, interpolators...)
	}
}

// WithVertexProgram sets the vertex stage source text. Surrounding whitespace is trimmed.
//
// Parameters:
//   - source: the vertex program text
//
// Returns:
//   - FragmentDescriptorBuilderOption: a function that applies the vertex program
func WithVertexProgram(source string) FragmentDescriptorBuilderOption {
	return func(f *fragmentDescriptor) {
		f.vertexProgram = strings.TrimSpace(source)
	}
}

// WithPixelProgram sets the pixel stage source text. Surrounding whitespace is trimmed.
//
// Parameters:
//   - source: the pixel program text
//
// Returns:
//   - FragmentDescriptorBuilderOption: a function that applies the pixel program
func WithPixelProgram(source string) FragmentDescriptorBuilderOption {
	return func(f *fragmentDescriptor) {
		f.pixelProgram = strings.TrimSpace(source)
	}
}

// WithFunctions sets the shared helper functions block. Surrounding whitespace is trimmed.
func WithFunctions(source string) FragmentDescriptorBuilderOption {
	return func(f *fragmentDescriptor) {
		f.functions = strings.TrimSpace(source)
	}
}
