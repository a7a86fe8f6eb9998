package loader

import "github.com/Carmen-Shannon/oxy-fx/common"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithDefaultSampler sets the sampler used for textures that declare none.
//
// Parameters:
//   - s: the sampler configuration
//
// Returns:
//   - LoaderBuilderOption: a function that applies the sampler option to a loader
func WithDefaultSampler(s common.SamplerStagingData) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.sampler = s
	}
}

// WithTextures enables or disables texture decoding. With textures disabled every material
// imports as an untextured BasicMaterial, which needs no texture coordinates or image data.
//
// Parameters:
//   - enabled: false to skip textures
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture option to a loader
func WithTextures(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.opts.textures = enabled
	}
}
