package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// importOptions configures how a backend turns a file into a Model.
type importOptions struct {
	// sampler is used for textures that declare no sampler of their own.
	sampler common.SamplerStagingData

	// textures enables decoding base color textures. When false every material is untextured.
	textures bool
}

// loaderBackend defines the generic interface for importing models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports a model from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//   - opts: the import options
	//
	// Returns:
	//   - *Model: the imported model
	//   - error: error if loading fails
	Load(path string, opts importOptions) (*Model, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - name: the model name
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//   - opts: the import options
	//
	// Returns:
	//   - *Model: the imported model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool, opts importOptions) (*Model, error)
}
