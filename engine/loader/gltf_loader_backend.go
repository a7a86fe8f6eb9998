package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It runs the parser and every extractor and assembles the results into a Model.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string, opts importOptions) (*Model, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return b.importFromParser(parser, gltfModelName(parser.Document(), path), opts)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool, opts importOptions) (*Model, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return b.importFromParser(parser, name, opts)
}

// importFromParser extracts meshes, materials and nodes from a parsed document.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - name: the model name
//   - opts: the import options
//
// Returns:
//   - *Model: the assembled model
//   - error: error if any extraction fails
func (b *gltfLoaderBackendImpl) importFromParser(parser gltfParser, name string, opts importOptions) (*Model, error) {
	meshes, err := newGLTFMeshExtractor(parser).ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	materialData, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	nodes, roots, err := newGLTFNodeExtractor(parser).ExtractNodes()
	if err != nil {
		return nil, fmt.Errorf("node extraction failed: %w", err)
	}

	materials := make([]modelMaterial, len(materialData))
	for i := range materialData {
		mat, err := buildModelMaterial(&materialData[i], opts)
		if err != nil {
			return nil, err
		}
		materials[i] = mat
	}
	def := defaultGLTFMaterial()
	fallback, _ := buildModelMaterial(&def, opts)

	m := &Model{
		name:      name,
		nodes:     nodes,
		roots:     roots,
		meshes:    meshes,
		materials: materials,
		fallback:  fallback,
	}
	common.Logger().Debug("loader: imported model",
		"name", name,
		"nodes", len(nodes),
		"meshes", len(meshes),
		"materials", len(materials),
	)
	return m, nil
}

// buildModelMaterial turns extracted material data into attachable effects.
func buildModelMaterial(data *gltfMaterialData, opts importOptions) (modelMaterial, error) {
	mat := modelMaterial{
		name:   data.Name,
		effect: data.basicEffect(),
		states: data.states(),
	}
	if data.AlphaMode == gltfAlphaModeMask {
		common.Logger().Debug("loader: alpha mask drawn opaque", "material", data.Name)
	}
	if data.BaseColorTexture == nil || !opts.textures {
		return mat, nil
	}

	textured, err := data.textureEffect(opts.sampler)
	if err != nil {
		return modelMaterial{}, err
	}
	mat.untextured = mat.effect
	mat.effect = textured
	return mat, nil
}

// gltfModelName derives a model name from the default scene name or the file name.
func gltfModelName(doc *gltfDocument, path string) string {
	if doc != nil && doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if path != "" {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "unnamed_model"
}
