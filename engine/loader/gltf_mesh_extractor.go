package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// gltfPrimitiveMesh is one glTF primitive converted into a drawable Mesh.
type gltfPrimitiveMesh struct {
	// Name is the mesh name, suffixed with the primitive index after the first primitive.
	Name string

	// Mesh holds the interleaved vertex and index data.
	Mesh *scene.Mesh

	// MaterialIndex is the glTF material index, or -1 when the primitive has none.
	MaterialIndex int
}

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF meshes into scene Meshes. Every primitive becomes one
// Mesh whose vertex layout is Position and Normal, followed by TextureCoordinate and
// Color when the primitive carries TEXCOORD_0 and COLOR_0.
type gltfMeshExtractor interface {
	// ExtractMesh extracts every primitive of one mesh.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []gltfPrimitiveMesh: one entry per primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) ([]gltfPrimitiveMesh, error)

	// ExtractAllMeshes extracts all meshes from the document, indexed like doc.Meshes.
	//
	// Returns:
	//   - [][]gltfPrimitiveMesh: the primitives of each mesh
	//   - error: error if extraction fails
	ExtractAllMeshes() ([][]gltfPrimitiveMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) ([]gltfPrimitiveMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	name := mesh.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}

	result := make([]gltfPrimitiveMesh, 0, len(mesh.Primitives))
	for primIdx := range mesh.Primitives {
		primName := name
		if primIdx > 0 {
			primName = fmt.Sprintf("%s_prim%d", name, primIdx)
		}
		pm, err := e.extractPrimitive(&mesh.Primitives[primIdx], primName)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		result = append(result, pm)
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([][]gltfPrimitiveMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	all := make([][]gltfPrimitiveMesh, len(doc.Meshes))
	for i := range doc.Meshes {
		meshes, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		all[i] = meshes
	}
	return all, nil
}

// extractPrimitive reads the attributes of one primitive and interleaves them.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, name string) (gltfPrimitiveMesh, error) {
	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	topology, err := gltfModeToTopology(mode)
	if err != nil {
		return gltfPrimitiveMesh{}, err
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return gltfPrimitiveMesh{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return gltfPrimitiveMesh{}, fmt.Errorf("failed to read positions: %w", err)
	}
	vertexCount := len(positions)

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return gltfPrimitiveMesh{}, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return gltfPrimitiveMesh{}, fmt.Errorf("index %d exceeds vertex count %d", idx, vertexCount)
			}
		}
	}

	var normals [][3]float32
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = e.parser.ReadVec3Accessor(normalAccessor); err != nil {
			return gltfPrimitiveMesh{}, fmt.Errorf("failed to read normals: %w", err)
		}
	} else {
		normals = generateNormals(positions, indices, topology)
	}

	var texCoords [][2]float32
	if texCoordAccessor, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if texCoords, err = e.parser.ReadVec2Accessor(texCoordAccessor); err != nil {
			return gltfPrimitiveMesh{}, fmt.Errorf("failed to read texcoords: %w", err)
		}
	}

	var colors [][4]float32
	if colorAccessor, ok := prim.Attributes["COLOR_0"]; ok {
		if colors, err = e.readColorAccessor(colorAccessor); err != nil {
			return gltfPrimitiveMesh{}, fmt.Errorf("failed to read colors: %w", err)
		}
	}

	layout := shader.VertexLayout{
		{Usage: shader.VertexUsagePosition, Format: wgpu.VertexFormatFloat32x3},
		{Usage: shader.VertexUsageNormal, Format: wgpu.VertexFormatFloat32x3},
	}
	if texCoords != nil {
		layout = append(layout, shader.VertexElement{Usage: shader.VertexUsageTextureCoordinate, Format: wgpu.VertexFormatFloat32x2})
	}
	if colors != nil {
		layout = append(layout, shader.VertexElement{Usage: shader.VertexUsageColor, Format: wgpu.VertexFormatFloat32x4})
	}

	floats := make([]float32, 0, vertexCount*int(layout.Stride()/4))
	for i := range vertexCount {
		floats = append(floats, positions[i][:]...)
		floats = append(floats, attributeAt(normals, i, [3]float32{0, 1, 0})...)
		if texCoords != nil {
			floats = append(floats, attributeAt(texCoords, i, [2]float32{})...)
		}
		if colors != nil {
			floats = append(floats, attributeAt(colors, i, [4]float32{1, 1, 1, 1})...)
		}
	}

	mesh := scene.NewMesh(layout, common.SliceToBytes(floats), indices, positions)
	mesh.Topology = topology

	materialIndex := -1
	if prim.Material != nil {
		materialIndex = *prim.Material
	}
	return gltfPrimitiveMesh{Name: name, Mesh: mesh, MaterialIndex: materialIndex}, nil
}

// attributeAt returns the i-th attribute as a slice, or def when the accessor is short.
func attributeAt[T [2]float32 | [3]float32 | [4]float32](values []T, i int, def T) []float32 {
	v := def
	if i < len(values) {
		v = values[i]
	}
	switch a := any(v).(type) {
	case [2]float32:
		return a[:]
	case [3]float32:
		return a[:]
	case [4]float32:
		return a[:]
	}
	return nil
}

// gltfModeToTopology maps a glTF primitive mode onto a wgpu topology. Loops and fans have
// no wgpu equivalent.
func gltfModeToTopology(mode int) (wgpu.PrimitiveTopology, error) {
	switch mode {
	case gltfPrimitiveModePoints:
		return wgpu.PrimitiveTopologyPointList, nil
	case gltfPrimitiveModeLines:
		return wgpu.PrimitiveTopologyLineList, nil
	case gltfPrimitiveModeLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, nil
	case gltfPrimitiveModeTriangles:
		return wgpu.PrimitiveTopologyTriangleList, nil
	case gltfPrimitiveModeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, nil
	default:
		return 0, fmt.Errorf("unsupported primitive mode: %d", mode)
	}
}

// readColorAccessor reads a color accessor, handling various formats.
// glTF colors can be VEC3 or VEC4, and can be float or normalized int.
func (e *gltfMeshExtractorImpl) readColorAccessor(accessorIndex int) ([][4]float32, error) {
	doc := e.parser.Document()
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}
	acc := &doc.Accessors[accessorIndex]

	if acc.ComponentType == gltfComponentTypeFloat {
		switch acc.Type {
		case gltfAccessorTypeVec4:
			return e.parser.ReadVec4Accessor(accessorIndex)
		case gltfAccessorTypeVec3:
			vec3s, err := e.parser.ReadVec3Accessor(accessorIndex)
			if err != nil {
				return nil, err
			}
			result := make([][4]float32, len(vec3s))
			for i, v := range vec3s {
				result[i] = [4]float32{v[0], v[1], v[2], 1}
			}
			return result, nil
		}
	}

	components := gltfAccessorTypeComponentCount(acc.Type)
	if components != 3 && components != 4 {
		return nil, fmt.Errorf("unsupported color type: %s", acc.Type)
	}

	// Normalized unsigned integers map 0..max onto 0..1.
	var read func(data []byte, i int) float32
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		read = func(data []byte, i int) float32 { return float32(data[i]) / 255 }
	case gltfComponentTypeUnsignedShort:
		read = func(data []byte, i int) float32 { return float32(binary.LittleEndian.Uint16(data[i*2:])) / 65535 }
	default:
		return nil, fmt.Errorf("unsupported color format: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}

	data, err := e.parser.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	result := make([][4]float32, acc.Count)
	for i := range result {
		result[i][3] = 1
		for c := range components {
			result[i][c] = read(data, i*components+c)
		}
	}
	return result, nil
}

// generateNormals computes smooth vertex normals when the primitive has no NORMAL attribute.
// Face normals of each triangle are accumulated (area weighted) onto its vertices and then
// normalized. Vertices touched by no triangle, and every vertex of a point or line
// primitive, get +Y.
//
// Parameters:
//   - positions: the vertex positions
//   - indices: the index buffer, nil for sequential vertices
//   - topology: the primitive topology
//
// Returns:
//   - [][3]float32: one unit normal per position
func generateNormals(positions [][3]float32, indices []uint32, topology wgpu.PrimitiveTopology) [][3]float32 {
	n := len(positions)
	accum := make([][3]float32, n)

	index := func(i int) uint32 {
		if indices == nil {
			return uint32(i)
		}
		return indices[i]
	}
	count := n
	if indices != nil {
		count = len(indices)
	}

	addFace := func(i0, i1, i2 uint32) {
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]
		edge1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		edge2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		face := [3]float32{
			edge1[1]*edge2[2] - edge1[2]*edge2[1],
			edge1[2]*edge2[0] - edge1[0]*edge2[2],
			edge1[0]*edge2[1] - edge1[1]*edge2[0],
		}
		for _, idx := range [3]uint32{i0, i1, i2} {
			accum[idx][0] += face[0]
			accum[idx][1] += face[1]
			accum[idx][2] += face[2]
		}
	}

	switch topology {
	case wgpu.PrimitiveTopologyTriangleList:
		for i := 0; i+2 < count; i += 3 {
			addFace(index(i), index(i+1), index(i+2))
		}
	case wgpu.PrimitiveTopologyTriangleStrip:
		for i := 0; i+2 < count; i++ {
			if i%2 == 0 {
				addFace(index(i), index(i+1), index(i+2))
			} else {
				addFace(index(i+1), index(i), index(i+2))
			}
		}
	}

	normals := make([][3]float32, n)
	for i, a := range accum {
		length := math32.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
		if length < 1e-6 {
			normals[i] = [3]float32{0, 1, 0}
			continue
		}
		normals[i] = [3]float32{a[0] / length, a[1] / length, a[2] / length}
	}
	return normals
}
