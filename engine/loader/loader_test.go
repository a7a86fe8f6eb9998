package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/culler"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// docBuilder assembles a glTF document whose accessors live in one binary buffer.
type docBuilder struct {
	doc gltfDocument
	bin bytes.Buffer
}

func newDocBuilder() *docBuilder {
	return &docBuilder{doc: gltfDocument{Asset: gltfAsset{Version: "2.0"}}}
}

// accessor appends data to the buffer and returns the index of an accessor over it.
func (b *docBuilder) accessor(t *testing.T, data any, count int, typ string, componentType int) int {
	t.Helper()
	for b.bin.Len()%4 != 0 {
		b.bin.WriteByte(0)
	}
	offset := b.bin.Len()
	require.NoError(t, binary.Write(&b.bin, binary.LittleEndian, data))
	b.doc.BufferViews = append(b.doc.BufferViews, gltfBufferView{
		ByteOffset: offset,
		ByteLength: b.bin.Len() - offset,
	})
	b.doc.Accessors = append(b.doc.Accessors, gltfAccessor{
		BufferView:    ptr(len(b.doc.BufferViews) - 1),
		ComponentType: componentType,
		Count:         count,
		Type:          typ,
	})
	return len(b.doc.Accessors) - 1
}

func (b *docBuilder) vec3(t *testing.T, v [][3]float32) int {
	return b.accessor(t, v, len(v), gltfAccessorTypeVec3, gltfComponentTypeFloat)
}

func (b *docBuilder) vec2(t *testing.T, v [][2]float32) int {
	return b.accessor(t, v, len(v), gltfAccessorTypeVec2, gltfComponentTypeFloat)
}

func (b *docBuilder) indices16(t *testing.T, v []uint16) int {
	return b.accessor(t, v, len(v), gltfAccessorTypeScalar, gltfComponentTypeUnsignedShort)
}

// gltf encodes the document as JSON with the buffer embedded as a data URI.
func (b *docBuilder) gltf(t *testing.T) []byte {
	t.Helper()
	doc := b.doc
	if b.bin.Len() > 0 {
		doc.Buffers = []gltfBuffer{{
			URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.bin.Bytes()),
			ByteLength: b.bin.Len(),
		}}
	}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

// glb encodes the document as a GLB container with the buffer in the BIN chunk.
func (b *docBuilder) glb(t *testing.T) []byte {
	t.Helper()
	doc := b.doc
	doc.Buffers = []gltfBuffer{{ByteLength: b.bin.Len()}}
	jsonData, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}
	binData := append([]byte(nil), b.bin.Bytes()...)
	for len(binData)%4 != 0 {
		binData = append(binData, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(jsonData) + 8 + len(binData)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON}))
	out.Write(jsonData)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binData)), ChunkType: gltfGLBChunkBIN}))
	out.Write(binData)
	return out.Bytes()
}

// triangleDoc is one red, half transparent, double-sided triangle in the XY plane below a
// translated parent node.
func triangleDoc(t *testing.T) *docBuilder {
	b := newDocBuilder()
	pos := b.vec3(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := b.indices16(t, []uint16{0, 1, 2})
	b.doc.Meshes = []gltfMesh{{
		Name:       "triangle",
		Primitives: []gltfPrimitive{{Attributes: map[string]int{"POSITION": pos}, Indices: ptr(idx), Material: ptr(0)}},
	}}
	b.doc.Materials = []gltfMaterial{{
		Name:                 "red",
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{BaseColorFactor: &[4]float32{1, 0, 0, 0.5}},
		AlphaMode:            gltfAlphaModeBlend,
		DoubleSided:          true,
	}}
	h := math32.Sqrt(0.5)
	b.doc.Nodes = []gltfNode{
		{Name: "parent", Translation: &[3]float32{1, 2, 3}, Children: []int{1}},
		{Name: "tri", Mesh: ptr(0), Rotation: &[4]float32{0, h, 0, h}},
	}
	b.doc.Scenes = []gltfScene{{Name: "triangle_scene", Nodes: []int{0}}}
	b.doc.Scene = ptr(0)
	return b
}

func onlyGeometry(t *testing.T, n *scene.Node) *scene.Geometry {
	t.Helper()
	var found []*scene.Geometry
	n.Walk(func(s scene.Spatial) bool {
		if g, ok := s.(*scene.Geometry); ok {
			found = append(found, g)
		}
		return true
	})
	require.Len(t, found, 1)
	return found[0]
}

func TestLoadReaderBuildsSceneTree(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	m, err := l.LoadReader("tri", bytes.NewReader(triangleDoc(t).gltf(t)), false)
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name())

	root := m.Instantiate()
	assert.Equal(t, "tri", root.Name())
	require.Equal(t, 1, root.ChildCount())

	parent, ok := root.Child(0).(*scene.Node)
	require.True(t, ok)
	assert.Equal(t, "parent", parent.Name())
	assert.Equal(t, [3]float32{1, 2, 3}, parent.LocalTransform().Translation)

	tri, ok := parent.Child(0).(*scene.Node)
	require.True(t, ok)
	rot := tri.LocalTransform().Rotation
	assert.InDeltaSlice(t, []float32{0, math32.Pi / 2, 0}, rot[:], 1e-5)

	g := onlyGeometry(t, root)
	assert.Equal(t, "triangle", g.Name())
	mesh := g.Mesh()
	assert.True(t, mesh.Layout.Equal(shader.VertexLayout{
		{Usage: shader.VertexUsagePosition, Format: wgpu.VertexFormatFloat32x3},
		{Usage: shader.VertexUsageNormal, Format: wgpu.VertexFormatFloat32x3},
	}))
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, uint32(3), mesh.IndexCount)
	assert.Equal(t, uint32(3), mesh.VertexCount())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, mesh.Topology)

	// generated normals face +Z
	var vertex [6]float32
	require.NoError(t, binary.Read(bytes.NewReader(mesh.Vertices[:24]), binary.LittleEndian, &vertex))
	assert.InDeltaSlice(t, []float32{0, 0, 0, 0, 0, 1}, vertex[:], 1e-6)

	effects := g.Effects()
	require.Len(t, effects, 1)
	mat, ok := effects[0].(*effect.BasicMaterial)
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 0, 0}, mat.DiffuseColor)
	assert.Equal(t, float32(0.5), mat.Alpha)

	states := g.LocalStates()
	alpha, ok := states.Get(render_state.StateTypeAlpha)
	require.True(t, ok)
	assert.True(t, alpha.(render_state.AlphaState).BlendEnabled)
	cull, ok := states.Get(render_state.StateTypeCull)
	require.True(t, ok)
	assert.False(t, cull.(render_state.CullState).Enabled)
}

func TestInstancesShareMeshesAndMaterials(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	data := triangleDoc(t).gltf(t)
	m, err := l.LoadReader("tri", bytes.NewReader(data), false)
	require.NoError(t, err)

	again, err := l.LoadReader("tri", strings.NewReader("not read"), false)
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Same(t, m, l.Get("tri"))
	assert.Len(t, l.Models(), 1)

	a, b := onlyGeometry(t, m.Instantiate()), onlyGeometry(t, m.Instantiate())
	assert.NotSame(t, a, b)
	assert.Same(t, a.Mesh(), b.Mesh())
	assert.Same(t, a.Effects()[0], b.Effects()[0])
	require.Len(t, m.Meshes(), 1)
	assert.Same(t, a.Mesh(), m.Meshes()[0])
	assert.Len(t, m.MaterialEffects(), 1)

	assert.True(t, l.Evict("tri"))
	assert.False(t, l.Evict("tri"))
	assert.Nil(t, l.Get("tri"))
}

func TestLoadGLBMatchesJSON(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	fromJSON, err := l.LoadReader("json", bytes.NewReader(triangleDoc(t).gltf(t)), false)
	require.NoError(t, err)
	fromGLB, err := l.LoadReader("glb", bytes.NewReader(triangleDoc(t).glb(t)), true)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Meshes()[0].Vertices, fromGLB.Meshes()[0].Vertices)
	assert.Equal(t, fromJSON.Meshes()[0].Indices, fromGLB.Meshes()[0].Indices)
	assert.Equal(t, fromJSON.Meshes()[0].Bound, fromGLB.Meshes()[0].Bound)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// texturedDoc has one mesh with a textured primitive and a primitive without texture
// coordinates, both using the same textured material.
func texturedDoc(t *testing.T) *docBuilder {
	b := newDocBuilder()
	quad := [][3]float32{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
	pos := b.vec3(t, quad)
	uv := b.vec2(t, [][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}})
	normals := b.vec3(t, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	idx := b.indices16(t, []uint16{0, 1, 2, 0, 2, 3})
	bare := b.vec3(t, quad[:3])

	b.doc.Meshes = []gltfMesh{{
		Name: "quad",
		Primitives: []gltfPrimitive{
			{Attributes: map[string]int{"POSITION": pos, "NORMAL": normals, "TEXCOORD_0": uv}, Indices: ptr(idx), Material: ptr(0)},
			{Attributes: map[string]int{"POSITION": bare}, Material: ptr(0)},
		},
	}}
	b.doc.Materials = []gltfMaterial{{
		Name: "checker",
		PbrMetallicRoughness: &gltfPbrMetallicRoughness{
			BaseColorFactor:  &[4]float32{0.5, 0.5, 0.5, 1},
			BaseColorTexture: &gltfTextureInfo{Index: 0},
		},
	}}
	b.doc.Textures = []gltfTexture{{Source: ptr(0), Sampler: ptr(0)}}
	b.doc.Images = []gltfImage{{Name: "checker", URI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t))}}
	b.doc.Samplers = []gltfSampler{{MagFilter: ptr(gltfFilterNearest), WrapS: ptr(gltfWrapClampToEdge)}}
	b.doc.Nodes = []gltfNode{{Mesh: ptr(0)}}
	return b
}

func TestTexturedMaterialFallsBackWithoutTexCoords(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	m, err := l.LoadReader("quad", bytes.NewReader(texturedDoc(t).gltf(t)), false)
	require.NoError(t, err)

	root := m.Instantiate()
	require.Equal(t, 1, root.ChildCount())
	node := root.Child(0).(*scene.Node)
	assert.Equal(t, "node_0", node.Name())
	require.Equal(t, 2, node.ChildCount())

	textured := node.Child(0).(*scene.Geometry)
	assert.Equal(t, "quad", textured.Name())
	assert.True(t, textured.Mesh().Layout.Has(shader.VertexUsageTextureCoordinate))
	tm, ok := textured.Effects()[0].(*effect.TextureMaterial)
	require.True(t, ok)
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, tm.DiffuseColor)
	require.NotNil(t, tm.Texture)
	assert.Equal(t, uint32(2), tm.Texture.Width)
	assert.Equal(t, []byte{255, 0, 0, 255}, tm.Texture.Pixels[:4])
	assert.Equal(t, wgpu.FilterModeNearest, tm.Sampler.MagFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, tm.Sampler.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, tm.Sampler.AddressModeV)

	bare := node.Child(1).(*scene.Geometry)
	assert.Equal(t, "quad_prim1", bare.Name())
	assert.Nil(t, bare.Mesh().Indices)
	assert.Equal(t, uint32(3), bare.Mesh().IndexCount)
	basic, ok := bare.Effects()[0].(*effect.BasicMaterial)
	require.True(t, ok)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, basic.DiffuseColor)
}

func TestWithTexturesDisabled(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithTextures(false))
	m, err := l.LoadReader("quad", bytes.NewReader(texturedDoc(t).gltf(t)), false)
	require.NoError(t, err)
	for _, e := range m.MaterialEffects() {
		assert.IsType(t, &effect.BasicMaterial{}, e)
	}
}

func TestLoadFromFileWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	b := triangleDoc(t)
	doc := b.doc
	doc.Buffers = []gltfBuffer{{URI: "tri.bin", ByteLength: b.bin.Len()}}
	doc.Scenes[0].Name = ""
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), b.bin.Bytes(), 0o644))
	path := filepath.Join(dir, "Triangle.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Triangle", m.Name())
	assert.Same(t, m, l.Get(path))

	_, err = l.Load(filepath.Join(dir, "model.obj"))
	assert.ErrorContains(t, err, "unsupported model format")
	_, err = l.Load(filepath.Join(dir, "missing.gltf"))
	assert.Error(t, err)
}

func TestModelNameFromDefaultScene(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	dir := t.TempDir()
	path := filepath.Join(dir, "file.gltf")
	require.NoError(t, os.WriteFile(path, triangleDoc(t).gltf(t), 0o644))
	m, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "triangle_scene", m.Name())
}

func TestMatrixNodeAndVertexColors(t *testing.T) {
	b := newDocBuilder()
	pos := b.vec3(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	colors := b.accessor(t, [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 0}}, 3, gltfAccessorTypeVec4, gltfComponentTypeUnsignedByte)
	b.doc.Meshes = []gltfMesh{{Primitives: []gltfPrimitive{{Attributes: map[string]int{"POSITION": pos, "COLOR_0": colors}}}}}
	want := common.Transform{Translation: [3]float32{4, 5, 6}, Rotation: [3]float32{0.1, 0.2, 0.3}, Scale: [3]float32{2, 2, 2}}
	b.doc.Nodes = []gltfNode{{Name: "m", Mesh: ptr(0), Matrix: ptr(want.Matrix())}}

	m, err := NewLoader(BackendTypeGLTF).LoadReader("colors", bytes.NewReader(b.gltf(t)), false)
	require.NoError(t, err)
	root := m.Instantiate()
	node := root.Child(0).(*scene.Node)
	got := node.LocalTransform()
	assert.InDeltaSlice(t, want.Translation[:], got.Translation[:], 1e-5)
	assert.InDeltaSlice(t, want.Rotation[:], got.Rotation[:], 1e-4)
	assert.InDeltaSlice(t, want.Scale[:], got.Scale[:], 1e-5)

	mesh := onlyGeometry(t, root).Mesh()
	require.True(t, mesh.Layout.Has(shader.VertexUsageColor))
	assert.Equal(t, uint64(40), mesh.Layout.Stride())
	var last [10]float32
	require.NoError(t, binary.Read(bytes.NewReader(mesh.Vertices[80:]), binary.LittleEndian, &last))
	assert.Equal(t, []float32{0, 0, 1, 0}, last[6:])
	assert.Equal(t, "mesh_0", onlyGeometry(t, root).Name())
}

func TestDocumentWithoutScenesUsesParentlessNodes(t *testing.T) {
	b := newDocBuilder()
	b.doc.Nodes = []gltfNode{{Name: "a", Children: []int{2}}, {Name: "b"}, {Name: "c"}}
	m, err := NewLoader(BackendTypeGLTF).LoadReader("empty", bytes.NewReader(b.gltf(t)), false)
	require.NoError(t, err)
	root := m.Instantiate()
	require.Equal(t, 2, root.ChildCount())
	assert.Equal(t, "a", root.Child(0).Name())
	assert.Equal(t, "b", root.Child(1).Name())
	assert.Equal(t, 1, root.Child(0).(*scene.Node).ChildCount())
	assert.Empty(t, m.Meshes())
}

func TestImportErrors(t *testing.T) {
	cases := map[string]func(t *testing.T, b *docBuilder){
		"invalid glTF version": func(_ *testing.T, b *docBuilder) { b.doc.Asset.Version = "1.0" },
		"has two parents": func(_ *testing.T, b *docBuilder) {
			b.doc.Nodes = []gltfNode{{Children: []int{2}}, {Children: []int{2}}, {}}
		},
		"child 5 out of range": func(_ *testing.T, b *docBuilder) { b.doc.Nodes = []gltfNode{{Children: []int{5}}} },
		"unsupported primitive mode": func(_ *testing.T, b *docBuilder) {
			b.doc.Meshes[0].Primitives[0].Mode = ptr(gltfPrimitiveModeTriangleFan)
		},
		"exceeds vertex count": func(t *testing.T, b *docBuilder) {
			b.doc.Meshes[0].Primitives[0].Indices = ptr(b.indices16(t, []uint16{0, 1, 9}))
		},
		"no POSITION attribute": func(_ *testing.T, b *docBuilder) {
			b.doc.Meshes[0].Primitives[0].Attributes = map[string]int{}
		},
		"scene index 3 out of range": func(_ *testing.T, b *docBuilder) { b.doc.Scene = ptr(3) },
	}
	for want, mutate := range cases {
		t.Run(want, func(t *testing.T) {
			b := triangleDoc(t)
			mutate(t, b)
			_, err := NewLoader(BackendTypeGLTF).LoadReader(want, bytes.NewReader(b.gltf(t)), false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
		})
	}
}

func TestInvalidGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	_, err := l.LoadReader("short", bytes.NewReader([]byte{1, 2, 3}), true)
	assert.Error(t, err)

	data := triangleDoc(t).glb(t)
	data[0] = 'x'
	_, err = l.LoadReader("magic", bytes.NewReader(data), true)
	assert.ErrorIs(t, err, errInvalidGLBMagic)
}

func TestNewLoaderUnknownBackendPanics(t *testing.T) {
	assert.Panics(t, func() { NewLoader(LoaderBackendType(7)) })
}

func TestImportedModelRenders(t *testing.T) {
	b := triangleDoc(t)
	b.doc.Nodes[0].Translation = nil
	m, err := NewLoader(BackendTypeGLTF).LoadReader("tri", bytes.NewReader(b.gltf(t)), false)
	require.NoError(t, err)

	layout := m.Meshes()[0].Layout
	frags := effect.Fragments()
	pi, err := shader.Link("material", []shader.FragmentDescriptor{
		shader.NewFragmentDescriptor(scene.VertexPassThruFragmentName, shader.FragmentClassVertex),
		frags[effect.BasicMaterialFragmentName],
		shader.NewFragmentDescriptor(scene.PixelFinalFragmentName, shader.FragmentClassPixelFinal),
	}, layout,
		shader.RendererConstant{Semantic: renderer.WorldSemantic, DataType: "float4x4"},
		shader.RendererConstant{Semantic: renderer.WorldViewProjectionSemantic, DataType: "float4x4"},
	)
	require.NoError(t, err)

	root := m.Instantiate()
	s := scene.NewScene("loaded", shader.NewCatalog(shader.WithPrograms(pi)), scene.WithRoot(root))
	t.Cleanup(s.Close)
	s.Update()
	require.NoError(t, s.BuildShaders())

	cam := camera.NewCamera(camera.WithPosition(0, 0, 5), camera.WithTarget(0, 0, 0))
	visible := culler.NewCuller(cam).ComputeVisibleSet(root)
	require.Equal(t, 1, visible.Len())

	backend := renderer.NewRecordingBackend()
	r, err := renderer.NewRenderer(cam, renderer.WithBackend(backend))
	require.NoError(t, err)
	require.NoError(t, r.Draw(visible))

	draws := backend.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "triangle", draws[0].Label)
	p := r.Pipeline(draws[0].PipelineKey)
	require.NotNil(t, p)
	assert.Equal(t, wgpu.CullModeNone, p.PrimitiveState().CullMode)
	blend := p.ColorTargetState(wgpu.TextureFormatRGBA8Unorm).Blend
	require.NotNil(t, blend)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, blend.Color.SrcFactor)
}
