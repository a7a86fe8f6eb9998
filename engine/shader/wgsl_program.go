package shader

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformSlot locates one uniform parameter inside the program's staging blocks.
type uniformSlot struct {
	block  int
	offset uint64
	size   uint64
}

// textureSlot locates one texture parameter and its paired sampler.
type textureSlot struct {
	group          int
	binding        int
	samplerBinding int
}

// blockInfo describes one uniform buffer binding.
type blockInfo struct {
	group   int
	binding int
	name    string
	size    uint64
}

// wgslLayout is the parsed, immutable part of a WGSL program shared by all clones.
type wgslLayout struct {
	blocks        []blockInfo
	uniforms      map[string]uniformSlot
	textures      map[string]textureSlot
	names         []string
	semantics     map[string]string
	bindGroups    map[int]wgpu.BindGroupLayoutDescriptor
	vertexEntry   string
	fragmentEntry string
}

// textureState is a clone-private texture assignment.
type textureState struct {
	texture *common.TextureStagingData
	sampler common.SamplerStagingData
}

// wgslProgram is the implementation of the Program interface over WGSL source.
type wgslProgram struct {
	label    string
	source   string
	module   *wgpu.ShaderModuleDescriptor
	layout   *wgslLayout
	data     [][]byte
	textures map[string]*textureState
}

var _ Program = &wgslProgram{}

// NewWGSLProgram parses a linked WGSL program. Every member of a uniform struct binding
// becomes a parameter named after the member, a uniform binding of non-struct type becomes a
// parameter named after the variable, and every texture binding becomes a texture parameter
// named after the variable. `//@oxy:semantic` annotations attach renderer semantics to
// parameters.
//
// Parameters:
//   - label: the program label used for the shader module
//   - source: the WGSL source text
//
// Returns:
//   - Program: the parsed program with zeroed parameter storage
//   - error: an error if a uniform type cannot be laid out, a parameter name is declared
//     twice or an annotation is malformed
func NewWGSLProgram(label, source string) (Program, error) {
	annotations, err := parseAnnotations(source)
	if err != nil {
		return nil, fmt.Errorf("shader: program %q: %w", label, err)
	}

	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	known := computeStructSizes(structs)
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	layout := &wgslLayout{
		uniforms:      make(map[string]uniformSlot),
		textures:      make(map[string]textureSlot),
		semantics:     make(map[string]string),
		vertexEntry:   parseEntryPoint(cleaned, vertexEntryRegex),
		fragmentEntry: parseEntryPoint(cleaned, fragmentEntryRegex),
	}

	decls := parseResourceDecls(cleaned)
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	samplers := make(map[int]map[string]int)
	for _, decl := range decls {
		var size uint64
		switch {
		case decl.addressSpace == "uniform":
			size, err = layout.addUniformBlock(decl, byName, known)
			if err != nil {
				return nil, fmt.Errorf("shader: program %q: %w", label, err)
			}
		case decl.typeName == "sampler" || decl.typeName == "sampler_comparison":
			if samplers[decl.group] == nil {
				samplers[decl.group] = make(map[string]int)
			}
			samplers[decl.group][decl.name] = decl.binding
		}
		groups[decl.group] = append(groups[decl.group], classifyResource(decl, size))
	}

	for _, decl := range decls {
		if decl.addressSpace != "" || !isTextureType(decl.typeName) {
			continue
		}
		if err := layout.addName(decl.name); err != nil {
			return nil, fmt.Errorf("shader: program %q: %w", label, err)
		}
		slot := textureSlot{group: decl.group, binding: decl.binding, samplerBinding: -1}
		for _, candidate := range []string{decl.name + "Sampler", decl.name + "_sampler"} {
			if b, ok := samplers[decl.group][candidate]; ok {
				slot.samplerBinding = b
				break
			}
		}
		layout.textures[decl.name] = slot
	}

	layout.bindGroups = make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		layout.bindGroups[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", label, g),
			Entries: entries,
		}
	}

	for _, a := range annotations {
		if a.Type != AnnotationTypeSemantic {
			continue
		}
		semantic, param := a.Args[0], a.Args[1]
		if _, ok := layout.uniforms[param]; !ok {
			if _, ok := layout.textures[param]; !ok {
				return nil, fmt.Errorf("shader: program %q: line %d: semantic %s names %w %q", label, a.Line, semantic, ErrUnknownParameter, param)
			}
		}
		layout.semantics[semantic] = param
	}

	p := &wgslProgram{
		label:  label,
		source: source,
		module: &wgpu.ShaderModuleDescriptor{
			Label: label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
		layout: layout,
	}
	p.allocate()
	return p, nil
}

// addUniformBlock registers one uniform binding and its parameters and returns the block size.
func (l *wgslLayout) addUniformBlock(decl resourceDecl, structs map[string]parsedStruct, known map[string]wgslTypeLayout) (uint64, error) {
	block := len(l.blocks)

	if ps, ok := structs[decl.typeName]; ok {
		fields, sl, ok := layoutStructFields(ps, known)
		if !ok {
			return 0, fmt.Errorf("cannot lay out uniform struct %s", decl.typeName)
		}
		for _, f := range fields {
			if err := l.addName(f.name); err != nil {
				return 0, err
			}
			l.uniforms[f.name] = uniformSlot{block: block, offset: f.offset, size: f.size}
		}
		l.blocks = append(l.blocks, blockInfo{group: decl.group, binding: decl.binding, name: decl.name, size: sl.size})
		return sl.size, nil
	}

	tl, ok := resolveTypeLayout(decl.typeName, known)
	if !ok {
		return 0, fmt.Errorf("cannot lay out uniform %s of type %s", decl.name, decl.typeName)
	}
	if err := l.addName(decl.name); err != nil {
		return 0, err
	}
	size := roundUpAlign(16, tl.size)
	l.uniforms[decl.name] = uniformSlot{block: block, offset: 0, size: tl.size}
	l.blocks = append(l.blocks, blockInfo{group: decl.group, binding: decl.binding, name: decl.name, size: size})
	return size, nil
}

func (l *wgslLayout) addName(name string) error {
	if _, ok := l.uniforms[name]; ok {
		return fmt.Errorf("parameter %q declared twice", name)
	}
	if _, ok := l.textures[name]; ok {
		return fmt.Errorf("parameter %q declared twice", name)
	}
	l.names = append(l.names, name)
	return nil
}

// allocate creates zeroed private storage for every block and texture.
func (p *wgslProgram) allocate() {
	p.data = make([][]byte, len(p.layout.blocks))
	for i, b := range p.layout.blocks {
		p.data[i] = make([]byte, b.size)
	}
	p.textures = make(map[string]*textureState, len(p.layout.textures))
	for name := range p.layout.textures {
		p.textures[name] = &textureState{}
	}
}

func (p *wgslProgram) Label() string {
	return p.label
}

func (p *wgslProgram) Blob() []byte {
	return []byte(p.source)
}

func (p *wgslProgram) Module() *wgpu.ShaderModuleDescriptor {
	return p.module
}

func (p *wgslProgram) VertexEntryPoint() string {
	return p.layout.vertexEntry
}

func (p *wgslProgram) FragmentEntryPoint() string {
	return p.layout.fragmentEntry
}

func (p *wgslProgram) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.layout.bindGroups
}

func (p *wgslProgram) Parameter(name string) (ParameterHandle, bool) {
	if slot, ok := p.layout.uniforms[name]; ok {
		return &uniformHandle{program: p, name: name, slot: slot}, true
	}
	if _, ok := p.layout.textures[name]; ok {
		return &textureHandle{program: p, name: name}, true
	}
	return nil, false
}

func (p *wgslProgram) ParameterNames() []string {
	return append([]string(nil), p.layout.names...)
}

func (p *wgslProgram) SemanticParameter(semantic string) (ParameterHandle, bool) {
	name, ok := p.layout.semantics[semantic]
	if !ok {
		return nil, false
	}
	return p.Parameter(name)
}

func (p *wgslProgram) UniformBlocks() []UniformBlock {
	blocks := make([]UniformBlock, len(p.layout.blocks))
	for i, b := range p.layout.blocks {
		blocks[i] = UniformBlock{Group: b.group, Binding: b.binding, Name: b.name, Data: p.data[i]}
	}
	return blocks
}

func (p *wgslProgram) TextureBindings() []TextureBinding {
	out := make([]TextureBinding, 0, len(p.layout.textures))
	for name, slot := range p.layout.textures {
		st := p.textures[name]
		out = append(out, TextureBinding{
			Group:          slot.group,
			Binding:        slot.binding,
			SamplerBinding: slot.samplerBinding,
			Name:           name,
			Texture:        st.texture,
			Sampler:        st.sampler,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Binding < out[j].Binding
	})
	return out
}

func (p *wgslProgram) Clone() Program {
	c := &wgslProgram{
		label:  p.label,
		source: p.source,
		module: p.module,
		layout: p.layout,
		data:   make([][]byte, len(p.data)),
	}
	for i, d := range p.data {
		c.data[i] = append([]byte(nil), d...)
	}
	c.textures = make(map[string]*textureState, len(p.textures))
	for name, st := range p.textures {
		cp := *st
		c.textures[name] = &cp
	}
	return c
}

// uniformHandle writes one uniform parameter of one program.
type uniformHandle struct {
	program *wgslProgram
	name    string
	slot    uniformSlot
}

func (h *uniformHandle) Name() string {
	return h.name
}

func (h *uniformHandle) IsTexture() bool {
	return false
}

func (h *uniformHandle) words(n int) ([]byte, error) {
	if uint64(n)*4 > h.slot.size {
		return nil, fmt.Errorf("shader: parameter %q holds %d bytes, got %d values", h.name, h.slot.size, n)
	}
	return h.program.data[h.slot.block][h.slot.offset : h.slot.offset+h.slot.size], nil
}

func (h *uniformHandle) SetFloats(values ...float32) error {
	buf, err := h.words(len(values))
	if err != nil {
		return err
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return nil
}

func (h *uniformHandle) SetInts(values ...int32) error {
	buf, err := h.words(len(values))
	if err != nil {
		return err
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return nil
}

func (h *uniformHandle) SetMatrix(m [16]float32) error {
	return h.SetFloats(m[:]...)
}

func (h *uniformHandle) Floats() []float32 {
	buf := h.program.data[h.slot.block][h.slot.offset : h.slot.offset+h.slot.size]
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func (h *uniformHandle) SetTexture(*common.TextureStagingData, common.SamplerStagingData) error {
	return fmt.Errorf("shader: parameter %q is not a texture", h.name)
}

func (h *uniformHandle) Texture() (*common.TextureStagingData, common.SamplerStagingData) {
	return nil, common.SamplerStagingData{}
}

// textureHandle writes one texture parameter of one program.
type textureHandle struct {
	program *wgslProgram
	name    string
}

func (h *textureHandle) Name() string {
	return h.name
}

func (h *textureHandle) IsTexture() bool {
	return true
}

func (h *textureHandle) SetFloats(...float32) error {
	return fmt.Errorf("shader: parameter %q is a texture", h.name)
}

func (h *textureHandle) SetInts(...int32) error {
	return fmt.Errorf("shader: parameter %q is a texture", h.name)
}

func (h *textureHandle) SetMatrix([16]float32) error {
	return fmt.Errorf("shader: parameter %q is a texture", h.name)
}

func (h *textureHandle) Floats() []float32 {
	return nil
}

func (h *textureHandle) SetTexture(tex *common.TextureStagingData, sampler common.SamplerStagingData) error {
	st := h.program.textures[h.name]
	st.texture = tex
	st.sampler = sampler
	return nil
}

func (h *textureHandle) Texture() (*common.TextureStagingData, common.SamplerStagingData) {
	st := h.program.textures[h.name]
	return st.texture, st.sampler
}
