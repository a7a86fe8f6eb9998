package effect

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// BasicMaterial is a fixed-function style material: diffuse, emissive and specular colors,
// a specular power and an alpha.
type BasicMaterial struct {
	bindings

	DiffuseColor  [3]float32
	EmissiveColor [3]float32
	SpecularColor [3]float32
	SpecularPower float32
	Alpha         float32
}

var _ ShaderEffect = &BasicMaterial{}

// NewBasicMaterial creates a white, opaque BasicMaterial with a specular power of 16.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - *BasicMaterial: the new material
func NewBasicMaterial(options ...BasicMaterialBuilderOption) *BasicMaterial {
	m := &BasicMaterial{
		DiffuseColor:  [3]float32{1, 1, 1},
		SpecularColor: [3]float32{1, 1, 1},
		SpecularPower: 16,
		Alpha:         1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *BasicMaterial) ShaderFragmentName() string {
	return BasicMaterialFragmentName
}

func (m *BasicMaterial) SetParameterValues(f *shader.CompiledFragment) error {
	return setAll(f, map[string][]float32{
		"DiffuseColor":  m.DiffuseColor[:],
		"EmissiveColor": m.EmissiveColor[:],
		"SpecularColor": m.SpecularColor[:],
		"SpecularPower": {m.SpecularPower},
		"Alpha":         {m.Alpha},
	}, "DiffuseColor", "EmissiveColor", "SpecularColor", "SpecularPower", "Alpha")
}

func (m *BasicMaterial) Bind(pi *shader.ProgramInstance) error {
	return m.bind(pi, m)
}

func (m *BasicMaterial) Unbind(pi *shader.ProgramInstance) {
	m.unbind(pi)
}

func (m *BasicMaterial) Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	return m.fragment(pi)
}

func (m *BasicMaterial) Apply(pi *shader.ProgramInstance) error {
	return m.apply(pi, m)
}

func (m *BasicMaterial) Bindings() int {
	return m.count()
}

// TextureMaterial samples a diffuse texture modulated by a color.
type TextureMaterial struct {
	bindings

	DiffuseColor [4]float32
	Texture      *common.TextureStagingData
	Sampler      common.SamplerStagingData
}

var _ ShaderEffect = &TextureMaterial{}

// NewTextureMaterial creates a TextureMaterial over already decoded pixels.
//
// Parameters:
//   - tex: the staged texture pixels
//   - sampler: the sampler configuration
//
// Returns:
//   - *TextureMaterial: the new material
func NewTextureMaterial(tex *common.TextureStagingData, sampler common.SamplerStagingData) *TextureMaterial {
	return &TextureMaterial{
		DiffuseColor: [4]float32{1, 1, 1, 1},
		Texture:      tex,
		Sampler:      sampler,
	}
}

// NewTextureMaterialFromImported decodes an imported texture into a TextureMaterial. The
// texture's own sampler data wins over fallback when present.
//
// Parameters:
//   - tex: the imported texture, embedded or on disk
//   - fallback: the sampler used when the texture declares none
//
// Returns:
//   - *TextureMaterial: the new material
//   - error: an error if the texture cannot be decoded
func NewTextureMaterialFromImported(tex *common.ImportedTexture, fallback common.SamplerStagingData) (*TextureMaterial, error) {
	staged, err := tex.Staging()
	if err != nil {
		return nil, fmt.Errorf("texture material: %w", err)
	}
	sampler := fallback
	if tex.SamplerData != nil {
		sampler = *tex.SamplerData
	}
	return NewTextureMaterial(staged, sampler), nil
}

func (m *TextureMaterial) ShaderFragmentName() string {
	return TextureMaterialFragmentName
}

func (m *TextureMaterial) SetParameterValues(f *shader.CompiledFragment) error {
	if err := f.SetFloats("DiffuseColor", m.DiffuseColor[:]...); err != nil {
		return err
	}
	return f.SetTexture("Diffuse", m.Texture, m.Sampler)
}

func (m *TextureMaterial) Bind(pi *shader.ProgramInstance) error {
	return m.bind(pi, m)
}

func (m *TextureMaterial) Unbind(pi *shader.ProgramInstance) {
	m.unbind(pi)
}

func (m *TextureMaterial) Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	return m.fragment(pi)
}

func (m *TextureMaterial) Apply(pi *shader.ProgramInstance) error {
	return m.apply(pi, m)
}

func (m *TextureMaterial) Bindings() int {
	return m.count()
}
