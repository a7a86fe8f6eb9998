package effect

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/chewxy/math32"
)

// DirectionalLight is a light at infinity shining along Direction.
type DirectionalLight struct {
	bindings

	Direction     [3]float32
	DiffuseColor  [3]float32
	SpecularColor [3]float32
	Intensity     float32
}

var _ ShaderEffect = &DirectionalLight{}

// NewDirectionalLight creates a white light pointing straight down.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - *DirectionalLight: the new light
func NewDirectionalLight(options ...DirectionalLightBuilderOption) *DirectionalLight {
	l := &DirectionalLight{
		Direction:     [3]float32{0, -1, 0},
		DiffuseColor:  [3]float32{1, 1, 1},
		SpecularColor: [3]float32{1, 1, 1},
		Intensity:     1,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *DirectionalLight) ShaderFragmentName() string {
	return DirectionalLightFragmentName
}

func (l *DirectionalLight) SetParameterValues(f *shader.CompiledFragment) error {
	dir := normalize(l.Direction)
	return setAll(f, map[string][]float32{
		"Direction":     dir[:],
		"DiffuseColor":  l.DiffuseColor[:],
		"SpecularColor": l.SpecularColor[:],
		"Intensity":     {l.Intensity},
	}, "Direction", "DiffuseColor", "SpecularColor", "Intensity")
}

func (l *DirectionalLight) Bind(pi *shader.ProgramInstance) error {
	return l.bind(pi, l)
}

func (l *DirectionalLight) Unbind(pi *shader.ProgramInstance) {
	l.unbind(pi)
}

func (l *DirectionalLight) Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	return l.fragment(pi)
}

func (l *DirectionalLight) Apply(pi *shader.ProgramInstance) error {
	return l.apply(pi, l)
}

func (l *DirectionalLight) Bindings() int {
	return l.count()
}

// PointLight radiates from Position and falls off to zero at Range.
type PointLight struct {
	bindings

	Position  [3]float32
	Color     [3]float32
	Intensity float32
	Range     float32
}

var _ ShaderEffect = &PointLight{}

// NewPointLight creates a white point light at the origin with a range of 10.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - *PointLight: the new light
func NewPointLight(options ...PointLightBuilderOption) *PointLight {
	l := &PointLight{
		Color:     [3]float32{1, 1, 1},
		Intensity: 1,
		Range:     10,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *PointLight) ShaderFragmentName() string {
	return PointLightFragmentName
}

func (l *PointLight) SetParameterValues(f *shader.CompiledFragment) error {
	return setAll(f, map[string][]float32{
		"Position":  l.Position[:],
		"Color":     l.Color[:],
		"Intensity": {l.Intensity},
		"Range":     {l.Range},
	}, "Position", "Color", "Intensity", "Range")
}

func (l *PointLight) Bind(pi *shader.ProgramInstance) error {
	return l.bind(pi, l)
}

func (l *PointLight) Unbind(pi *shader.ProgramInstance) {
	l.unbind(pi)
}

func (l *PointLight) Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	return l.fragment(pi)
}

func (l *PointLight) Apply(pi *shader.ProgramInstance) error {
	return l.apply(pi, l)
}

func (l *PointLight) Bindings() int {
	return l.count()
}

// AmbientLight adds a constant color to every lit surface.
type AmbientLight struct {
	bindings

	Color [3]float32
}

var _ ShaderEffect = &AmbientLight{}

// NewAmbientLight creates an AmbientLight of the given color.
//
// Parameters:
//   - r, g, b: the ambient color
//
// Returns:
//   - *AmbientLight: the new light
func NewAmbientLight(r, g, b float32) *AmbientLight {
	return &AmbientLight{Color: [3]float32{r, g, b}}
}

func (l *AmbientLight) ShaderFragmentName() string {
	return AmbientLightFragmentName
}

func (l *AmbientLight) SetParameterValues(f *shader.CompiledFragment) error {
	return f.SetFloats("Color", l.Color[:]...)
}

func (l *AmbientLight) Bind(pi *shader.ProgramInstance) error {
	return l.bind(pi, l)
}

func (l *AmbientLight) Unbind(pi *shader.ProgramInstance) {
	l.unbind(pi)
}

func (l *AmbientLight) Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	return l.fragment(pi)
}

func (l *AmbientLight) Apply(pi *shader.ProgramInstance) error {
	return l.apply(pi, l)
}

func (l *AmbientLight) Bindings() int {
	return l.count()
}

// normalize returns v scaled to unit length; a zero vector is returned unchanged.
func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
