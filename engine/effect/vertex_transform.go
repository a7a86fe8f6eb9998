package effect

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// VertexTransform applies an extra object-space transform to vertices before the world
// transform, used for billboards and simple deformers.
type VertexTransform struct {
	bindings

	Transform common.Transform
}

var _ ShaderEffect = &VertexTransform{}

// NewVertexTransform creates a VertexTransform applying t.
//
// Parameters:
//   - t: the object-space transform
//
// Returns:
//   - *VertexTransform: the new effect
func NewVertexTransform(t common.Transform) *VertexTransform {
	return &VertexTransform{Transform: t}
}

func (v *VertexTransform) ShaderFragmentName() string {
	return VertexTransformFragmentName
}

func (v *VertexTransform) SetParameterValues(f *shader.CompiledFragment) error {
	return f.SetMatrix("Transform", v.Transform.Matrix())
}

func (v *VertexTransform) Bind(pi *shader.ProgramInstance) error {
	return v.bind(pi, v)
}

func (v *VertexTransform) Unbind(pi *shader.ProgramInstance) {
	v.unbind(pi)
}

func (v *VertexTransform) Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	return v.fragment(pi)
}

func (v *VertexTransform) Apply(pi *shader.ProgramInstance) error {
	return v.apply(pi, v)
}

func (v *VertexTransform) Bindings() int {
	return v.count()
}

// Fog blends fragments toward Color between the Start and End view distances.
type Fog struct {
	bindings

	Color [3]float32
	Start float32
	End   float32
}

var _ ShaderEffect = &Fog{}

// NewFog creates linear fog of the given color and range.
//
// Parameters:
//   - color: the fog color
//   - start: view distance where fog begins
//   - end: view distance where fog is opaque
//
// Returns:
//   - *Fog: the new effect
func NewFog(color [3]float32, start, end float32) *Fog {
	if end < start {
		panic("effect: fog end must not precede start")
	}
	return &Fog{Color: color, Start: start, End: end}
}

func (f *Fog) ShaderFragmentName() string {
	return FogFragmentName
}

func (f *Fog) SetParameterValues(cf *shader.CompiledFragment) error {
	return setAll(cf, map[string][]float32{
		"Color": f.Color[:],
		"Start": {f.Start},
		"End":   {f.End},
	}, "Color", "Start", "End")
}

func (f *Fog) Bind(pi *shader.ProgramInstance) error {
	return f.bind(pi, f)
}

func (f *Fog) Unbind(pi *shader.ProgramInstance) {
	f.unbind(pi)
}

func (f *Fog) Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	return f.fragment(pi)
}

func (f *Fog) Apply(pi *shader.ProgramInstance) error {
	return f.apply(pi, f)
}

func (f *Fog) Bindings() int {
	return f.count()
}
