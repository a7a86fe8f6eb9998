package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// FragmentOwner is the effect that owns a fragment slot in a program instance. The owner
// names the fragment it needs and pushes its values into the fragment it is bound to.
type FragmentOwner interface {
	// ShaderFragmentName returns the catalog fragment name this owner requests.
	ShaderFragmentName() string

	// SetParameterValues writes the owner's current values into the fragment.
	//
	// Parameters:
	//   - f: the compiled fragment bound to this owner
	//
	// Returns:
	//   - error: any parameter write error
	SetParameterValues(f *CompiledFragment) error
}

// FragmentLayout is the serialized description of one compiled fragment: its matching name,
// the prefix mangled onto its parameters and its logical parameter names.
type FragmentLayout struct {
	Name              string
	MangledNamePrefix string
	Parameters        []string
}

// CompiledFragment is one fragment inside a linked program instance. It maps the fragment's
// logical parameter names to handles in the instance's program and optionally records the
// effect that owns it.
type CompiledFragment struct {
	name       string
	prefix     string
	paramNames []string
	params     map[string]ParameterHandle
	owner      FragmentOwner
}

// newCompiledFragment resolves every parameter of fl through program.
func newCompiledFragment(fl FragmentLayout, program Program, owner FragmentOwner) (*CompiledFragment, error) {
	f := &CompiledFragment{
		name:       fl.Name,
		prefix:     fl.MangledNamePrefix,
		paramNames: append([]string(nil), fl.Parameters...),
		params:     make(map[string]ParameterHandle, len(fl.Parameters)),
		owner:      owner,
	}
	for _, name := range fl.Parameters {
		h, ok := program.Parameter(fl.MangledNamePrefix + name)
		if !ok {
			return nil, fmt.Errorf("fragment %s: %w %q", fl.Name, ErrUnknownParameter, fl.MangledNamePrefix+name)
		}
		f.params[name] = h
	}
	return f, nil
}

// Name returns the fragment name. Names are matching keys and may repeat within a program.
func (f *CompiledFragment) Name() string {
	return f.name
}

// MangledNamePrefix returns the prefix the linker applied to the fragment's parameter names.
func (f *CompiledFragment) MangledNamePrefix() string {
	return f.prefix
}

// Layout returns the serializable description of the fragment.
func (f *CompiledFragment) Layout() FragmentLayout {
	return FragmentLayout{
		Name:              f.name,
		MangledNamePrefix: f.prefix,
		Parameters:        append([]string(nil), f.paramNames...),
	}
}

// ParameterNames returns the fragment's logical parameter names in declaration order.
func (f *CompiledFragment) ParameterNames() []string {
	return append([]string(nil), f.paramNames...)
}

// Owner returns the effect bound to this fragment, or nil for system fragments.
func (f *CompiledFragment) Owner() FragmentOwner {
	return f.owner
}

// Parameter returns the handle for a logical (unprefixed) parameter name.
//
// Parameters:
//   - name: the logical parameter name
//
// Returns:
//   - ParameterHandle: the handle into the instance's program
//   - error: an error wrapping ErrUnknownParameter if the fragment declares no such parameter
func (f *CompiledFragment) Parameter(name string) (ParameterHandle, error) {
	h, ok := f.params[name]
	if !ok {
		return nil, fmt.Errorf("fragment %s: %w %q", f.name, ErrUnknownParameter, name)
	}
	return h, nil
}

// SetFloats writes float values to a logical parameter.
//
// Parameters:
//   - name: the logical parameter name
//   - values: the values to write
//
// Returns:
//   - error: ErrUnknownParameter or a write error
func (f *CompiledFragment) SetFloats(name string, values ...float32) error {
	h, err := f.Parameter(name)
	if err != nil {
		return err
	}
	return h.SetFloats(values...)
}

// SetMatrix writes a column-major 4x4 matrix to a logical parameter.
func (f *CompiledFragment) SetMatrix(name string, m [16]float32) error {
	h, err := f.Parameter(name)
	if err != nil {
		return err
	}
	return h.SetMatrix(m)
}

// SetTexture assigns a texture and sampler to a logical texture parameter.
func (f *CompiledFragment) SetTexture(name string, tex *common.TextureStagingData, sampler common.SamplerStagingData) error {
	h, err := f.Parameter(name)
	if err != nil {
		return err
	}
	return h.SetTexture(tex, sampler)
}

// SetParameterValues asks the owning effect to push its values into this fragment. System
// fragments have no owner and are left unchanged.
//
// Returns:
//   - error: the owner's error, wrapped with the fragment name
func (f *CompiledFragment) SetParameterValues() error {
	if f.owner == nil {
		return nil
	}
	if err := f.owner.SetParameterValues(f); err != nil {
		return fmt.Errorf("fragment %s: %w", f.name, err)
	}
	return nil
}
