package shader

import (
	"fmt"
)

// FragmentRequest asks for one fragment by name. Owner may be nil for system fragments.
// Requests with equal names are distinct slots.
type FragmentRequest struct {
	Name  string
	Owner FragmentOwner
}

// ProgramInstance is a linked program bound to a private parameter store: the program, the
// renderer constants it exposes, its compiled fragments in link order and the vertex layout
// it consumes. Canonical instances live in a Catalog; callers only ever receive clones.
type ProgramInstance struct {
	program       Program
	constantNames []string
	constants     map[string]ParameterHandle
	fragments     []*CompiledFragment
	layout        VertexLayout
}

// NewProgramInstance assembles an instance over program, resolving every renderer constant
// and fragment parameter through it. Fragments carry no owner.
//
// Parameters:
//   - program: the linked program
//   - constants: renderer constant semantics, resolved by semantic first and by name second
//   - fragments: the compiled fragments in link order
//   - layout: the vertex layout the program consumes
//
// Returns:
//   - *ProgramInstance: the assembled instance
//   - error: an error wrapping ErrUnknownParameter if a constant or parameter cannot be resolved
func NewProgramInstance(program Program, constants []string, fragments []FragmentLayout, layout VertexLayout) (*ProgramInstance, error) {
	if program == nil {
		panic("shader: program instance requires a program")
	}
	pi := &ProgramInstance{
		program:       program,
		constantNames: append([]string(nil), constants...),
		layout:        append(VertexLayout(nil), layout...),
		fragments:     make([]*CompiledFragment, 0, len(fragments)),
	}
	if err := pi.resolveConstants(); err != nil {
		return nil, err
	}
	for _, fl := range fragments {
		f, err := newCompiledFragment(fl, program, nil)
		if err != nil {
			return nil, err
		}
		pi.fragments = append(pi.fragments, f)
	}
	return pi, nil
}

func (pi *ProgramInstance) resolveConstants() error {
	pi.constants = make(map[string]ParameterHandle, len(pi.constantNames))
	for _, semantic := range pi.constantNames {
		h, ok := pi.program.SemanticParameter(semantic)
		if !ok {
			h, ok = pi.program.Parameter(semantic)
		}
		if !ok {
			return fmt.Errorf("renderer constant: %w %q", ErrUnknownParameter, semantic)
		}
		pi.constants[semantic] = h
	}
	return nil
}

// Program returns the instance's private program.
func (pi *ProgramInstance) Program() Program {
	return pi.program
}

// RendererConstant returns the handle of a renderer constant such as "WorldViewProjection".
//
// Parameters:
//   - semantic: the renderer constant semantic
//
// Returns:
//   - ParameterHandle: the handle into this instance's program
//   - bool: false if the program exposes no such constant
func (pi *ProgramInstance) RendererConstant(semantic string) (ParameterHandle, bool) {
	h, ok := pi.constants[semantic]
	return h, ok
}

// RendererConstants returns the renderer constant semantics in catalog order.
func (pi *ProgramInstance) RendererConstants() []string {
	return append([]string(nil), pi.constantNames...)
}

// Fragments returns the compiled fragments in link order.
func (pi *ProgramInstance) Fragments() []*CompiledFragment {
	return append([]*CompiledFragment(nil), pi.fragments...)
}

// FragmentFor returns the first fragment bound to owner, or nil.
//
// Parameters:
//   - owner: the owning effect
//
// Returns:
//   - *CompiledFragment: the fragment, or nil if owner holds no slot in this instance
func (pi *ProgramInstance) FragmentFor(owner FragmentOwner) *CompiledFragment {
	if owner == nil {
		return nil
	}
	for _, f := range pi.fragments {
		if f.owner == owner {
			return f
		}
	}
	return nil
}

// FragmentsFor returns every fragment bound to owner in link order. An effect attached twice
// along one path owns two slots.
//
// Parameters:
//   - owner: the owning effect
//
// Returns:
//   - []*CompiledFragment: the owned fragments, empty if owner holds no slot
func (pi *ProgramInstance) FragmentsFor(owner FragmentOwner) []*CompiledFragment {
	if owner == nil {
		return nil
	}
	var owned []*CompiledFragment
	for _, f := range pi.fragments {
		if f.owner == owner {
			owned = append(owned, f)
		}
	}
	return owned
}

// VertexLayout returns the vertex layout the program consumes.
func (pi *ProgramInstance) VertexLayout() VertexLayout {
	return pi.layout
}

// FragmentNames returns the fragment names in link order.
func (pi *ProgramInstance) FragmentNames() []string {
	names := make([]string, len(pi.fragments))
	for i, f := range pi.fragments {
		names[i] = f.name
	}
	return names
}

// SetParameterValues asks every owned fragment's effect to push its values.
//
// Returns:
//   - error: the first owner error
func (pi *ProgramInstance) SetParameterValues() error {
	for _, f := range pi.fragments {
		if err := f.SetParameterValues(); err != nil {
			return err
		}
	}
	return nil
}

// matches reports whether this instance links exactly the requested fragment multiset over
// an identical vertex layout.
func (pi *ProgramInstance) matches(requests []FragmentRequest, layout VertexLayout) bool {
	if len(pi.fragments) != len(requests) || !pi.layout.Equal(layout) {
		return false
	}
	counts := make(map[string]int, len(pi.fragments))
	for _, f := range pi.fragments {
		counts[f.name]++
	}
	for _, r := range requests {
		if counts[r.Name] == 0 {
			return false
		}
		counts[r.Name]--
	}
	return true
}

// clone builds a private copy of the instance. Each fragment consumes the first remaining
// request with its name and takes that request's owner. The caller guarantees the requests
// match.
func (pi *ProgramInstance) clone(requests []FragmentRequest) (*ProgramInstance, error) {
	c := &ProgramInstance{
		program:       pi.program.Clone(),
		constantNames: pi.constantNames,
		layout:        pi.layout,
		fragments:     make([]*CompiledFragment, 0, len(pi.fragments)),
	}
	if err := c.resolveConstants(); err != nil {
		return nil, err
	}

	pending := append([]FragmentRequest(nil), requests...)
	for _, f := range pi.fragments {
		idx := -1
		for i, r := range pending {
			if r.Name == f.name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("clone %s: %w: no request left for fragment %s", pi.program.Label(), ErrNoMatchingShader, f.name)
		}
		owner := pending[idx].Owner
		pending = append(pending[:idx], pending[idx+1:]...)

		cf, err := newCompiledFragment(f.Layout(), c.program, owner)
		if err != nil {
			return nil, err
		}
		c.fragments = append(c.fragments, cf)
	}
	return c, nil
}
