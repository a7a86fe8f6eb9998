// Package effect holds the shader effects that can be attached to scene-graph spatials. Each
// effect names the catalog fragment it needs and pushes its values into the compiled fragment
// it is bound to in every program instance built beneath it.
package effect

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// ErrNotBound is returned when an effect is applied to a program instance it holds no
// fragment in.
var ErrNotBound = errors.New("effect: not bound to program instance")

// ShaderEffect defines the interface shared by every effect variant.
// An effect is a small value record (colors, directions, textures) plus the per-instance
// bindings it retains after shader builds. The same effect attached to a node is bound once
// for every geometry below that node, each in its own program instance.
type ShaderEffect interface {
	shader.FragmentOwner

	// Bind looks up every fragment this effect owns in pi and retains them.
	//
	// Parameters:
	//   - pi: a program instance returned by the catalog for a request carrying this effect
	//
	// Returns:
	//   - error: an error wrapping ErrNotBound if pi holds no fragment owned by this effect
	Bind(pi *shader.ProgramInstance) error

	// Unbind drops the fragment retained for pi.
	//
	// Parameters:
	//   - pi: the program instance to forget
	Unbind(pi *shader.ProgramInstance)

	// Fragment returns the first fragment retained for pi.
	//
	// Parameters:
	//   - pi: the program instance
	//
	// Returns:
	//   - *shader.CompiledFragment: the bound fragment, or nil if not bound
	Fragment(pi *shader.ProgramInstance) *shader.CompiledFragment

	// Apply pushes the effect's current values into every fragment retained for pi.
	//
	// Parameters:
	//   - pi: the program instance to write into
	//
	// Returns:
	//   - error: ErrNotBound, ErrUnknownParameter or a parameter write error
	Apply(pi *shader.ProgramInstance) error

	// Bindings returns the number of program instances the effect is currently bound to.
	//
	// Returns:
	//   - int: the binding count
	Bindings() int
}

// bindings is the per-instance fragment table every effect embeds. It is safe for concurrent
// use so shader builds may bind from several goroutines.
type bindings struct {
	mu        sync.Mutex
	fragments map[*shader.ProgramInstance][]*shader.CompiledFragment
}

// bind retains every slot owner holds in pi.
func (b *bindings) bind(pi *shader.ProgramInstance, owner shader.FragmentOwner) error {
	owned := pi.FragmentsFor(owner)
	if len(owned) == 0 {
		return fmt.Errorf("%w: %s in %s", ErrNotBound, owner.ShaderFragmentName(), pi.Program().Label())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fragments == nil {
		b.fragments = make(map[*shader.ProgramInstance][]*shader.CompiledFragment)
	}
	b.fragments[pi] = owned
	return nil
}

func (b *bindings) unbind(pi *shader.ProgramInstance) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.fragments, pi)
}

func (b *bindings) fragment(pi *shader.ProgramInstance) *shader.CompiledFragment {
	b.mu.Lock()
	defer b.mu.Unlock()
	if owned := b.fragments[pi]; len(owned) > 0 {
		return owned[0]
	}
	return nil
}

func (b *bindings) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fragments)
}

func (b *bindings) apply(pi *shader.ProgramInstance, owner shader.FragmentOwner) error {
	b.mu.Lock()
	owned := b.fragments[pi]
	b.mu.Unlock()
	if len(owned) == 0 {
		return fmt.Errorf("%w: %s", ErrNotBound, owner.ShaderFragmentName())
	}
	for _, f := range owned {
		if err := owner.SetParameterValues(f); err != nil {
			return err
		}
	}
	return nil
}

// setAll writes each named float parameter in order, stopping at the first error.
func setAll(f *shader.CompiledFragment, values map[string][]float32, order ...string) error {
	for _, name := range order {
		if err := f.SetFloats(name, values[name]...); err != nil {
			return err
		}
	}
	return nil
}
