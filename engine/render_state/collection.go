package render_state

import "fmt"

// Collection holds the current value of every axis.
type Collection struct {
	Alpha         AlphaState
	Cull          CullState
	PolygonOffset PolygonOffsetState
	Stencil       StencilState
	Wireframe     WireframeState
	DepthBuffer   DepthBufferState
}

// Get returns the value of one axis.
//
// Parameters:
//   - t: the axis
//
// Returns:
//   - State: the axis value
func (c *Collection) Get(t StateType) State {
	switch t {
	case StateTypeAlpha:
		return c.Alpha
	case StateTypeCull:
		return c.Cull
	case StateTypePolygonOffset:
		return c.PolygonOffset
	case StateTypeStencil:
		return c.Stencil
	case StateTypeWireframe:
		return c.Wireframe
	case StateTypeDepthBuffer:
		return c.DepthBuffer
	default:
		panic(fmt.Sprintf("render_state: unknown state type %d", int(t)))
	}
}

// Set replaces the value of the axis s belongs to.
//
// Parameters:
//   - s: the new axis value
func (c *Collection) Set(s State) {
	switch v := s.(type) {
	case AlphaState:
		c.Alpha = v
	case CullState:
		c.Cull = v
	case PolygonOffsetState:
		c.PolygonOffset = v
	case StencilState:
		c.Stencil = v
	case WireframeState:
		c.Wireframe = v
	case DepthBufferState:
		c.DepthBuffer = v
	default:
		panic(fmt.Sprintf("render_state: unsupported state %T", s))
	}
}

// Key returns a string identifying the collection's exact contents, suitable as a cache key.
func (c Collection) Key() string {
	return fmt.Sprintf("%v", c)
}

// Overrides is the set of axes a scene-graph element overrides locally. Axes that are not set
// inherit from the parent.
type Overrides struct {
	states [StateTypeCount]State
}

// Set installs a local override, replacing any previous override of the same axis.
func (o *Overrides) Set(s State) {
	o.states[s.Type()] = s
}

// Clear removes the local override of one axis.
func (o *Overrides) Clear(t StateType) {
	o.states[t] = nil
}

// Get returns the local override of one axis.
//
// Parameters:
//   - t: the axis
//
// Returns:
//   - State: the override, or nil
//   - bool: false if the axis is not overridden
func (o *Overrides) Get(t StateType) (State, bool) {
	s := o.states[t]
	return s, s != nil
}

// Len returns the number of overridden axes.
func (o *Overrides) Len() int {
	n := 0
	for _, s := range o.states {
		if s != nil {
			n++
		}
	}
	return n
}

// StackCollection holds one stack per axis. Each stack is seeded with the axis default, which
// can never be popped.
type StackCollection struct {
	stacks [StateTypeCount][]State
}

// NewStackCollection creates stacks seeded with the values of defaults.
//
// Parameters:
//   - defaults: the default table, nil selects the built-in defaults
//
// Returns:
//   - *StackCollection: the seeded stacks
func NewStackCollection(defaults *Defaults) *StackCollection {
	if defaults == nil {
		defaults = NewDefaults()
	}
	s := &StackCollection{}
	for t := StateType(0); t < StateTypeCount; t++ {
		s.stacks[t] = []State{defaults.Get(t)}
	}
	return s
}

// Push makes st the current value of its axis.
func (s *StackCollection) Push(st State) {
	t := st.Type()
	s.stacks[t] = append(s.stacks[t], st)
}

// Pop removes and returns the current value of one axis. Popping the seeded default panics.
func (s *StackCollection) Pop(t StateType) State {
	stack := s.stacks[t]
	if len(stack) <= 1 {
		panic(fmt.Sprintf("render_state: pop of %s below its default", t))
	}
	top := stack[len(stack)-1]
	s.stacks[t] = stack[:len(stack)-1]
	return top
}

// Depth returns the number of values on one axis stack, the default included.
func (s *StackCollection) Depth(t StateType) int {
	return len(s.stacks[t])
}

// Depths returns the depth of every axis stack.
func (s *StackCollection) Depths() [StateTypeCount]int {
	var d [StateTypeCount]int
	for t := range s.stacks {
		d[t] = len(s.stacks[t])
	}
	return d
}

// Top returns the current value of every axis.
//
// Returns:
//   - Collection: a snapshot of the stack tops
func (s *StackCollection) Top() Collection {
	var c Collection
	for t := range s.stacks {
		stack := s.stacks[t]
		c.Set(stack[len(stack)-1])
	}
	return c
}

// PushOverrides pushes every axis o overrides and returns the function that pops them again.
// Callers defer the returned function so the stacks are restored on every exit path.
//
// Parameters:
//   - o: the overrides to push, nil pushes nothing
//
// Returns:
//   - func(): pops exactly what was pushed
func (s *StackCollection) PushOverrides(o *Overrides) func() {
	if o == nil {
		return func() {}
	}
	var pushed []StateType
	for t, st := range o.states {
		if st == nil {
			continue
		}
		s.Push(st)
		pushed = append(pushed, StateType(t))
	}
	return func() {
		for i := len(pushed) - 1; i >= 0; i-- {
			s.Pop(pushed[i])
		}
	}
}
