package scene

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_state"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// Node is an interior scene-graph element. Its world bound encloses the bounds of all its
// children.
type Node struct {
	spatial
	children []Spatial
}

var _ Spatial = &Node{}

// NewNode creates an empty Node.
//
// Parameters:
//   - name: the node name, "node" if empty
//   - options: functional options to configure the node
//
// Returns:
//   - *Node: the new node
func NewNode(name string, options ...SpatialBuilderOption) *Node {
	n := &Node{spatial: newSpatial(common.Coalesce(name, "node"))}
	for _, opt := range options {
		opt(&n.spatial)
	}
	return n
}

// Children returns the node's children in attachment order.
func (n *Node) Children() []Spatial {
	return slices.Clone(n.children)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the child at index i.
func (n *Node) Child(i int) Spatial {
	return n.children[i]
}

// AttachChild adds child to the node, detaching it from any previous parent first.
//
// Parameters:
//   - child: the spatial to attach
func (n *Node) AttachChild(child Spatial) {
	if child == nil {
		panic("scene: AttachChild requires a non-nil child")
	}
	b := child.base()
	for p := n; p != nil; p = p.parent {
		if &p.spatial == b {
			panic("scene: AttachChild would create a cycle")
		}
	}
	if b.parent != nil {
		b.parent.DetachChild(child)
	}
	b.parent = n
	n.children = append(n.children, child)
}

// DetachChild removes child from the node.
//
// Parameters:
//   - child: the spatial to detach
//
// Returns:
//   - bool: false if child was not a child of this node
func (n *Node) DetachChild(child Spatial) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.base().parent = nil
	return true
}

func (n *Node) UpdateGeometricState() {
	n.updateWorldTransform()
	bound := common.EmptyBound()
	for _, c := range n.children {
		c.UpdateGeometricState()
		bound = bound.Merge(c.WorldBound())
	}
	n.worldBound = bound
}

func (n *Node) UpdateRenderState(stacks *render_state.StackCollection) {
	defer stacks.PushOverrides(&n.overrides)()
	n.states = stacks.Top()
	for _, c := range n.children {
		c.UpdateRenderState(stacks)
	}
}

func (n *Node) BuildShader(catalog shader.Catalog, stack *EffectStack) error {
	defer stack.Push(n.effects...)()
	for _, c := range n.children {
		if err := c.BuildShader(catalog, stack); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits the node and every descendant depth-first, parents before children. Returning
// false from fn skips the visited spatial's subtree.
//
// Parameters:
//   - fn: the visitor
func (n *Node) Walk(fn func(Spatial) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		if child, ok := c.(*Node); ok {
			child.Walk(fn)
			continue
		}
		fn(c)
	}
}
