package bsn

// Node is one live element of a Scene. It owns exactly one bag, created from
// the Descriptor of its Kind, and an ordered list of children.
type Node struct {
	// Identity
	ID   Handle
	Name string
	Kind Kind

	// Hierarchy
	Parent   *Node
	children []*Node

	bag   any
	scene *Scene

	disposed bool
}

// Bag returns the node's bag pointer.
func (n *Node) Bag() any {
	return n.bag
}

// BagOf returns n's bag as a *T, or false if the bag has another type.
func BagOf[T any](n *Node) (*T, bool) {
	v, ok := n.bag.(*T)
	return v, ok
}

// Scene returns the scene that created n.
func (n *Node) Scene() *Scene {
	return n.scene
}

func (n *Node) debug() bool {
	return n.scene != nil && n.scene.debug
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil, belongs to another scene, or is an ancestor of
// this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.checkAdd(child, "AddChild")
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	if n.debug() {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index, counted after child is
// detached from its current parent. Panics before any change if index is out
// of range. Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	n.checkAdd(child, "AddChildAt")
	limit := len(n.children)
	if child.Parent == n {
		limit--
	}
	if index < 0 || index > limit {
		panic("bsn: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if n.debug() {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

func (n *Node) checkAdd(child *Node, op string) {
	if child == nil {
		panic("bsn: cannot add nil child")
	}
	if n.debug() {
		debugCheckDisposed(n, op+" (parent)")
		debugCheckDisposed(child, op+" (child)")
	}
	if child.scene != n.scene {
		panic("bsn: child belongs to another scene")
	}
	if isAncestor(child, n) {
		panic("bsn: adding child would create a cycle")
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if n.debug() {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("bsn: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if n.debug() {
		debugCheckDisposed(n, "RemoveChildAt")
	}
	if index < 0 || index >= len(n.children) {
		panic("bsn: child index out of range")
	}
	child := n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.Parent = nil
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for i, child := range n.children {
		child.Parent = nil
		n.children[i] = nil
	}
	n.children = n.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("bsn: child's parent is not this node")
	}
	if index < 0 || index >= len(n.children) {
		panic("bsn: child index out of range")
	}
	oldIndex := n.indexOf(child)
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants. Handles of disposed nodes become
// stale in the owning Scene.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	if n.scene != nil {
		delete(n.scene.nodes, n.ID)
	}
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.bag = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = nil
		n.children = n.children[:len(n.children)-1]
	}
}
