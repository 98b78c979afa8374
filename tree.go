package bsn

// Tree is a declarative description of one node: the kind to construct when
// the node does not exist yet, the patches to apply to its bag, and its
// ordered children. A Tree is build-only plain data; applying it never
// changes it.
type Tree struct {
	kind     Kind
	patches  []Patch
	children []*Tree
}

// NewTree creates an empty container node with no patches and no children.
func NewTree() *Tree {
	return &Tree{kind: KindContainer}
}

// NewTreeOf creates an empty node of the given kind.
func NewTreeOf(kind Kind) *Tree {
	return &Tree{kind: kind}
}

// WithPatch appends a patch and returns t.
func (t *Tree) WithPatch(p Patch) *Tree {
	if p == nil {
		panic("bsn: cannot add nil patch")
	}
	t.patches = append(t.patches, p)
	return t
}

// WithChild appends child after the existing children and returns t.
// Panics if child is nil or already contains t (cycle). The same subtree
// may appear at several positions.
func (t *Tree) WithChild(child *Tree) *Tree {
	if child == nil {
		panic("bsn: cannot add nil child tree")
	}
	if child.contains(t) {
		panic("bsn: adding child tree would create a cycle")
	}
	t.children = append(t.children, child)
	return t
}

// contains reports whether target is t or one of its descendants.
func (t *Tree) contains(target *Tree) bool {
	if t == target {
		return true
	}
	for _, c := range t.children {
		if c.contains(target) {
			return true
		}
	}
	return false
}

// WithChildren appends each child in order and returns t.
func (t *Tree) WithChildren(children ...*Tree) *Tree {
	for _, c := range children {
		t.WithChild(c)
	}
	return t
}

// Kind returns the kind constructed for this node.
func (t *Tree) Kind() Kind {
	return t.kind
}

// Patches returns the patch list. The returned slice MUST NOT be mutated.
func (t *Tree) Patches() []Patch {
	return t.patches
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (t *Tree) Children() []*Tree {
	return t.children
}

// Len returns the number of nodes in the tree, t included.
func (t *Tree) Len() int {
	n := 1
	for _, c := range t.children {
		n += c.Len()
	}
	return n
}
