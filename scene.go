package bsn

import "fmt"

// Scene is an in-memory LiveGraph: a tree of Nodes rooted at Root. Handles
// are node IDs, unique per scene and never reused.
type Scene struct {
	root   *Node
	nodes  map[Handle]*Node
	nextID Handle
	debug  bool
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	s := &Scene{nodes: make(map[Handle]*Node)}
	s.root = s.newNode("root", KindContainer, &Container{Name: "root"})
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// NewNode creates an unparented node holding d's default bag.
func (s *Scene) NewNode(name string, d *Descriptor) *Node {
	return s.newNode(name, d.Kind, d.DefaultBag())
}

func (s *Scene) newNode(name string, kind Kind, bag any) *Node {
	s.nextID++
	n := &Node{ID: s.nextID, Name: name, Kind: kind, bag: bag, scene: s}
	s.nodes[n.ID] = n
	return n
}

// Node returns the live node for h, or nil if h is stale.
func (s *Scene) Node(h Handle) *Node {
	return s.nodes[h]
}

// Len returns the number of live nodes, the root included. Unparented nodes
// count until they are disposed.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics and tree depth and child count warnings are printed to
// stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

func (s *Scene) lookup(h Handle) (*Node, error) {
	n, ok := s.nodes[h]
	if !ok {
		return nil, staleHandle(h)
	}
	return n, nil
}

// --- LiveGraph ---

// CreateNode implements LiveGraph.
func (s *Scene) CreateNode(d *Descriptor) (Handle, error) {
	return s.NewNode("", d).ID, nil
}

// Bag implements LiveGraph.
func (s *Scene) Bag(h Handle) (any, error) {
	n, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	return n.bag, nil
}

// NodeKind implements LiveGraph.
func (s *Scene) NodeKind(h Handle) (Kind, error) {
	n, err := s.lookup(h)
	if err != nil {
		return "", err
	}
	return n.Kind, nil
}

// Children implements LiveGraph.
func (s *Scene) Children(h Handle) ([]Handle, error) {
	n, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	out := make([]Handle, len(n.children))
	for i, c := range n.children {
		out[i] = c.ID
	}
	return out, nil
}

// AppendChild implements LiveGraph.
func (s *Scene) AppendChild(parent, child Handle) error {
	p, c, err := s.lookupPair(parent, child)
	if err != nil {
		return err
	}
	p.AddChild(c)
	return nil
}

// InsertChild implements ChildInserter. A child already under parent is
// moved, so the valid range excludes its current slot.
func (s *Scene) InsertChild(parent, child Handle, index int) error {
	p, c, err := s.lookupPair(parent, child)
	if err != nil {
		return err
	}
	limit := len(p.children)
	if c.Parent == p {
		limit--
	}
	if index < 0 || index > limit {
		return fmt.Errorf("bsn: insert index %d out of range [0, %d]", index, limit)
	}
	p.AddChildAt(c, index)
	return nil
}

// RemoveSubtree implements LiveGraph.
func (s *Scene) RemoveSubtree(h Handle) error {
	n, err := s.lookup(h)
	if err != nil {
		return err
	}
	if n == s.root {
		return fmt.Errorf("bsn: cannot remove scene root")
	}
	n.Dispose()
	return nil
}

func (s *Scene) lookupPair(parent, child Handle) (*Node, *Node, error) {
	p, err := s.lookup(parent)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.lookup(child)
	if err != nil {
		return nil, nil, err
	}
	if isAncestor(c, p) {
		return nil, nil, fmt.Errorf("bsn: inserting %d under %d would create a cycle", child, parent)
	}
	return p, c, nil
}
