package bsn

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/goccy/go-yaml"
)

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called when the node's scene is in debug
// mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("bsn debug: %s on disposed node %q (ID %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[bsn] warning: tree depth %d exceeds %d (node %d %q)\n",
			depth, debugMaxTreeDepth, n.ID, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[bsn] warning: node %d %q has %d children (threshold %d)\n",
			n.ID, n.Name, len(n.children), debugMaxChildCount)
	}
}

// Snapshot is a value copy of a live subtree. Two snapshots compare equal
// with reflect.DeepEqual when the subtrees have the same shape, kinds, bag
// values and handles.
type Snapshot struct {
	ID       Handle     `yaml:"id"`
	Kind     Kind       `yaml:"kind"`
	Name     string     `yaml:"name,omitempty"`
	Bag      any        `yaml:"bag,omitempty"`
	Children []Snapshot `yaml:"children,omitempty"`
}

// Snapshot copies the subtree rooted at h.
func (s *Scene) Snapshot(h Handle) (Snapshot, error) {
	n, err := s.lookup(h)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotNode(n), nil
}

func snapshotNode(n *Node) Snapshot {
	snap := Snapshot{ID: n.ID, Kind: n.Kind, Name: n.Name, Bag: bagValue(n.bag)}
	if len(n.children) > 0 {
		snap.Children = make([]Snapshot, len(n.children))
		for i, c := range n.children {
			snap.Children[i] = snapshotNode(c)
		}
	}
	return snap
}

// bagValue dereferences a bag pointer so the snapshot holds a copy.
func bagValue(bag any) any {
	rv := reflect.ValueOf(bag)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return bag
}

// Dump writes the subtree rooted at h to w as YAML.
func (s *Scene) Dump(w io.Writer, h Handle) error {
	snap, err := s.Snapshot(h)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("bsn: marshal snapshot: %w", err)
	}
	_, err = w.Write(data)
	return err
}
