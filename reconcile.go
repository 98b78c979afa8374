package bsn

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// KindPolicy selects what happens when the live node at a position was
// created with a different kind than the description asks for.
type KindPolicy uint8

const (
	// KindUpdateInPlace keeps the existing node and applies the patches to
	// it. Children are matched by position only, so a kind change is not
	// detected and typed patches for the new kind fail with ErrTypeMismatch.
	KindUpdateInPlace KindPolicy = iota
	// KindRecreate removes the existing subtree and constructs a new node at
	// the same index. The graph must implement ChildInserter.
	KindRecreate
)

// defaultMaxDepth is the description depth above which debug mode warns.
const defaultMaxDepth = 32

// Config configures a Reconciler. The zero value is ready to use.
type Config struct {
	// Debug prints per-pass stats and depth warnings to stderr.
	Debug bool
	// MaxDepth is the depth warning threshold. Zero means 32.
	MaxDepth int
	// KindPolicy defaults to KindUpdateInPlace.
	KindPolicy KindPolicy
}

// Stats counts the effects of the most recent Apply call.
type Stats struct {
	Created   int // nodes constructed from a descriptor
	Updated   int // existing nodes patched in place
	Removed   int // trailing subtrees removed
	Recreated int // subtrees replaced under KindRecreate
	Patches   int // patches applied
	Duration  time.Duration // wall time of the pass, failed passes included
}

// Reconciler applies Trees onto a LiveGraph. It is not safe for concurrent
// use; one Apply runs per host tick with exclusive access to the graph.
type Reconciler struct {
	registry *Registry
	cfg      Config
	stats    Stats
	path     []int
}

// NewReconciler creates a reconciler that constructs nodes from reg. The
// registry is frozen.
func NewReconciler(reg *Registry, cfg Config) *Reconciler {
	if reg == nil {
		panic("bsn: nil registry")
	}
	reg.Freeze()
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	return &Reconciler{registry: reg, cfg: cfg}
}

// Registry returns the registry the reconciler constructs nodes from.
func (r *Reconciler) Registry() *Registry {
	return r.registry
}

// Stats returns the counters of the most recent Apply call.
func (r *Reconciler) Stats() Stats {
	return r.stats
}

// Apply reconciles the subtree rooted at target with tree. Patches run
// depth-first in pre-order; children are matched strictly by position:
// missing positions are constructed and appended, existing positions are
// updated in place, and live children past the end of the description are
// removed.
//
// The first error aborts the pass and is returned as an *ApplyError. Work
// already done is not rolled back.
func (r *Reconciler) Apply(tree *Tree, target Handle, g LiveGraph) error {
	if tree == nil {
		panic("bsn: Apply with nil tree")
	}
	r.stats = Stats{}
	r.path = r.path[:0]

	t0 := time.Now()
	err := r.apply(tree, target, g)
	r.stats.Duration = time.Since(t0)

	if r.cfg.Debug {
		r.debugLog(err)
	}
	return err
}

func (r *Reconciler) apply(t *Tree, target Handle, g LiveGraph) error {
	if r.cfg.Debug && len(r.path) == r.cfg.MaxDepth+1 {
		_, _ = fmt.Fprintf(os.Stderr, "[bsn] warning: description depth exceeds %d at %s\n",
			r.cfg.MaxDepth, formatPath(r.path))
	}

	bag, err := g.Bag(target)
	if err != nil {
		return r.fail(err)
	}
	for _, p := range t.patches {
		if err := p.Apply(bag); err != nil {
			return r.fail(err)
		}
		r.stats.Patches++
	}

	current, err := g.Children(target)
	if err != nil {
		return r.fail(err)
	}

	for i, child := range t.children {
		r.path = append(r.path, i)
		var h Handle
		if i < len(current) {
			h, err = r.retain(child, target, current[i], i, g)
		} else {
			h, err = r.construct(child, target, g)
		}
		if err != nil {
			return r.fail(err)
		}
		if err := r.apply(child, h, g); err != nil {
			return err
		}
		r.path = r.path[:len(r.path)-1]
	}

	for i := len(t.children); i < len(current); i++ {
		if err := g.RemoveSubtree(current[i]); err != nil {
			r.path = append(r.path, i)
			return r.fail(err)
		}
		r.stats.Removed++
	}
	return nil
}

// construct creates a node for t and appends it to parent.
func (r *Reconciler) construct(t *Tree, parent Handle, g LiveGraph) (Handle, error) {
	d, err := r.registry.Lookup(t.kind)
	if err != nil {
		return 0, err
	}
	h, err := g.CreateNode(d)
	if err != nil {
		return 0, err
	}
	if err := g.AppendChild(parent, h); err != nil {
		return 0, err
	}
	r.stats.Created++
	return h, nil
}

// retain returns the node to reconcile t against at position index. Under
// KindRecreate a node of another kind is replaced in place.
func (r *Reconciler) retain(t *Tree, parent, existing Handle, index int, g LiveGraph) (Handle, error) {
	if r.cfg.KindPolicy != KindRecreate {
		r.stats.Updated++
		return existing, nil
	}
	kind, err := g.NodeKind(existing)
	if err != nil {
		return 0, err
	}
	if kind == t.kind {
		r.stats.Updated++
		return existing, nil
	}
	ins, ok := g.(ChildInserter)
	if !ok {
		return 0, fmt.Errorf("bsn: %T does not implement ChildInserter", g)
	}
	d, err := r.registry.Lookup(t.kind)
	if err != nil {
		return 0, err
	}
	if err := g.RemoveSubtree(existing); err != nil {
		return 0, err
	}
	h, err := g.CreateNode(d)
	if err != nil {
		return 0, err
	}
	if err := ins.InsertChild(parent, h, index); err != nil {
		return 0, err
	}
	r.stats.Recreated++
	return h, nil
}

// fail wraps err with the current path unless it is already wrapped.
func (r *Reconciler) fail(err error) error {
	var ae *ApplyError
	if errors.As(err, &ae) {
		return err
	}
	path := make([]int, len(r.path))
	copy(path, r.path)
	return &ApplyError{Path: path, Err: err}
}

// debugLog prints the stats of the last pass to stderr.
func (r *Reconciler) debugLog(err error) {
	s := r.stats
	_, _ = fmt.Fprintf(os.Stderr,
		"[bsn] created: %d | updated: %d | removed: %d | recreated: %d | patches: %d | total: %v\n",
		s.Created, s.Updated, s.Removed, s.Recreated, s.Patches, s.Duration)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[bsn] pass aborted: %v\n", err)
	}
}
