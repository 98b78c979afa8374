package ecs

import (
	"fmt"
	"slices"

	"github.com/phanxgames/bsn"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// NodeData is the component carried by every entity created by a WorldGraph.
type NodeData struct {
	Handle   bsn.Handle
	Kind     bsn.Kind
	Bag      any // pointer to the bag, as returned by Descriptor.DefaultBag
	Parent   bsn.Handle
	Children []bsn.Handle
}

// NodeComponent is the Donburi component type holding NodeData. Query it to
// iterate reconciled entities from your systems.
var NodeComponent = donburi.NewComponentType[NodeData]()

// NodeEventKind distinguishes NodeEvents.
type NodeEventKind uint8

const (
	NodeCreated NodeEventKind = iota // fires when CreateNode spawns an entity
	NodeRemoved                      // fires for every entity destroyed by RemoveSubtree
)

// NodeEvent reports a structural change made through a WorldGraph.
type NodeEvent struct {
	Type   NodeEventKind
	Handle bsn.Handle
	Entity donburi.Entity
	Kind   bsn.Kind
}

// NodeEventType is the Donburi event type for WorldGraph structural changes.
// Events are queued; call ProcessEvents (or events.ProcessAllEvents) to
// deliver them.
var NodeEventType = events.NewEventType[NodeEvent]()

// WorldGraph is a bsn.LiveGraph backed by a Donburi world. It also
// implements bsn.ChildInserter.
type WorldGraph struct {
	world    donburi.World
	entities map[bsn.Handle]donburi.Entity
	nextID   bsn.Handle
}

// NewWorldGraph creates a live graph that stores nodes in world.
func NewWorldGraph(world donburi.World) *WorldGraph {
	return &WorldGraph{world: world, entities: make(map[bsn.Handle]donburi.Entity)}
}

// Entity returns the entity backing h.
func (g *WorldGraph) Entity(h bsn.Handle) (donburi.Entity, bool) {
	e, ok := g.entities[h]
	if !ok || !g.world.Valid(e) {
		return donburi.Null, false
	}
	return e, true
}

// Len returns the number of live nodes.
func (g *WorldGraph) Len() int {
	return len(g.entities)
}

func (g *WorldGraph) data(h bsn.Handle) (*NodeData, error) {
	e, ok := g.Entity(h)
	if !ok {
		return nil, fmt.Errorf("%w: %d", bsn.ErrStaleHandle, h)
	}
	return NodeComponent.Get(g.world.Entry(e)), nil
}

// CreateNode implements bsn.LiveGraph.
func (g *WorldGraph) CreateNode(d *bsn.Descriptor) (bsn.Handle, error) {
	g.nextID++
	h := g.nextID
	e := g.world.Create(NodeComponent)
	NodeComponent.SetValue(g.world.Entry(e), NodeData{
		Handle: h,
		Kind:   d.Kind,
		Bag:    d.DefaultBag(),
	})
	g.entities[h] = e
	NodeEventType.Publish(g.world, NodeEvent{Type: NodeCreated, Handle: h, Entity: e, Kind: d.Kind})
	return h, nil
}

// Bag implements bsn.LiveGraph.
func (g *WorldGraph) Bag(h bsn.Handle) (any, error) {
	nd, err := g.data(h)
	if err != nil {
		return nil, err
	}
	return nd.Bag, nil
}

// NodeKind implements bsn.LiveGraph.
func (g *WorldGraph) NodeKind(h bsn.Handle) (bsn.Kind, error) {
	nd, err := g.data(h)
	if err != nil {
		return "", err
	}
	return nd.Kind, nil
}

// Children implements bsn.LiveGraph.
func (g *WorldGraph) Children(h bsn.Handle) ([]bsn.Handle, error) {
	nd, err := g.data(h)
	if err != nil {
		return nil, err
	}
	return slices.Clone(nd.Children), nil
}

// AppendChild implements bsn.LiveGraph.
func (g *WorldGraph) AppendChild(parent, child bsn.Handle) error {
	pd, err := g.data(parent)
	if err != nil {
		return err
	}
	return g.InsertChild(parent, child, len(pd.Children))
}

// InsertChild implements bsn.ChildInserter. A child that already has a
// parent is detached first.
func (g *WorldGraph) InsertChild(parent, child bsn.Handle, index int) error {
	pd, err := g.data(parent)
	if err != nil {
		return err
	}
	cd, err := g.data(child)
	if err != nil {
		return err
	}
	if g.isAncestor(child, parent) {
		return fmt.Errorf("ecs: inserting %d under %d would create a cycle", child, parent)
	}
	limit := len(pd.Children)
	if cd.Parent == parent {
		limit--
	}
	if index < 0 || index > limit {
		return fmt.Errorf("ecs: insert index %d out of range [0, %d]", index, limit)
	}
	if cd.Parent != 0 {
		if old, err := g.data(cd.Parent); err == nil {
			old.Children = slices.DeleteFunc(old.Children, func(c bsn.Handle) bool { return c == child })
		}
	}
	pd.Children = slices.Insert(pd.Children, index, child)
	cd.Parent = parent
	return nil
}

// RemoveSubtree implements bsn.LiveGraph. A NodeRemoved event is published
// for h and each of its descendants.
func (g *WorldGraph) RemoveSubtree(h bsn.Handle) error {
	nd, err := g.data(h)
	if err != nil {
		return err
	}
	if nd.Parent != 0 {
		if pd, err := g.data(nd.Parent); err == nil {
			pd.Children = slices.DeleteFunc(pd.Children, func(c bsn.Handle) bool { return c == h })
		}
	}
	g.destroy(h)
	return nil
}

func (g *WorldGraph) destroy(h bsn.Handle) {
	e, ok := g.Entity(h)
	if !ok {
		delete(g.entities, h)
		return
	}
	// Copy before recursing: removals may move component storage.
	nd := NodeComponent.Get(g.world.Entry(e))
	children := slices.Clone(nd.Children)
	kind := nd.Kind
	for _, c := range children {
		g.destroy(c)
	}
	g.world.Remove(e)
	delete(g.entities, h)
	NodeEventType.Publish(g.world, NodeEvent{Type: NodeRemoved, Handle: h, Entity: e, Kind: kind})
}

// isAncestor reports whether candidate is node or one of its ancestors.
func (g *WorldGraph) isAncestor(candidate, node bsn.Handle) bool {
	for p := node; p != 0; {
		if p == candidate {
			return true
		}
		nd, err := g.data(p)
		if err != nil {
			return false
		}
		p = nd.Parent
	}
	return false
}
