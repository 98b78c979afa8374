package bsn

// Handle identifies a node in a LiveGraph. The zero Handle is never valid.
type Handle uint64

// LiveGraph is the mutable object graph a Reconciler works against. All
// methods except CreateNode fail with ErrStaleHandle when a handle no longer
// refers to a live node.
type LiveGraph interface {
	// CreateNode allocates an unparented node holding d.DefaultBag() and
	// records d.Kind as its kind.
	CreateNode(d *Descriptor) (Handle, error)
	// Bag returns the node's bag as a pointer the caller may mutate.
	Bag(h Handle) (any, error)
	// NodeKind returns the kind the node was created with.
	NodeKind(h Handle) (Kind, error)
	// Children returns the node's children in order. The slice is owned by
	// the caller.
	Children(h Handle) ([]Handle, error)
	// AppendChild makes child the last child of parent.
	AppendChild(parent, child Handle) error
	// RemoveSubtree detaches h from its parent and destroys h and all of
	// its descendants.
	RemoveSubtree(h Handle) error
}

// ChildInserter is implemented by graphs that can place a child at an
// arbitrary index. The KindRecreate policy requires it.
type ChildInserter interface {
	InsertChild(parent, child Handle, index int) error
}
