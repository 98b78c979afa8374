package bsn

import (
	"reflect"
	"slices"
)

// Kind names an object kind. Every live node created by a Reconciler was
// created from the Descriptor registered under its Kind.
type Kind string

// KindContainer is registered in every Registry. Its bag is a Container.
const KindContainer Kind = "container"

// Descriptor maps a Kind to its concrete bag type and default bag.
type Descriptor struct {
	Kind Kind
	Type reflect.Type

	newBag func() any
}

// DefaultBag returns a freshly allocated pointer to the default bag.
func (d *Descriptor) DefaultBag() any {
	return d.newBag()
}

// Registry holds the descriptors known to a Reconciler. It is populated at
// startup and read-only once frozen; NewReconciler freezes the registry it
// is given.
type Registry struct {
	descriptors map[Kind]*Descriptor
	frozen      bool
}

// NewRegistry creates a registry containing KindContainer.
func NewRegistry() *Registry {
	r := &Registry{descriptors: make(map[Kind]*Descriptor)}
	Register(r, KindContainer, func() Container { return Container{} })
	return r
}

// Register adds a descriptor for kind with bag type T. A nil defaults func
// produces the zero value of T.
// Panics if the registry is frozen, kind is empty, or kind is already taken.
func Register[T any](r *Registry, kind Kind, defaults func() T) *Descriptor {
	if r.frozen {
		panic("bsn: register on frozen registry")
	}
	if kind == "" {
		panic("bsn: cannot register empty kind")
	}
	if _, ok := r.descriptors[kind]; ok {
		panic("bsn: kind " + string(kind) + " already registered")
	}
	d := &Descriptor{
		Kind: kind,
		Type: reflect.TypeFor[T](),
		newBag: func() any {
			bag := new(T)
			if defaults != nil {
				*bag = defaults()
			}
			return bag
		},
	}
	r.descriptors[kind] = d
	return d
}

// Lookup returns the descriptor registered for kind.
func (r *Registry) Lookup(kind Kind) (*Descriptor, error) {
	d, ok := r.descriptors[kind]
	if !ok {
		return nil, unknownKind(kind)
	}
	return d, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.descriptors))
	for k := range r.descriptors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Freeze makes the registry read-only. Further Register calls panic.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen
}
