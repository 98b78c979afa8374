// Package bsn reconciles declarative scene descriptions onto live scene
// graphs.
//
// A description is a [Tree]: each node names the [Kind] to construct when
// the node does not exist yet, carries an ordered list of [Patch] values
// that mutate the node's property bag, and holds ordered child trees. A
// [Reconciler] walks a Tree against a position in a [LiveGraph], patching
// existing nodes, constructing missing ones, and removing extras, so that a
// description regenerated every frame (or on asset reload) keeps the
// identity of the nodes it already built.
//
// # Quick start
//
//	reg := bsn.NewRegistry()
//	bsn.RegisterBuiltins(reg)
//	rec := bsn.NewReconciler(reg, bsn.Config{})
//
//	scene := bsn.NewScene()
//	tree := bsn.NewTree().
//		WithChild(bsn.NewTreeOf(bsn.KindLabel).
//			WithPatch(bsn.Set(func(l *bsn.Label) { l.Text = "hello" })))
//
//	if err := rec.Apply(tree, scene.Root().ID, scene); err != nil {
//		log.Fatal(err)
//	}
//
// # Kinds and bags
//
// Every live node owns one bag, created by the [Descriptor] registered for
// its kind. Register custom kinds at startup with [Register]; the registry
// is frozen once handed to [NewReconciler]. Typed patches are built with
// [Set]. When the bag type is only known at run time, [SetField] assigns
// struct fields by name and [Func] wraps a type-erased invoker; both check
// the bag type when applied and fail with [ErrTypeMismatch].
//
// # Child matching
//
// Children are matched by position, never by key. Reordering children in a
// description therefore updates every node after the first moved position
// in place. This suits descriptions that are regenerated wholesale. When the
// kind at a position changes, [KindUpdateInPlace] (the default) keeps the
// node and [KindRecreate] replaces it.
//
// # Live graphs
//
// [Scene] is the in-memory graph shipped with the package. The ecs
// submodule adapts a [Donburi] world.
//
// Bags that embed [Transform] compose through the scene: use
// [Node.WorldTransform] and [Node.LocalToWorld] when drawing, and the Tween
// helpers to animate retained nodes between reconciliation passes.
//
// [Donburi]: https://github.com/yohamta/donburi
package bsn
