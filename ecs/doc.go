// Package ecs adapts a [Donburi] world into a bsn live graph.
//
// [NewWorldGraph] stores every reconciled node as an entity carrying a
// [NodeData] component (kind, property bag, parent, ordered children), so a
// bsn.Reconciler can build and update entity hierarchies from declarative
// descriptions. Creation and removal are published as [NodeEvent]s on
// [NodeEventType]; subscribe in your ECS systems to react to them.
//
// Usage:
//
//	graph := ecs.NewWorldGraph(world)
//	root, _ := graph.CreateNode(containerDescriptor)
//	err := reconciler.Apply(tree, root, graph)
//	ecs.NodeEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
