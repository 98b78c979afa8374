package bsn

import (
	"errors"
	"reflect"
	"testing"
)

func setText(text string) Patch {
	return Set(func(l *Label) { l.Text = text })
}

func label(text string) *Tree {
	return NewTreeOf(KindLabel).WithPatch(setText(text))
}

func newTestReconciler(cfg Config) (*Reconciler, *Scene) {
	return NewReconciler(newTestRegistry(), cfg), NewScene()
}

func labelText(t *testing.T, n *Node) string {
	t.Helper()
	l, ok := BagOf[Label](n)
	if !ok {
		t.Fatalf("node %d bag = %T, want *Label", n.ID, n.Bag())
	}
	return l.Text
}

// labelRoot makes the scene root hold a Label so the target itself can be
// patched with setText.
func labelRoot(t *testing.T, s *Scene) Handle {
	t.Helper()
	d := mustLookup(t, newTestRegistry(), KindLabel)
	h, err := s.CreateNode(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AppendChild(s.Root().ID, h); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestApplyScenario(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	target := labelRoot(t, s)

	tree := label("A").WithChild(label("B"))
	if err := rec.Apply(tree, target, s); err != nil {
		t.Fatal(err)
	}

	root := s.Node(target)
	if got := labelText(t, root); got != "A" {
		t.Errorf("root Text = %q, want %q", got, "A")
	}
	if root.NumChildren() != 1 {
		t.Fatalf("root children = %d, want 1", root.NumChildren())
	}
	if got := labelText(t, root.ChildAt(0)); got != "B" {
		t.Errorf("child Text = %q, want %q", got, "B")
	}
}

func TestApplyCreationCompleteness(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	tree := NewTree().WithChildren(
		NewTreeOf(KindSprite),
		NewTreeOf(KindLabel),
		NewTree(),
	)
	if err := rec.Apply(tree, s.Root().ID, s); err != nil {
		t.Fatal(err)
	}

	kids, _ := s.Children(s.Root().ID)
	if len(kids) != 3 {
		t.Fatalf("children = %d, want 3", len(kids))
	}
	want := []Kind{KindSprite, KindLabel, KindContainer}
	for i, h := range kids {
		if k, _ := s.NodeKind(h); k != want[i] {
			t.Errorf("child %d kind = %q, want %q", i, k, want[i])
		}
	}
	if _, ok := BagOf[Sprite](s.Node(kids[0])); !ok {
		t.Errorf("child 0 bag = %T, want *Sprite", s.Node(kids[0]).Bag())
	}
	st := rec.Stats()
	if st.Created != 3 || st.Updated != 0 || st.Removed != 0 {
		t.Errorf("Stats = %+v, want 3 created", st)
	}
}

func TestApplyTrailingRemoval(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	root := s.Root().ID
	three := NewTree().WithChildren(label("0"), label("1"), label("2"))
	if err := rec.Apply(three, root, s); err != nil {
		t.Fatal(err)
	}
	before, _ := s.Children(root)

	one := NewTree().WithChild(label("updated"))
	if err := rec.Apply(one, root, s); err != nil {
		t.Fatal(err)
	}

	after, _ := s.Children(root)
	if len(after) != 1 {
		t.Fatalf("children = %d, want 1", len(after))
	}
	if after[0] != before[0] {
		t.Error("position 0 should be updated in place, not recreated")
	}
	if got := labelText(t, s.Node(after[0])); got != "updated" {
		t.Errorf("Text = %q, want %q", got, "updated")
	}
	if s.Node(before[1]) != nil || s.Node(before[2]) != nil {
		t.Error("positions 1 and 2 should be removed")
	}
	st := rec.Stats()
	if st.Updated != 1 || st.Removed != 2 || st.Created != 0 {
		t.Errorf("Stats = %+v, want 1 updated, 2 removed", st)
	}
}

func TestApplyRemovesWholeSubtrees(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	root := s.Root().ID
	tree := NewTree().WithChild(NewTree().WithChild(NewTree().WithChild(NewTree())))
	if err := rec.Apply(tree, root, s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Fatalf("Len = %d, want 4", s.Len())
	}
	if err := rec.Apply(NewTree(), root, s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 after removing the subtree", s.Len())
	}
}

func TestApplyIdempotent(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	root := s.Root().ID
	tree := NewTree().WithChildren(
		label("a").WithChild(label("a0")),
		NewTreeOf(KindSprite).WithPatch(Set(func(sp *Sprite) { sp.Width = 10 })),
	)

	if err := rec.Apply(tree, root, s); err != nil {
		t.Fatal(err)
	}
	first, _ := s.Snapshot(root)

	if err := rec.Apply(tree, root, s); err != nil {
		t.Fatal(err)
	}
	second, _ := s.Snapshot(root)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second apply changed the graph:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	st := rec.Stats()
	if st.Created != 0 || st.Removed != 0 {
		t.Errorf("Stats = %+v, want no structural changes", st)
	}
}

func TestApplyPatchOrderLastWriteWins(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	target := labelRoot(t, s)
	tree := NewTreeOf(KindLabel).WithPatch(setText("first")).WithPatch(setText("second"))
	if err := rec.Apply(tree, target, s); err != nil {
		t.Fatal(err)
	}
	if got := labelText(t, s.Node(target)); got != "second" {
		t.Errorf("Text = %q, want %q", got, "second")
	}
}

func TestApplyDepthFirstOrder(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	var order []string
	mark := func(name string) Patch {
		return Set(func(*Container) { order = append(order, name) })
	}
	tree := NewTree().WithPatch(mark("parent")).WithChildren(
		NewTree().WithPatch(mark("c0.p0")).WithPatch(mark("c0.p1")).
			WithChild(NewTree().WithPatch(mark("c0.0"))),
		NewTree().WithPatch(mark("c1.p0")).WithPatch(mark("c1.p1")),
	)
	if err := rec.Apply(tree, s.Root().ID, s); err != nil {
		t.Fatal(err)
	}
	want := []string{"parent", "c0.p0", "c0.p1", "c0.0", "c1.p0", "c1.p1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if rec.Stats().Patches != len(want) {
		t.Errorf("Patches = %d, want %d", rec.Stats().Patches, len(want))
	}
}

func TestApplyGrowsExistingChildren(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	root := s.Root().ID
	if err := rec.Apply(NewTree().WithChild(label("a")), root, s); err != nil {
		t.Fatal(err)
	}
	before, _ := s.Children(root)

	if err := rec.Apply(NewTree().WithChildren(label("a"), label("b")), root, s); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Children(root)
	if len(after) != 2 || after[0] != before[0] {
		t.Fatalf("children = %v, want [%d, new]", after, before[0])
	}
	if got := labelText(t, s.Node(after[1])); got != "b" {
		t.Errorf("Text = %q, want %q", got, "b")
	}
}

func TestApplyReorderUpdatesInPlace(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	root := s.Root().ID
	_ = rec.Apply(NewTree().WithChildren(label("x"), label("y")), root, s)
	before, _ := s.Children(root)

	if err := rec.Apply(NewTree().WithChildren(label("y"), label("x")), root, s); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Children(root)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("handles changed on reorder: %v -> %v", before, after)
	}
	if labelText(t, s.Node(after[0])) != "y" || labelText(t, s.Node(after[1])) != "x" {
		t.Error("reordered description should rewrite bags by position")
	}
}

func TestApplyTypeMismatch(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	tree := NewTree().WithChild(NewTree().WithPatch(setText("x")))
	err := rec.Apply(tree, s.Root().ID, s)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err = %v, want ErrTypeMismatch", err)
	}
	var ae *ApplyError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %T, want *ApplyError", err)
	}
	if !reflect.DeepEqual(ae.Path, []int{0}) {
		t.Errorf("Path = %v, want [0]", ae.Path)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	tree := NewTree().WithChild(NewTree().WithChild(NewTreeOf("ghost")))
	err := rec.Apply(tree, s.Root().ID, s)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
	var ae *ApplyError
	if errors.As(err, &ae) && !reflect.DeepEqual(ae.Path, []int{0, 0}) {
		t.Errorf("Path = %v, want [0 0]", ae.Path)
	}
	if want := "bsn: apply at root/0/0"; len(err.Error()) < len(want) || err.Error()[:len(want)] != want {
		t.Errorf("Error() = %q, want prefix %q", err.Error(), want)
	}
}

func TestApplyStaleTarget(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	target := labelRoot(t, s)
	_ = s.RemoveSubtree(target)
	if err := rec.Apply(label("x"), target, s); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("err = %v, want ErrStaleHandle", err)
	}
}

func TestApplyNoRollback(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	root := s.Root().ID
	tree := NewTree().WithChildren(
		label("ok"),
		NewTree().WithPatch(setText("bad")),
		label("never"),
	)
	if err := rec.Apply(tree, root, s); err == nil {
		t.Fatal("expected error")
	}
	kids, _ := s.Children(root)
	if len(kids) != 2 {
		t.Fatalf("children = %d, want 2 (third sibling never reached)", len(kids))
	}
	if got := labelText(t, s.Node(kids[0])); got != "ok" {
		t.Errorf("sibling 0 Text = %q, want %q (not rolled back)", got, "ok")
	}
}

func TestApplyKindUpdateInPlace(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	root := s.Root().ID
	_ = rec.Apply(NewTree().WithChild(NewTreeOf(KindSprite)), root, s)
	before, _ := s.Children(root)

	// Same position, new kind, no typed patches: the sprite is kept.
	if err := rec.Apply(NewTree().WithChild(NewTreeOf(KindLabel)), root, s); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Children(root)
	if after[0] != before[0] {
		t.Error("update-in-place should keep the existing node")
	}
	if k, _ := s.NodeKind(after[0]); k != KindSprite {
		t.Errorf("kind = %q, want %q", k, KindSprite)
	}

	// Typed patches for the new kind fail.
	err := rec.Apply(NewTree().WithChild(label("x")), root, s)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("err = %v, want ErrTypeMismatch", err)
	}
}

func TestApplyKindRecreate(t *testing.T) {
	rec, s := newTestReconciler(Config{KindPolicy: KindRecreate})
	root := s.Root().ID
	_ = rec.Apply(NewTree().WithChildren(label("a"), NewTreeOf(KindSprite).WithChild(NewTree()), label("c")), root, s)
	before, _ := s.Children(root)

	tree := NewTree().WithChildren(label("a"), label("b"), label("c"))
	if err := rec.Apply(tree, root, s); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Children(root)
	if len(after) != 3 {
		t.Fatalf("children = %d, want 3", len(after))
	}
	if after[0] != before[0] || after[2] != before[2] {
		t.Error("unchanged kinds should be kept")
	}
	if after[1] == before[1] {
		t.Error("changed kind should be recreated")
	}
	if s.Node(before[1]) != nil {
		t.Error("old subtree should be removed")
	}
	if got := labelText(t, s.Node(after[1])); got != "b" {
		t.Errorf("Text = %q, want %q", got, "b")
	}
	st := rec.Stats()
	if st.Recreated != 1 || st.Updated != 2 {
		t.Errorf("Stats = %+v, want 1 recreated, 2 updated", st)
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}

// appendOnlyGraph hides Scene's InsertChild.
type appendOnlyGraph struct {
	LiveGraph
}

func TestApplyKindRecreateNeedsInserter(t *testing.T) {
	rec, s := newTestReconciler(Config{KindPolicy: KindRecreate})
	root := s.Root().ID
	g := appendOnlyGraph{s}
	_ = rec.Apply(NewTree().WithChild(NewTreeOf(KindSprite)), root, g)

	if err := rec.Apply(NewTree().WithChild(NewTreeOf(KindLabel)), root, g); err == nil {
		t.Error("expected error without ChildInserter")
	}
}

func TestApplyDebugMode(t *testing.T) {
	rec, s := newTestReconciler(Config{Debug: true, MaxDepth: 1})
	tree := NewTree().WithChild(NewTree().WithChild(NewTree()))
	if err := rec.Apply(tree, s.Root().ID, s); err != nil {
		t.Fatal(err)
	}
	if st := rec.Stats(); st.Created != 2 || st.Duration < 0 {
		t.Errorf("Stats = %+v, want 2 created", st)
	}
}

func TestApplyNilTreePanics(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil tree, got none")
		}
	}()
	_ = rec.Apply(nil, s.Root().ID, s)
}

func TestApplyDynamicPatches(t *testing.T) {
	rec, s := newTestReconciler(Config{})
	tree := NewTree().WithChild(
		NewTreeOf(KindSprite).WithPatch(SetField("Width", 32)).WithPatch(SetField("X", 5)),
	)
	if err := rec.Apply(tree, s.Root().ID, s); err != nil {
		t.Fatal(err)
	}
	sp, _ := BagOf[Sprite](s.Root().ChildAt(0))
	if sp.Width != 32 || sp.X != 5 {
		t.Errorf("sprite = %+v, want Width 32, X 5", *sp)
	}
}

func BenchmarkApply_1000Children_Steady(b *testing.B) {
	rec, s := newTestReconciler(Config{})
	tree := NewTree()
	for i := 0; i < 1000; i++ {
		x := float64(i)
		tree.WithChild(NewTreeOf(KindSprite).WithPatch(Set(func(sp *Sprite) { sp.X = x })))
	}
	_ = rec.Apply(tree, s.Root().ID, s)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = rec.Apply(tree, s.Root().ID, s)
	}
}
