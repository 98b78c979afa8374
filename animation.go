package bsn

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields of a node's bag simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenAlpha, TweenColor) and call Update(dt) each frame. If the target node
// is disposed, the group stops immediately.
//
// There is no global animation manager; users call Update themselves. A
// reconciliation pass that patches the same fields wins over the tween for
// that frame.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target node has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

func newTweenGroup(node *Node, fields []*float64, to []float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: len(fields), target: node}
	for i, f := range fields {
		g.tweens[i] = gween.New(float32(*f), float32(to[i]), duration, fn)
		g.fields[i] = f
	}
	return g
}

func nodeTransform(node *Node) (*Transform, error) {
	t := bagTransform(node)
	if t == nil {
		return nil, fmt.Errorf("%w: %T has no Transform", ErrTypeMismatch, node.bag)
	}
	return t, nil
}

// TweenPosition creates a TweenGroup that animates the bag's X and Y to the
// given target coordinates over the specified duration using the easing
// function. The bag must embed Transform.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	t, err := nodeTransform(node)
	if err != nil {
		return nil, err
	}
	return newTweenGroup(node, []*float64{&t.X, &t.Y}, []float64{toX, toY}, duration, fn), nil
}

// TweenScale creates a TweenGroup that animates the bag's ScaleX and ScaleY.
// The bag must embed Transform.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	t, err := nodeTransform(node)
	if err != nil {
		return nil, err
	}
	return newTweenGroup(node, []*float64{&t.ScaleX, &t.ScaleY}, []float64{toSX, toSY}, duration, fn), nil
}

// TweenAlpha creates a TweenGroup that animates the bag's Alpha.
// The bag must embed Transform.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	t, err := nodeTransform(node)
	if err != nil {
		return nil, err
	}
	return newTweenGroup(node, []*float64{&t.Alpha}, []float64{to}, duration, fn), nil
}

// TweenColor creates a TweenGroup that animates all four components of the
// bag's Color. The bag must be a Sprite or Label.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	tb, ok := node.bag.(tinted)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no Color", ErrTypeMismatch, node.bag)
	}
	c := tb.tint()
	return newTweenGroup(node,
		[]*float64{&c.R, &c.G, &c.B, &c.A},
		[]float64{to.R, to.G, to.B, to.A},
		duration, fn), nil
}
