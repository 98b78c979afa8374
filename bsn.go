package bsn

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Transform holds the local placement shared by the builtin bags. Embed it
// in a custom bag to make the bag tweenable with TweenPosition, TweenScale
// and TweenAlpha.
//
// The zero Transform has zero scale, zero alpha and is hidden. Custom bags
// should start from DefaultTransform in their registered defaults func.
type Transform struct {
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	Alpha    float64
	Visible  bool
}

func (t *Transform) transform() *Transform { return t }

// transformer is implemented by bags that embed Transform.
type transformer interface {
	transform() *Transform
}

// DefaultTransform returns a visible, opaque Transform at the origin with
// unit scale.
func DefaultTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1, Alpha: 1, Visible: true}
}

// Container is the bag of KindContainer: a group with no visual output.
type Container struct {
	Name string `yaml:"name,omitempty"`
}

// Sprite is the bag of KindSprite: a solid-color rectangle of Width x Height
// scaled by the transform.
type Sprite struct {
	Transform `yaml:",inline"`
	Width     float64
	Height    float64
	Color     Color
}

func (s *Sprite) tint() *Color { return &s.Color }

// Label is the bag of KindLabel: a line of text.
type Label struct {
	Transform `yaml:",inline"`
	Text      string
	Color     Color
}

func (l *Label) tint() *Color { return &l.Color }

// tinted is implemented by bags with a Color, making them usable with
// TweenColor.
type tinted interface {
	tint() *Color
}

// Builtin kinds registered by RegisterBuiltins.
const (
	KindSprite Kind = "sprite"
	KindLabel  Kind = "label"
)

// RegisterBuiltins registers KindSprite and KindLabel on r.
func RegisterBuiltins(r *Registry) {
	Register(r, KindSprite, func() Sprite {
		return Sprite{Transform: DefaultTransform(), Width: 1, Height: 1, Color: ColorWhite}
	})
	Register(r, KindLabel, func() Label {
		return Label{Transform: DefaultTransform(), Color: ColorWhite}
	})
}
