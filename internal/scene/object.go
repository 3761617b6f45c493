package scene

// Kind identifies the primitive type of an object.
type Kind string

const (
	KindRect       Kind = "rect"
	KindEllipse    Kind = "ellipse"
	KindTriangle   Kind = "triangle"
	KindLine       Kind = "line"
	KindArrow      Kind = "arrow"
	KindFreeform   Kind = "freeform-path"
	KindTextbox    Kind = "textbox"
	KindBubblePath Kind = "bubble-path"
	KindImage      Kind = "image"
)

// ContainerRole tags an object that can own a bound text.
type ContainerRole string

const (
	ContainerPlain ContainerRole = "plain"
	ContainerBound ContainerRole = "boundContainer"
)

// TextRole tags a text object's relationship to a container.
type TextRole string

const (
	TextNone  TextRole = "none"
	TextBound TextRole = "boundText"
)

// Style holds the paint attributes of an object.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity"`
}

// Object is a single primitive on the canvas.
//
// Identity is stable only within one in-memory session: snapshot restores
// produce fresh instances with fresh behavior, carrying only the serialized
// attributes below. Cross-object relationships are never stored here — only
// the role tags, from which bindings are re-derived after every restore.
type Object struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Geometry. X/Y is the top-left corner for bounded kinds; line, arrow
	// and freeform geometry lives in Points and X/Y acts as an offset.
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	ScaleX   float64 `json:"sx"`
	ScaleY   float64 `json:"sy"`
	Rotation float64 `json:"r"`
	Points   []Point `json:"points,omitempty"`

	Style Style `json:"style"`

	// Role tags drive post-restore relinking.
	ContainerRole ContainerRole `json:"containerRole,omitempty"`
	TextRole      TextRole      `json:"textRole,omitempty"`

	// Text content. Placeholder marks muted example content that is not
	// user input; the flag is serialized so a restore can tell an
	// intentionally empty text from an untouched one.
	Text        string `json:"text,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`

	// Bubble tail size in scene units. Only meaningful for bubble-path.
	TailSize float64 `json:"tailSize,omitempty"`

	// Image asset reference. Only meaningful for image objects.
	AssetID string `json:"assetId,omitempty"`

	// Selectable is cleared for bound texts, which are only reachable
	// through their container's interaction.
	Selectable bool `json:"selectable"`
}

// Bounds returns the object's axis-aligned bounding box with scale applied.
func (o *Object) Bounds() Rect {
	if len(o.Points) > 0 {
		first := true
		var minX, minY, maxX, maxY float64
		for _, p := range o.Points {
			x := o.X + p.X*o.ScaleX
			y := o.Y + p.Y*o.ScaleY
			if first {
				minX, maxX = x, x
				minY, maxY = y, y
				first = false
			} else {
				minX = min(minX, x)
				maxX = max(maxX, x)
				minY = min(minY, y)
				maxY = max(maxY, y)
			}
		}
		return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	}
	return Rect{X: o.X, Y: o.Y, Width: o.Width * o.ScaleX, Height: o.Height * o.ScaleY}
}

// Center returns the geometric center of the object.
func (o *Object) Center() Point {
	return o.Bounds().Center()
}

// SetCenter moves the object so its geometric center lands on p.
func (o *Object) SetCenter(p Point) {
	c := o.Center()
	o.X += p.X - c.X
	o.Y += p.Y - c.Y
}

// IsBoundContainer reports whether the object owns a bound text.
func (o *Object) IsBoundContainer() bool {
	return o.ContainerRole == ContainerBound
}

// IsBoundText reports whether the object is slaved to a container.
func (o *Object) IsBoundText() bool {
	return o.TextRole == TextBound
}

// IsTextKind reports whether the object displays editable text.
func (o *Object) IsTextKind() bool {
	return o.Kind == KindTextbox
}
