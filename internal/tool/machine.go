package tool

import (
	"errors"
	"log/slog"

	"github.com/wower3/image-edit/internal/binding"
	"github.com/wower3/image-edit/internal/scene"
)

// Minimum drag sizes below which a finalized shape snaps up to its default
// size rather than being discarded.
const (
	MinShapeWidth   = 60.0
	MinShapeHeight  = 40.0
	MinTextWidth    = 80.0
	MinBubbleWidth  = 100.0
	MinBubbleHeight = 60.0

	DefaultShapeWidth   = 100.0
	DefaultShapeHeight  = 80.0
	DefaultTextWidth    = 200.0
	DefaultTextHeight   = 48.0
	DefaultBubbleWidth  = 160.0
	DefaultBubbleHeight = 120.0

	DefaultTailSize = 24.0

	// Drags shorter than this produce no line or arrow.
	minLineLength = 8.0
)

// PlaceholderText is the muted example content a text object displays until
// the user supplies real content. It is display-only and never serialized as
// user text; only the placeholder flag is persisted.
const PlaceholderText = "Add text"

var ErrDegenerateDrag = errors.New("drag too small to produce a shape")

// Hooks are the machine's callbacks into the owning session.
type Hooks struct {
	// Select replaces the current selection with the given object.
	Select func(id string)
	// EnterTextEdit opens the text editor on the object; selectAll puts the
	// whole content under selection so the first keystroke replaces it.
	EnterTextEdit func(id string, selectAll bool)
	// Commit requests a history commit for a finalized construction.
	Commit func()
}

// State is the single active tool state. It is owned and mutated only by the
// machine and is never part of a snapshot.
type State struct {
	Active  Name
	Drawing bool
	DraftID string
	Origin  scene.Point
}

// Machine constructs and finalizes primitives from pointer events. All
// methods run under the owning session's lock.
type Machine struct {
	col    *scene.Collection
	binder *binding.Binder
	newID  func() string
	hooks  Hooks

	active   Name
	draft    *scene.Object
	origin   scene.Point
	drawing  bool
	panning  bool
	panStart scene.Point
	viewport scene.Point

	style    scene.Style
	tailSize float64
}

// NewMachine creates a machine over the given collection and binder. newID
// mints object IDs.
func NewMachine(col *scene.Collection, binder *binding.Binder, newID func() string, hooks Hooks) *Machine {
	return &Machine{
		col:    col,
		binder: binder,
		newID:  newID,
		hooks:  hooks,
		active: Select,
		style: scene.Style{
			Fill:        "#4f8ef7",
			Stroke:      "#1f2d3d",
			StrokeWidth: 2,
			Opacity:     1,
		},
		tailSize: DefaultTailSize,
	}
}

// State returns a copy of the current tool state.
func (m *Machine) State() State {
	s := State{Active: m.active, Drawing: m.drawing, Origin: m.origin}
	if m.draft != nil {
		s.DraftID = m.draft.ID
	}
	return s
}

// Active returns the current tool.
func (m *Machine) Active() Name {
	return m.active
}

// Viewport returns the accumulated pan translation.
func (m *Machine) Viewport() scene.Point {
	return m.viewport
}

// SetStyle sets the style applied to newly constructed shapes.
func (m *Machine) SetStyle(s scene.Style) {
	m.style = s
}

// SetTailSize sets the bubble tail size for subsequently created bubbles.
func (m *Machine) SetTailSize(size float64) {
	if size > 0 {
		m.tailSize = size
	}
}

// SetTool switches the active tool. An in-progress draft is abandoned.
// Trigger pseudo-tools are accepted but leave the drawing state unchanged;
// the session dispatches their external flow.
func (m *Machine) SetTool(n Name) error {
	if !validNames[n] {
		return errors.New("unknown tool")
	}
	if n.IsTrigger() {
		return nil
	}
	m.abandonDraft()
	m.active = n
	return nil
}

// Reset returns the machine to the select tool with no draft. Called after
// every snapshot restore.
func (m *Machine) Reset() {
	m.abandonDraft()
	m.active = Select
	m.panning = false
}

func (m *Machine) abandonDraft() {
	if m.draft != nil {
		m.col.Remove(m.draft.ID)
		m.draft = nil
	}
	m.drawing = false
}

// PointerDown begins an interaction at p.
func (m *Machine) PointerDown(p scene.Point) {
	switch {
	case m.active == Pan:
		m.panning = true
		m.panStart = p

	case m.active == Select, m.active.IsFreeDraw():
		// Selection delegates to the session via hit-test; free drawing is
		// captured natively by the rendering surface.
		if hit := m.col.TopmostAt(p); hit != nil && m.active == Select {
			m.hooks.Select(hit.ID)
		}

	case m.active.IsShapeTool():
		// Clicking an existing object re-targets to selecting it; a new
		// shape only begins on empty canvas.
		if hit := m.col.TopmostAt(p); hit != nil {
			m.hooks.Select(hit.ID)
			return
		}
		m.beginShape(p)
	}
}

// beginShape inserts a zero-size draft so the primitive is visible while the
// drag is still in progress.
func (m *Machine) beginShape(p scene.Point) {
	kind := m.active.ShapeKind()
	obj := &scene.Object{
		ID:         m.newID(),
		Kind:       kind,
		X:          p.X,
		Y:          p.Y,
		ScaleX:     1,
		ScaleY:     1,
		Style:      m.style,
		Selectable: true,
	}
	switch kind {
	case scene.KindLine, scene.KindArrow:
		obj.Points = []scene.Point{p, p}
		obj.X, obj.Y = 0, 0
	case scene.KindTextbox:
		obj.Text = PlaceholderText
		obj.Placeholder = true
	case scene.KindBubblePath:
		obj.TailSize = m.tailSize
	}

	if err := m.col.Add(obj); err != nil {
		slog.Error("insert draft", "error", err, "kind", kind)
		return
	}
	m.draft = obj
	m.origin = p
	m.drawing = true
}

// PointerMove updates the in-progress interaction.
func (m *Machine) PointerMove(p scene.Point) {
	if m.panning {
		m.viewport.X += p.X - m.panStart.X
		m.viewport.Y += p.Y - m.panStart.Y
		m.panStart = p
		return
	}
	if !m.drawing || m.draft == nil {
		return
	}

	switch m.draft.Kind {
	case scene.KindLine, scene.KindArrow:
		// The arrowhead is derived from the line angle, so arrow geometry is
		// recreated from the endpoints on every move.
		m.draft.Points = []scene.Point{m.origin, p}
	default:
		// Normalize negative extents by flipping the origin corner, so the
		// dragged corner tracks the pointer and size stays non-negative.
		m.draft.X = min(m.origin.X, p.X)
		m.draft.Y = min(m.origin.Y, p.Y)
		m.draft.Width = abs(p.X - m.origin.X)
		m.draft.Height = abs(p.Y - m.origin.Y)
	}
}

// PointerUp finalizes the interaction. For shape construction it applies
// minimum-size snapping, creates bound placeholder texts for container
// kinds, and triggers a history commit.
func (m *Machine) PointerUp(p scene.Point) error {
	if m.panning {
		m.panning = false
		return nil
	}
	if !m.drawing || m.draft == nil {
		return nil
	}

	m.PointerMove(p)
	draft := m.draft
	m.draft = nil
	m.drawing = false

	switch draft.Kind {
	case scene.KindLine, scene.KindArrow:
		if m.origin.DistanceTo(p) < minLineLength {
			m.col.Remove(draft.ID)
			return ErrDegenerateDrag
		}

	case scene.KindRect, scene.KindEllipse, scene.KindTriangle:
		if draft.Width < MinShapeWidth || draft.Height < MinShapeHeight {
			draft.Width = DefaultShapeWidth
			draft.Height = DefaultShapeHeight
		}
		m.attachBoundText(draft)

	case scene.KindTextbox:
		if draft.Width < MinTextWidth {
			draft.Width = DefaultTextWidth
			draft.Height = DefaultTextHeight
		}
		if draft.Height <= 0 {
			draft.Height = DefaultTextHeight
		}

	case scene.KindBubblePath:
		if draft.Width < MinBubbleWidth || draft.Height < MinBubbleHeight {
			draft.Width = DefaultBubbleWidth
			draft.Height = DefaultBubbleHeight
		}
		m.attachBoundText(draft)
	}

	m.hooks.Select(draft.ID)
	switch draft.Kind {
	case scene.KindTextbox:
		// Full selection so the first keystroke replaces the placeholder.
		m.hooks.EnterTextEdit(draft.ID, true)
	case scene.KindBubblePath:
		if textID, ok := m.binder.TextFor(draft.ID); ok {
			m.hooks.EnterTextEdit(textID, false)
		}
	}

	m.hooks.Commit()
	return nil
}

// attachBoundText creates the placeholder text slaved to the container and
// binds the pair. The text is not independently selectable; the binder's
// sync rule places it, including the raised position above a bubble tail.
func (m *Machine) attachBoundText(container *scene.Object) {
	text := &scene.Object{
		ID:          m.newID(),
		Kind:        scene.KindTextbox,
		Width:       container.Width,
		Height:      DefaultTextHeight,
		ScaleX:      1,
		ScaleY:      1,
		Style:       scene.Style{Fill: m.style.Stroke, Opacity: 1},
		Text:        PlaceholderText,
		Placeholder: true,
	}
	if err := m.col.Add(text); err != nil {
		slog.Error("insert bound text", "error", err, "container", container.ID)
		return
	}
	m.binder.Bind(container, text)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
