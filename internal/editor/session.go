// Package editor ties the scene collection, binding model, tool state
// machine and history manager into one editing session.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wower3/image-edit/internal/binding"
	"github.com/wower3/image-edit/internal/history"
	"github.com/wower3/image-edit/internal/scene"
	"github.com/wower3/image-edit/internal/tool"
	"github.com/wower3/image-edit/internal/typeid"
)

var (
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	ErrObjectNotFound     = errors.New("object not found")
)

// Options configures a session.
type Options struct {
	HistoryLimit   int
	CommitDebounce time.Duration
	NewID          func() string // defaults to typeid object IDs
}

// Session is a single editing session over one document. All mutation is
// serialized through one mutex: pointer and keyboard events, websocket
// messages, and the debounced commit timer are the only entrants, matching
// the cooperative single-threaded model of the interaction engine.
type Session struct {
	mu      sync.Mutex
	col     *scene.Collection
	binder  *binding.Binder
	machine *tool.Machine
	hist    *history.Manager

	newID func() string

	selection []string
	editingID string
}

// historyTarget adapts the session for the history manager, which calls it
// with the session lock already held.
type historyTarget struct{ s *Session }

func (t historyTarget) Serialize() (scene.Snapshot, error) { return t.s.col.Serialize() }
func (t historyTarget) Restore(snap scene.Snapshot) error  { return t.s.restoreLocked(snap) }

// NewSession creates an empty session and records the initial empty-document
// state as the history floor.
func NewSession(opts Options) *Session {
	newID := opts.NewID
	if newID == nil {
		newID = typeid.NewObjectID
	}

	s := &Session{
		col:    scene.NewCollection(),
		binder: binding.NewBinder(),
		newID:  newID,
	}
	s.machine = tool.NewMachine(s.col, s.binder, newID, tool.Hooks{
		Select:        s.selectLocked,
		EnterTextEdit: s.enterTextEditLocked,
		Commit:        func() { s.hist.RequestCommit() },
	})
	s.hist = history.NewManager(historyTarget{s}, &s.mu, opts.HistoryLimit, opts.CommitDebounce)
	if err := s.hist.Init(); err != nil {
		// An empty collection always serializes.
		slog.Error("init history", "error", err)
	}
	return s
}

// --- Tool selection and pointer events ---

// SetTool switches the active tool. Trigger pseudo-tools are validated and
// returned to the caller for external dispatch without touching tool state.
func (s *Session) SetTool(name string) (tool.Name, error) {
	n, err := tool.Parse(name)
	if err != nil {
		return "", err
	}
	if n.IsTrigger() {
		return n, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.machine.SetTool(n); err != nil {
		return "", err
	}
	return n, nil
}

// ActiveTool returns the current tool.
func (s *Session) ActiveTool() tool.Name {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Active()
}

// ToolState returns a copy of the machine's state.
func (s *Session) ToolState() tool.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// PointerDown feeds a pointer-down event to the tool machine.
func (s *Session) PointerDown(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.PointerDown(scene.Point{X: x, Y: y})
}

// PointerMove feeds a pointer-move event to the tool machine.
func (s *Session) PointerMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.PointerMove(scene.Point{X: x, Y: y})
}

// PointerUp feeds a pointer-up event to the tool machine, finalizing any
// in-progress construction.
func (s *Session) PointerUp(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.PointerUp(scene.Point{X: x, Y: y})
}

// SetStyle changes the style applied to newly constructed shapes.
func (s *Session) SetStyle(style scene.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetStyle(style)
}

// SetBubbleTailSize changes the tail size for subsequently created bubbles.
func (s *Session) SetBubbleTailSize(size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetTailSize(size)
}

// --- Selection and object mutation ---

func (s *Session) selectLocked(id string) {
	s.selection = []string{id}
}

// Select replaces the selection with the given object IDs. Unknown IDs are
// dropped; bound texts resolve to their container.
func (s *Session) Select(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []string
	for _, id := range ids {
		obj, ok := s.col.Get(id)
		if !ok {
			continue
		}
		if obj.IsBoundText() {
			if containerID, ok := s.binder.ContainerFor(id); ok {
				id = containerID
			}
		}
		kept = append(kept, id)
	}
	s.selection = kept
}

// Selection returns the selected object IDs.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selection))
	copy(out, s.selection)
	return out
}

// HitTest returns the topmost selectable object at the point, or "".
func (s *Session) HitTest(x, y float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj := s.col.TopmostAt(scene.Point{X: x, Y: y}); obj != nil {
		return obj.ID
	}
	return ""
}

// TransformObject applies partial transform changes (keys x, y, w, h, sx,
// sy, r) to an object and syncs any bound text within the same call. Used
// for select-tool drag, resize and rotate; the caller requests a commit when
// the interaction ends, or relies on the per-change debounce.
func (s *Session) TransformObject(id string, changes map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.col.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}

	// A bound text is never independently transformable: its transform is a
	// function of its container's. Retarget the change to the container and
	// let the sync rule place the text.
	if obj.IsBoundText() {
		if containerID, ok := s.binder.ContainerFor(id); ok {
			id = containerID
			if container, ok := s.col.Get(id); ok {
				obj = container
			}
		}
	}

	if v, ok := changes["x"]; ok {
		obj.X = v
	}
	if v, ok := changes["y"]; ok {
		obj.Y = v
	}
	if v, ok := changes["w"]; ok {
		obj.Width = v
	}
	if v, ok := changes["h"]; ok {
		obj.Height = v
	}
	if v, ok := changes["sx"]; ok {
		obj.ScaleX = v
	}
	if v, ok := changes["sy"]; ok {
		obj.ScaleY = v
	}
	if v, ok := changes["r"]; ok {
		obj.Rotation = v
	}

	// Bound text follows its container within the same frame.
	s.binder.Sync(s.col, id)
	s.hist.RequestCommit()
	return nil
}

// DeleteSelection removes the selected objects, cascading over bound pairs,
// and commits immediately so each delete is individually undoable.
func (s *Session) DeleteSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selection) == 0 {
		return nil
	}
	for _, id := range s.selection {
		s.binder.CascadeRemove(s.col, id)
	}
	s.selection = nil
	return s.hist.CommitNow()
}

// DeleteObject removes one object (cascading) and commits.
func (s *Session) DeleteObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.binder.CascadeRemove(s.col, id)
	if len(removed) == 0 {
		return nil
	}
	s.selection = withoutIDs(s.selection, removed)
	return s.hist.CommitNow()
}

func withoutIDs(ids []string, removed []string) []string {
	gone := make(map[string]bool, len(removed))
	for _, id := range removed {
		gone[id] = true
	}
	var kept []string
	for _, id := range ids {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

// --- Text editing ---

func (s *Session) enterTextEditLocked(id string, selectAll bool) {
	obj, ok := s.col.Get(id)
	if !ok || !obj.IsTextKind() {
		return
	}
	s.editingID = id
	if obj.Placeholder {
		// Placeholder content is display-only; clear it and flip to the
		// normal style so the user's input starts clean.
		obj.Text = ""
		obj.Placeholder = false
	}
	_ = selectAll // selection range is owned by the text editor surface
}

// EnterTextEdit opens text editing on the object. Entering with real content
// present leaves the content untouched.
func (s *Session) EnterTextEdit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enterTextEditLocked(id, false)
}

// ExitTextEdit closes text editing with the final content. Empty content
// restores the placeholder. The exit always commits, and a bound text hands
// selection back to its container.
func (s *Session) ExitTextEdit(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.col.Get(id)
	if !ok || !obj.IsTextKind() {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}

	obj.Text = content
	obj.Placeholder = false
	if content == "" {
		obj.Text = tool.PlaceholderText
		obj.Placeholder = true
	}
	s.editingID = ""

	if containerID, ok := s.binder.ContainerFor(id); ok {
		s.selection = []string{containerID}
	}
	return s.hist.CommitNow()
}

// EditingObject returns the ID of the object in text-edit mode, or "".
func (s *Session) EditingObject() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// --- Free drawing, images, crop ---

// CompleteStroke commits a finished free-drawing stroke as a freeform path.
// Eraser strokes carry the background color as their stroke style; capture
// itself happens on the rendering surface.
func (s *Session) CompleteStroke(points []scene.Point, stroke string, width float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(points) < 2 {
		return fmt.Errorf("%w: stroke needs at least two points", ErrDegenerateGeometry)
	}

	obj := &scene.Object{
		ID:         s.newID(),
		Kind:       scene.KindFreeform,
		ScaleX:     1,
		ScaleY:     1,
		Points:     points,
		Style:      scene.Style{Stroke: stroke, StrokeWidth: width, Opacity: 1},
		Selectable: true,
	}
	if err := s.col.Add(obj); err != nil {
		return err
	}
	return s.hist.CommitNow()
}

// PlaceImage inserts an uploaded image asset onto the canvas and commits.
func (s *Session) PlaceImage(assetID string, x, y, w, h float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("%w: image size %gx%g", ErrDegenerateGeometry, w, h)
	}

	obj := &scene.Object{
		ID:         s.newID(),
		Kind:       scene.KindImage,
		X:          x,
		Y:          y,
		Width:      w,
		Height:     h,
		ScaleX:     1,
		ScaleY:     1,
		Style:      scene.Style{Opacity: 1},
		AssetID:    assetID,
		Selectable: true,
	}
	if err := s.col.Add(obj); err != nil {
		return "", err
	}
	if err := s.hist.CommitNow(); err != nil {
		return "", err
	}
	return obj.ID, nil
}

// CompleteCrop shrinks an image object to the crop region and commits
// immediately: crop completions must be individually undoable even when
// rapid. A region outside the image bounds aborts with the prior state
// unchanged.
func (s *Session) CompleteCrop(id string, region scene.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.col.Get(id)
	if !ok || obj.Kind != scene.KindImage {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if region.IsEmpty() {
		return fmt.Errorf("%w: empty crop region", ErrDegenerateGeometry)
	}
	bounds := obj.Bounds()
	if region.X < bounds.X || region.Y < bounds.Y ||
		region.X+region.Width > bounds.X+bounds.Width ||
		region.Y+region.Height > bounds.Y+bounds.Height {
		return fmt.Errorf("%w: crop region outside image bounds", ErrDegenerateGeometry)
	}

	obj.X = region.X
	obj.Y = region.Y
	obj.Width = region.Width / obj.ScaleX
	obj.Height = region.Height / obj.ScaleY
	return s.hist.CommitNow()
}

// --- History ---

// Undo restores the previous snapshot. A no-op at the stack floor.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Undo()
}

// Redo re-applies the most recently undone snapshot.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Redo()
}

// RequestCommit schedules a debounced history commit.
func (s *Session) RequestCommit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.RequestCommit()
}

// CommitNow commits immediately, bypassing the debounce.
func (s *Session) CommitNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CommitNow()
}

// CanUndo reports whether an undo would change state.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether a redo would change state.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// restoreLocked replaces the collection from a snapshot and re-derives
// everything identity-dependent: selectability, bindings, and tool state.
// A decode failure leaves the session untouched.
func (s *Session) restoreLocked(snap scene.Snapshot) error {
	objs, err := scene.DecodeSnapshot(snap)
	if err != nil {
		return err
	}

	s.selection = nil
	s.editingID = ""
	if err := s.col.Replace(objs); err != nil {
		return err
	}

	// Restored objects are fresh instances with no behavior attached.
	// Selectability comes back on for everything; Relink then re-derives
	// the bound pairs from role tags and turns it back off for bound texts.
	for _, obj := range objs {
		obj.Selectable = true
	}
	s.binder.Relink(objs)
	s.machine.Reset()
	return nil
}

// --- Document lifecycle ---

// Snapshot serializes the current scene.
func (s *Session) Snapshot() (scene.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col.Serialize()
}

// LoadSnapshot replaces the scene with a previously serialized document and
// resets history to it as the sole entry. A corrupt snapshot is a
// recoverable failure: the session and its history are left unchanged.
func (s *Session) LoadSnapshot(snap scene.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.restoreLocked(snap); err != nil {
		return err
	}
	return s.hist.Clear()
}

// NewDocument clears the scene and resets history.
func (s *Session) NewDocument() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.col.Replace(nil); err != nil {
		return err
	}
	s.selection = nil
	s.editingID = ""
	s.binder.Relink(nil)
	s.machine.Reset()
	return s.hist.Clear()
}

// --- Queries ---

// ObjectCount returns the number of objects in the scene.
func (s *Session) ObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col.Len()
}

// Object returns a copy of the object with the given ID.
func (s *Session) Object(id string) (scene.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.col.Get(id)
	if !ok {
		return scene.Object{}, false
	}
	return *obj, true
}

// BoundTextFor returns the bound text ID for a container, if any.
func (s *Session) BoundTextFor(containerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binder.TextFor(containerID)
}

// RenderJSON compiles the scene to draw commands for the rendering surface.
func (s *Session) RenderJSON() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := scene.DrawCommandsToJSON(scene.CompileDrawCommands(s.col))
	if err != nil {
		slog.Error("compile draw commands", "error", err)
		return "[]"
	}
	return out
}
