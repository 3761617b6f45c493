//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/wower3/image-edit/internal/editor"
	"github.com/wower3/image-edit/internal/scene"
)

var session *editor.Session

func main() {
	session = editor.NewSession(editor.Options{})

	// Create the editor API object
	imageEditEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	imageEditEngine.Set("loadScene", js.FuncOf(loadScene))
	imageEditEngine.Set("newDocument", js.FuncOf(newDocument))
	imageEditEngine.Set("setTool", js.FuncOf(setTool))
	imageEditEngine.Set("setStyle", js.FuncOf(setStyle))
	imageEditEngine.Set("setBubbleTailSize", js.FuncOf(setBubbleTailSize))
	imageEditEngine.Set("pointerDown", js.FuncOf(pointerDown))
	imageEditEngine.Set("pointerMove", js.FuncOf(pointerMove))
	imageEditEngine.Set("pointerUp", js.FuncOf(pointerUp))
	imageEditEngine.Set("setSelection", js.FuncOf(setSelection))
	imageEditEngine.Set("transformObject", js.FuncOf(transformObject))
	imageEditEngine.Set("deleteSelection", js.FuncOf(deleteSelection))
	imageEditEngine.Set("enterTextEdit", js.FuncOf(enterTextEdit))
	imageEditEngine.Set("exitTextEdit", js.FuncOf(exitTextEdit))
	imageEditEngine.Set("completeStroke", js.FuncOf(completeStroke))
	imageEditEngine.Set("placeImage", js.FuncOf(placeImage))
	imageEditEngine.Set("completeCrop", js.FuncOf(completeCrop))
	imageEditEngine.Set("undo", js.FuncOf(undo))
	imageEditEngine.Set("redo", js.FuncOf(redo))
	imageEditEngine.Set("commitNow", js.FuncOf(commitNow))

	// --- Queries (frontend ← backend) ---
	imageEditEngine.Set("render", js.FuncOf(render))
	imageEditEngine.Set("hitTest", js.FuncOf(hitTest))
	imageEditEngine.Set("getScene", js.FuncOf(getScene))
	imageEditEngine.Set("getSelection", js.FuncOf(getSelection))
	imageEditEngine.Set("getActiveTool", js.FuncOf(getActiveTool))
	imageEditEngine.Set("canUndo", js.FuncOf(canUndo))
	imageEditEngine.Set("canRedo", js.FuncOf(canRedo))

	// Register on global scope
	js.Global().Set("imageEditEngine", imageEditEngine)

	// Signal that WASM is ready
	js.Global().Set("imageEditWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing scene JSON"})
	}

	if err := session.LoadSnapshot(scene.Snapshot(args[0].String())); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func newDocument(this js.Value, args []js.Value) interface{} {
	if err := session.NewDocument(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing tool name"})
	}

	name, err := session.SetTool(args[0].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	// Trigger tools do not change the active tool; the frontend opens the
	// relevant dialog instead.
	return js.ValueOf(map[string]interface{}{
		"ok":      true,
		"trigger": name.IsTrigger(),
	})
}

func setStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var style scene.Style
	if err := json.Unmarshal([]byte(args[0].String()), &style); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	session.SetStyle(style)
	return nil
}

func setBubbleTailSize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	session.SetBubbleTailSize(args[0].Float())
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	session.PointerDown(args[0].Float(), args[1].Float())
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	session.PointerMove(args[0].Float(), args[1].Float())
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	if err := session.PointerUp(args[0].Float(), args[1].Float()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		session.Select(nil)
		return nil
	}

	arr := args[0]
	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	session.Select(ids)
	return nil
}

func transformObject(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "missing object ID or changes"})
	}

	var changes map[string]float64
	if err := json.Unmarshal([]byte(args[1].String()), &changes); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	if err := session.TransformObject(args[0].String(), changes); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func deleteSelection(this js.Value, args []js.Value) interface{} {
	if err := session.DeleteSelection(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func enterTextEdit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	session.EnterTextEdit(args[0].String())
	return nil
}

func exitTextEdit(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "missing object ID or content"})
	}
	if err := session.ExitTextEdit(args[0].String(), args[1].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func completeStroke(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "missing stroke arguments"})
	}

	var points []scene.Point
	if err := json.Unmarshal([]byte(args[0].String()), &points); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	if err := session.CompleteStroke(points, args[1].String(), args[2].Float()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func placeImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return js.ValueOf(map[string]interface{}{"error": "missing image arguments"})
	}

	id, err := session.PlaceImage(args[0].String(), args[1].Float(), args[2].Float(), args[3].Float(), args[4].Float())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": id})
}

func completeCrop(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return js.ValueOf(map[string]interface{}{"error": "missing crop arguments"})
	}

	region := scene.Rect{
		X:      args[1].Float(),
		Y:      args[2].Float(),
		Width:  args[3].Float(),
		Height: args[4].Float(),
	}
	if err := session.CompleteCrop(args[0].String(), region); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func undo(this js.Value, args []js.Value) interface{} {
	if err := session.Undo(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func redo(this js.Value, args []js.Value) interface{} {
	if err := session.Redo(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func commitNow(this js.Value, args []js.Value) interface{} {
	if err := session.CommitNow(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(session.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(session.HitTest(args[0].Float(), args[1].Float()))
}

func getScene(this js.Value, args []js.Value) interface{} {
	snap, err := session.Snapshot()
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(string(snap))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	ids := session.Selection()
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func getActiveTool(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(session.ActiveTool()))
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(session.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(session.CanRedo())
}
