package collab

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/wower3/image-edit/internal/editor"
)

func newTestRoomSession() *editor.Session {
	return editor.NewSession(editor.Options{CommitDebounce: 5 * time.Millisecond})
}

func mustPayload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func edit(t *testing.T, session *editor.Session, client *Client, msgType string, payload interface{}) (bool, error) {
	t.Helper()
	return applyEdit(session, client, &Message{
		Type:    msgType,
		Payload: mustPayload(t, payload),
	})
}

func TestApplyEditShapeFlow(t *testing.T) {
	session := newTestRoomSession()
	client := NewClient(nil, nil, "user_1", "Test", "doc_1", "client-1")

	if _, err := edit(t, session, client, TypeToolSet, ToolSetPayload{Name: "rect"}); err != nil {
		t.Fatalf("tool.set: %v", err)
	}
	if _, err := edit(t, session, client, TypePointerDown, PointerPayload{X: 10, Y: 10}); err != nil {
		t.Fatalf("pointer.down: %v", err)
	}
	if _, err := edit(t, session, client, TypePointerMove, PointerPayload{X: 200, Y: 150}); err != nil {
		t.Fatalf("pointer.move: %v", err)
	}
	changed, err := edit(t, session, client, TypePointerUp, PointerPayload{X: 200, Y: 150})
	if err != nil {
		t.Fatalf("pointer.up: %v", err)
	}
	if !changed {
		t.Fatal("pointer.up did not report a scene change")
	}

	if session.ObjectCount() != 2 {
		t.Fatalf("%d objects, want shape + bound text", session.ObjectCount())
	}
}

func TestApplyEditDegenerateDragStillSyncs(t *testing.T) {
	session := newTestRoomSession()
	client := NewClient(nil, nil, "user_1", "Test", "doc_1", "client-1")

	edit(t, session, client, TypeToolSet, ToolSetPayload{Name: "line"})
	edit(t, session, client, TypePointerDown, PointerPayload{X: 10, Y: 10})

	// A too-short line errors, but the aborted draft already changed the
	// scene clients saw, so a resync is still needed.
	changed, err := edit(t, session, client, TypePointerUp, PointerPayload{X: 12, Y: 11})
	if err == nil {
		t.Fatal("expected degenerate drag error")
	}
	if !changed {
		t.Fatal("degenerate drag must still request a sync")
	}
	if session.ObjectCount() != 0 {
		t.Fatalf("%d objects after degenerate drag, want 0", session.ObjectCount())
	}
}

func TestApplyEditTriggerToolRepliesToSender(t *testing.T) {
	session := newTestRoomSession()
	client := NewClient(nil, nil, "user_1", "Test", "doc_1", "client-1")

	changed, err := edit(t, session, client, TypeToolSet, ToolSetPayload{Name: "image-import-trigger"})
	if err != nil {
		t.Fatalf("tool.set trigger: %v", err)
	}
	if changed {
		t.Error("trigger tool must not change the scene")
	}

	select {
	case data := <-clientSendChannel(client):
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal reply: %v", err)
		}
		if msg.Type != TypeToolTrigger {
			t.Errorf("reply type = %q, want %q", msg.Type, TypeToolTrigger)
		}
	default:
		t.Fatal("no trigger reply sent to the requesting client")
	}
}

func TestApplyEditHistory(t *testing.T) {
	session := newTestRoomSession()
	client := NewClient(nil, nil, "user_1", "Test", "doc_1", "client-1")

	edit(t, session, client, TypeToolSet, ToolSetPayload{Name: "rect"})
	edit(t, session, client, TypePointerDown, PointerPayload{X: 10, Y: 10})
	edit(t, session, client, TypePointerUp, PointerPayload{X: 200, Y: 150})
	time.Sleep(30 * time.Millisecond) // let the debounced commit land

	if _, err := edit(t, session, client, TypeHistoryUndo, struct{}{}); err != nil {
		t.Fatalf("history.undo: %v", err)
	}
	if session.ObjectCount() != 0 {
		t.Fatalf("%d objects after undo, want 0", session.ObjectCount())
	}

	if _, err := edit(t, session, client, TypeHistoryRedo, struct{}{}); err != nil {
		t.Fatalf("history.redo: %v", err)
	}
	if session.ObjectCount() != 2 {
		t.Fatalf("%d objects after redo, want 2", session.ObjectCount())
	}
}

func TestApplyEditRejectsBadInput(t *testing.T) {
	session := newTestRoomSession()
	client := NewClient(nil, nil, "user_1", "Test", "doc_1", "client-1")

	if _, err := applyEdit(session, client, &Message{Type: "no.such.type"}); err == nil {
		t.Fatal("expected error for unknown message type")
	}
	if _, err := applyEdit(session, client, &Message{
		Type:    TypePointerDown,
		Payload: json.RawMessage(`{broken`),
	}); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := edit(t, session, client, TypeToolSet, ToolSetPayload{Name: "lasso"}); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

// clientSendChannel exposes the outbound buffer for assertions.
func clientSendChannel(c *Client) chan []byte {
	return c.send
}
