package collab

import (
	"encoding/json"
	"testing"
)

func TestPresenceUpdateStampsSharedTool(t *testing.T) {
	pm := NewPresenceManager()

	// The client claims a private tool; the room's shared tool wins.
	pm.Update("user_1", &PresencePayload{
		Cursor:      &CursorPos{X: 10, Y: 20},
		Tool:        "pan",
		DisplayName: "One",
	}, "rect")

	all := pm.Snapshot()
	p, ok := all["user_1"]
	if !ok {
		t.Fatal("presence not recorded")
	}
	if p.Tool != "rect" {
		t.Errorf("tool = %q, want shared tool rect", p.Tool)
	}
	if p.Cursor == nil || p.Cursor.X != 10 {
		t.Errorf("cursor = %+v, want the client's position kept", p.Cursor)
	}
}

func TestPresenceRemove(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update("user_1", &PresencePayload{DisplayName: "One"}, "select")
	pm.Remove("user_1")

	if len(pm.Snapshot()) != 0 {
		t.Error("presence survived Remove")
	}
}

func TestPresenceStateMessage(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update("user_1", &PresencePayload{DisplayName: "One"}, "select")
	pm.Update("user_2", &PresencePayload{DisplayName: "Two"}, "select")

	msg := pm.StateMessage()
	if msg == nil || msg.Type != TypePresenceState {
		t.Fatalf("state message = %+v", msg)
	}

	var state PresenceStatePayload
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if len(state.Presences) != 2 {
		t.Fatalf("%d presences, want 2", len(state.Presences))
	}
}
