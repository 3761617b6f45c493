package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wower3/image-edit/internal/editor"
	"github.com/wower3/image-edit/internal/scene"
)

// handleEdit applies an editing message to the room's session and broadcasts
// the resulting scene to every client in the room. Degenerate-input and
// serialization failures go back to the sender only; the scene is left in
// its prior consistent state.
func (h *Hub) handleEdit(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.DocumentID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	changed, err := applyEdit(room.session, sender, msg)
	if err != nil {
		// The error goes to the sender only. A rejected edit can still have
		// changed the scene peers saw (an aborted draft), so the sync below
		// must not be skipped.
		h.sendError(sender, err)
	}
	if !changed {
		return
	}

	h.mu.Lock()
	room.dirty = true
	h.mu.Unlock()

	if sync := h.sceneSyncMessage(room); sync != nil {
		h.broadcastToRoom(sender.DocumentID, sync, "")
	}
}

// applyEdit dispatches one editing message. It reports whether the scene may
// have changed and therefore needs a sync broadcast.
func applyEdit(session *editor.Session, sender *Client, msg *Message) (bool, error) {
	switch msg.Type {
	case TypeToolSet:
		var p ToolSetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid tool payload: %w", err)
		}
		name, err := session.SetTool(p.Name)
		if err != nil {
			return false, err
		}
		if name.IsTrigger() {
			payload, _ := json.Marshal(ToolTriggerPayload{Name: string(name)})
			sender.Send(&Message{Type: TypeToolTrigger, Payload: payload})
			return false, nil
		}
		return false, nil

	case TypePointerDown:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid pointer payload: %w", err)
		}
		session.PointerDown(p.X, p.Y)
		return true, nil

	case TypePointerMove:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid pointer payload: %w", err)
		}
		session.PointerMove(p.X, p.Y)
		return true, nil

	case TypePointerUp:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid pointer payload: %w", err)
		}
		if err := session.PointerUp(p.X, p.Y); err != nil {
			// Degenerate drags abort the construction but the scene is
			// already back in its prior state, so clients still resync.
			return true, err
		}
		return true, nil

	case TypeObjectTransform:
		var p TransformPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid transform payload: %w", err)
		}
		if err := session.TransformObject(p.ObjectID, p.Changes); err != nil {
			return false, err
		}
		return true, nil

	case TypeObjectDelete:
		var p ObjectDeletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid delete payload: %w", err)
		}
		if err := session.DeleteObject(p.ObjectID); err != nil {
			return false, err
		}
		return true, nil

	case TypeTextEnter:
		var p TextEnterPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid text payload: %w", err)
		}
		session.EnterTextEdit(p.ObjectID)
		return true, nil

	case TypeTextExit:
		var p TextExitPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid text payload: %w", err)
		}
		if err := session.ExitTextEdit(p.ObjectID, p.Content); err != nil {
			return false, err
		}
		return true, nil

	case TypeStrokeComplete:
		var p StrokeCompletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid stroke payload: %w", err)
		}
		points := make([]scene.Point, len(p.Points))
		for i, pt := range p.Points {
			points[i] = scene.Point{X: pt.X, Y: pt.Y}
		}
		if err := session.CompleteStroke(points, p.Stroke, p.Width); err != nil {
			return false, err
		}
		return true, nil

	case TypeImagePlace:
		var p ImagePlacePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid image payload: %w", err)
		}
		if _, err := session.PlaceImage(p.AssetID, p.X, p.Y, p.Width, p.Height); err != nil {
			return false, err
		}
		return true, nil

	case TypeCropComplete:
		var p CropCompletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return false, fmt.Errorf("invalid crop payload: %w", err)
		}
		region := scene.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
		if err := session.CompleteCrop(p.ObjectID, region); err != nil {
			return false, err
		}
		return true, nil

	case TypeHistoryUndo:
		if err := session.Undo(); err != nil {
			return false, err
		}
		return true, nil

	case TypeHistoryRedo:
		if err := session.Redo(); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, errors.New("unknown message type: " + msg.Type)
	}
}

func (h *Hub) sendError(client *Client, err error) {
	slog.Debug("edit rejected", "user", client.UserID, "error", err)
	payload, _ := json.Marshal(ErrorPayload{Reason: err.Error()})
	client.Send(&Message{Type: TypeError, Payload: payload})
}
