package collab

import "encoding/json"

type Message struct {
	Type       string          `json:"type"`
	DocumentID string          `json:"documentId,omitempty"`
	ClientID   string          `json:"clientId,omitempty"`
	UserID     string          `json:"userId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Presence
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"

	// Editing (client → server)
	TypeToolSet         = "tool.set"
	TypePointerDown     = "pointer.down"
	TypePointerMove     = "pointer.move"
	TypePointerUp       = "pointer.up"
	TypeObjectTransform = "object.transform"
	TypeObjectDelete    = "object.delete"
	TypeTextEnter       = "text.enter"
	TypeTextExit        = "text.exit"
	TypeStrokeComplete  = "stroke.complete"
	TypeImagePlace      = "image.place"
	TypeCropComplete    = "crop.complete"
	TypeHistoryUndo     = "history.undo"
	TypeHistoryRedo     = "history.redo"

	// Document sync (server → clients): the full scene snapshot after a
	// mutation, plus undo/redo availability.
	TypeSceneSync = "scene.sync"

	// Trigger pseudo-tools dispatched back to the requesting client.
	TypeToolTrigger = "tool.trigger"
)

type ToolSetPayload struct {
	Name string `json:"name"`
}

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TransformPayload struct {
	ObjectID string             `json:"objectId"`
	Changes  map[string]float64 `json:"changes"`
}

type ObjectDeletePayload struct {
	ObjectID string `json:"objectId"`
}

type TextEnterPayload struct {
	ObjectID string `json:"objectId"`
}

type TextExitPayload struct {
	ObjectID string `json:"objectId"`
	Content  string `json:"content"`
}

type StrokeCompletePayload struct {
	Points []PointerPayload `json:"points"`
	Stroke string           `json:"stroke"`
	Width  float64          `json:"width"`
}

type ImagePlacePayload struct {
	AssetID string  `json:"assetId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type CropCompletePayload struct {
	ObjectID string  `json:"objectId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

type SceneSyncPayload struct {
	Scene   json.RawMessage `json:"scene"`
	CanUndo bool            `json:"canUndo"`
	CanRedo bool            `json:"canRedo"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}

type ToolTriggerPayload struct {
	Name string `json:"name"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	Tool        string     `json:"tool,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}
