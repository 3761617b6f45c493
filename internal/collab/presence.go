package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// PresenceManager tracks who is editing a document: cursor, selection and
// display name per user. The active tool is deliberately not per-user state —
// the room's session owns a single shared tool — so updates stamp the shared
// value over whatever the client claimed.
type PresenceManager struct {
	mu     sync.RWMutex
	byUser map[string]*PresencePayload
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		byUser: make(map[string]*PresencePayload),
	}
}

// Update records a user's presence. sharedTool is the room's current tool and
// overrides the client-sent field.
func (pm *PresenceManager) Update(userID string, p *PresencePayload, sharedTool string) {
	p.Tool = sharedTool

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.byUser[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.byUser, userID)
}

// Snapshot returns a copy of all current presences.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	out := make(map[string]*PresencePayload, len(pm.byUser))
	for userID, p := range pm.byUser {
		out[userID] = p
	}
	return out
}

// StateMessage builds the full-state message sent to a joining client.
func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.Snapshot()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
