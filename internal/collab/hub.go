package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/wower3/image-edit/internal/editor"
)

// DocumentLoader fetches the latest stored scene payload for a document.
type DocumentLoader func(documentID string) ([]byte, error)

// DocumentSaver persists the scene payload for a document.
type DocumentSaver func(documentID string, payload []byte) error

// Room is one live document: its editing session, connected clients and
// presence. The session's tool state is shared — the room has one active
// tool, one in-progress drag, matching the single-owner interaction model.
type Room struct {
	documentID string
	clients    map[string]*Client // clientID -> client
	presence   *PresenceManager
	session    *editor.Session
	dirty      bool
}

func (h *Hub) newRoom(documentID string) *Room {
	session := editor.NewSession(editor.Options{
		HistoryLimit:   h.historyLimit,
		CommitDebounce: h.debounce,
	})

	if h.loader != nil {
		payload, err := h.loader(documentID)
		if err != nil {
			slog.Warn("load document, starting empty", "document", documentID, "error", err)
		} else if err := session.LoadSnapshot(payload); err != nil {
			slog.Warn("corrupt stored scene, starting empty", "document", documentID, "error", err)
		}
	}

	return &Room{
		documentID: documentID,
		clients:    make(map[string]*Client),
		presence:   NewPresenceManager(),
		session:    session,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // documentID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	loader       DocumentLoader
	saver        DocumentSaver
	historyLimit int
	debounce     time.Duration
}

func NewHub(loader DocumentLoader, saver DocumentSaver, historyLimit int, debounce time.Duration) *Hub {
	return &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		loader:       loader,
		saver:        saver,
		historyLimit: historyLimit,
		debounce:     debounce,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop shuts the hub down and saves every dirty document.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		h.saveRoom(room)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocumentID]
	if !ok {
		room = h.newRoom(client.DocumentID)
		h.rooms[client.DocumentID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(&Message{Type: TypeWelcome, ClientID: client.ClientID})

	// Send the current scene so the new client can render immediately.
	if msg := h.sceneSyncMessage(room); msg != nil {
		client.Send(msg)
	}

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.DocumentID, &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "document", client.DocumentID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocumentID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		h.saveRoom(room)
		delete(h.rooms, client.DocumentID)
	}
	h.mu.Unlock()

	if !empty {
		leavePayload, _ := json.Marshal(PresenceLeavePayload{UserID: client.UserID})
		h.broadcastToRoom(client.DocumentID, &Message{
			Type:    TypePresenceLeave,
			UserID:  client.UserID,
			Payload: leavePayload,
		}, "")
	}

	slog.Info("client left", "user", client.UserID, "document", client.DocumentID)
}

// saveRoom persists a dirty room's scene. Caller holds h.mu.
func (h *Hub) saveRoom(room *Room) {
	if !room.dirty || h.saver == nil {
		return
	}
	snap, err := room.session.Snapshot()
	if err != nil {
		slog.Error("serialize scene for save", "document", room.documentID, "error", err)
		return
	}
	if err := h.saver(room.documentID, snap); err != nil {
		slog.Error("save document", "document", room.documentID, "error", err)
		return
	}
	room.dirty = false
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		h.handleEdit(sender, msg)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.DocumentID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence, string(room.session.ActiveTool()))

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.DocumentID, &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}, sender.ClientID)
}

func (h *Hub) sceneSyncMessage(room *Room) *Message {
	snap, err := room.session.Snapshot()
	if err != nil {
		slog.Error("serialize scene", "document", room.documentID, "error", err)
		return nil
	}
	payload, err := json.Marshal(SceneSyncPayload{
		Scene:   json.RawMessage(snap),
		CanUndo: room.session.CanUndo(),
		CanRedo: room.session.CanRedo(),
	})
	if err != nil {
		slog.Error("marshal scene sync", "error", err)
		return nil
	}
	return &Message{Type: TypeSceneSync, Payload: payload}
}

func (h *Hub) broadcastToRoom(documentID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[documentID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
