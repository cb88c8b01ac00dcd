// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/planchais/chantiers-backend/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"

	// Reply to a subscribe action
	MessageSubscribed MessageType = "subscribed"

	// Personal notices for team members
	MessageAssigned   MessageType = "assigned"
	MessageUnassigned MessageType = "unassigned"
)

// Entity names used in change events
const (
	EntityClient     = "client"
	EntityChantier   = "chantier"
	EntityTeamMember = "team_member"
	EntityAssignment = "assignment"
)

// Entities lists every entity with a change feed.
var Entities = []string{EntityClient, EntityChantier, EntityTeamMember, EntityAssignment}

// EntityRoom is the room carrying the change feed of one entity.
func EntityRoom(entity string) string {
	return "entity:" + entity
}

func isEntity(name string) bool {
	for _, e := range Entities {
		if e == name {
			return true
		}
	}
	return false
}

// Actions used in change events
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeType builds the event type, e.g. "client.created".
func ChangeType(entity, action string) MessageType {
	return MessageType(entity + "." + action)
}

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	EntityID  string      `json:"entityId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	Subject  string
	Role     string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Rooms    map[string]bool
	mu       sync.Mutex
	lastPing time.Time
}

// RoomMessage represents a message to be sent to a specific room
type RoomMessage struct {
	Room    string
	Message []byte
}

// subscription replaces the entity feeds a client listens to.
type subscription struct {
	client   *Client
	entities []string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients     map[*Client]bool
	roomClients map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	subscribe     chan *subscription
	roomBroadcast chan *RoomMessage
	done          chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		roomClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client, 16),
		subscribe:     make(chan *subscription, 16),
		roomBroadcast: make(chan *RoomMessage, 256),
		done:          make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled, after
// closing every client connection.
func (h *Hub) Run(ctx context.Context) {
	logger.Info("[WS] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case sub := <-h.subscribe:
			h.setEntityFeeds(sub)

		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)

		case <-pingTicker.C:
			h.pingClients()

		case <-ctx.Done():
			close(h.done)
			h.shutdown()
			logger.Info("[WS] WebSocket hub stopped")
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	for room := range client.Rooms {
		h.addToRoomLocked(client, room)
	}
	logger.Info("[WS] ✅ Client registered", "subject", client.Subject, "role", client.Role, "total_clients", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	client.mu.Lock()
	for room := range client.Rooms {
		h.removeFromRoomLocked(client, room)
	}
	client.mu.Unlock()

	close(client.Send)
	logger.Info("[WS] ❌ Client disconnected", "subject", client.Subject, "total_clients", len(h.clients))
}

// setEntityFeeds swaps the client's entity rooms and acknowledges with the
// resulting list. The personal room is left alone.
func (h *Hub) setEntityFeeds(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := sub.client
	if _, ok := h.clients[client]; !ok {
		return
	}

	want := make(map[string]bool, len(sub.entities))
	for _, e := range sub.entities {
		if isEntity(e) {
			want[EntityRoom(e)] = true
		}
	}

	client.mu.Lock()
	for _, e := range Entities {
		room := EntityRoom(e)
		switch {
		case want[room] && !client.Rooms[room]:
			client.Rooms[room] = true
			h.addToRoomLocked(client, room)
		case !want[room] && client.Rooms[room]:
			delete(client.Rooms, room)
			h.removeFromRoomLocked(client, room)
		}
	}
	client.mu.Unlock()

	active := make([]string, 0, len(want))
	for _, e := range Entities {
		if want[EntityRoom(e)] {
			active = append(active, e)
		}
	}
	if data, ok := encode(Message{
		Type:      MessageSubscribed,
		Payload:   map[string]interface{}{"entities": active},
		Timestamp: time.Now(),
	}); ok {
		h.deliver(client, data)
	}
	logger.Debug("[WS] Entity feeds updated", "subject", client.Subject, "entities", active)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
		delete(h.clients, client)
	}
	h.roomClients = make(map[string]map[*Client]bool)
}

func (h *Hub) addToRoomLocked(client *Client, room string) {
	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true
}

func (h *Hub) removeFromRoomLocked(client *Client, room string) {
	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}
}

// deliver must be called with h.mu held for reading.
func (h *Hub) deliver(client *Client, message []byte) bool {
	select {
	case client.Send <- message:
		return true
	default:
		// slow consumer
		select {
		case h.unregister <- client:
		default:
		}
		return false
	}
}

func (h *Hub) broadcastToAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		h.deliver(client, message)
	}
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.roomClients[rm.Room] {
		if h.deliver(client, rm.Message) {
			sent++
		}
	}
	logger.Debug("[WS] Broadcast to room", "room", rm.Room, "sent", sent)
}

func (h *Hub) pingClients() {
	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})
	h.broadcastToAll(data)
}

// ============================================
// Public Methods for Sending Messages
// ============================================

func encode(msg Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("[WS] Error marshaling message", "type", msg.Type, "error", err)
		return nil, false
	}
	return data, true
}

// SendToRoom sends a message to the clients subscribed to room.
func (h *Hub) SendToRoom(room string, msg Message) {
	if data, ok := encode(msg); ok {
		select {
		case h.roomBroadcast <- &RoomMessage{Room: room, Message: data}:
		default:
			logger.Warn("[WS] room channel full, dropping message", "room", room, "type", msg.Type)
		}
	}
}
