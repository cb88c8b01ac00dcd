// internal/socket/handler.go
package socket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/planchais/chantiers-backend/internal/logger"
)

// AuthFunc validates an access token and returns its subject and role.
type AuthFunc func(token string) (subject, role string, err error)

// Handler handles WebSocket connections
type Handler struct {
	Hub          *Hub
	authenticate AuthFunc
	upgrader     websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. allowedOrigins empty or "*"
// accepts any origin.
func NewHandler(hub *Hub, auth AuthFunc, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		Hub:          hub,
		authenticate: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade requests. The token comes from the
// query string because browsers cannot set headers on WebSocket requests.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	subject, role, err := h.authenticate(tokenString)
	if err != nil {
		logger.Debug("[WS] Token rejected", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("[WS] Upgrade error", "error", err)
		return
	}

	client := NewClient(h.Hub, subject, role, conn)
	select {
	case h.Hub.register <- client:
	case <-h.Hub.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, subject, role string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		Subject:  subject,
		Role:     role,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		Rooms:    defaultRooms(subject),
		lastPing: time.Now(),
	}
}

// defaultRooms follows every entity feed plus the personal room.
func defaultRooms(subject string) map[string]bool {
	rooms := map[string]bool{SubjectRoom(subject): true}
	for _, e := range Entities {
		rooms[EntityRoom(e)] = true
	}
	return rooms
}

// SubjectRoom is the personal room every client joins on connect.
func SubjectRoom(subject string) string {
	return "subject:" + subject
}
