package relay

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader upgrades HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// No handshake payload beyond the connection itself; any origin may
	// connect.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles relay websocket upgrade requests.
type Handler struct {
	hub *Hub
}

// NewHandler creates a new relay handler.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Relay] Upgrade failed: %v", err)
		return
	}

	conn := newConn(h.hub, ws)
	h.hub.register <- conn

	go conn.writePump()
	go conn.readPump()
}
