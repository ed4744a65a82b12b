package relay

import (
	"log"

	"github.com/chat-duo/backend/internal/observability"
)

// Hub maintains the set of open relay connections and fans inbound frames
// out to every other connection.
//
// Global broadcast, not room-scoped: every connected client receives every
// frame regardless of which room it pertains to. Room filtering happens (or
// doesn't) on the clients.
type Hub struct {
	// conns is the set of open connections
	conns map[*Conn]bool

	// register requests from new connections
	register chan *Conn

	// unregister requests from closing connections
	unregister chan *Conn

	// broadcast carries inbound frames to fan out
	broadcast chan *frame
}

// frame is one inbound payload together with its origin, so the fan-out
// can skip echoing it back to the sender.
type frame struct {
	data   []byte
	sender *Conn
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		conns:      make(map[*Conn]bool),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		broadcast:  make(chan *frame),
	}
}

// Run starts the hub's main event loop.
// This should be called in a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.conns[conn] = true
			observability.IncRelayActive()
			log.Printf("[Relay] Connection opened (total: %d)", len(h.conns))

		case conn := <-h.unregister:
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.send)
				observability.DecRelayActive()
				log.Printf("[Relay] Connection closed (remaining: %d)", len(h.conns))
			}

		case f := <-h.broadcast:
			h.fanOut(f)
		}
	}
}

// fanOut forwards the frame verbatim to every open connection except the
// sender. Slow clients whose buffer is full are dropped rather than allowed
// to stall the loop.
func (h *Hub) fanOut(f *frame) {
	observability.IncRelayFrame("in")
	for conn := range h.conns {
		if conn == f.sender {
			continue
		}
		select {
		case conn.send <- f.data:
			observability.IncRelayFrame("out")
		default:
			delete(h.conns, conn)
			close(conn.send)
			observability.DecRelayActive()
			log.Printf("[Relay] Dropped slow connection (remaining: %d)", len(h.conns))
		}
	}
}
