package relay

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64KB covers inline data-URI payloads
)

// Conn wraps a single relay websocket connection.
type Conn struct {
	hub *Hub

	// WebSocket connection
	ws *websocket.Conn

	// Buffered channel of outbound frames
	send chan []byte
}

// newConn creates a connection bound to the hub.
func newConn(hub *Hub, ws *websocket.Conn) *Conn {
	return &Conn{
		hub:  hub,
		ws:   ws,
		send: make(chan []byte, 256),
	}
}

// readPump pumps frames from the websocket to the hub.
// Runs in its own goroutine per connection.
func (c *Conn) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Relay] Read error: %v", err)
			}
			break
		}
		c.hub.broadcast <- &frame{data: data, sender: c}
	}
}

// writePump pumps frames from the hub to the websocket and keeps the
// connection alive with pings.
// Runs in its own goroutine per connection.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per payload; concatenating would break JSON
			// parsing on the receiving clients.
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.ws.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
