package client

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gorilla/websocket"

	"github.com/chat-duo/backend/internal/models"
)

// RelayEnvelope is the payload clients exchange over the broadcast relay.
// The relay itself never inspects it; the schema only binds clients to each
// other. RoomID lets receivers filter, since the relay broadcasts globally.
type RelayEnvelope struct {
	RoomID  string         `json:"roomId"`
	Message models.Message `json:"message"`
}

// RelayConn is one client connection to the broadcast relay.
type RelayConn struct {
	ws *websocket.Conn
}

// DialRelay opens a relay connection. There is no handshake payload beyond
// the connection itself.
func DialRelay(url string) (*RelayConn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial relay: %w", err)
	}
	return &RelayConn{ws: ws}, nil
}

// Publish sends a message envelope. Every other connected client receives
// it, whatever room they are in.
func (c *RelayConn) Publish(env RelayEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal relay envelope: %w", err)
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Listen reads frames until the connection closes, invoking fn for each
// envelope addressed to roomID. Frames that aren't envelopes are skipped.
// Runs until error; call in a goroutine.
func (c *RelayConn) Listen(roomID string, fn func(RelayEnvelope)) error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("relay read failed: %w", err)
		}

		var env RelayEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("[Relay] Skipping unparseable frame: %v", err)
			continue
		}
		if roomID == "" || env.RoomID == roomID {
			fn(env)
		}
	}
}

// Close shuts the connection down.
func (c *RelayConn) Close() error {
	return c.ws.Close()
}
