package relay

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T) string {
	t.Helper()
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub).ServeWS))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesOtherClientsOnly(t *testing.T) {
	url := startRelay(t)

	c1 := dial(t, url)
	c2 := dial(t, url)

	// Give the hub time to register both connections
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, c1.WriteMessage(websocket.TextMessage, []byte("ping")))

	// Client 2 receives exactly the raw payload
	c2.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c2.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", string(data))

	// Client 1 must not get its own message back
	c1.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = c1.ReadMessage()
	assert.Error(t, err, "sender should not receive an echo")
}

func TestBroadcastIsNotRoomScoped(t *testing.T) {
	url := startRelay(t)

	c1 := dial(t, url)
	c2 := dial(t, url)
	c3 := dial(t, url)
	time.Sleep(100 * time.Millisecond)

	// The relay has no notion of rooms: one inbound frame fans out to
	// every other connection.
	require.NoError(t, c1.WriteMessage(websocket.TextMessage, []byte(`{"roomId":"r1"}`)))

	for _, c := range []*websocket.Conn{c2, c3} {
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := c.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, `{"roomId":"r1"}`, string(data))
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	url := startRelay(t)

	c1 := dial(t, url)
	c2 := dial(t, url)
	c3 := dial(t, url)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, c2.Close())
	time.Sleep(100 * time.Millisecond)

	// Broadcasting after a disconnect must not fail or stall
	require.NoError(t, c1.WriteMessage(websocket.TextMessage, []byte("still here")))

	c3.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c3.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "still here", string(data))
}
