package models

import "time"

// HeartbeatTTL is how long a device heartbeat counts as live.
// Heartbeats older than this are dropped on the next sync involving the room.
const HeartbeatTTL = 5 * time.Minute

// Room represents a chat room as exchanged between clients and the server.
// The server copy is canonical but ephemeral: rooms live only in process
// memory and are never explicitly deleted.
type Room struct {
	// ID is the shareable room code, assigned by the creating client
	ID string `json:"id"`

	// Name is the display name of the room
	Name string `json:"name"`

	// Participants is the roster of user profiles known to this room.
	// Profiles are client-reported and not verified anywhere.
	Participants []UserProfile `json:"participants"`

	// Messages is the full message history held by whoever sent this copy
	Messages []Message `json:"messages"`

	// IsPrivate marks rooms that require a password to join
	IsPrivate bool `json:"isPrivate"`

	// Password protects private rooms. Plaintext and client-checked;
	// there is no authentication layer.
	Password string `json:"password,omitempty"`

	// ConnectedDevices holds at most one live heartbeat per device.
	// The server merges this field on sync; every other field is taken
	// from the most recent sync payload as-is.
	ConnectedDevices []DeviceHeartbeat `json:"connectedDevices"`
}

// DeviceHeartbeat is a liveness record for one device inside one room.
// Identity is DeviceID; refreshing a heartbeat replaces the previous entry.
type DeviceHeartbeat struct {
	UserID     string `json:"userId"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`

	// LastActive is epoch milliseconds of the most recent refresh
	LastActive int64 `json:"lastActive"`
}

// Live reports whether the heartbeat is within the TTL at the given instant.
func (d DeviceHeartbeat) Live(now time.Time) bool {
	return now.UnixMilli()-d.LastActive < HeartbeatTTL.Milliseconds()
}

// UserProfile is a client-local identity. Nothing verifies it.
type UserProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
	IsTyping bool   `json:"isTyping"`
	IsOnline bool   `json:"isOnline"`
}

// SyncRequest is the body of POST /api/rooms: the sender's full room
// snapshot plus its own heartbeat. Both fields are required; the pointer
// lets the handler tell "missing" apart from "empty".
type SyncRequest struct {
	Rooms      []Room           `json:"rooms"`
	DeviceInfo *DeviceHeartbeat `json:"deviceInfo"`
}

// RoomsResponse wraps the full room collection for both GET and POST.
type RoomsResponse struct {
	Rooms []Room `json:"rooms"`
}

// ErrorResponse is the structured error body for failed sync requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusResponse is the liveness probe body for GET /.
type StatusResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
