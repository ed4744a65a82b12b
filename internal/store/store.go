package store

import (
	"sync"
	"time"

	"github.com/chat-duo/backend/internal/models"
)

// RoomStore holds the canonical room collection for a single process.
// Nothing is persisted; a restart loses everything.
//
// The sync merge is a read-modify-write over the whole collection, so all
// access goes through one mutex rather than per-room locking.
type RoomStore struct {
	mu    sync.Mutex
	rooms []models.Room

	// now is swappable so tests can pin the clock
	now func() time.Time
}

// NewRoomStore creates an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{now: time.Now}
}

// Rooms returns a copy of the current room collection.
func (s *RoomStore) Rooms() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRooms(s.rooms)
}

// ApplySync reconciles a client's full room snapshot with the stored
// collection and returns the merged result.
//
// For each incoming room that already exists, the incoming copy wins for
// every field except connectedDevices: there, the stored device list is kept
// after dropping stale entries and any previous entry for the syncing
// device, then the fresh heartbeat is appended. Incoming rooms the store
// has never seen start with just the syncing device.
//
// The merge is additive: stored rooms absent from the snapshot are
// preserved. Clients only ever push the rooms they know about, and one
// client's partial view must not evict everyone else's rooms.
func (s *RoomStore) ApplySync(incoming []models.Room, device models.DeviceHeartbeat) []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	existing := make(map[string]models.Room, len(s.rooms))
	for _, r := range s.rooms {
		existing[r.ID] = r
	}

	merged := make([]models.Room, 0, len(incoming)+len(s.rooms))
	seen := make(map[string]bool, len(incoming))
	for _, in := range incoming {
		room := cloneRoom(in)
		if prev, ok := existing[in.ID]; ok {
			room.ConnectedDevices = mergeDevices(prev.ConnectedDevices, device, now)
		} else {
			room.ConnectedDevices = []models.DeviceHeartbeat{device}
		}
		merged = append(merged, room)
		seen[in.ID] = true
	}

	// Keep rooms the snapshot did not mention.
	for _, r := range s.rooms {
		if !seen[r.ID] {
			merged = append(merged, r)
		}
	}

	s.rooms = merged
	return cloneRooms(s.rooms)
}

// mergeDevices drops stale heartbeats and the previous entry for the
// syncing device, then appends the fresh heartbeat. The result never holds
// two entries with the same deviceId.
func mergeDevices(devices []models.DeviceHeartbeat, fresh models.DeviceHeartbeat, now time.Time) []models.DeviceHeartbeat {
	kept := make([]models.DeviceHeartbeat, 0, len(devices)+1)
	for _, d := range devices {
		if d.Live(now) && d.DeviceID != fresh.DeviceID {
			kept = append(kept, d)
		}
	}
	return append(kept, fresh)
}

// sweep prunes stale heartbeats from every stored room. Rooms themselves
// are never removed, even when no device is left.
func (s *RoomStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pruned := 0
	for i := range s.rooms {
		kept := s.rooms[i].ConnectedDevices[:0]
		for _, d := range s.rooms[i].ConnectedDevices {
			if d.Live(now) {
				kept = append(kept, d)
			} else {
				pruned++
			}
		}
		s.rooms[i].ConnectedDevices = kept
	}
	return pruned
}

func cloneRooms(rooms []models.Room) []models.Room {
	out := make([]models.Room, len(rooms))
	for i, r := range rooms {
		out[i] = cloneRoom(r)
	}
	return out
}

// cloneRoom copies a room deeply enough that callers and the store never
// share backing arrays.
func cloneRoom(r models.Room) models.Room {
	out := r
	if r.Participants != nil {
		out.Participants = append([]models.UserProfile(nil), r.Participants...)
	}
	if r.Messages != nil {
		out.Messages = append([]models.Message(nil), r.Messages...)
	}
	if r.ConnectedDevices != nil {
		out.ConnectedDevices = append([]models.DeviceHeartbeat(nil), r.ConnectedDevices...)
	}
	return out
}
