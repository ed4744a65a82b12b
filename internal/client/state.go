package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/chat-duo/backend/internal/models"
)

// maxRecentRooms caps the recent-room list.
const maxRecentRooms = 10

// RoomRef is a lightweight bookmark to a room.
type RoomRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecentRoom is a recent-conversation entry with preview metadata.
type RecentRoom struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LastMessage string `json:"lastMessage,omitempty"`
	UnreadCount int    `json:"unreadCount,omitempty"`
}

// State is the client's persisted local state, the analogue of the browser
// build's localStorage. It survives restarts but is only shared with other
// devices through the sync endpoint.
type State struct {
	CurrentUser   *models.UserProfile `json:"currentUser,omitempty"`
	Rooms         []models.Room       `json:"rooms"`
	FavoriteRooms []RoomRef           `json:"favoriteRooms"`
	RecentRooms   []RecentRoom        `json:"recentRooms"`
	DeviceID      string              `json:"deviceId"`
	DeviceName    string              `json:"deviceName"`
}

// LoadState reads the state file at path, creating a fresh state with a
// newly generated device identity when no file exists. The device identity
// is generated once and reused for the life of the file.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.DeviceID == "" {
		state.DeviceID = uuid.New().String()
	}
	if state.DeviceName == "" {
		state.DeviceName = defaultDeviceName()
	}
	return &state, nil
}

// Save writes the state file atomically via a temp-file rename.
func (s *State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func newState() *State {
	return &State{
		Rooms:         []models.Room{},
		FavoriteRooms: []RoomRef{},
		RecentRooms:   []RecentRoom{},
		DeviceID:      uuid.New().String(),
		DeviceName:    defaultDeviceName(),
	}
}

func defaultDeviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown-device"
	}
	return host
}

// touchRecent moves the room to the front of the recent list, capped.
func (s *State) touchRecent(room models.Room) {
	entry := RecentRoom{ID: room.ID, Name: room.Name}
	if n := len(room.Messages); n > 0 {
		entry.LastMessage = room.Messages[n-1].Text
	}

	recents := []RecentRoom{entry}
	for _, r := range s.RecentRooms {
		if r.ID != room.ID {
			recents = append(recents, r)
		}
	}
	if len(recents) > maxRecentRooms {
		recents = recents[:maxRecentRooms]
	}
	s.RecentRooms = recents
}

// ToggleFavorite adds or removes the room from the favorites list and
// reports whether it is a favorite afterwards.
func (s *State) ToggleFavorite(room models.Room) bool {
	for i, f := range s.FavoriteRooms {
		if f.ID == room.ID {
			s.FavoriteRooms = append(s.FavoriteRooms[:i], s.FavoriteRooms[i+1:]...)
			return false
		}
	}
	s.FavoriteRooms = append(s.FavoriteRooms, RoomRef{ID: room.ID, Name: room.Name})
	return true
}
