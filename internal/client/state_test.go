package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chat-duo/backend/internal/models"
)

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	state, err := LoadState(path)
	require.NoError(t, err)
	require.NotEmpty(t, state.DeviceID, "fresh state gets a device identity")
	require.NotEmpty(t, state.DeviceName)

	state.CurrentUser = &models.UserProfile{ID: "u1", Name: "Alice"}
	state.Rooms = []models.Room{{ID: "r1", Name: "Test"}}
	require.NoError(t, state.Save(path))

	reloaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, state.DeviceID, reloaded.DeviceID, "device identity survives reloads")
	require.NotNil(t, reloaded.CurrentUser)
	assert.Equal(t, "Alice", reloaded.CurrentUser.Name)
	require.Len(t, reloaded.Rooms, 1)
	assert.Equal(t, "r1", reloaded.Rooms[0].ID)
}

func TestTouchRecentMovesToFrontAndCaps(t *testing.T) {
	state := newState()

	for i := 0; i < maxRecentRooms+3; i++ {
		state.touchRecent(models.Room{ID: string(rune('a' + i)), Name: "room"})
	}
	require.Len(t, state.RecentRooms, maxRecentRooms)

	state.touchRecent(models.Room{ID: "b", Name: "room b"})
	assert.Equal(t, "b", state.RecentRooms[0].ID)
	require.Len(t, state.RecentRooms, maxRecentRooms, "no duplicate entry for a touched room")
}

func TestToggleFavorite(t *testing.T) {
	state := newState()
	room := models.Room{ID: "r1", Name: "Test"}

	assert.True(t, state.ToggleFavorite(room))
	require.Len(t, state.FavoriteRooms, 1)

	assert.False(t, state.ToggleFavorite(room))
	assert.Empty(t, state.FavoriteRooms)
}
