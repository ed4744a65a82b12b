package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chat-duo/backend/internal/models"
	"github.com/chat-duo/backend/internal/store"
)

func newTestRouter() *chi.Mux {
	h := NewSyncHandler(store.NewRoomStore())
	r := chi.NewRouter()
	r.Get("/", Liveness)
	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.ListRooms)
			r.Post("/", h.SyncRooms)
		})
	})
	return r
}

func syncBody(t *testing.T, rooms []models.Room, device *models.DeviceHeartbeat) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(models.SyncRequest{Rooms: rooms, DeviceInfo: device})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestRoomRoundTrip(t *testing.T) {
	router := newTestRouter()

	// Client A creates a room and sends a message
	room := models.Room{
		ID:   "r1",
		Name: "Test",
		Messages: []models.Message{
			{ID: "m1", Text: "hi", Sender: "u1", Timestamp: 1000, Type: models.MessageText},
		},
	}
	device := &models.DeviceHeartbeat{
		UserID: "u1", DeviceID: "da", DeviceName: "laptop",
		LastActive: time.Now().UnixMilli(),
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rooms", syncBody(t, []models.Room{room}, device)))
	require.Equal(t, http.StatusOK, rec.Code)

	// A second client polls and must see the room with the message
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RoomsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, "r1", resp.Rooms[0].ID)
	require.Len(t, resp.Rooms[0].Messages, 1)
	assert.Equal(t, "m1", resp.Rooms[0].Messages[0].ID)
	assert.Equal(t, "hi", resp.Rooms[0].Messages[0].Text)
}

func TestSyncMissingDeviceInfo(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rooms", syncBody(t, []models.Room{}, nil)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.NotEmpty(t, errResp.Error)
	assert.NotEmpty(t, errResp.Message)

	// The process keeps serving after the rejected request
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSyncMissingRooms(t *testing.T) {
	router := newTestRouter()

	device := &models.DeviceHeartbeat{DeviceID: "da", LastActive: time.Now().UnixMilli()}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rooms", syncBody(t, nil, device)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSyncMalformedBody(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewBufferString("{not json")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestLiveness(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status models.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "online", status.Status)
	assert.Greater(t, status.Timestamp, int64(0))
}
