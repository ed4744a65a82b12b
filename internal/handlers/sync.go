package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/chat-duo/backend/internal/models"
	"github.com/chat-duo/backend/internal/store"
)

// maxSyncBody caps the sync request body. Avatars and file attachments
// travel inline as data URIs, so payloads can get large.
const maxSyncBody = 50 << 20 // 50MB

// SyncHandler serves the room synchronization endpoints.
type SyncHandler struct {
	store *store.RoomStore
}

// NewSyncHandler creates a new SyncHandler instance.
func NewSyncHandler(roomStore *store.RoomStore) *SyncHandler {
	return &SyncHandler{store: roomStore}
}

// ListRooms handles GET /api/rooms
// Returns the full server-held room collection for the client poll loop.
func (h *SyncHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.RoomsResponse{Rooms: h.store.Rooms()})
}

// SyncRooms handles POST /api/rooms
// Accepts a client's full room snapshot plus its device heartbeat, merges
// it into the store and returns the merged collection. A malformed body is
// reported as a structured error; it never takes the process down.
func (h *SyncHandler) SyncRooms(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSyncBody)

	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[Sync] Rejecting malformed body: %v", err)
		writeError(w, "sync failed", "invalid request body")
		return
	}

	if req.Rooms == nil || req.DeviceInfo == nil {
		log.Printf("[Sync] Rejecting incomplete payload (rooms: %v, deviceInfo: %v)",
			req.Rooms != nil, req.DeviceInfo != nil)
		writeError(w, "sync failed", "rooms and deviceInfo are required")
		return
	}

	merged := h.store.ApplySync(req.Rooms, *req.DeviceInfo)
	writeJSON(w, http.StatusOK, models.RoomsResponse{Rooms: merged})
}

// writeJSON is a helper function to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes the structured error body with a server-fault status.
func writeError(w http.ResponseWriter, errText, message string) {
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Error:   errText,
		Message: message,
	})
}
