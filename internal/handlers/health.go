package handlers

import (
	"net/http"
	"time"

	"github.com/chat-duo/backend/internal/models"
)

// Liveness handles GET /
// Returns the server's liveness status for uptime probes.
func Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{
		Status:    "online",
		Timestamp: time.Now().UnixMilli(),
	})
}
