package client

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/chat-duo/backend/internal/models"
)

// mergeMessages unions two message lists by id and sorts the result
// ascending by timestamp. The server list is applied first and the local
// list second, so on an id collision the local copy wins; that preserves
// optimistic local messages the server hasn't confirmed yet.
func mergeMessages(server, local []models.Message) []models.Message {
	byID := make(map[string]models.Message, len(server)+len(local))
	for _, m := range server {
		byID[m.ID] = m
	}
	for _, m := range local {
		byID[m.ID] = m
	}

	merged := make([]models.Message, 0, len(byID))
	for _, m := range byID {
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// pruneDevices drops heartbeats older than the TTL.
func pruneDevices(devices []models.DeviceHeartbeat, now time.Time) []models.DeviceHeartbeat {
	kept := make([]models.DeviceHeartbeat, 0, len(devices))
	for _, d := range devices {
		if d.Live(now) {
			kept = append(kept, d)
		}
	}
	return kept
}

// messagesEqual compares two message lists by full serialized equality.
// This is the sole re-render trigger for remotely originated messages.
func messagesEqual(a, b []models.Message) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
