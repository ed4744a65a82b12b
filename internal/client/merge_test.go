package client

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chat-duo/backend/internal/models"
)

func msg(id string, ts int64) models.Message {
	return models.Message{ID: id, Text: "msg " + id, Timestamp: ts, Type: models.MessageText}
}

func TestMergeMessagesIsUnionByID(t *testing.T) {
	// 2 shared ids, 2 server-only, 1 local-only: 2 + 2 + 1 messages
	server := []models.Message{msg("a", 1), msg("b", 2), msg("s1", 3), msg("s2", 4)}
	local := []models.Message{msg("a", 1), msg("b", 2), msg("l1", 5)}

	merged := mergeMessages(server, local)

	require.Len(t, merged, 5)
	assert.True(t, sort.SliceIsSorted(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	}), "merged messages sorted ascending by timestamp")
}

func TestMergeMessagesLocalWinsOnCollision(t *testing.T) {
	server := []models.Message{{ID: "a", Text: "server copy", Timestamp: 1}}
	local := []models.Message{{ID: "a", Text: "local copy", Timestamp: 1}}

	merged := mergeMessages(server, local)

	require.Len(t, merged, 1)
	assert.Equal(t, "local copy", merged[0].Text)
}

func TestMergeMessagesIdempotent(t *testing.T) {
	server := []models.Message{msg("a", 1), msg("b", 2)}

	once := mergeMessages(server, server)
	twice := mergeMessages(once, server)

	assert.Equal(t, once, twice)
}

func TestPruneDevices(t *testing.T) {
	now := time.Now()
	devices := []models.DeviceHeartbeat{
		{DeviceID: "live", LastActive: now.Add(-time.Minute).UnixMilli()},
		{DeviceID: "stale", LastActive: now.Add(-6 * time.Minute).UnixMilli()},
	}

	kept := pruneDevices(devices, now)

	require.Len(t, kept, 1)
	assert.Equal(t, "live", kept[0].DeviceID)
}

func TestMessagesEqualBySerialization(t *testing.T) {
	a := []models.Message{msg("a", 1)}
	b := []models.Message{msg("a", 1)}
	assert.True(t, messagesEqual(a, b))

	b[0].Read = true
	assert.False(t, messagesEqual(a, b))
}
