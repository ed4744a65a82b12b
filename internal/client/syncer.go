package client

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chat-duo/backend/internal/models"
)

// syncInterval is how often the loop polls the server while visible.
const syncInterval = 3 * time.Second

var (
	// ErrRoomNotFound is returned when joining a room the server has
	// never seen. Surfaced inline to the user, never a panic.
	ErrRoomNotFound = errors.New("room not found")

	// ErrWrongPassword is returned when a private room's password does
	// not match.
	ErrWrongPassword = errors.New("wrong room password")
)

// RoomUpdateFunc is invoked when the currently open room's message list
// changed as a result of a pull or push.
type RoomUpdateFunc func(models.Room)

// Syncer keeps the local room state approximately consistent with the sync
// server without a push channel: a fixed-interval poll pulls server state,
// and every local mutation is applied optimistically then pushed as a full
// snapshot. Convergence is eventual and lossy under races; the domain
// tolerates that.
type Syncer struct {
	api       *API
	statePath string

	mu           sync.Mutex
	state        *State
	openRoomID   string
	visible      bool
	onRoomUpdate RoomUpdateFunc
}

// NewSyncer creates a syncer over the given API client and persisted state.
func NewSyncer(api *API, state *State, statePath string) *Syncer {
	return &Syncer{
		api:       api,
		statePath: statePath,
		state:     state,
		visible:   true,
	}
}

// SetOnRoomUpdate registers the re-render callback for the open room.
func (s *Syncer) SetOnRoomUpdate(fn RoomUpdateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRoomUpdate = fn
}

// SetProfile sets the local user profile. Client-local only; nothing
// verifies it.
func (s *Syncer) SetProfile(profile models.UserProfile) {
	s.mu.Lock()
	s.state.CurrentUser = &profile
	s.mu.Unlock()
	s.saveState()
}

// SetVisible toggles the visibility flag. The poll loop only runs while
// visible; regaining visibility forces an immediate push to flush state
// accumulated while backgrounded.
func (s *Syncer) SetVisible(ctx context.Context, visible bool) {
	s.mu.Lock()
	was := s.visible
	s.visible = visible
	s.mu.Unlock()

	if visible && !was {
		if err := s.push(ctx); err != nil {
			log.Printf("[Sync] Flush on visibility failed: %v", err)
		}
	}
}

// Run drives the poll loop until the context is cancelled. Each tick fires
// a pull without waiting for the previous one; in-flight pulls are not
// cancelled, so overlapping requests are possible under slow networks.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			visible := s.visible
			s.mu.Unlock()
			if !visible {
				continue
			}
			go func() {
				if err := s.pull(ctx); err != nil {
					log.Printf("[Sync] Poll failed: %v", err)
				}
			}()
		case <-ctx.Done():
			return
		}
	}
}

// Rooms returns a snapshot of the local room list.
func (s *Syncer) Rooms() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Room(nil), s.state.Rooms...)
}

// Room returns the local copy of one room.
func (s *Syncer) Room(id string) (models.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.state.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return models.Room{}, false
}

// CreateRoom creates a room locally with a fresh shareable code and pushes
// it to the server. A non-empty password makes the room private.
func (s *Syncer) CreateRoom(ctx context.Context, name, password string) (models.Room, error) {
	code, err := newRoomCode()
	if err != nil {
		return models.Room{}, err
	}

	room := models.Room{
		ID:               code,
		Name:             name,
		Participants:     []models.UserProfile{},
		Messages:         []models.Message{},
		IsPrivate:        password != "",
		Password:         password,
		ConnectedDevices: []models.DeviceHeartbeat{},
	}

	s.mu.Lock()
	if s.state.CurrentUser != nil {
		room.Participants = append(room.Participants, *s.state.CurrentUser)
	}
	s.state.Rooms = append(s.state.Rooms, room)
	s.state.touchRecent(room)
	s.openRoomID = room.ID
	s.mu.Unlock()

	if err := s.push(ctx); err != nil {
		// The room exists locally either way; the next tick retries.
		log.Printf("[Sync] Push after create failed: %v", err)
	}
	return room, nil
}

// JoinRoom pulls the latest server state, validates the room and password,
// adds the local user to the roster and pushes the result.
func (s *Syncer) JoinRoom(ctx context.Context, roomID, password string) (models.Room, error) {
	serverRooms, err := s.api.FetchRooms(ctx)
	if err != nil {
		return models.Room{}, err
	}

	var found *models.Room
	for i := range serverRooms {
		if serverRooms[i].ID == roomID {
			found = &serverRooms[i]
			break
		}
	}
	if found == nil {
		return models.Room{}, ErrRoomNotFound
	}
	if found.IsPrivate && found.Password != password {
		return models.Room{}, ErrWrongPassword
	}

	s.mu.Lock()
	room := *found
	if u := s.state.CurrentUser; u != nil && !hasParticipant(room.Participants, u.ID) {
		room.Participants = append(room.Participants, *u)
	}
	s.upsertRoomLocked(room)
	s.state.touchRecent(room)
	s.openRoomID = room.ID
	s.mu.Unlock()

	if err := s.push(ctx); err != nil {
		log.Printf("[Sync] Push after join failed: %v", err)
	}
	return room, nil
}

// SendMessage appends a text message optimistically and pushes the full
// snapshot.
func (s *Syncer) SendMessage(ctx context.Context, roomID, text string) (models.Message, error) {
	msg := models.Message{
		ID:        uuid.New().String(),
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		Type:      models.MessageText,
	}
	return s.appendMessage(ctx, roomID, msg)
}

// SendFile appends an image or file message optimistically and pushes.
// The attachment travels inline as fileURL, typically a data URI.
func (s *Syncer) SendFile(ctx context.Context, roomID, text, fileURL, fileName string, isImage bool) (models.Message, error) {
	kind := models.MessageFile
	if isImage {
		kind = models.MessageImage
	}
	msg := models.Message{
		ID:        uuid.New().String(),
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		Type:      kind,
		FileURL:   fileURL,
		FileName:  fileName,
	}
	return s.appendMessage(ctx, roomID, msg)
}

// LeaveRoom removes this device's heartbeat from the room and pushes the
// removal. Best-effort only: the sync merge re-appends the pushing device's
// heartbeat server-side, so the entry truly disappears for others once the
// TTL expires. Locally the removal is applied again after the push so the
// device stops counting itself.
func (s *Syncer) LeaveRoom(ctx context.Context, roomID string) {
	s.dropOwnHeartbeat(roomID)

	s.mu.Lock()
	if s.openRoomID == roomID {
		s.openRoomID = ""
	}
	s.mu.Unlock()

	if err := s.push(ctx); err != nil {
		log.Printf("[Sync] Push after leave failed: %v", err)
	}
	s.dropOwnHeartbeat(roomID)
	s.saveState()
}

// dropOwnHeartbeat strips this device's heartbeat from the local copy of
// one room.
func (s *Syncer) dropOwnHeartbeat(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Rooms {
		if s.state.Rooms[i].ID != roomID {
			continue
		}
		devices := make([]models.DeviceHeartbeat, 0, len(s.state.Rooms[i].ConnectedDevices))
		for _, d := range s.state.Rooms[i].ConnectedDevices {
			if d.DeviceID != s.state.DeviceID {
				devices = append(devices, d)
			}
		}
		s.state.Rooms[i].ConnectedDevices = devices
	}
}

// Push forces an immediate full-snapshot push, refreshing this device's
// heartbeat in every room it holds.
func (s *Syncer) Push(ctx context.Context) error {
	return s.push(ctx)
}

// Pull forces an immediate poll outside the timer.
func (s *Syncer) Pull(ctx context.Context) error {
	return s.pull(ctx)
}

// pull fetches the server collection and merges it into local state.
func (s *Syncer) pull(ctx context.Context) error {
	serverRooms, err := s.api.FetchRooms(ctx)
	if err != nil {
		return err
	}
	s.applyServerRooms(serverRooms)
	s.saveState()
	return nil
}

// push submits the full local snapshot with a fresh heartbeat and applies
// the server's merged response back to local state.
func (s *Syncer) push(ctx context.Context) error {
	s.mu.Lock()
	rooms := append([]models.Room(nil), s.state.Rooms...)
	device := s.heartbeatLocked()
	s.mu.Unlock()

	merged, err := s.api.PushRooms(ctx, rooms, device)
	if err != nil {
		return err
	}
	s.applyServerRooms(merged)
	s.saveState()
	return nil
}

// applyServerRooms merges server rooms into local state. For rooms held on
// both sides, messages are unioned by id with the local copy winning on
// collision and the result sorted by timestamp; device heartbeats older
// than the TTL are discarded. Server rooms unknown locally are adopted;
// local-only rooms are kept for the next push. When the open room's
// message list changed by serialized equality, the registered callback
// fires; that is the sole re-render trigger for remote messages.
func (s *Syncer) applyServerRooms(serverRooms []models.Room) {
	now := time.Now()

	s.mu.Lock()
	local := make(map[string]models.Room, len(s.state.Rooms))
	for _, r := range s.state.Rooms {
		local[r.ID] = r
	}

	next := make([]models.Room, 0, len(serverRooms)+len(s.state.Rooms))
	seen := make(map[string]bool, len(serverRooms))
	var updated *models.Room
	for _, sr := range serverRooms {
		room := sr
		if lr, ok := local[sr.ID]; ok {
			room.Messages = mergeMessages(sr.Messages, lr.Messages)
		}
		room.ConnectedDevices = pruneDevices(room.ConnectedDevices, now)

		if room.ID == s.openRoomID {
			if lr, ok := local[room.ID]; !ok || !messagesEqual(lr.Messages, room.Messages) {
				updated = &room
			}
		}
		next = append(next, room)
		seen[sr.ID] = true
	}
	for _, r := range s.state.Rooms {
		if !seen[r.ID] {
			r.ConnectedDevices = pruneDevices(r.ConnectedDevices, now)
			next = append(next, r)
		}
	}
	s.state.Rooms = next
	callback := s.onRoomUpdate
	s.mu.Unlock()

	if updated != nil && callback != nil {
		callback(*updated)
	}
}

// appendMessage applies the optimistic local append and pushes.
func (s *Syncer) appendMessage(ctx context.Context, roomID string, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	if u := s.state.CurrentUser; u != nil {
		msg.Sender = u.ID
	}
	var room *models.Room
	for i := range s.state.Rooms {
		if s.state.Rooms[i].ID == roomID {
			room = &s.state.Rooms[i]
			break
		}
	}
	if room == nil {
		s.mu.Unlock()
		return models.Message{}, ErrRoomNotFound
	}
	room.Messages = append(room.Messages, msg)
	s.state.touchRecent(*room)
	s.mu.Unlock()

	if err := s.push(ctx); err != nil {
		// The message stays locally and rides along on the next push.
		log.Printf("[Sync] Push after send failed: %v", err)
	}
	return msg, nil
}

// heartbeatLocked builds this device's heartbeat. Callers hold s.mu.
func (s *Syncer) heartbeatLocked() models.DeviceHeartbeat {
	hb := models.DeviceHeartbeat{
		DeviceID:   s.state.DeviceID,
		DeviceName: s.state.DeviceName,
		LastActive: time.Now().UnixMilli(),
	}
	if s.state.CurrentUser != nil {
		hb.UserID = s.state.CurrentUser.ID
	}
	return hb
}

// upsertRoomLocked replaces or appends the room. Callers hold s.mu.
func (s *Syncer) upsertRoomLocked(room models.Room) {
	for i := range s.state.Rooms {
		if s.state.Rooms[i].ID == room.ID {
			s.state.Rooms[i] = room
			return
		}
	}
	s.state.Rooms = append(s.state.Rooms, room)
}

// saveState persists local state, best-effort.
func (s *Syncer) saveState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statePath == "" {
		return
	}
	if err := s.state.Save(s.statePath); err != nil {
		log.Printf("[Sync] Failed to save state: %v", err)
	}
}

func hasParticipant(participants []models.UserProfile, userID string) bool {
	for _, p := range participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// newRoomCode creates a short, URL-friendly shareable room identifier.
// Uses cryptographically secure random bytes encoded as hex.
func newRoomCode() (string, error) {
	buf := make([]byte, 4) // 4 bytes = 8 hex characters
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
