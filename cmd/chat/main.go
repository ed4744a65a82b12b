package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/chat-duo/backend/internal/client"
	"github.com/chat-duo/backend/internal/models"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "sync server base URL")
		relayURL  = flag.String("relay", "ws://localhost:5174", "broadcast relay URL")
		statePath = flag.String("state", defaultStatePath(), "path to the local state file")
		name      = flag.String("name", "", "display name (kept from state file if empty)")
		roomID    = flag.String("room", "", "room code to join")
		roomName  = flag.String("create", "", "create a room with this name instead of joining")
		password  = flag.String("password", "", "room password (private rooms)")
	)
	flag.Parse()

	state, err := client.LoadState(*statePath)
	if err != nil {
		log.Fatalf("failed to load state: %v", err)
	}

	syncer := client.NewSyncer(client.NewAPI(*serverURL), state, *statePath)

	if *name != "" || state.CurrentUser == nil {
		profile := models.UserProfile{ID: uuid.New().String(), Name: *name, IsOnline: true}
		if state.CurrentUser != nil {
			profile = *state.CurrentUser
			if *name != "" {
				profile.Name = *name
			}
		}
		if profile.Name == "" {
			profile.Name = state.DeviceName
		}
		syncer.SetProfile(profile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	room, err := enterRoom(ctx, syncer, *roomID, *roomName, *password)
	if err != nil {
		log.Fatalf("could not enter room: %v", err)
	}
	fmt.Printf("Room %q (share code %s)\n", room.Name, room.ID)
	for _, m := range room.Messages {
		printMessage(room, m)
	}

	me := ""
	if state.CurrentUser != nil {
		me = state.CurrentUser.ID
	}

	// Remote messages arriving through the poll loop
	syncer.SetOnRoomUpdate(func(r models.Room) {
		if n := len(r.Messages); n > 0 && r.Messages[n-1].Sender != me {
			printMessage(r, r.Messages[n-1])
		}
	})
	go syncer.Run(ctx)

	// Instant delivery path: the relay broadcasts globally, so filter by
	// room on our side.
	relayConn, err := client.DialRelay(*relayURL)
	if err != nil {
		log.Fatalf("failed to reach relay: %v", err)
	}
	defer relayConn.Close()

	go func() {
		err := relayConn.Listen(room.ID, func(env client.RelayEnvelope) {
			if env.Message.Sender != me {
				printMessage(room, env.Message)
			}
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("relay connection lost: %v", err)
		}
	}()

	go readInput(ctx, syncer, relayConn, room.ID, stop)

	<-ctx.Done()

	// Best-effort cleanup; the heartbeat would expire on its own anyway.
	leaveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	syncer.LeaveRoom(leaveCtx, room.ID)
	fmt.Println("\nbye")
}

func enterRoom(ctx context.Context, syncer *client.Syncer, roomID, roomName, password string) (models.Room, error) {
	switch {
	case roomName != "":
		return syncer.CreateRoom(ctx, roomName, password)
	case roomID != "":
		return syncer.JoinRoom(ctx, roomID, password)
	default:
		return models.Room{}, errors.New("pass -room <code> or -create <name>")
	}
}

func readInput(ctx context.Context, syncer *client.Syncer, relayConn *client.RelayConn, roomID string, stop func()) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		if text == "/quit" {
			stop()
			return
		}

		msg, err := syncer.SendMessage(ctx, roomID, text)
		if err != nil {
			log.Printf("send failed: %v", err)
			continue
		}
		if err := relayConn.Publish(client.RelayEnvelope{RoomID: roomID, Message: msg}); err != nil {
			log.Printf("relay publish failed (message still syncs): %v", err)
		}
	}
	stop()
}

func printMessage(room models.Room, m models.Message) {
	sender := m.Sender
	for _, p := range room.Participants {
		if p.ID == m.Sender && p.Name != "" {
			sender = p.Name
			break
		}
	}
	ts := time.UnixMilli(m.Timestamp).Format("15:04")
	switch m.Type {
	case models.MessageImage, models.MessageFile:
		fmt.Printf("[%s] %s sent %s (%s)\n", ts, sender, m.Type, m.FileName)
	default:
		fmt.Printf("[%s] %s: %s\n", ts, sender, m.Text)
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatduo.json"
	}
	return home + "/.chatduo/state.json"
}
