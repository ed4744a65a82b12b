package store

import (
	"log"
	"time"
)

// Janitor periodically prunes expired device heartbeats from the store so
// polling reads don't report devices that stopped syncing. Sync merges
// prune too, but only for rooms a client happens to push.
type Janitor struct {
	store    *RoomStore
	interval time.Duration
	stopChan chan struct{}
}

// NewJanitor creates a janitor sweeping at the given interval.
func NewJanitor(store *RoomStore, interval time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop. Call with 'go'.
func (j *Janitor) Start() {
	log.Printf("[Store] Janitor started (interval: %v)", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.store.sweep(); n > 0 {
				log.Printf("[Store] Pruned %d stale device heartbeats", n)
			}
		case <-j.stopChan:
			log.Println("[Store] Janitor stopped")
			return
		}
	}
}

// Stop shuts the janitor down.
func (j *Janitor) Stop() {
	close(j.stopChan)
}
