package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"banqi/internal/storage"
)

// NewHub creates the room registry and starts the idle reaper. The
// store may be nil; archiving is then disabled everywhere downstream.
func NewHub(store *storage.Store) *Hub {
	h := &Hub{Games: make(map[string]*Game), store: store}
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			h.reap()
		}
	}()
	return h
}

// Create makes a new room with a fresh shuffled board and registers it.
func (h *Hub) Create() *Game {
	id := uuid.NewString()
	g := NewGame(id, h.store)
	h.Mu.Lock()
	h.Games[id] = g
	h.Mu.Unlock()
	if h.store != nil {
		if rid, err := uuid.Parse(id); err == nil {
			_ = h.store.CreateRoom(context.Background(), rid, time.Now())
		}
	}
	log.Info().Str("room", id).Msg("room created")
	return g
}

// Get looks up an existing room. Rooms are created only via Create;
// unknown ids are the caller's room_not_found.
func (h *Hub) Get(id string) (*Game, bool) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	g, ok := h.Games[id]
	return g, ok
}

// Remove tears a room down, discarding its state machine.
func (h *Hub) Remove(id string) {
	h.Mu.Lock()
	delete(h.Games, id)
	h.Mu.Unlock()
}

// Len reports the number of live rooms.
func (h *Hub) Len() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return len(h.Games)
}

// reap drops rooms idle for more than a day. Abandoned rooms otherwise
// persist in memory; this is the only background cleanup path.
func (h *Hub) reap() {
	h.Mu.Lock()
	for id, g := range h.Games {
		g.Mu.Lock()
		idle := time.Since(g.LastSeen) > 24*time.Hour
		finished := g.phase == PhaseOver
		g.Mu.Unlock()
		if idle {
			delete(h.Games, id)
			log.Info().Str("room", id).Msg("idle room reaped")
			if !finished {
				g.archiveAbandoned()
			}
		}
	}
	h.Mu.Unlock()
}
