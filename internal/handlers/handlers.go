package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"banqi/internal/game"
	"banqi/internal/storage"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	Hub   *game.Hub
	Store *storage.Store
}

// NewHandler creates a new handler instance.
func NewHandler(hub *game.Hub, store *storage.Store) *Handler {
	return &Handler{Hub: hub, Store: store}
}

// HandleNew creates a room and returns its code.
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	g := h.Hub.Create()
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "room": g.ID, "state": g.State()})
}

// HandleState returns the authoritative room snapshot.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/state/")
	g, ok := h.Hub.Get(id)
	if !ok {
		writeRoomNotFound(w)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": g.State()})
}

// HandleSSE streams state broadcasts to one client. Connecting with a
// clientId claims a seat while seats remain; everyone else watches.
func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sse/")
	g, ok := h.Hub.Get(id)
	if !ok {
		writeRoomNotFound(w)
		return
	}
	clientID := r.URL.Query().Get("clientId")
	role := g.Join(clientID)
	g.Attach(clientID)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 16)
	g.AddWatcher(ch)

	hello, _ := json.Marshal(map[string]any{"kind": "joined", "clientId": clientID, "role": role})
	_, _ = fmt.Fprintf(w, "data: %s\n\n", hello)
	initial, _ := json.Marshal(g.State())
	_, _ = fmt.Fprintf(w, "data: %s\n\n", initial)
	flusher.Flush()

	g.Touch()
	log.Debug().Str("room", id).Str("client", clientID).Str("role", string(role)).Msg("sse attached")

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	defer func() {
		g.RemoveWatcher(ch)
		if clientID == "" {
			return
		}
		if g.Detach(clientID) && g.RemoveClient(clientID) {
			g.BroadcastPlayerLeft(clientID)
		}
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// heartbeat
			_, _ = w.Write([]byte("data: {}\n\n"))
			flusher.Flush()
		case msg := <-ch:
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// HandleReveal processes a reveal intent.
func (h *Handler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/reveal/")
	g, ok := h.Hub.Get(id)
	if !ok {
		writeRoomNotFound(w)
		return
	}

	var req game.RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing client id"})
		return
	}
	g.Join(clientID)

	if rej := g.Reveal(req.Row, req.Col, clientID); rej != nil {
		log.Debug().Str("room", id).Str("client", clientID).Str("code", string(rej.Code)).Msg("reveal rejected")
		writeRejection(w, rej, g.State())
		return
	}

	go g.Broadcast()
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": g.State(), "yourColor": g.ColorOf(clientID)})
}

// HandleMove processes a move intent.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/move/")
	g, ok := h.Hub.Get(id)
	if !ok {
		writeRoomNotFound(w)
		return
	}

	var req game.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing client id"})
		return
	}
	g.Join(clientID)

	if rej := g.Move(req.FromRow, req.FromCol, req.ToRow, req.ToCol, clientID); rej != nil {
		log.Debug().Str("room", id).Str("client", clientID).Str("code", string(rej.Code)).Msg("move rejected")
		writeRejection(w, rej, g.State())
		return
	}

	go g.Broadcast()
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": g.State(), "yourColor": g.ColorOf(clientID)})
}

// HandleReset reshuffles the room and clears color bindings. Only a
// seated participant may reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/reset/")
	g, ok := h.Hub.Get(id)
	if !ok {
		writeRoomNotFound(w)
		return
	}

	var req game.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing client id"})
		return
	}
	if g.Join(clientID) != game.RolePlayer {
		writeRejection(w, &game.Rejection{Code: game.CodeNotYourTurn, Reason: "spectators cannot reset"}, g.State())
		return
	}

	g.Reset()
	go g.Broadcast()
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "state": g.State()})
}

// HandleStats serves aggregate archive counts plus live room count.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.FetchStats(context.Background())
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "stats unavailable"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": stats, "liveRooms": h.Hub.Len()})
}

// HandleHealth is the liveness probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeRoomNotFound(w http.ResponseWriter) {
	WriteJSON(w, http.StatusNotFound, map[string]any{
		"ok":    false,
		"code":  game.CodeRoomNotFound,
		"error": "no such room",
	})
}

func writeRejection(w http.ResponseWriter, rej *game.Rejection, state game.State) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":    false,
		"code":  rej.Code,
		"error": rej.Reason,
		"state": state,
	})
}
