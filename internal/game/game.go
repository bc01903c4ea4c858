package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"banqi/internal/banqi"
	"banqi/internal/storage"
)

// NewGame creates a room's state machine with a freshly shuffled board,
// awaiting the first reveal.
func NewGame(id string, store *storage.Store) *Game {
	return &Game{
		ID:       id,
		board:    banqi.NewShuffledBoard(),
		phase:    PhaseAwaitingFirstReveal,
		current:  banqi.NoColor,
		winner:   banqi.NoColor,
		active:   true,
		Colors:   make(map[string]banqi.Color),
		Watchers: make(map[chan []byte]struct{}),
		conns:    make(map[string]int),
		LastSeen: time.Now(),
		store:    store,
	}
}

// Touch updates the last seen timestamp for the room.
func (g *Game) Touch() {
	g.Mu.Lock()
	g.LastSeen = time.Now()
	g.Mu.Unlock()
	g.archiveLastSeen()
}

// Join seats clientID if a seat is free; later clients watch as
// spectators. Joining after colors were assigned inherits the remaining
// color.
func (g *Game) Join(clientID string) Role {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if clientID == "" {
		return RoleSpectator
	}
	if g.seatedLocked(clientID) {
		return RolePlayer
	}
	if len(g.Players) >= 2 {
		return RoleSpectator
	}
	g.Players = append(g.Players, clientID)
	// Bindings are permanent: a rejoining participant keeps their color,
	// only a client with no prior binding takes the leftover one.
	if _, bound := g.Colors[clientID]; !bound && len(g.Colors) == 1 {
		for _, c := range g.Colors {
			g.Colors[clientID] = c.Opposite()
		}
	}
	g.archiveParticipantLocked(clientID)
	return RolePlayer
}

func (g *Game) seatedLocked(clientID string) bool {
	for _, p := range g.Players {
		if p == clientID {
			return true
		}
	}
	return false
}

// ColorOf returns the bound color of clientID, or "" before binding.
func (g *Game) ColorOf(clientID string) string {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if c, ok := g.Colors[clientID]; ok {
		return c.String()
	}
	return ""
}

// Reveal flips the face-down piece at (row, col) on behalf of
// requester. The first accepted reveal binds the revealer to the
// revealed piece's color and the other seat to the opposite color.
func (g *Game) Reveal(row, col int, requester string) *Rejection {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if !banqi.InBounds(row, col) {
		return reject(CodeOutOfBounds, "cell is off the board")
	}
	if !g.seatedLocked(requester) {
		return reject(CodeNotYourTurn, "not seated at this board")
	}
	switch g.phase {
	case PhaseOver:
		return reject(CodeIllegalReveal, "game is over")
	case PhaseAwaitingFirstReveal:
		if !banqi.CanReveal(g.board, row, col) {
			return reject(CodeIllegalReveal, "cell is empty or already face up")
		}
		_ = g.board.FlipUp(row, col)
		p, _ := g.board.At(row, col)
		g.bindColorsLocked(requester, p.Color)
		g.phase = PhaseInProgress
		g.current = p.Color.Opposite()
	default:
		c, ok := g.Colors[requester]
		if !ok || c != g.current {
			return reject(CodeNotYourTurn, "waiting for "+g.current.String())
		}
		if !banqi.CanReveal(g.board, row, col) {
			return reject(CodeIllegalReveal, "cell is empty or already face up")
		}
		_ = g.board.FlipUp(row, col)
		g.current = g.current.Opposite()
	}
	g.turnCount++
	g.LastSeen = time.Now()
	g.settleLocked()
	g.archiveActionLocked(requester, "reveal", row, col, row, col, "")
	return nil
}

// Move relocates or captures with the face-up piece at from on behalf
// of requester.
func (g *Game) Move(fromRow, fromCol, toRow, toCol int, requester string) *Rejection {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if !banqi.InBounds(fromRow, fromCol) || !banqi.InBounds(toRow, toCol) {
		return reject(CodeOutOfBounds, "cell is off the board")
	}
	if !g.seatedLocked(requester) {
		return reject(CodeNotYourTurn, "not seated at this board")
	}
	if g.phase == PhaseOver {
		return reject(CodeIllegalMove, "game is over")
	}
	c, ok := g.Colors[requester]
	if !ok || c != g.current {
		if g.current == banqi.NoColor {
			return reject(CodeNotYourTurn, "no colors assigned before the first reveal")
		}
		return reject(CodeNotYourTurn, "waiting for "+g.current.String())
	}
	if !banqi.IsLegalMove(g.board, fromRow, fromCol, toRow, toCol, c) {
		return reject(CodeIllegalMove, "move violates the rules")
	}
	captured, _ := banqi.ApplyMove(g.board, fromRow, fromCol, toRow, toCol)
	g.current = g.current.Opposite()
	g.turnCount++
	g.LastSeen = time.Now()
	g.settleLocked()
	capturedName := ""
	if !captured.IsEmpty() {
		capturedName = captured.Color.String() + " " + captured.Type.String()
	}
	g.archiveActionLocked(requester, "move", fromRow, fromCol, toRow, toCol, capturedName)
	return nil
}

// Reset discards the board and every binding, returning the room to the
// awaiting-first-reveal phase with a fresh shuffle.
func (g *Game) Reset() {
	g.Mu.Lock()
	g.board = banqi.NewShuffledBoard()
	g.phase = PhaseAwaitingFirstReveal
	g.current = banqi.NoColor
	g.winner = banqi.NoColor
	g.turnCount = 0
	g.Colors = make(map[string]banqi.Color)
	g.LastSeen = time.Now()
	g.Mu.Unlock()
	g.archiveReset()
}

// bindColorsLocked fixes the participant->color mapping for the life of
// this game: the revealer plays the color they revealed.
func (g *Game) bindColorsLocked(revealer string, c banqi.Color) {
	g.Colors[revealer] = c
	for _, p := range g.Players {
		if p != revealer {
			g.Colors[p] = c.Opposite()
		}
	}
}

// settleLocked runs terminal detection against the side now to move.
func (g *Game) settleLocked() {
	over, winner := banqi.CheckTerminal(g.board, g.current)
	if !over {
		return
	}
	g.phase = PhaseOver
	g.winner = winner
	g.archiveCompleteLocked()
}

// StateLocked builds the broadcast snapshot; callers must hold Mu.
func (g *Game) StateLocked() State {
	holder := ""
	for pid, c := range g.Colors {
		if c != banqi.NoColor && c == g.current {
			holder = pid
		}
	}
	return State{
		Kind:       "state",
		Board:      g.board.Cells(),
		Turn:       g.current.String(),
		TurnHolder: holder,
		Phase:      g.phase,
		Winner:     g.winner.String(),
		TurnCount:  g.turnCount,
		Active:     g.active,
		Watchers:   len(g.Watchers),
		LastSeen:   g.LastSeen.UnixMilli(),
	}
}

// State returns the snapshot, taking the lock.
func (g *Game) State() State {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.StateLocked()
}

// Broadcast sends the current snapshot to every watcher.
func (g *Game) Broadcast() {
	g.Mu.Lock()
	data, _ := json.Marshal(g.StateLocked())
	for ch := range g.Watchers {
		select {
		case ch <- data:
		default:
		}
	}
	g.Mu.Unlock()
}

// BroadcastPlayerLeft tells every watcher that a seated participant is
// gone.
func (g *Game) BroadcastPlayerLeft(clientID string) {
	payload := PlayerLeft{Kind: "playerLeft", ClientID: clientID, At: time.Now().UnixMilli()}
	data, _ := json.Marshal(payload)
	g.Mu.Lock()
	for ch := range g.Watchers {
		select {
		case ch <- data:
		default:
		}
	}
	g.Mu.Unlock()
}

// AddWatcher registers a notification channel.
func (g *Game) AddWatcher(ch chan []byte) {
	g.Mu.Lock()
	g.Watchers[ch] = struct{}{}
	g.Mu.Unlock()
}

// RemoveWatcher unregisters a notification channel.
func (g *Game) RemoveWatcher(ch chan []byte) {
	g.Mu.Lock()
	delete(g.Watchers, ch)
	g.Mu.Unlock()
}

// Attach notes a live stream for clientID. A participant may hold an
// SSE stream and a websocket at once.
func (g *Game) Attach(clientID string) {
	if clientID == "" {
		return
	}
	g.Mu.Lock()
	if g.conns == nil {
		g.conns = make(map[string]int)
	}
	g.conns[clientID]++
	g.Mu.Unlock()
}

// Detach drops one stream for clientID and reports whether it was the
// last one; only then has the participant actually disconnected.
func (g *Game) Detach(clientID string) bool {
	if clientID == "" {
		return false
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.conns == nil {
		return true
	}
	g.conns[clientID]--
	if g.conns[clientID] > 0 {
		return false
	}
	delete(g.conns, clientID)
	return true
}

// RemoveClient handles a disconnect. If a seated participant leaves a
// game still in progress the room goes inactive and the caller should
// broadcast the departure to whoever remains.
func (g *Game) RemoveClient(clientID string) bool {
	g.Mu.Lock()
	seated := g.seatedLocked(clientID)
	if seated {
		for i, p := range g.Players {
			if p == clientID {
				g.Players = append(g.Players[:i], g.Players[i+1:]...)
				break
			}
		}
	}
	abandoned := seated && g.active && g.phase == PhaseInProgress
	if abandoned {
		g.active = false
	}
	g.Mu.Unlock()
	if seated {
		g.archiveParticipantLeft(clientID)
	}
	if abandoned {
		g.archiveAbandoned()
	}
	return abandoned
}

// roomUUID parses the room id for the archive store; rooms created by
// the hub always carry uuid ids, ad hoc ids just skip archiving.
func (g *Game) roomUUID() (uuid.UUID, bool) {
	id, err := uuid.Parse(g.ID)
	return id, err == nil
}

func (g *Game) archiveActionLocked(clientID, kind string, fr, fc, tr, tc int, captured string) {
	if g.store == nil {
		return
	}
	id, ok := g.roomUUID()
	if !ok {
		return
	}
	_ = g.store.RecordAction(context.Background(), id, clientID, g.turnCount, kind, fr, fc, tr, tc, captured)
}

func (g *Game) archiveCompleteLocked() {
	if g.store == nil {
		return
	}
	id, ok := g.roomUUID()
	if !ok {
		return
	}
	_ = g.store.CompleteRoom(context.Background(), id, string(PhaseOver), g.winner.String(), time.Now())
}

func (g *Game) archiveAbandoned() {
	if g.store == nil {
		return
	}
	id, ok := g.roomUUID()
	if !ok {
		return
	}
	_ = g.store.CompleteRoom(context.Background(), id, "abandoned", "", time.Now())
}

func (g *Game) archiveReset() {
	if g.store == nil {
		return
	}
	id, ok := g.roomUUID()
	if !ok {
		return
	}
	_ = g.store.ResetRoom(context.Background(), id, time.Now())
}

func (g *Game) archiveParticipantLocked(clientID string) {
	if g.store == nil {
		return
	}
	id, ok := g.roomUUID()
	if !ok {
		return
	}
	_ = g.store.EnsureParticipant(context.Background(), id, clientID, string(RolePlayer), time.Now())
}

func (g *Game) archiveParticipantLeft(clientID string) {
	if g.store == nil {
		return
	}
	id, ok := g.roomUUID()
	if !ok {
		return
	}
	_ = g.store.DeactivateParticipant(context.Background(), id, clientID)
}

func (g *Game) archiveLastSeen() {
	if g.store == nil {
		return
	}
	id, ok := g.roomUUID()
	if !ok {
		return
	}
	g.Mu.Lock()
	seen := g.LastSeen
	g.Mu.Unlock()
	_ = g.store.UpdateLastSeen(context.Background(), id, seen)
}
