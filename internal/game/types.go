package game

import (
	"sync"
	"time"

	"banqi/internal/banqi"
	"banqi/internal/storage"
)

// Phase is the game lifecycle state.
type Phase string

const (
	PhaseAwaitingFirstReveal Phase = "awaiting_first_reveal"
	PhaseInProgress          Phase = "in_progress"
	PhaseOver                Phase = "over"
)

// Role is what a connected client is to a room.
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// RejectCode is the stable machine-readable reason of a rejected intent.
type RejectCode string

const (
	CodeOutOfBounds   RejectCode = "out_of_bounds"
	CodeIllegalReveal RejectCode = "illegal_reveal"
	CodeIllegalMove   RejectCode = "illegal_move"
	CodeNotYourTurn   RejectCode = "not_your_turn"
	CodeRoomNotFound  RejectCode = "room_not_found"
	CodeRoomFull      RejectCode = "room_full"
)

// Rejection is the structured refusal sent back to the requester only.
// A rejected intent never mutates game state and never broadcasts.
type Rejection struct {
	Code   RejectCode `json:"code"`
	Reason string     `json:"error"`
}

func (r *Rejection) Error() string { return string(r.Code) + ": " + r.Reason }

func reject(code RejectCode, reason string) *Rejection {
	return &Rejection{Code: code, Reason: reason}
}

// Hub manages all active rooms.
type Hub struct {
	Mu    sync.Mutex
	Games map[string]*Game
	store *storage.Store
}

// Game is one room's authoritative state machine: the board plus
// phase/turn/binding state. The per-room mutex serializes the two
// participants' intents; nothing outside this package touches a board.
type Game struct {
	Mu        sync.Mutex
	ID        string
	board     *banqi.Board
	phase     Phase
	current   banqi.Color
	winner    banqi.Color
	turnCount int
	active    bool

	Players  []string               // join order, at most two seats
	Colors   map[string]banqi.Color // bound at the first accepted reveal
	Watchers map[chan []byte]struct{}
	LastSeen time.Time
	conns    map[string]int // live streams per client, across SSE and ws

	store *storage.Store
}

// RevealRequest is a reveal intent from a client.
type RevealRequest struct {
	ClientID string `json:"clientId"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

// MoveRequest is a move intent from a client.
type MoveRequest struct {
	ClientID string `json:"clientId"`
	FromRow  int    `json:"fromRow"`
	FromCol  int    `json:"fromCol"`
	ToRow    int    `json:"toRow"`
	ToCol    int    `json:"toCol"`
}

// ResetRequest is a reset intent from a client.
type ResetRequest struct {
	ClientID string `json:"clientId"`
}

// State is the authoritative room snapshot broadcast identically to
// both participants (and any spectators) after every accepted action.
type State struct {
	Kind       string            `json:"kind"`
	Board      []*banqi.CellView `json:"board"`
	Turn       string            `json:"turn"`
	TurnHolder string            `json:"turnHolder,omitempty"`
	Phase      Phase             `json:"phase"`
	Winner     string            `json:"winner,omitempty"`
	TurnCount  int               `json:"turnCount"`
	Active     bool              `json:"active"`
	Watchers   int               `json:"watchers"`
	LastSeen   int64             `json:"lastSeen"`
}

// PlayerLeft is broadcast when a seated participant disconnects.
type PlayerLeft struct {
	Kind     string `json:"kind"`
	ClientID string `json:"clientId"`
	At       int64  `json:"at"`
}
