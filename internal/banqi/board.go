package banqi

import (
	"errors"
	"math/rand"
	"time"
)

const (
	Rows     = 4
	Cols     = 8
	NumCells = Rows * Cols
)

// ErrOutOfBounds is returned for coordinates outside the 4x8 grid.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// Board is the 4x8 grid. Cells hold a Piece value; the zero Piece marks
// an empty cell. All mutation goes through Set, Clear and FlipUp.
type Board struct {
	cells [NumCells]Piece
}

func index(row, col int) int { return row*Cols + col }

// InBounds reports whether (row, col) is on the grid.
func InBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// NewShuffledBoard deals the full 32-piece set face down onto the grid
// in uniformly random order.
func NewShuffledBoard() *Board {
	return NewShuffledBoardFrom(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewShuffledBoardFrom is NewShuffledBoard with a caller-supplied source,
// for deterministic deals.
func NewShuffledBoardFrom(r *rand.Rand) *Board {
	set := fullSet()
	for i := len(set) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		set[i], set[j] = set[j], set[i]
	}
	b := &Board{}
	copy(b.cells[:], set)
	return b
}

// At returns the piece at (row, col); the zero Piece for an empty cell.
func (b *Board) At(row, col int) (Piece, error) {
	if !InBounds(row, col) {
		return Piece{}, ErrOutOfBounds
	}
	return b.cells[index(row, col)], nil
}

// Set places p at (row, col), replacing whatever was there.
func (b *Board) Set(row, col int, p Piece) error {
	if !InBounds(row, col) {
		return ErrOutOfBounds
	}
	b.cells[index(row, col)] = p
	return nil
}

// Clear empties the cell at (row, col).
func (b *Board) Clear(row, col int) error {
	return b.Set(row, col, Piece{})
}

// FlipUp turns the piece at (row, col) face up.
func (b *Board) FlipUp(row, col int) error {
	if !InBounds(row, col) {
		return ErrOutOfBounds
	}
	b.cells[index(row, col)].FaceUp = true
	return nil
}

// CountColor counts pieces of color c anywhere on the board, face up or
// face down.
func (b *Board) CountColor(c Color) int {
	n := 0
	for _, p := range b.cells {
		if !p.IsEmpty() && p.Color == c {
			n++
		}
	}
	return n
}

// CountOccupied counts non-empty cells.
func (b *Board) CountOccupied() int {
	n := 0
	for _, p := range b.cells {
		if !p.IsEmpty() {
			n++
		}
	}
	return n
}

// FaceDownRemaining reports whether any face-down piece is left.
func (b *Board) FaceDownRemaining() bool {
	for _, p := range b.cells {
		if !p.IsEmpty() && !p.FaceUp {
			return true
		}
	}
	return false
}

// CellView is the broadcast form of one cell. Type and Color are omitted
// while the piece is face down: both participants see the same opaque
// tile, the authoritative identity stays server-side.
type CellView struct {
	Type   string `json:"type,omitempty"`
	Color  string `json:"color,omitempty"`
	FaceUp bool   `json:"faceUp"`
}

// Cells returns the 32-cell row-major view used in state broadcasts.
// Empty cells are nil.
func (b *Board) Cells() []*CellView {
	out := make([]*CellView, NumCells)
	for i, p := range b.cells {
		if p.IsEmpty() {
			continue
		}
		cv := &CellView{FaceUp: p.FaceUp}
		if p.FaceUp {
			cv.Type = p.Type.String()
			cv.Color = p.Color.String()
		}
		out[i] = cv
	}
	return out
}
