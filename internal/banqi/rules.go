package banqi

// Rule predicates and the one mutation they justify. Everything here is
// pure over the board passed in; turn order and participant identity are
// the caller's problem.

// CanReveal reports whether (row, col) holds a face-down piece.
func CanReveal(b *Board, row, col int) bool {
	p, err := b.At(row, col)
	if err != nil {
		return false
	}
	return !p.IsEmpty() && !p.FaceUp
}

// IsOrthogonalAdjacent reports whether the two cells are exactly one
// step apart along a single axis.
func IsOrthogonalAdjacent(fromRow, fromCol, toRow, toCol int) bool {
	dr := fromRow - toRow
	dc := fromCol - toCol
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// CanCapture applies the rank hierarchy. The Soldier takes the General
// and the General cannot take the Soldier; otherwise equal-or-higher
// rank captures.
func CanCapture(attacker, defender Piece) bool {
	if attacker.Color == defender.Color {
		return false
	}
	if attacker.Type == Soldier && defender.Type == General {
		return true
	}
	if attacker.Type == General && defender.Type == Soldier {
		return false
	}
	return attacker.Type.Rank() >= defender.Type.Rank()
}

// CanCannonCapture reports whether a cannon on from could jump to to:
// same row or column, with exactly one occupied cell (the screen)
// strictly between them. Face-up or face-down, any color, a piece is a
// piece as far as the screen is concerned.
func CanCannonCapture(b *Board, fromRow, fromCol, toRow, toCol int) bool {
	if !InBounds(fromRow, fromCol) || !InBounds(toRow, toCol) {
		return false
	}
	if fromRow != toRow && fromCol != toCol {
		return false
	}
	if fromRow == toRow && fromCol == toCol {
		return false
	}
	dr := sign(toRow - fromRow)
	dc := sign(toCol - fromCol)
	screens := 0
	for r, c := fromRow+dr, fromCol+dc; r != toRow || c != toCol; r, c = r+dr, c+dc {
		if !b.cells[index(r, c)].IsEmpty() {
			screens++
		}
	}
	return screens == 1
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// IsLegalMove validates a relocation or capture by mover from one cell
// to another. Moving onto a face-down piece is never legal.
func IsLegalMove(b *Board, fromRow, fromCol, toRow, toCol int, mover Color) bool {
	src, err := b.At(fromRow, fromCol)
	if err != nil {
		return false
	}
	dst, err := b.At(toRow, toCol)
	if err != nil {
		return false
	}
	if src.IsEmpty() || !src.FaceUp || src.Color != mover {
		return false
	}
	if src.Type == Cannon {
		if dst.IsEmpty() {
			return IsOrthogonalAdjacent(fromRow, fromCol, toRow, toCol)
		}
		return dst.FaceUp && dst.Color != mover && CanCannonCapture(b, fromRow, fromCol, toRow, toCol)
	}
	if !IsOrthogonalAdjacent(fromRow, fromCol, toRow, toCol) {
		return false
	}
	if dst.IsEmpty() {
		return true
	}
	return dst.FaceUp && dst.Color != mover && CanCapture(src, dst)
}

// ApplyMove performs an already-validated move: the source piece lands
// on the target cell, the source cell empties, and any occupant of the
// target is removed from the game. Returns the captured piece, if any.
func ApplyMove(b *Board, fromRow, fromCol, toRow, toCol int) (Piece, bool) {
	src := b.cells[index(fromRow, fromCol)]
	captured := b.cells[index(toRow, toCol)]
	b.cells[index(toRow, toCol)] = src
	b.cells[index(fromRow, fromCol)] = Piece{}
	return captured, !captured.IsEmpty()
}

// HasAnyLegalAction reports whether color has at least one legal reveal
// or move. Any face-down piece anywhere is a legal reveal, so the board
// can only lock up once everything is face up.
func HasAnyLegalAction(b *Board, color Color) bool {
	if b.FaceDownRemaining() {
		return true
	}
	for fr := 0; fr < Rows; fr++ {
		for fc := 0; fc < Cols; fc++ {
			p := b.cells[index(fr, fc)]
			if p.IsEmpty() || !p.FaceUp || p.Color != color {
				continue
			}
			for tr := 0; tr < Rows; tr++ {
				for tc := 0; tc < Cols; tc++ {
					if IsLegalMove(b, fr, fc, tr, tc, color) {
						return true
					}
				}
			}
		}
	}
	return false
}

// CheckTerminal decides whether the game is over with toMove next to
// act. A side with no pieces left anywhere has lost; a side to move
// with no legal action has lost.
func CheckTerminal(b *Board, toMove Color) (bool, Color) {
	if b.CountColor(Red) == 0 {
		return true, Black
	}
	if b.CountColor(Black) == 0 {
		return true, Red
	}
	if toMove != NoColor && !HasAnyLegalAction(b, toMove) {
		return true, toMove.Opposite()
	}
	return false, NoColor
}
