package banqi

// Color identifies a side. NoColor is used before the first reveal
// decides which participant plays which side.
type Color int8

const (
	NoColor Color = iota
	Red
	Black
)

// Opposite returns the other side, or NoColor for NoColor.
func (c Color) Opposite() Color {
	switch c {
	case Red:
		return Black
	case Black:
		return Red
	}
	return NoColor
}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return ""
}

// PieceType enumerates the seven Banqi piece kinds. The ordinal doubles
// as the capture rank: Soldier is 1, General is 7.
type PieceType int8

const (
	None PieceType = iota
	Soldier
	Cannon
	Horse
	Chariot
	Elephant
	Advisor
	General
)

// Rank returns the capture rank used by CanCapture. Higher ranks capture
// lower ones, with the Soldier/General exception handled separately.
func (t PieceType) Rank() int { return int(t) }

func (t PieceType) String() string {
	switch t {
	case Soldier:
		return "soldier"
	case Cannon:
		return "cannon"
	case Horse:
		return "horse"
	case Chariot:
		return "chariot"
	case Elephant:
		return "elephant"
	case Advisor:
		return "advisor"
	case General:
		return "general"
	}
	return ""
}

// Piece is one of the 32 tiles. The zero value is an empty cell.
// FaceUp only ever transitions false to true; a reset replaces the
// whole board rather than flipping pieces back.
type Piece struct {
	Type   PieceType
	Color  Color
	FaceUp bool
}

// IsEmpty reports whether p is the empty-cell sentinel.
func (p Piece) IsEmpty() bool { return p.Type == None }

// pieceCounts is the per-color distribution: 16 pieces each side.
var pieceCounts = []struct {
	t PieceType
	n int
}{
	{General, 1},
	{Advisor, 2},
	{Elephant, 2},
	{Chariot, 2},
	{Horse, 2},
	{Cannon, 2},
	{Soldier, 5},
}

// fullSet returns the complete 32-piece set, all face down.
func fullSet() []Piece {
	set := make([]Piece, 0, NumCells)
	for _, color := range []Color{Red, Black} {
		for _, pc := range pieceCounts {
			for i := 0; i < pc.n; i++ {
				set = append(set, Piece{Type: pc.t, Color: color})
			}
		}
	}
	return set
}
