package banqi

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShuffledBoardDistribution(t *testing.T) {
	b := NewShuffledBoardFrom(rand.New(rand.NewSource(1)))

	require.Equal(t, NumCells, b.CountOccupied(), "every cell starts occupied")
	assert.Equal(t, 16, b.CountColor(Red))
	assert.Equal(t, 16, b.CountColor(Black))

	counts := make(map[Color]map[PieceType]int)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			p, err := b.At(r, c)
			require.NoError(t, err)
			require.False(t, p.FaceUp, "pieces are dealt face down")
			if counts[p.Color] == nil {
				counts[p.Color] = make(map[PieceType]int)
			}
			counts[p.Color][p.Type]++
		}
	}
	for _, color := range []Color{Red, Black} {
		assert.Equal(t, 1, counts[color][General])
		assert.Equal(t, 2, counts[color][Advisor])
		assert.Equal(t, 2, counts[color][Elephant])
		assert.Equal(t, 2, counts[color][Chariot])
		assert.Equal(t, 2, counts[color][Horse])
		assert.Equal(t, 2, counts[color][Cannon])
		assert.Equal(t, 5, counts[color][Soldier])
	}
}

func TestShuffleVariesBySource(t *testing.T) {
	a := NewShuffledBoardFrom(rand.New(rand.NewSource(1)))
	b := NewShuffledBoardFrom(rand.New(rand.NewSource(2)))
	assert.NotEqual(t, a.cells, b.cells)
}

func TestAtOutOfBounds(t *testing.T) {
	b := &Board{}
	for _, coord := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 8}} {
		_, err := b.At(coord[0], coord[1])
		assert.True(t, errors.Is(err, ErrOutOfBounds), "coord %v", coord)
	}
	assert.True(t, errors.Is(b.Set(4, 8, Piece{}), ErrOutOfBounds))
	assert.True(t, errors.Is(b.FlipUp(-1, 3), ErrOutOfBounds))
}

func TestFlipUp(t *testing.T) {
	b := &Board{}
	require.NoError(t, b.Set(2, 5, Piece{Type: Horse, Color: Black}))
	require.NoError(t, b.FlipUp(2, 5))
	p, err := b.At(2, 5)
	require.NoError(t, err)
	assert.True(t, p.FaceUp)
}

func TestCellsHideFaceDownIdentity(t *testing.T) {
	b := &Board{}
	require.NoError(t, b.Set(0, 0, Piece{Type: General, Color: Red}))
	require.NoError(t, b.Set(0, 1, Piece{Type: Soldier, Color: Black, FaceUp: true}))

	cells := b.Cells()
	require.Len(t, cells, NumCells)

	hidden := cells[0]
	require.NotNil(t, hidden)
	assert.False(t, hidden.FaceUp)
	assert.Empty(t, hidden.Type, "face-down type stays server-side")
	assert.Empty(t, hidden.Color, "face-down color stays server-side")

	shown := cells[1]
	require.NotNil(t, shown)
	assert.True(t, shown.FaceUp)
	assert.Equal(t, "soldier", shown.Type)
	assert.Equal(t, "black", shown.Color)

	assert.Nil(t, cells[2], "empty cells serialize as null")
}
