package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyBoardHasZeroScore(t *testing.T) {
	b := NewBoardState()
	assert.Equal(t, 0, b.TotalScore())
	assert.Equal(t, BoardArea, b.OpenCells())
	assert.False(t, b.IsTerminal())
}

func TestPureRowPalindromeScore(t *testing.T) {
	// Row "1,2,3,2,1" (using colours Red,Orange,Yellow,Orange,Red) scores 8:
	// only the two substrings spanning more than one cell are palindromic —
	// [1,3]="2,3,2" (length 3) and [0,4]="1,2,3,2,1" (length 5) — since the
	// score sums over index pairs i<j, single-cell substrings never count.
	// Each of the five chips also occupies a column by itself, contributing
	// nothing (a lone cell has no i<j pair either).
	b := NewBoardState()
	colours := []Colour{Red, Orange, Yellow, Orange, Red}
	for i, c := range colours {
		require.NoError(t, b.Place(ChaosMove{Pos: RC(0, i), Colour: c}))
	}
	assert.Equal(t, 8, b.TotalScore())
}

func TestLineScoreMatchesRawComputation(t *testing.T) {
	cells := [BoardSize]Colour{Red, Orange, Yellow, Orange, Red, Empty, Empty}
	s := BoardStringFromCells(cells)
	assert.Equal(t, rawLineScore(cells), LineScore(s))
}

func TestCanonicalizationIsColourAgnostic(t *testing.T) {
	a := BoardStringFromCells([BoardSize]Colour{Red, Orange, Red, Empty, Empty, Empty, Empty})
	b := BoardStringFromCells([BoardSize]Colour{Blue, Violet, Blue, Empty, Empty, Empty, Empty})
	assert.Equal(t, Canonical(a), Canonical(b))
	assert.Equal(t, LineScore(a), LineScore(b))
}

func TestPlaceRejectsOccupiedCell(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(3, 3), Colour: Red}))
	err := b.Place(ChaosMove{Pos: RC(3, 3), Colour: Blue})
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestMoveSlidesAlongClearRow(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(2, 0), Colour: Red}))
	require.NoError(t, b.Move(OrderMove{From: RC(2, 0), To: RC(2, 4)}))
	assert.Equal(t, Empty, b.Cell(RC(2, 0)))
	assert.Equal(t, Red, b.Cell(RC(2, 4)))
}

func TestMoveRejectsBlockedPath(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(2, 0), Colour: Red}))
	require.NoError(t, b.Place(ChaosMove{Pos: RC(2, 2), Colour: Blue}))
	err := b.Move(OrderMove{From: RC(2, 0), To: RC(2, 4)})
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestMoveDeltaMatchesActualMutation(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(0, 0), Colour: Red}))
	require.NoError(t, b.Place(ChaosMove{Pos: RC(0, 2), Colour: Red}))
	move := OrderMove{From: RC(0, 0), To: RC(0, 1)}
	predicted := b.MoveDelta(move)
	before := b.TotalScore()
	require.NoError(t, b.Move(move))
	assert.Equal(t, before+predicted, b.TotalScore())
}

func TestPlacementDeltaMatchesActualMutation(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(1, 1), Colour: Green}))
	move := ChaosMove{Pos: RC(1, 3), Colour: Green}
	predicted := b.PlacementDelta(move)
	before := b.TotalScore()
	require.NoError(t, b.Place(move))
	assert.Equal(t, before+predicted, b.TotalScore())
}

func TestForEachOrderMoveEnumeratesEachMoveOnce(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(3, 3), Colour: Red}))
	require.NoError(t, b.Place(ChaosMove{Pos: RC(1, 3), Colour: Blue}))

	seen := map[OrderMove]int{}
	b.ForEachOrderMove(func(m OrderMove) { seen[m]++ })
	for m, n := range seen {
		assert.Equalf(t, 1, n, "move %v enumerated %d times", m, n)
	}
	// The chip at (3,3) cannot reach (0,3): the chip at (1,3) blocks the path.
	_, blocked := seen[OrderMove{From: RC(3, 3), To: RC(0, 3)}]
	assert.False(t, blocked)
}

func TestForEachOrderMoveBlockedByOtherChip(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(3, 3), Colour: Red}))
	require.NoError(t, b.Place(ChaosMove{Pos: RC(1, 3), Colour: Blue}))

	var moves []OrderMove
	b.ForEachOrderMove(func(m OrderMove) { moves = append(moves, m) })
	for _, m := range moves {
		if m.From == RC(3, 3) {
			assert.NotEqual(t, RC(0, 3), m.To)
		}
	}
}

func TestOpenCellsDecrementsOnPlace(t *testing.T) {
	b := NewBoardState()
	require.NoError(t, b.Place(ChaosMove{Pos: RC(0, 0), Colour: Red}))
	assert.Equal(t, BoardArea-1, b.OpenCells())
}

func TestBoardIsPlainValueType(t *testing.T) {
	b1 := NewBoardState()
	require.NoError(t, b1.Place(ChaosMove{Pos: RC(0, 0), Colour: Red}))
	b2 := b1 // value copy
	require.NoError(t, b2.Place(ChaosMove{Pos: RC(0, 1), Colour: Blue}))
	assert.Equal(t, Empty, b1.Cell(RC(0, 1)), "mutating the copy must not affect the original")
}
