package game

import "github.com/pkg/errors"

// ErrIllegalMove is wrapped around any attempt to place or move a chip that
// violates the game rules. Per this engine's error-handling convention,
// these can only arise from caller bugs (the search and rollout code only
// ever enumerates legal moves) and are not meant to be recovered from.
var ErrIllegalMove = errors.New("illegal move")

// BoardState is the 7x7 Entropy board: a plain value type (no pointers or
// slices), so copying it by value is a full, independent clone -- callers
// never need a separate Clone method.
type BoardState struct {
	cells [BoardArea]Colour

	rows [BoardSize]BoardString
	cols [BoardSize]BoardString

	rowScore [BoardSize]int
	colScore [BoardSize]int
	total    int

	open int
}

// NewBoardState returns an empty board.
func NewBoardState() BoardState {
	return BoardState{open: BoardArea}
}

// Cell returns the colour at p (Empty if p is unoccupied).
func (b *BoardState) Cell(p Pos) Colour { return b.cells[p] }

// TotalScore returns the board's total palindrome score, the sum of every
// row's and every column's score.
func (b *BoardState) TotalScore() int { return b.total }

// OpenCells returns the number of unoccupied cells. A board is terminal iff
// this is zero.
func (b *BoardState) OpenCells() int { return b.open }

// IsTerminal reports whether every cell is occupied.
func (b *BoardState) IsTerminal() bool { return b.open == 0 }

// ForEachEmpty calls fn once per unoccupied position.
func (b *BoardState) ForEachEmpty(fn func(Pos)) {
	for p := Pos(0); int(p) < BoardArea; p++ {
		if b.cells[p] == Empty {
			fn(p)
		}
	}
}

// Place puts a chip of the given colour on an empty cell (a Chaos move). It
// refreshes the affected row and column (exactly two lines).
func (b *BoardState) Place(move ChaosMove) error {
	if !move.Pos.Valid() {
		return errors.Wrapf(ErrIllegalMove, "position %v out of range", move.Pos)
	}
	if move.Colour == Empty {
		return errors.Wrapf(ErrIllegalMove, "cannot place the empty colour")
	}
	if b.cells[move.Pos] != Empty {
		return errors.Wrapf(ErrIllegalMove, "cell %v is already occupied", move.Pos)
	}
	b.cells[move.Pos] = move.Colour
	b.refreshRow(move.Pos.Row())
	b.refreshCol(move.Pos.Col())
	b.open--
	return nil
}

// PlacementDelta reports the total-score delta Place(move) would cause,
// without mutating b.
func (b *BoardState) PlacementDelta(move ChaosMove) int {
	rowBefore, colBefore := b.rowScore[move.Pos.Row()], b.colScore[move.Pos.Col()]
	newRow := b.rows[move.Pos.Row()].SetCell(move.Pos.Col(), move.Colour)
	newCol := b.cols[move.Pos.Col()].SetCell(move.Pos.Row(), move.Colour)
	return (LineScore(newRow) - rowBefore) + (LineScore(newCol) - colBefore)
}

// Move slides the chip at From to the empty cell To along their shared row
// or column (an Order move), or does nothing if move.IsPass(). At most
// three lines are refreshed: the line shared by From and To, plus the two
// cross lines whose single affected cell changed.
func (b *BoardState) Move(move OrderMove) error {
	if move.IsPass() {
		return nil
	}
	if !move.From.Valid() || !move.To.Valid() {
		return errors.Wrapf(ErrIllegalMove, "move %v out of range", move)
	}
	colour := b.cells[move.From]
	if colour == Empty {
		return errors.Wrapf(ErrIllegalMove, "no chip at %v", move.From)
	}
	if b.cells[move.To] != Empty {
		return errors.Wrapf(ErrIllegalMove, "target %v is occupied", move.To)
	}
	sameRow := move.From.Row() == move.To.Row()
	sameCol := move.From.Col() == move.To.Col()
	if !sameRow && !sameCol {
		return errors.Wrapf(ErrIllegalMove, "move %v is not along a single row or column", move)
	}
	if err := b.checkClearPath(move, sameRow); err != nil {
		return err
	}

	b.cells[move.From] = Empty
	b.cells[move.To] = colour
	if sameRow {
		b.refreshRow(move.From.Row())
		b.refreshCol(move.From.Col())
		b.refreshCol(move.To.Col())
	} else {
		b.refreshCol(move.From.Col())
		b.refreshRow(move.From.Row())
		b.refreshRow(move.To.Row())
	}
	return nil
}

func (b *BoardState) checkClearPath(move OrderMove, sameRow bool) error {
	if sameRow {
		row := move.From.Row()
		lo, hi := move.From.Col(), move.To.Col()
		if lo > hi {
			lo, hi = hi, lo
		}
		for c := lo + 1; c < hi; c++ {
			if b.cells[RC(row, c)] != Empty {
				return errors.Wrapf(ErrIllegalMove, "path for move %v is blocked", move)
			}
		}
		return nil
	}
	col := move.From.Col()
	lo, hi := move.From.Row(), move.To.Row()
	if lo > hi {
		lo, hi = hi, lo
	}
	for r := lo + 1; r < hi; r++ {
		if b.cells[RC(r, col)] != Empty {
			return errors.Wrapf(ErrIllegalMove, "path for move %v is blocked", move)
		}
	}
	return nil
}

// MoveDelta reports the total-score delta Move(move) would cause, without
// mutating b. move.IsPass() always has a zero delta.
func (b *BoardState) MoveDelta(move OrderMove) int {
	if move.IsPass() {
		return 0
	}
	colour := b.cells[move.From]
	sameRow := move.From.Row() == move.To.Row()
	if sameRow {
		row := move.From.Row()
		newRow := b.rows[row].ClearCell(move.From.Col()).SetCell(move.To.Col(), colour)
		newFromCol := b.cols[move.From.Col()].ClearCell(move.From.Row())
		newToCol := b.cols[move.To.Col()].SetCell(move.From.Row(), colour)
		delta := LineScore(newRow) - b.rowScore[row]
		delta += LineScore(newFromCol) - b.colScore[move.From.Col()]
		delta += LineScore(newToCol) - b.colScore[move.To.Col()]
		return delta
	}
	col := move.From.Col()
	newCol := b.cols[col].ClearCell(move.From.Row()).SetCell(move.To.Row(), colour)
	newFromRow := b.rows[move.From.Row()].ClearCell(move.From.Col())
	newToRow := b.rows[move.To.Row()].SetCell(move.From.Col(), colour)
	delta := LineScore(newCol) - b.colScore[col]
	delta += LineScore(newFromRow) - b.rowScore[move.From.Row()]
	delta += LineScore(newToRow) - b.rowScore[move.To.Row()]
	return delta
}

func (b *BoardState) refreshRow(row int) {
	var s BoardString
	for c := 0; c < BoardSize; c++ {
		s = s.SetCell(c, b.cells[RC(row, c)])
	}
	b.rows[row] = s
	newScore := LineScore(s)
	b.total += newScore - b.rowScore[row]
	b.rowScore[row] = newScore
}

func (b *BoardState) refreshCol(col int) {
	var s BoardString
	for r := 0; r < BoardSize; r++ {
		s = s.SetCell(r, b.cells[RC(r, col)])
	}
	b.cols[col] = s
	newScore := LineScore(s)
	b.total += newScore - b.colScore[col]
	b.colScore[col] = newScore
}

// ForEachOrderMove enumerates every legal non-pass Order move exactly once.
// Each chip is scanned outward in both directions of its row and its
// column; every empty cell reached before hitting another chip or the edge
// yields one move.
func (b *BoardState) ForEachOrderMove(fn func(OrderMove)) {
	for r := 0; r < BoardSize; r++ {
		row := r
		b.forEachSlideInLine(func(i int) Pos { return RC(row, i) }, fn)
	}
	for c := 0; c < BoardSize; c++ {
		col := c
		b.forEachSlideInLine(func(i int) Pos { return RC(i, col) }, fn)
	}
}

func (b *BoardState) forEachSlideInLine(posAt func(i int) Pos, fn func(OrderMove)) {
	var line [BoardSize]Pos
	for i := 0; i < BoardSize; i++ {
		line[i] = posAt(i)
	}
	for i := 0; i < BoardSize; i++ {
		if b.cells[line[i]] == Empty {
			continue
		}
		for j := i + 1; j < BoardSize && b.cells[line[j]] == Empty; j++ {
			fn(OrderMove{From: line[i], To: line[j]})
		}
		for j := i - 1; j >= 0 && b.cells[line[j]] == Empty; j-- {
			fn(OrderMove{From: line[i], To: line[j]})
		}
	}
}

// ForEachOrderMoveWithDelta is ForEachOrderMove, additionally passing each
// move's total-score delta.
func (b *BoardState) ForEachOrderMoveWithDelta(fn func(OrderMove, int)) {
	b.ForEachOrderMove(func(m OrderMove) {
		fn(m, b.MoveDelta(m))
	})
}

// ForEachChaosPlacementWithDelta enumerates every empty cell as a candidate
// placement for colour, with its total-score delta.
func (b *BoardState) ForEachChaosPlacementWithDelta(colour Colour, fn func(Pos, int)) {
	b.ForEachEmpty(func(p Pos) {
		fn(p, b.PlacementDelta(ChaosMove{Pos: p, Colour: colour}))
	})
}

// String renders the board as a 7x7 grid of colour glyphs, one row per
// line, for logging and test failure output.
func (b *BoardState) String() string {
	buf := make([]byte, 0, BoardSize*(BoardSize+1))
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			buf = append(buf, b.cells[RC(r, c)].String()[0])
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
