package game

import "github.com/pkg/errors"

// Board dimensions: Entropy is played on a fixed 7x7 grid.
const (
	BoardSize = 7
	BoardArea = BoardSize * BoardSize // 49
)

// Pos is a single cell index, row*BoardSize+col, in [0,BoardArea).
type Pos int8

// NonePos is the sentinel "no position" value, used for passes.
const NonePos Pos = -1

// RC builds a Pos from a zero-based row and column.
func RC(row, col int) Pos { return Pos(row*BoardSize + col) }

// Row returns the zero-based row of p.
func (p Pos) Row() int { return int(p) / BoardSize }

// Col returns the zero-based column of p.
func (p Pos) Col() int { return int(p) % BoardSize }

// Valid reports whether p addresses a cell on the board.
func (p Pos) Valid() bool { return p >= 0 && int(p) < BoardArea }

// String renders a position in referee notation: row 'A'..'G', column
// 'a'..'g', e.g. "Dd". NonePos renders as "--".
func (p Pos) String() string {
	if p == NonePos {
		return "--"
	}
	return string(rune('A'+p.Row())) + string(rune('a'+p.Col()))
}

// ParsePos parses referee notation ("Dd") back into a Pos.
func ParsePos(s string) (Pos, error) {
	if len(s) != 2 {
		return NonePos, errors.Errorf("game: malformed position %q", s)
	}
	row := int(s[0] - 'A')
	col := int(s[1] - 'a')
	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return NonePos, errors.Errorf("game: position %q out of range", s)
	}
	return RC(row, col), nil
}
