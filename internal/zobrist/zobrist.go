// Package zobrist implements the incremental Zobrist hash used by the
// search tree (internal/mcts) to detect transpositions: two boards reached
// by different move orders but with the same chip layout.
package zobrist

import (
	"math/rand/v2"

	"github.com/ochaos/entropy/internal/game"
)

// table[c][p] holds a fixed random 64-bit key for colour c at position p,
// built once from a deterministic seed so runs are reproducible. Read-only
// after init.
var table [game.NumColours + 1][game.BoardArea]uint64

func init() {
	// Fixed seed: reproducible hashes across runs, matching this engine's
	// convention of explicit, non-global RNGs everywhere a result must be
	// reproducible for tests and for the transposition cache's stability.
	rng := rand.New(rand.NewPCG(0x656e74726f7079, 0x7a6f627269737431))
	for c := game.Colour(1); c <= game.NumColours; c++ {
		for p := 0; p < game.BoardArea; p++ {
			table[c][p] = rng.Uint64()
		}
	}
}

// Hash is the pair (XOR key, open-cell count) that together identify a
// board's content for transposition purposes; it is itself comparable, so
// it can be used directly as a map key. It is a plain value: every method
// returns an updated copy rather than mutating the receiver.
type Hash struct {
	Value uint64
	Open  int
}

// New returns the hash of an empty board.
func New() Hash {
	return Hash{Open: game.BoardArea}
}

// Toggle XORs the key for (c, p) into the hash. Calling it twice for the
// same (c, p) restores the original value, which is how a slide move
// (remove from one cell, add to another) is expressed as two Toggle calls.
func (h Hash) Toggle(c game.Colour, p game.Pos) Hash {
	h.Value ^= table[c][p]
	return h
}

// DecrementOpen records that one more cell became occupied. Placements call
// this; slides do not (a slide frees one cell and fills another, leaving
// the open count unchanged).
func (h Hash) DecrementOpen() Hash {
	h.Open--
	return h
}

// AfterPlace returns the hash after placing colour c at position p.
func (h Hash) AfterPlace(c game.Colour, p game.Pos) Hash {
	return h.Toggle(c, p).DecrementOpen()
}

// AfterMove returns the hash after sliding colour c from "from" to "to".
func (h Hash) AfterMove(c game.Colour, from, to game.Pos) Hash {
	return h.Toggle(c, from).Toggle(c, to)
}
