// Package rollout implements the smart (greedy Delta-score) simulation
// policy used both to score newly expanded search-tree nodes and, stripped
// of the tree entirely, as the "random" baseline agent.
package rollout

import (
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/pool"
)

// SmartRollout plays board forward to completion, alternating roles
// starting with toMove, and returns the final total score. board and p are
// passed by value, so this never mutates the caller's copies.
func SmartRollout(board game.BoardState, p pool.Pool, toMove game.Role, rng *rand.Rand) int {
	for !board.IsTerminal() {
		if toMove == game.Order {
			move := BestOrderMove(&board, rng)
			if err := board.Move(move); err != nil {
				panic(errors.Wrap(err, "rollout: enumerated an illegal order move"))
			}
		} else {
			colour, err := p.Draw(rng)
			if err != nil {
				panic(errors.Wrap(err, "rollout: pool exhausted before the board filled"))
			}
			pos := BestChaosPlacement(&board, colour, rng)
			if err := board.Place(game.ChaosMove{Pos: pos, Colour: colour}); err != nil {
				panic(errors.Wrap(err, "rollout: enumerated an illegal placement"))
			}
		}
		toMove = toMove.Other()
	}
	return board.TotalScore()
}

// BestOrderMove picks uniformly among the legal Order moves (including
// pass, delta zero) that maximize the total-score delta.
func BestOrderMove(board *game.BoardState, rng *rand.Rand) game.OrderMove {
	// Pass is always legal and always has delta zero, so it seeds the
	// candidate set before any other move is considered.
	candidates := []game.OrderMove{game.Pass()}
	bestDelta := 0

	board.ForEachOrderMoveWithDelta(func(m game.OrderMove, delta int) {
		switch {
		case delta > bestDelta:
			candidates = []game.OrderMove{m}
			bestDelta = delta
		case delta == bestDelta:
			candidates = append(candidates, m)
		}
	})
	return candidates[rng.IntN(len(candidates))]
}

// BestChaosPlacement picks uniformly among the empty cells that minimize
// the total-score delta of placing colour there.
func BestChaosPlacement(board *game.BoardState, colour game.Colour, rng *rand.Rand) game.Pos {
	var candidates []game.Pos
	bestDelta := 0
	first := true

	board.ForEachChaosPlacementWithDelta(colour, func(p game.Pos, delta int) {
		switch {
		case first:
			candidates = []game.Pos{p}
			bestDelta = delta
			first = false
		case delta < bestDelta:
			candidates = []game.Pos{p}
			bestDelta = delta
		case delta == bestDelta:
			candidates = append(candidates, p)
		}
	})
	return candidates[rng.IntN(len(candidates))]
}
