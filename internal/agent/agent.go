// Package agent implements the move-maker façade: a stateful player that
// tracks its own copy of the board and chip pool, and on request suggests a
// move for either role, reusing whatever search-tree statistics survive
// from earlier turns.
package agent

import (
	"context"

	"github.com/ochaos/entropy/internal/game"
)

// Agent is the common interface both the MCTS-backed and the random
// baseline players implement.
type Agent interface {
	// SuggestOrderMove returns the move the agent would play as Order.
	SuggestOrderMove(ctx context.Context) (game.OrderMove, error)
	// SuggestChaosMove returns the placement the agent would play as
	// Chaos, for a colour already drawn by the referee.
	SuggestChaosMove(ctx context.Context, colour game.Colour) (game.ChaosMove, error)
	// RegisterOrderMove advances the agent's own state by an Order move
	// actually played (by itself or an opponent).
	RegisterOrderMove(move game.OrderMove) error
	// RegisterChaosMove advances the agent's own state by a Chaos
	// placement actually played.
	RegisterChaosMove(move game.ChaosMove) error
	// Score returns the agent's own board's current total palindrome
	// score.
	Score() int
}
