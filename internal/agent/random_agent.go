package agent

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/pool"
	"github.com/ochaos/entropy/internal/rollout"
)

// randomAgent plays by the smart-rollout policy's single-ply decision rule
// directly, with no tree search: greedy Delta-score, ties broken uniformly
// at random. It is a fast opponent/baseline for the competition CLI command
// and the agent the console protocol tests drive.
type randomAgent struct {
	board  game.BoardState
	pool   pool.Pool
	toMove game.Role
	rng    *rand.Rand
}

// NewRandom returns a rollout-only Agent with no tree search.
func NewRandom(rng *rand.Rand) Agent {
	return &randomAgent{
		board:  game.NewBoardState(),
		pool:   pool.New(),
		toMove: game.Chaos,
		rng:    rng,
	}
}

func (a *randomAgent) SuggestChaosMove(_ context.Context, colour game.Colour) (game.ChaosMove, error) {
	if a.toMove != game.Chaos {
		return game.ChaosMove{}, errors.New("agent: not expecting a chaos move")
	}
	pos := rollout.BestChaosPlacement(&a.board, colour, a.rng)
	return game.ChaosMove{Pos: pos, Colour: colour}, nil
}

func (a *randomAgent) SuggestOrderMove(_ context.Context) (game.OrderMove, error) {
	if a.toMove != game.Order {
		return game.Pass(), errors.New("agent: not expecting an order move")
	}
	return rollout.BestOrderMove(&a.board, a.rng), nil
}

func (a *randomAgent) RegisterChaosMove(move game.ChaosMove) error {
	if a.toMove != game.Chaos {
		return errors.New("agent: not expecting a chaos move")
	}
	if err := a.board.Place(move); err != nil {
		return errors.Wrap(err, "agent: register chaos move")
	}
	next, err := a.pool.Remove(move.Colour)
	if err != nil {
		return errors.Wrap(err, "agent: register chaos move")
	}
	a.pool = next
	a.toMove = game.Order
	return nil
}

func (a *randomAgent) Score() int {
	return a.board.TotalScore()
}

func (a *randomAgent) RegisterOrderMove(move game.OrderMove) error {
	if a.toMove != game.Order {
		return errors.New("agent: not expecting an order move")
	}
	if err := a.board.Move(move); err != nil {
		return errors.Wrap(err, "agent: register order move")
	}
	a.toMove = game.Chaos
	return nil
}
