package rollout

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/pool"
)

func TestSmartRolloutFillsTheBoard(t *testing.T) {
	board := game.NewBoardState()
	p := pool.New()
	rng := rand.New(rand.NewPCG(5, 6))
	score := SmartRollout(board, p, game.Chaos, rng)
	assert.GreaterOrEqual(t, score, 0)
}

func TestSmartRolloutDoesNotMutateCallerState(t *testing.T) {
	board := game.NewBoardState()
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(0, 0), Colour: game.Red}))
	p := pool.New()
	snapshot := board
	rng := rand.New(rand.NewPCG(7, 8))
	SmartRollout(board, p, game.Order, rng)
	assert.Equal(t, snapshot, board)
}

func TestBestOrderMovePrefersPositiveDelta(t *testing.T) {
	board := game.NewBoardState()
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(0, 0), Colour: game.Red}))
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(0, 2), Colour: game.Red}))
	rng := rand.New(rand.NewPCG(1, 1))
	move := BestOrderMove(&board, rng)
	delta := board.MoveDelta(move)
	assert.GreaterOrEqual(t, delta, 0)
}

func TestBestChaosPlacementPrefersNonPositiveDelta(t *testing.T) {
	board := game.NewBoardState()
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(3, 3), Colour: game.Red}))
	rng := rand.New(rand.NewPCG(2, 2))
	pos := BestChaosPlacement(&board, game.Red, rng)
	delta := board.PlacementDelta(game.ChaosMove{Pos: pos, Colour: game.Red})
	assert.LessOrEqual(t, delta, 0)
}
