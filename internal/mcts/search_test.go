package mcts

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/pool"
	"github.com/ochaos/entropy/internal/zobrist"
)

func testParams() Params {
	p := DefaultParams()
	p.OrderSlabCapacity = 4096
	p.ChaosSlabCapacity = 4096
	return p
}

// buildHash reconstructs the zobrist hash of a board that was mutated
// directly (bypassing an Agent), the same way cmd/entropy's benchmark does.
func buildHash(board *game.BoardState) zobrist.Hash {
	h := zobrist.New()
	for pos := game.Pos(0); pos < game.BoardArea; pos++ {
		if c := board.Cell(pos); c != game.Empty {
			h = h.AfterPlace(c, pos)
		}
	}
	return h
}

func TestSearchOrderRootReturnsALegalVisitedMove(t *testing.T) {
	board := game.NewBoardState()
	p := pool.New()

	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(0, 0), Colour: game.Red}))
	var err error
	p, err = p.Remove(game.Red)
	require.NoError(t, err)
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(0, 2), Colour: game.Red}))
	p, err = p.Remove(game.Red)
	require.NoError(t, err)

	search := NewSearch(testParams(), rand.New(rand.NewPCG(1, 1)))
	root := search.NewOrderRoot(board, p, buildHash(&board))
	search.RunOrderRoot(context.Background(), root, 500)

	move, err := search.BestOrderMove(root)
	require.NoError(t, err)

	// Whatever BestOrderMove picked must actually be legal from this board:
	// either the fixed Pass move, or a move the board itself enumerates.
	if !move.IsPass() {
		found := false
		board.ForEachOrderMove(func(m game.OrderMove) {
			if m == move {
				found = true
			}
		})
		assert.True(t, found, "search returned a move the board doesn't recognize: %v", move)
	}
	newBoard := board
	require.NoError(t, newBoard.Move(move))

	stats := search.Stats()
	assert.Greater(t, stats.OrderNodes, 0)
	assert.Greater(t, stats.ChaosNodes, 0)
}

// TestRunOrderRootExpandsEveryMoveBeforeSpendingBudget pins Testable
// Property #9 (root.N == k + initial expansions) at a near-empty board,
// where the root has far more legal moves than the rollouts budget. A
// budget that only ran `rollouts` total iterations would leave some
// enumerated moves at zero visits, invisible to BestOrderMove.
func TestRunOrderRootExpandsEveryMoveBeforeSpendingBudget(t *testing.T) {
	board := game.NewBoardState()
	p := pool.New()
	// A single central chip already has 12 legal slide destinations (its
	// whole empty row plus its whole empty column), comfortably more than
	// the rollouts budget below.
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(3, 3), Colour: game.Red}))
	var err error
	p, err = p.Remove(game.Red)
	require.NoError(t, err)

	search := NewSearch(testParams(), rand.New(rand.NewPCG(11, 11)))
	root := search.NewOrderRoot(board, p, buildHash(&board))

	node, ok := search.orderSlab.Get(root)
	require.True(t, ok)
	candidateCount := len(node.moves)

	const rollouts = 5
	require.Greater(t, candidateCount, rollouts, "test needs a root with more candidates than the rollouts budget")

	search.RunOrderRoot(context.Background(), root, rollouts)

	for i, v := range node.visits {
		assert.Greater(t, v, 0, "move %v at index %d was never expanded", node.moves[i], i)
	}
	assert.Equal(t, rollouts+candidateCount, node.totalVisits)
}

func TestSearchChaosRootRestrictsToRevealedColour(t *testing.T) {
	board := game.NewBoardState()
	p := pool.New()
	search := NewSearch(testParams(), rand.New(rand.NewPCG(2, 2)))
	root := search.NewChaosRoot(board, p, buildHash(&board))

	search.PruneChaosExceptColour(root, game.Blue)
	search.RunChaosRoot(context.Background(), root, game.Blue, 200)

	pos, err := search.BestChaosPosition(root, game.Blue)
	require.NoError(t, err)
	assert.True(t, pos.Valid())

	// The other colours were never explored at the root: asking for one
	// that was pruned before any run has no visited placements.
	_, err = search.BestChaosPosition(root, game.Red)
	assert.Error(t, err)
}

func TestChildAfterOrderMoveFollowsExploredBranch(t *testing.T) {
	board := game.NewBoardState()
	p := pool.New()
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(0, 0), Colour: game.Red}))
	p, err := p.Remove(game.Red)
	require.NoError(t, err)

	search := NewSearch(testParams(), rand.New(rand.NewPCG(3, 3)))
	root := search.NewOrderRoot(board, p, buildHash(&board))
	search.RunOrderRoot(context.Background(), root, 300)

	move, err := search.BestOrderMove(root)
	require.NoError(t, err)
	child, terminal, ok := search.ChildAfterOrderMove(root, move)
	require.True(t, ok)
	assert.False(t, terminal)
	assert.NotEqual(t, child, root)
}

func TestRetainAndReleaseKeepsPromotedSubtreeAlive(t *testing.T) {
	board := game.NewBoardState()
	p := pool.New()
	require.NoError(t, board.Place(game.ChaosMove{Pos: game.RC(0, 0), Colour: game.Red}))
	p, err := p.Remove(game.Red)
	require.NoError(t, err)

	search := NewSearch(testParams(), rand.New(rand.NewPCG(4, 4)))
	root := search.NewOrderRoot(board, p, buildHash(&board))
	search.RunOrderRoot(context.Background(), root, 300)

	move, err := search.BestOrderMove(root)
	require.NoError(t, err)
	child, _, ok := search.ChildAfterOrderMove(root, move)
	require.True(t, ok)

	search.RetainChaos(child)
	search.ReleaseOrder(root)

	// child must still be live: RetainChaos protected it from the cascade
	// that released every other branch rooted at root, so only the retained
	// reference is left. A dead handle would make BestChaosPosition fail
	// with errNoRoot; a live one answers or fails with a different error.
	node, live := search.chaosSlab.Get(child)
	require.True(t, live)
	assert.Equal(t, 1, node.parents)
	_, err = search.BestChaosPosition(child, game.Blue)
	assert.NotErrorIs(t, err, errNoRoot)
}
