package agent

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/mcts"
	"github.com/ochaos/entropy/internal/pool"
	"github.com/ochaos/entropy/internal/slab"
	"github.com/ochaos/entropy/internal/zobrist"
)

type rootKind int

const (
	rootNone rootKind = iota
	rootOrder
	rootChaos
)

type rootRef struct {
	kind rootKind
	h    slab.Handle
}

// mctsAgent is the Agent backed by internal/mcts: it keeps its own copy of
// the board and pool, and one live search-tree root matching whichever
// role is next to move, reusing the surviving subtree across turns.
type mctsAgent struct {
	board  game.BoardState
	pool   pool.Pool
	hash   zobrist.Hash
	toMove game.Role

	search   *mcts.Search
	root     rootRef
	rollouts int
}

// NewMCTS returns an Agent backed by Monte Carlo tree search, starting a
// fresh game (Chaos draws and places the first chip).
func NewMCTS(params mcts.Params, rng *rand.Rand) Agent {
	search := mcts.NewSearch(params, rng)
	board := game.NewBoardState()
	p := pool.New()
	hash := zobrist.New()
	return &mctsAgent{
		board:    board,
		pool:     p,
		hash:     hash,
		toMove:   game.Chaos,
		search:   search,
		root:     rootRef{kind: rootChaos, h: search.NewChaosRoot(board, p, hash)},
		rollouts: params.Rollouts,
	}
}

func (a *mctsAgent) SuggestChaosMove(ctx context.Context, colour game.Colour) (game.ChaosMove, error) {
	if a.toMove != game.Chaos || a.root.kind != rootChaos {
		return game.ChaosMove{}, errors.New("agent: not expecting a chaos move")
	}
	a.search.PruneChaosExceptColour(a.root.h, colour)
	a.search.RunChaosRoot(ctx, a.root.h, colour, a.rollouts)
	pos, err := a.search.BestChaosPosition(a.root.h, colour)
	if err != nil {
		return game.ChaosMove{}, errors.Wrap(err, "agent: suggest chaos move")
	}
	stats := a.search.Stats()
	klog.V(1).Infof("agent: suggesting %v%v after %d rollouts (%d order nodes, %d chaos nodes live)",
		colour, pos, a.rollouts, stats.OrderNodes, stats.ChaosNodes)
	return game.ChaosMove{Pos: pos, Colour: colour}, nil
}

func (a *mctsAgent) SuggestOrderMove(ctx context.Context) (game.OrderMove, error) {
	if a.toMove != game.Order || a.root.kind != rootOrder {
		return game.Pass(), errors.New("agent: not expecting an order move")
	}
	a.search.RunOrderRoot(ctx, a.root.h, a.rollouts)
	move, err := a.search.BestOrderMove(a.root.h)
	if err != nil {
		return game.Pass(), errors.Wrap(err, "agent: suggest order move")
	}
	stats := a.search.Stats()
	klog.V(1).Infof("agent: suggesting %v after %d rollouts (%d order nodes, %d chaos nodes live)",
		move, a.rollouts, stats.OrderNodes, stats.ChaosNodes)
	return move, nil
}

func (a *mctsAgent) RegisterChaosMove(move game.ChaosMove) error {
	if a.toMove != game.Chaos || a.root.kind != rootChaos {
		return errors.New("agent: not expecting a chaos move")
	}
	if err := a.board.Place(move); err != nil {
		return errors.Wrap(err, "agent: register chaos move")
	}
	a.hash = a.hash.AfterPlace(move.Colour, move.Pos)
	next, err := a.pool.Remove(move.Colour)
	if err != nil {
		return errors.Wrap(err, "agent: register chaos move")
	}
	a.pool = next

	old := a.root
	child, terminal, ok := a.search.ChildAfterChaosPlacement(old.h, move.Colour, move.Pos)
	if ok && !terminal {
		a.search.RetainOrder(child)
		a.search.ReleaseChaos(old.h)
		a.root = rootRef{kind: rootOrder, h: child}
	} else {
		a.search.ReleaseChaos(old.h)
		if a.board.IsTerminal() {
			a.root = rootRef{kind: rootNone}
		} else {
			a.root = rootRef{kind: rootOrder, h: a.search.NewOrderRoot(a.board, a.pool, a.hash)}
		}
	}
	a.toMove = game.Order
	return nil
}

func (a *mctsAgent) Score() int {
	return a.board.TotalScore()
}

func (a *mctsAgent) RegisterOrderMove(move game.OrderMove) error {
	if a.toMove != game.Order || a.root.kind != rootOrder {
		return errors.New("agent: not expecting an order move")
	}
	if err := a.board.Move(move); err != nil {
		return errors.Wrap(err, "agent: register order move")
	}
	if !move.IsPass() {
		colour := a.board.Cell(move.To)
		a.hash = a.hash.AfterMove(colour, move.From, move.To)
	}

	old := a.root
	child, terminal, ok := a.search.ChildAfterOrderMove(old.h, move)
	if ok && !terminal {
		a.search.RetainChaos(child)
		a.search.ReleaseOrder(old.h)
		a.root = rootRef{kind: rootChaos, h: child}
	} else {
		a.search.ReleaseOrder(old.h)
		if a.board.IsTerminal() {
			a.root = rootRef{kind: rootNone}
		} else {
			a.root = rootRef{kind: rootChaos, h: a.search.NewChaosRoot(a.board, a.pool, a.hash)}
		}
	}
	a.toMove = game.Chaos
	return nil
}
