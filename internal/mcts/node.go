// Package mcts implements the chance-aware Monte Carlo tree search that
// drives both roles of Entropy: Order (a maximizer choosing slides or pass)
// and Chaos (a chance node choosing where to place a drawn chip). Search
// nodes live in two fixed-capacity slabs (internal/slab) and are shared
// across transpositions via a Zobrist-keyed cache (internal/zobrist), with
// multiple parents possible for the same node.
package mcts

import (
	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/pool"
	"github.com/ochaos/entropy/internal/slab"
	"github.com/ochaos/entropy/internal/zobrist"
)

// orderNode is Order's decision point: one candidate per legal move
// (including pass), lazily expanded one at a time.
type orderNode struct {
	board game.BoardState
	pool  pool.Pool
	hash  zobrist.Hash

	parents int // strong-reference count; 0 means unreachable, eligible to drop.

	moves    []game.OrderMove
	children []slab.Handle // parallel to moves; slab.Invalid until expanded.
	visits   []int
	scores   []float64 // cumulative raw (Order-favouring) total score.

	unvisited   []int // indices into moves not yet expanded.
	totalVisits int
	totalScore  float64
}

// chaosNode is Chaos's decision point: seven colour buckets, one per
// colour, each lazily populated with one candidate per empty cell the first
// time that colour is drawn at this node.
type chaosNode struct {
	board game.BoardState
	pool  pool.Pool
	hash  zobrist.Hash

	parents int

	emptyPositions []game.Pos // shared candidate list across colour buckets.
	buckets        [game.NumColours]colourBucket

	totalVisits int
	totalScore  float64
}

type colourBucket struct {
	initialized bool
	children    []slab.Handle // parallel to (shared) emptyPositions; slab.Invalid until expanded.
	visits      []int
	scores      []float64

	unvisited   []int
	totalVisits int
	totalScore  float64
}

func newOrderNode(board game.BoardState, p pool.Pool, hash zobrist.Hash) orderNode {
	var moves []game.OrderMove
	moves = append(moves, game.Pass())
	board.ForEachOrderMove(func(m game.OrderMove) { moves = append(moves, m) })

	unvisited := make([]int, len(moves))
	children := make([]slab.Handle, len(moves))
	for i := range unvisited {
		unvisited[i] = i
		children[i] = slab.Invalid
	}
	return orderNode{
		board:     board,
		pool:      p,
		hash:      hash,
		parents:   1,
		moves:     moves,
		children:  children,
		visits:    make([]int, len(moves)),
		scores:    make([]float64, len(moves)),
		unvisited: unvisited,
	}
}

func newChaosNode(board game.BoardState, p pool.Pool, hash zobrist.Hash) chaosNode {
	var empties []game.Pos
	board.ForEachEmpty(func(pos game.Pos) { empties = append(empties, pos) })
	return chaosNode{
		board:          board,
		pool:           p,
		hash:           hash,
		parents:        1,
		emptyPositions: empties,
	}
}

// ensureBucket lazily initializes the colour bucket the first time colour
// is drawn at this node: it shares the node's emptyPositions list, so every
// colour bucket has the same candidate count.
func (n *chaosNode) ensureBucket(colour game.Colour) *colourBucket {
	b := &n.buckets[colour-1]
	if b.initialized {
		return b
	}
	count := len(n.emptyPositions)
	b.children = make([]slab.Handle, count)
	b.visits = make([]int, count)
	b.scores = make([]float64, count)
	b.unvisited = make([]int, count)
	for i := range b.unvisited {
		b.unvisited[i] = i
		b.children[i] = slab.Invalid
	}
	b.initialized = true
	return b
}
