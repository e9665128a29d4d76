package mcts

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ochaos/entropy/internal/game"
	"github.com/ochaos/entropy/internal/pool"
	"github.com/ochaos/entropy/internal/rollout"
	"github.com/ochaos/entropy/internal/slab"
	"github.com/ochaos/entropy/internal/zobrist"
)

// Search owns the two node slabs and the transposition caches shared by
// every tree rooted in it. A single Search can be reused across an entire
// game: roots from earlier moves are released (see PruneChaosExceptColour,
// ReleaseOrder, ReleaseChaos) rather than the whole Search being rebuilt.
type Search struct {
	params Params
	rng    *rand.Rand

	orderSlab *slab.Slab[orderNode]
	chaosSlab *slab.Slab[chaosNode]

	orderCache map[zobrist.Hash]slab.Handle
	chaosCache map[zobrist.Hash]slab.Handle
}

// NewSearch constructs a Search with the given parameters and RNG. rng must
// not be nil and must not be shared with any other Search or rollout caller
// running concurrently with this one.
func NewSearch(params Params, rng *rand.Rand) *Search {
	return &Search{
		params:     params,
		rng:        rng,
		orderSlab:  slab.New[orderNode](params.OrderSlabCapacity),
		chaosSlab:  slab.New[chaosNode](params.ChaosSlabCapacity),
		orderCache: make(map[zobrist.Hash]slab.Handle),
		chaosCache: make(map[zobrist.Hash]slab.Handle),
	}
}

// NewOrderRoot returns a fresh (or transposition-shared) OrderNode handle
// for board/pool/hash, owned by the caller (e.g. an Agent).
func (s *Search) NewOrderRoot(board game.BoardState, p pool.Pool, hash zobrist.Hash) slab.Handle {
	return s.getOrCreateOrder(board, p, hash)
}

// NewChaosRoot is the ChaosNode analogue of NewOrderRoot.
func (s *Search) NewChaosRoot(board game.BoardState, p pool.Pool, hash zobrist.Hash) slab.Handle {
	return s.getOrCreateChaos(board, p, hash)
}

func (s *Search) getOrCreateOrder(board game.BoardState, p pool.Pool, hash zobrist.Hash) slab.Handle {
	if h, ok := s.orderCache[hash]; ok {
		if node, live := s.orderSlab.Get(h); live {
			node.parents++
			return h
		}
		delete(s.orderCache, hash)
	}
	h, err := s.orderSlab.Construct(newOrderNode(board, p, hash))
	if err != nil {
		klog.Fatalf("mcts: order node slab exhausted: %v", err)
	}
	s.orderCache[hash] = h
	return h
}

func (s *Search) getOrCreateChaos(board game.BoardState, p pool.Pool, hash zobrist.Hash) slab.Handle {
	if h, ok := s.chaosCache[hash]; ok {
		if node, live := s.chaosSlab.Get(h); live {
			node.parents++
			return h
		}
		delete(s.chaosCache, hash)
	}
	h, err := s.chaosSlab.Construct(newChaosNode(board, p, hash))
	if err != nil {
		klog.Fatalf("mcts: chaos node slab exhausted: %v", err)
	}
	s.chaosCache[hash] = h
	return h
}

// RunOrderRoot expands every one of root's candidate moves at least once
// (unconditionally, with no budget limit), then runs rollouts further
// search iterations on top of that, stopping early if ctx is cancelled.
// This matches the two-phase structure of the original tree_search_order:
// a root move that the budget never reaches would otherwise be invisible
// to BestOrderMove, which skips zero-visit candidates.
func (s *Search) RunOrderRoot(ctx context.Context, root slab.Handle, rollouts int) {
	node, ok := s.orderSlab.Get(root)
	if !ok {
		klog.Fatalf("mcts: RunOrderRoot called on a dead handle")
	}
	for len(node.unvisited) > 0 {
		select {
		case <-ctx.Done():
			klog.V(1).Infof("mcts: search cancelled during initial expansion, %d move(s) left unexpanded", len(node.unvisited))
			return
		default:
		}
		idx, score := s.expandOrder(node)
		node.visits[idx]++
		node.scores[idx] += score
		node.totalVisits++
		node.totalScore += score
	}
	for i := 0; i < rollouts; i++ {
		select {
		case <-ctx.Done():
			klog.V(1).Infof("mcts: search cancelled after %d/%d rollouts", i, rollouts)
			return
		default:
		}
		s.searchOrder(root)
	}
}

// RunChaosRoot expands every placement in the already-revealed colour's
// bucket (the real chip the referee drew) at least once, with no budget
// limit, then runs up to rollouts further search iterations from the
// ChaosNode root: only that colour's bucket is explored at the root itself, since
// the other colours did not actually happen this turn. Interior ChaosNodes
// reached deeper in the tree still sample colours at random, since those
// are genuinely hypothetical future draws.
func (s *Search) RunChaosRoot(ctx context.Context, root slab.Handle, colour game.Colour, rollouts int) {
	node, ok := s.chaosSlab.Get(root)
	if !ok {
		klog.Fatalf("mcts: RunChaosRoot called on a dead handle")
	}
	// Phase one: unconditionally exhaust every placement in colour's bucket
	// before spending any of the rollouts budget, mirroring RunOrderRoot.
	bucket := node.ensureBucket(colour)
	for len(bucket.unvisited) > 0 {
		select {
		case <-ctx.Done():
			klog.V(1).Infof("mcts: search cancelled during initial expansion, %d placement(s) left unexpanded", len(bucket.unvisited))
			return
		default:
		}
		idx, score := s.expandChaos(node, bucket, colour)
		bucket.visits[idx]++
		bucket.scores[idx] += score
		bucket.totalVisits++
		bucket.totalScore += score
		node.totalVisits++
		node.totalScore += score
	}
	for i := 0; i < rollouts; i++ {
		select {
		case <-ctx.Done():
			klog.V(1).Infof("mcts: search cancelled after %d/%d rollouts", i, rollouts)
			return
		default:
		}
		score := s.stepChaosBucket(node, colour)
		node.totalVisits++
		node.totalScore += score
	}
}

// searchOrder runs one selection/expansion/rollout/backup iteration rooted
// at an OrderNode, returning the score backed up to its parent.
func (s *Search) searchOrder(h slab.Handle) float64 {
	node, ok := s.orderSlab.Get(h)
	if !ok {
		klog.Fatalf("mcts: searchOrder called on a dead handle")
	}
	if node.board.IsTerminal() {
		return float64(node.board.TotalScore())
	}

	var score float64
	var idx int
	if len(node.unvisited) > 0 {
		idx, score = s.expandOrder(node)
	} else {
		idx = s.selectOrderAction(node)
		if node.children[idx] != slab.Invalid {
			score = s.searchChaos(node.children[idx])
		} else {
			// A deterministic terminal action: every visit yields the same
			// score, already reflected in the running average.
			score = node.scores[idx] / float64(node.visits[idx])
		}
	}
	node.visits[idx]++
	node.scores[idx] += score
	node.totalVisits++
	node.totalScore += score
	return score
}

func (s *Search) expandOrder(node *orderNode) (idx int, score float64) {
	pick := s.rng.IntN(len(node.unvisited))
	idx = node.unvisited[pick]
	node.unvisited[pick] = node.unvisited[len(node.unvisited)-1]
	node.unvisited = node.unvisited[:len(node.unvisited)-1]

	move := node.moves[idx]
	newBoard := node.board
	newHash := node.hash
	if !move.IsPass() {
		colour := newBoard.Cell(move.From)
		if err := newBoard.Move(move); err != nil {
			klog.Fatalf("mcts: enumerated illegal order move %v: %v", move, err)
		}
		newHash = newHash.AfterMove(colour, move.From, move.To)
	}

	if newBoard.IsTerminal() {
		score = float64(newBoard.TotalScore())
		return idx, score
	}
	child := s.getOrCreateChaos(newBoard, node.pool, newHash)
	node.children[idx] = child
	score = float64(s.rolloutFrom(newBoard, node.pool, game.Chaos))
	return idx, score
}

// searchChaos runs one iteration rooted at a ChaosNode: it samples a colour
// (weighted by what remains in the pool) and delegates to stepChaosBucket.
func (s *Search) searchChaos(h slab.Handle) float64 {
	node, ok := s.chaosSlab.Get(h)
	if !ok {
		klog.Fatalf("mcts: searchChaos called on a dead handle")
	}
	if node.board.IsTerminal() {
		return float64(node.board.TotalScore())
	}
	colour, err := node.pool.Sample(s.rng)
	if err != nil {
		klog.Fatalf("mcts: pool exhausted at a non-terminal board: %v", err)
	}
	score := s.stepChaosBucket(node, colour)
	node.totalVisits++
	node.totalScore += score
	return score
}

// stepChaosBucket runs selection/expansion within a single colour's bucket
// of node, without touching the node-level totals (callers update those).
func (s *Search) stepChaosBucket(node *chaosNode, colour game.Colour) float64 {
	bucket := node.ensureBucket(colour)

	var idx int
	var score float64
	if len(bucket.unvisited) > 0 {
		idx, score = s.expandChaos(node, bucket, colour)
	} else {
		idx = s.selectChaosAction(bucket)
		if bucket.children[idx] != slab.Invalid {
			score = s.searchOrder(bucket.children[idx])
		} else {
			score = bucket.scores[idx] / float64(bucket.visits[idx])
		}
	}
	bucket.visits[idx]++
	bucket.scores[idx] += score
	bucket.totalVisits++
	bucket.totalScore += score
	return score
}

func (s *Search) expandChaos(node *chaosNode, bucket *colourBucket, colour game.Colour) (idx int, score float64) {
	pick := s.rng.IntN(len(bucket.unvisited))
	idx = bucket.unvisited[pick]
	bucket.unvisited[pick] = bucket.unvisited[len(bucket.unvisited)-1]
	bucket.unvisited = bucket.unvisited[:len(bucket.unvisited)-1]

	pos := node.emptyPositions[idx]
	newBoard := node.board
	if err := newBoard.Place(game.ChaosMove{Pos: pos, Colour: colour}); err != nil {
		klog.Fatalf("mcts: enumerated illegal placement at %v for %v: %v", pos, colour, err)
	}
	newHash := node.hash.AfterPlace(colour, pos)
	newPool, err := node.pool.Remove(colour)
	if err != nil {
		klog.Fatalf("mcts: pool.Remove(%v) failed unexpectedly: %v", colour, err)
	}

	if newBoard.IsTerminal() {
		score = float64(newBoard.TotalScore())
		return idx, score
	}
	child := s.getOrCreateOrder(newBoard, newPool, newHash)
	bucket.children[idx] = child
	score = float64(s.rolloutFrom(newBoard, newPool, game.Order))
	return idx, score
}

func (s *Search) rolloutFrom(board game.BoardState, p pool.Pool, toMove game.Role) int {
	return rollout.SmartRollout(board, p, toMove, s.rng)
}

// errNoRoot is returned by BestOrderMove/BestChaosPosition when asked about
// a dead or unknown handle; this only happens on a caller bug.
var errNoRoot = errors.New("mcts: root handle is not live")

// BestOrderMove returns the move with the best average score at an
// OrderNode root (highest, since Order maximizes), breaking ties by higher
// visit count and then by enumeration order.
func (s *Search) BestOrderMove(h slab.Handle) (game.OrderMove, error) {
	node, ok := s.orderSlab.Get(h)
	if !ok {
		return game.Pass(), errNoRoot
	}
	best := -1
	var bestAvg float64
	for i, visits := range node.visits {
		if visits == 0 {
			continue
		}
		avg := node.scores[i] / float64(visits)
		if best == -1 || avg > bestAvg || (avg == bestAvg && visits > node.visits[best]) {
			best, bestAvg = i, avg
		}
	}
	if best == -1 {
		return game.Pass(), errors.New("mcts: order root has no visited moves")
	}
	return node.moves[best], nil
}

// BestChaosPosition returns the placement with the best average score
// (lowest, since Chaos minimizes) within colour's bucket at a ChaosNode
// root.
func (s *Search) BestChaosPosition(h slab.Handle, colour game.Colour) (game.Pos, error) {
	node, ok := s.chaosSlab.Get(h)
	if !ok {
		return game.NonePos, errNoRoot
	}
	bucket := &node.buckets[colour-1]
	best := -1
	var bestAvg float64
	for i, visits := range bucket.visits {
		if visits == 0 {
			continue
		}
		avg := bucket.scores[i] / float64(visits)
		if best == -1 || avg < bestAvg || (avg == bestAvg && visits > bucket.visits[best]) {
			best, bestAvg = i, avg
		}
	}
	if best == -1 {
		return game.NonePos, errors.New("mcts: chaos root has no visited placements for this colour")
	}
	return node.emptyPositions[best], nil
}

// ChildAfterOrderMove returns the ChaosNode handle reached by playing move
// at an OrderNode root, if that branch was explored. ok is false if the
// move was never visited.
func (s *Search) ChildAfterOrderMove(h slab.Handle, move game.OrderMove) (child slab.Handle, terminal bool, ok bool) {
	node, live := s.orderSlab.Get(h)
	if !live {
		return slab.Invalid, false, false
	}
	for i, m := range node.moves {
		if m == move {
			if node.visits[i] == 0 {
				return slab.Invalid, false, false
			}
			return node.children[i], node.children[i] == slab.Invalid, true
		}
	}
	return slab.Invalid, false, false
}

// ChildAfterChaosPlacement is the ChaosNode analogue of ChildAfterOrderMove.
func (s *Search) ChildAfterChaosPlacement(h slab.Handle, colour game.Colour, pos game.Pos) (child slab.Handle, terminal bool, ok bool) {
	node, live := s.chaosSlab.Get(h)
	if !live {
		return slab.Invalid, false, false
	}
	bucket := &node.buckets[colour-1]
	for i, p := range node.emptyPositions {
		if p == pos && i < len(bucket.children) {
			if bucket.visits[i] == 0 {
				return slab.Invalid, false, false
			}
			return bucket.children[i], bucket.children[i] == slab.Invalid, true
		}
	}
	return slab.Invalid, false, false
}

// PruneChaosExceptColour discards every colour bucket other than keep at a
// ChaosNode root, once the real draw is known: the other colours' subtrees
// never happened this game, so their statistics (and the subtrees
// themselves) are released.
func (s *Search) PruneChaosExceptColour(h slab.Handle, keep game.Colour) {
	node, ok := s.chaosSlab.Get(h)
	if !ok {
		return
	}
	for i := range node.buckets {
		colour := game.Colours[i]
		if colour == keep {
			continue
		}
		bucket := &node.buckets[i]
		for _, child := range bucket.children {
			if child != slab.Invalid {
				s.ReleaseOrder(child)
			}
		}
		*bucket = colourBucket{}
	}
	kept := &node.buckets[keep-1]
	node.totalVisits = kept.totalVisits
	node.totalScore = kept.totalScore
}

// RetainOrder adds a strong reference to an OrderNode, used when a caller
// wants to keep a node alive across a ReleaseOrder/ReleaseChaos call on one
// of its former parents (e.g. the move-maker façade promoting a child to
// its new root).
func (s *Search) RetainOrder(h slab.Handle) {
	if node, ok := s.orderSlab.Get(h); ok {
		node.parents++
	}
}

// RetainChaos is the ChaosNode analogue of RetainOrder.
func (s *Search) RetainChaos(h slab.Handle) {
	if node, ok := s.chaosSlab.Get(h); ok {
		node.parents++
	}
}

// ReleaseOrder drops a strong reference to an OrderNode, recursively
// releasing its children once the last reference is gone.
func (s *Search) ReleaseOrder(h slab.Handle) {
	node, ok := s.orderSlab.Get(h)
	if !ok {
		return
	}
	node.parents--
	if node.parents > 0 {
		return
	}
	for _, child := range node.children {
		if child != slab.Invalid {
			s.ReleaseChaos(child)
		}
	}
	s.orderSlab.Drop(h)
}

// ReleaseChaos is the ChaosNode analogue of ReleaseOrder.
func (s *Search) ReleaseChaos(h slab.Handle) {
	node, ok := s.chaosSlab.Get(h)
	if !ok {
		return
	}
	node.parents--
	if node.parents > 0 {
		return
	}
	for i := range node.buckets {
		for _, child := range node.buckets[i].children {
			if child != slab.Invalid {
				s.ReleaseOrder(child)
			}
		}
	}
	s.chaosSlab.Drop(h)
}

// Stats reports slab occupancy, used by the benchmark CLI command and by
// klog.V(1) per-move logging.
type Stats struct {
	OrderNodes int
	ChaosNodes int
}

func (s *Search) Stats() Stats {
	return Stats{OrderNodes: s.orderSlab.Len(), ChaosNodes: s.chaosSlab.Len()}
}
