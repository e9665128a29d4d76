package mcts

import "math"

// Params tunes the UCT formula and search budget. Zero value is not usable;
// construct with DefaultParams and override fields as needed.
type Params struct {
	// K scales the exploitation term (average score).
	K float64
	// T scales the exploration term.
	T float64
	// Rollouts is the default number of simulations per tree_search call.
	Rollouts int
	// OrderSlabCapacity and ChaosSlabCapacity bound the two node slabs.
	OrderSlabCapacity int
	ChaosSlabCapacity int
}

// DefaultParams mirrors the constants named in this engine's UCT formula:
// K=1/80, T≈0.45.
func DefaultParams() Params {
	return Params{
		K:                 1.0 / 80.0,
		T:                 0.45,
		Rollouts:          4000,
		OrderSlabCapacity: 1 << 20,
		ChaosSlabCapacity: 1 << 20,
	}
}

// selectOrderAction picks the move index maximizing the UCT score, among
// moves that have all already been visited at least once. Order is the
// maximizer: higher average score is better.
func (s *Search) selectOrderAction(n *orderNode) int {
	logN := math.Log(float64(n.totalVisits))
	best := -1
	var bestUCT float64
	for i, visits := range n.visits {
		if visits == 0 {
			continue // should not happen once unvisited is drained.
		}
		avg := n.scores[i] / float64(visits)
		uct := avg*s.params.K + s.params.T*math.Sqrt(logN/float64(visits))
		if best == -1 || uct > bestUCT {
			best, bestUCT = i, uct
		}
	}
	return best
}

// selectChaosAction picks the candidate index within a single colour bucket
// maximizing Chaos's UCT score. Chaos is the minimizer: a lower average
// score is better for Chaos, so the exploitation term is negated before the
// exploration bonus is added.
func (s *Search) selectChaosAction(b *colourBucket) int {
	logN := math.Log(float64(b.totalVisits))
	best := -1
	var bestUCT float64
	for i, visits := range b.visits {
		if visits == 0 {
			continue
		}
		avg := b.scores[i] / float64(visits)
		uct := -avg*s.params.K + s.params.T*math.Sqrt(logN/float64(visits))
		if best == -1 || uct > bestUCT {
			best, bestUCT = i, uct
		}
	}
	return best
}
