// Package pool implements the Entropy chip pool: the multiset of chips not
// yet drawn by Chaos, modelled as one remaining-count per colour. A weighted
// draw accumulates the seven counts in a linear scan, O(NumColours); no
// prefix-sum array is stored and no binary search is done.
package pool

import (
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/ochaos/entropy/internal/game"
)

// ErrEmptyPool is returned by Sample/Draw/Remove when no chips of the
// requested kind (or of any kind) remain. Since the board's open-cell count
// and the pool's total size are kept in lockstep by construction, this can
// only fire from a caller bug; see spec's error-handling convention.
var ErrEmptyPool = errors.New("chip pool is empty")

// initialPerColour is the number of chips of each colour at the start of a
// game: BoardArea/NumColours chips per colour, so the pool always holds
// exactly as many chips as the board has cells.
const initialPerColour = game.BoardArea / game.NumColours

// Pool is a plain value type: copying it by value produces an independent
// snapshot, no Clone method needed.
type Pool struct {
	remaining [game.NumColours]uint32
}

// New returns a full pool: initialPerColour chips of every colour.
func New() Pool {
	p := Pool{}
	for i := range p.remaining {
		p.remaining[i] = initialPerColour
	}
	return p
}

// ChipsLeft returns the number of chips of colour c still in the pool.
func (p Pool) ChipsLeft(c game.Colour) int {
	return int(p.remaining[c-1])
}

// Total returns the number of chips left in the pool, across all colours.
func (p Pool) Total() int {
	total := 0
	for _, n := range p.remaining {
		total += int(n)
	}
	return total
}

// AsMultiset returns a dense copy of the remaining counts, indexed by
// colour-1.
func (p Pool) AsMultiset() [game.NumColours]uint32 {
	return p.remaining
}

// Sample draws a colour at random, weighted by how many chips of each
// colour remain, without mutating p. Combined with Remove, this is how
// Draw is defined; Sample alone is what a ChaosNode uses to pick which of
// its colour branches a given search iteration explores, since sampling
// must not perturb the node's own recorded pool.
func (p Pool) Sample(rng *rand.Rand) (game.Colour, error) {
	total := p.Total()
	if total == 0 {
		return game.Empty, ErrEmptyPool
	}
	target := rng.IntN(total)
	acc := 0
	for i, n := range p.remaining {
		acc += int(n)
		if target < acc {
			return game.Colours[i], nil
		}
	}
	// Unreachable if Total() is consistent with remaining.
	return game.Empty, ErrEmptyPool
}

// Remove returns a new pool with one fewer chip of colour c. It does not
// mutate p.
func (p Pool) Remove(c game.Colour) (Pool, error) {
	if p.remaining[c-1] == 0 {
		return p, errors.Wrapf(ErrEmptyPool, "no %v chips remain", c)
	}
	next := p
	next.remaining[c-1]--
	return next, nil
}

// Draw samples a colour and removes it from p in a single step, mutating p
// in place. This is the operation the rollout policy (component E) uses
// when simulating a full game forward, where the pool genuinely shrinks as
// play progresses.
func (p *Pool) Draw(rng *rand.Rand) (game.Colour, error) {
	c, err := p.Sample(rng)
	if err != nil {
		return game.Empty, err
	}
	next, err := p.Remove(c)
	if err != nil {
		return game.Empty, err
	}
	*p = next
	return c, nil
}
