// Package slab implements a bounded, preallocated object pool with O(1)
// construct/drop, used by internal/mcts to allocate search-tree nodes
// without per-node heap churn.
package slab

import "github.com/pkg/errors"

// ErrExhausted is returned by Construct once the slab's fixed capacity is
// used up. The search tree is expected to size its slabs generously enough
// that this never fires in practice; when it does, it is a fatal
// configuration error, not a recoverable one.
var ErrExhausted = errors.New("slab: capacity exhausted")

// Handle addresses a value inside a Slab. It carries a generation counter
// alongside the index, so a Handle captured before a slot was dropped and
// reused is detectably stale -- this is what lets internal/mcts treat
// transposition-cache entries as weak references: a cache hit that resolves
// to a Handle whose generation no longer matches is silently treated as a
// miss.
type Handle struct {
	index      uint32
	generation uint32
}

// Invalid is a sentinel handle whose index lies past any slab's capacity;
// no Slab ever hands it out as live. (The zero Handle is not invalid: it is
// the first slot a fresh Slab hands out.)
var Invalid = Handle{index: ^uint32(0)}

// Slab is a fixed-capacity pool of T, with a free list recycling dropped
// slots. The zero value is not usable; construct one with New.
type Slab[T any] struct {
	storage    []T
	generation []uint32
	live       []bool
	free       []uint32
	next       uint32
	capacity   uint32
}

// New returns a Slab able to hold up to capacity live values at once.
func New[T any](capacity int) *Slab[T] {
	return &Slab[T]{
		storage:    make([]T, capacity),
		generation: make([]uint32, capacity),
		live:       make([]bool, capacity),
		capacity:   uint32(capacity),
	}
}

// Len returns the number of currently live values.
func (s *Slab[T]) Len() int {
	return int(s.next) - len(s.free)
}

// Construct stores v in a free slot and returns its handle, or ErrExhausted
// if the slab is full.
func (s *Slab[T]) Construct(v T) (Handle, error) {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		if s.next >= s.capacity {
			return Invalid, errors.Wrapf(ErrExhausted, "capacity %d", s.capacity)
		}
		idx = s.next
		s.next++
	}
	s.storage[idx] = v
	s.live[idx] = true
	return Handle{index: idx, generation: s.generation[idx]}, nil
}

// Get returns a pointer to the value behind h, and whether h is still live.
// The pointer is valid only until the next Drop of the same handle.
func (s *Slab[T]) Get(h Handle) (*T, bool) {
	if !s.isLive(h) {
		return nil, false
	}
	return &s.storage[h.index], true
}

// Drop releases the slot behind h for reuse. Dropping an already-dropped or
// stale handle is a no-op.
func (s *Slab[T]) Drop(h Handle) {
	if !s.isLive(h) {
		return
	}
	var zero T
	s.storage[h.index] = zero
	s.live[h.index] = false
	s.generation[h.index]++
	s.free = append(s.free, h.index)
}

func (s *Slab[T]) isLive(h Handle) bool {
	return h.index < uint32(len(s.storage)) && s.live[h.index] && s.generation[h.index] == h.generation
}
