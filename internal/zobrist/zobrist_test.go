package zobrist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ochaos/entropy/internal/game"
)

func TestPlaceThenRemoveRestoresHash(t *testing.T) {
	h := New()
	placed := h.AfterPlace(game.Red, game.RC(2, 3))
	assert.NotEqual(t, h, placed)
	// Undo by toggling the same key again and incrementing Open back.
	restored := placed.Toggle(game.Red, game.RC(2, 3))
	restored.Open++
	assert.Equal(t, h, restored)
}

func TestMoveRoundTripRestoresHash(t *testing.T) {
	h := New().AfterPlace(game.Blue, game.RC(0, 0))
	moved := h.AfterMove(game.Blue, game.RC(0, 0), game.RC(0, 5))
	back := moved.AfterMove(game.Blue, game.RC(0, 5), game.RC(0, 0))
	assert.Equal(t, h, back)
}

func TestMoveDoesNotChangeOpenCount(t *testing.T) {
	h := New().AfterPlace(game.Green, game.RC(1, 1))
	moved := h.AfterMove(game.Green, game.RC(1, 1), game.RC(1, 2))
	assert.Equal(t, h.Open, moved.Open)
}

func TestHashIsOrderIndependentForSameFinalLayout(t *testing.T) {
	a := New().AfterPlace(game.Red, game.RC(0, 0)).AfterPlace(game.Blue, game.RC(1, 1))
	b := New().AfterPlace(game.Blue, game.RC(1, 1)).AfterPlace(game.Red, game.RC(0, 0))
	assert.Equal(t, a, b)
}
