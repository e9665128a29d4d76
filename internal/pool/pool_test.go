package pool

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochaos/entropy/internal/game"
)

func TestNewPoolHasSevenOfEachColour(t *testing.T) {
	p := New()
	for _, c := range game.Colours {
		assert.Equal(t, initialPerColour, p.ChipsLeft(c))
	}
	assert.Equal(t, game.BoardArea, p.Total())
}

func TestRemoveIsImmutable(t *testing.T) {
	p := New()
	next, err := p.Remove(game.Red)
	require.NoError(t, err)
	assert.Equal(t, initialPerColour, p.ChipsLeft(game.Red), "original must be unchanged")
	assert.Equal(t, initialPerColour-1, next.ChipsLeft(game.Red))
}

func TestRemoveErrorsWhenColourExhausted(t *testing.T) {
	p := New()
	var err error
	for i := 0; i < initialPerColour; i++ {
		p, err = p.Remove(game.Red)
		require.NoError(t, err)
	}
	_, err = p.Remove(game.Red)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestDrawConservesTotalChips(t *testing.T) {
	p := New()
	rng := rand.New(rand.NewPCG(1, 2))
	total := p.Total()
	for p.Total() > 0 {
		_, err := p.Draw(rng)
		require.NoError(t, err)
		total--
		assert.Equal(t, total, p.Total())
	}
	_, err := p.Draw(rng)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestSampleNeverReturnsExhaustedColour(t *testing.T) {
	p := New()
	for i := 0; i < initialPerColour; i++ {
		var err error
		p, err = p.Remove(game.Red)
		require.NoError(t, err)
	}
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		c, err := p.Sample(rng)
		require.NoError(t, err)
		assert.NotEqual(t, game.Red, c)
	}
}
