package poker

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckDealsAllUniqueCards(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(1, 2)))
	require.Equal(t, 52, d.CardsRemaining())

	var seen CardSet
	for i := 0; i < 52; i++ {
		cards := d.Deal(1)
		require.Len(t, cards, 1)
		require.True(t, cards[0].Valid())
		require.False(t, seen.Has(cards[0]), "card %s dealt twice", cards[0])
		seen = seen.Add(cards[0])
	}
	assert.Nil(t, d.Deal(1))
	assert.Equal(t, 0, d.CardsRemaining())
}

func TestDeckDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	a := NewDeck(rand.New(rand.NewPCG(42, 7)))
	b := NewDeck(rand.New(rand.NewPCG(42, 7)))
	assert.Equal(t, a.Remaining(), b.Remaining())

	c := NewDeck(rand.New(rand.NewPCG(43, 7)))
	assert.NotEqual(t, a.Remaining(), c.Remaining())
}

func TestNewDeckRequiresRNG(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewDeck(nil) })
}

func TestStackedDeck(t *testing.T) {
	t.Parallel()

	top := MustParseCards("AsAh KdKc")
	d, err := NewStackedDeck(top...)
	require.NoError(t, err)
	assert.Equal(t, top, d.Deal(4))
	assert.Equal(t, 48, d.CardsRemaining())

	rest := d.Remaining()
	set := NewCardSet(rest...)
	for _, c := range top {
		assert.False(t, set.Has(c))
	}
	assert.Equal(t, NewCard(Two, Clubs), rest[0])

	_, err = NewStackedDeck(NewCard(Ace, Spades), NewCard(Ace, Spades))
	require.ErrorIs(t, err, ErrDuplicateCard)
}
