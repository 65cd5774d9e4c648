package poker

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck represents a standard 52-card deck
type Deck struct {
	cards [52]Card // Fixed size array
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{rng: rng}
	d.fill()
	d.Shuffle()
	return d
}

// NewStackedDeck returns an unshuffled deck whose first cards are top, in order,
// followed by the remaining cards in suit-major order. Used to set up exact hands.
func NewStackedDeck(top ...Card) (*Deck, error) {
	d := &Deck{}
	var seen CardSet
	i := 0
	for _, c := range top {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card in stacked deck: %v", c)
		}
		if seen.Has(c) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen = seen.Add(c)
		d.cards[i] = c
		i++
	}
	for _, c := range standardOrder() {
		if seen.Has(c) {
			continue
		}
		d.cards[i] = c
		i++
	}
	return d, nil
}

// MustStackedDeck is NewStackedDeck that panics on error (for tests)
func MustStackedDeck(top ...Card) *Deck {
	d, err := NewStackedDeck(top...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Deck) fill() {
	d.next = 0
	copy(d.cards[:], standardOrder())
}

func standardOrder() []Card {
	cards := make([]Card, 0, 52)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.fill()
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck. It returns nil when fewer than n remain.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards
}

// Remaining returns a copy of the undealt cards in deal order.
func (d *Deck) Remaining() []Card {
	out := make([]Card, len(d.cards)-d.next)
	copy(out, d.cards[d.next:])
	return out
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
