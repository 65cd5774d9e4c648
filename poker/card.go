package poker

import (
	"fmt"
	"strings"
)

// Rank is a card rank, Two (2) through Ace (14).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// String returns the single character form of the rank ("T" for ten).
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Valid reports whether r is a real rank.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Suit is a card suit.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

// String returns the lowercase letter form of the suit.
func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// Symbol returns the unicode suit symbol.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Valid reports whether the card is one of the 52 real cards.
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit <= Spades
}

// String returns the two character form, e.g. "As".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank.String() + c.Suit.String()
}

// Index returns the card's position 0-51, suit major.
func (c Card) Index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// MarshalText encodes the card as "As".
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card rank=%d suit=%d", c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes the "As" form.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a string like "As" or "td" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}

	rankIdx := strings.IndexByte(rankChars, upper(s[0]))
	if rankIdx < 0 {
		return Card{}, fmt.Errorf("invalid rank: %c", s[0])
	}
	suitIdx := strings.IndexByte(suitChars, lower(s[1]))
	if suitIdx < 0 {
		return Card{}, fmt.Errorf("invalid suit: %c", s[1])
	}

	return NewCard(Two+Rank(rankIdx), Suit(suitIdx)), nil
}

// ParseCards parses a run of cards with optional spaces, e.g. "AsKs QhJd".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("card at position %d: %w", i, err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// CardSet is a bitset of cards keyed by Card.Index.
type CardSet uint64

// NewCardSet builds a set from cards.
func NewCardSet(cards ...Card) CardSet {
	var set CardSet
	for _, c := range cards {
		set = set.Add(c)
	}
	return set
}

// Add returns the set with c included.
func (s CardSet) Add(c Card) CardSet {
	return s | CardSet(1)<<uint(c.Index())
}

// Has reports whether c is in the set.
func (s CardSet) Has(c Card) bool {
	return s&(CardSet(1)<<uint(c.Index())) != 0
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
