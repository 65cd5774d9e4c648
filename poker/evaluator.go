package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

// ErrInvalidHandSize is returned when an evaluation is asked for anything but 5 to 7 cards.
var ErrInvalidHandSize = errors.New("invalid hand size")

// ErrDuplicateCard is returned when the same card appears twice in one evaluation or deck.
var ErrDuplicateCard = errors.New("duplicate card")

// HandSizeError reports the offending card count. It matches ErrInvalidHandSize.
type HandSizeError struct {
	Count int
}

func (e *HandSizeError) Error() string {
	return fmt.Sprintf("invalid hand size: need 5 to 7 cards, got %d", e.Count)
}

func (e *HandSizeError) Is(target error) bool {
	return target == ErrInvalidHandSize
}

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandStrength is a totally ordered hand value. Higher values are stronger.
//
// Layout: bits 20-23 hold the HandType, then five 4-bit rank slots ordered by
// significance (group ranks first, then kickers).
type HandStrength uint32

// Type returns the type of hand (pair, flush, etc.).
func (hs HandStrength) Type() HandType {
	return HandType(hs >> 20)
}

// Ranks returns the five significant ranks in comparison order.
func (hs HandStrength) Ranks() [5]Rank {
	var out [5]Rank
	for i := range out {
		out[i] = Rank((hs >> (16 - 4*uint(i))) & 0xF)
	}
	return out
}

// String returns a human-readable hand description.
func (hs HandStrength) String() string {
	r := hs.Ranks()
	switch hs.Type() {
	case StraightFlush, Straight:
		return fmt.Sprintf("%s, %s high", hs.Type(), r[0])
	case FourOfAKind, ThreeOfAKind, Pair:
		return fmt.Sprintf("%s, %ss", hs.Type(), r[0])
	case FullHouse:
		return fmt.Sprintf("%s, %ss full of %ss", hs.Type(), r[0], r[1])
	case TwoPair:
		return fmt.Sprintf("%s, %ss and %ss", hs.Type(), r[0], r[1])
	default:
		return fmt.Sprintf("%s, %s high", hs.Type(), r[0])
	}
}

// CompareHands returns 1 if a beats b, -1 if b beats a, 0 for a tie.
func CompareHands(a, b HandStrength) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// Evaluate returns the strength of the best five card hand within 5 to 7 cards.
func Evaluate(cards ...Card) (HandStrength, error) {
	strength, _, err := BestHand(cards...)
	return strength, err
}

// BestHand is Evaluate that also returns the five cards making the hand.
func BestHand(cards ...Card) (HandStrength, [5]Card, error) {
	var best [5]Card
	if len(cards) < 5 || len(cards) > 7 {
		return 0, best, &HandSizeError{Count: len(cards)}
	}

	var seen CardSet
	for _, c := range cards {
		if !c.Valid() {
			return 0, best, fmt.Errorf("invalid card rank=%d suit=%d", c.Rank, c.Suit)
		}
		if seen.Has(c) {
			return 0, best, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen = seen.Add(c)
	}

	n := len(cards)
	var bestStrength HandStrength
	var five [5]Card
	found := false
	// Exhaustive search over all C(n,5) subsets; at most 21 for seven cards.
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						s := evaluate5(five)
						if !found || s > bestStrength {
							bestStrength = s
							best = five
							found = true
						}
					}
				}
			}
		}
	}
	return bestStrength, best, nil
}

type rankGroup struct {
	rank  Rank
	count int
}

func evaluate5(cards [5]Card) HandStrength {
	var counts [Ace + 1]int
	var rankMask uint16
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		rankMask |= 1 << c.Rank
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	straightHigh := straightHighRank(rankMask)

	groups := make([]rankGroup, 0, 5)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, rankGroup{rank: r, count: counts[r]})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	ranks := make([]Rank, 0, 5)
	for _, g := range groups {
		ranks = append(ranks, g.rank)
	}

	switch {
	case flush && straightHigh > 0:
		return encode(StraightFlush, straightHigh)
	case groups[0].count == 4:
		return encode(FourOfAKind, ranks...)
	case groups[0].count == 3 && groups[1].count == 2:
		return encode(FullHouse, ranks...)
	case flush:
		return encode(Flush, ranks...)
	case straightHigh > 0:
		return encode(Straight, straightHigh)
	case groups[0].count == 3:
		return encode(ThreeOfAKind, ranks...)
	case groups[0].count == 2 && groups[1].count == 2:
		return encode(TwoPair, ranks...)
	case groups[0].count == 2:
		return encode(Pair, ranks...)
	default:
		return encode(HighCard, ranks...)
	}
}

// straightHighRank returns the top rank of a five distinct rank straight, or 0.
// The wheel (A-2-3-4-5) counts as five high.
func straightHighRank(mask uint16) Rank {
	if bits.OnesCount16(mask) != 5 {
		return 0
	}
	const wheel = 1<<Ace | 1<<Five | 1<<Four | 1<<Three | 1<<Two
	if mask == wheel {
		return Five
	}
	high := Rank(15 - bits.LeadingZeros16(mask))
	low := Rank(bits.TrailingZeros16(mask))
	if high-low == 4 {
		return high
	}
	return 0
}

func encode(t HandType, ranks ...Rank) HandStrength {
	s := HandStrength(t) << 20
	for i, r := range ranks {
		if i >= 5 {
			break
		}
		s |= HandStrength(r) << (16 - 4*uint(i))
	}
	return s
}
