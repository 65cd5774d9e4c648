package poker

// HoleCardCategory buckets a starting hand for simple preflop play.
// Higher values are stronger.
type HoleCardCategory int8

const (
	CategoryUnknown HoleCardCategory = iota - 1
	CategoryTrash
	CategoryWeak
	CategoryMedium
	CategoryStrong
	CategoryPremium
)

var categoryNames = map[HoleCardCategory]string{
	CategoryUnknown: "unknown",
	CategoryTrash:   "trash",
	CategoryWeak:    "weak",
	CategoryMedium:  "medium",
	CategoryStrong:  "strong",
	CategoryPremium: "premium",
}

func (c HoleCardCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// CategorizeHoleCards buckets two hole cards:
//
//	premium  JJ+ and AK
//	strong   TT, AQ and AJ
//	medium   77-99 and suited cards both ten or better
//	weak     other pairs and suited cards at most two ranks apart
//	trash    everything else
//
// Duplicate or invalid cards are CategoryUnknown.
func CategorizeHoleCards(a, b Card) HoleCardCategory {
	if !a.Valid() || !b.Valid() || a == b {
		return CategoryUnknown
	}
	lo, hi := min(a.Rank, b.Rank), max(a.Rank, b.Rank)

	if lo == hi {
		switch {
		case lo >= Jack:
			return CategoryPremium
		case lo == Ten:
			return CategoryStrong
		case lo >= Seven:
			return CategoryMedium
		}
		return CategoryWeak
	}

	if hi == Ace {
		switch lo {
		case King:
			return CategoryPremium
		case Queen, Jack:
			return CategoryStrong
		}
	}
	if a.Suit != b.Suit {
		return CategoryTrash
	}
	if lo >= Ten {
		return CategoryMedium
	}
	if hi-lo <= 2 {
		return CategoryWeak
	}
	return CategoryTrash
}
