package game

import (
	"slices"
)

// Contribution is what one seat has put into the pot this hand.
type Contribution struct {
	Seat   int
	Amount int64
	InHand bool // false once the seat has folded
}

// CalculatePots splits contributions into the main pot followed by side pots.
//
// Each distinct contribution level creates its own pot worth
// (level - previous level) * seats that reached it, in ascending level order.
// Only seats still in the hand are eligible. Pots are never merged, even when
// their eligible seats match, so each is split and gets its odd chip on its
// own. A slice nobody can win is added to the pot below it so no chip is ever
// dropped.
func CalculatePots(contribs []Contribution) []Pot {
	levels := make([]int64, 0, len(contribs))
	for _, c := range contribs {
		if c.Amount > 0 {
			levels = append(levels, c.Amount)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	var pots []Pot
	var orphaned int64 // chips from slices with no eligible seat yet placed
	var prev int64
	for _, level := range levels {
		var amount int64
		var eligible []int
		for _, c := range contribs {
			if c.Amount >= level {
				amount += level - prev
				if c.InHand {
					eligible = append(eligible, c.Seat)
				}
			}
		}
		prev = level
		slices.Sort(eligible)

		switch {
		case len(eligible) == 0 && len(pots) > 0:
			pots[len(pots)-1].Amount += amount
		case len(eligible) == 0:
			orphaned += amount
		default:
			pots = append(pots, Pot{Amount: amount + orphaned, Eligible: eligible})
			orphaned = 0
		}
	}

	if orphaned > 0 {
		// Nobody left in the hand contributed; keep the chips visible anyway.
		pots = append(pots, Pot{Amount: orphaned, Eligible: []int{}})
	}
	return pots
}

// contributions collects the per-seat contributions for the hand.
func (s TableState) contributions() []Contribution {
	contribs := make([]Contribution, 0, len(s.Seats))
	for _, seat := range s.Seats {
		if !seat.InHand {
			continue
		}
		contribs = append(contribs, Contribution{
			Seat:   seat.Index,
			Amount: seat.Committed,
			InHand: seat.contesting(),
		})
	}
	return contribs
}

func potsTotal(pots []Pot) int64 {
	var total int64
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
