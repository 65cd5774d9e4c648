package game

import (
	"slices"

	"github.com/lox/holdem-engine/poker"
)

// Payout is the chips one seat won from one pot.
type Payout struct {
	Seat   int   `json:"seat"`
	Amount int64 `json:"amount"`
}

// PotAward records how one pot was split.
type PotAward struct {
	Amount   int64    `json:"amount"` // before rake
	Rake     int64    `json:"rake"`
	Eligible []int    `json:"eligible"`
	Winners  []int    `json:"winners"`
	Payouts  []Payout `json:"payouts"`
}

// ShownHand is a hand revealed at showdown.
type ShownHand struct {
	Seat     int                `json:"seat"`
	Cards    []poker.Card       `json:"cards"`
	Best     []poker.Card       `json:"best"`
	Strength poker.HandStrength `json:"strength"`
}

// SeatDelta is the net change of one seat's stack over the hand.
type SeatDelta struct {
	Seat  int   `json:"seat"`
	Delta int64 `json:"delta"`
}

// HandResult summarises a settled hand.
type HandResult struct {
	HandID      string       `json:"hand_id"`
	HandNumber  int64        `json:"hand_number"`
	Uncontested bool         `json:"uncontested"`
	Pots        []PotAward   `json:"pots"`
	Deltas      []SeatDelta  `json:"deltas"`
	PotSize     int64        `json:"pot_size"`
	Rake        int64        `json:"rake"`
	Board       []poker.Card `json:"board"`
	Shown       []ShownHand  `json:"shown,omitempty"`
	// Returned is the uncalled part of the largest bet handed back before the
	// pots were built.
	Returned   int64 `json:"returned,omitempty"`
	ReturnedTo int   `json:"returned_to"`
}

// Winners returns every seat that won chips, in seat order.
func (r HandResult) Winners() []int {
	var seats []int
	for _, pot := range r.Pots {
		for _, p := range pot.Payouts {
			if p.Amount > 0 && !slices.Contains(seats, p.Seat) {
				seats = append(seats, p.Seat)
			}
		}
	}
	slices.Sort(seats)
	return seats
}

// Delta returns the stack change of seat, or 0 if it was not dealt in.
func (r HandResult) Delta(seat int) int64 {
	for _, d := range r.Deltas {
		if d.Seat == seat {
			return d.Delta
		}
	}
	return 0
}

func (r *HandResult) clone() *HandResult {
	out := *r
	out.Pots = make([]PotAward, len(r.Pots))
	for i, p := range r.Pots {
		p.Eligible = slices.Clone(p.Eligible)
		p.Winners = slices.Clone(p.Winners)
		p.Payouts = slices.Clone(p.Payouts)
		out.Pots[i] = p
	}
	out.Deltas = slices.Clone(r.Deltas)
	out.Board = cloneCards(r.Board)
	if r.Shown != nil {
		out.Shown = make([]ShownHand, len(r.Shown))
		for i, sh := range r.Shown {
			sh.Cards = cloneCards(sh.Cards)
			sh.Best = cloneCards(sh.Best)
			out.Shown[i] = sh
		}
	}
	return &out
}

// settleUncontested gives everything to the last seat standing. No cards are
// evaluated and no rake is taken.
func (s *TableState) settleUncontested() []Event {
	h := s.Hand
	winner := -1
	for _, seat := range s.Seats {
		if seat.contesting() {
			winner = seat.Index
			break
		}
	}

	total := s.PotTotal()
	award := PotAward{
		Amount:   total,
		Eligible: []int{winner},
		Winners:  []int{winner},
		Payouts:  []Payout{{Seat: winner, Amount: total}},
	}
	h.Pots = []Pot{{Amount: total, Eligible: []int{winner}}}
	s.Seats[winner].Stack += total

	result := &HandResult{
		HandID:      h.ID,
		HandNumber:  h.Number,
		Uncontested: true,
		Pots:        []PotAward{award},
		PotSize:     total,
		Board:       cloneCards(h.Board),
		ReturnedTo:  -1,
	}
	return s.finishHand(result)
}

// settleShowdown splits every pot between the best eligible hands.
func (s *TableState) settleShowdown(cfg *handConfig) []Event {
	h := s.Hand
	result := &HandResult{
		HandID:     h.ID,
		HandNumber: h.Number,
		Board:      cloneCards(h.Board),
		ReturnedTo: -1,
	}

	result.ReturnedTo, result.Returned = s.returnUncalled()

	pots := CalculatePots(s.contributions())
	h.Pots = clonePots(pots)
	result.PotSize = potsTotal(pots)

	strengths := make(map[int]poker.HandStrength)
	for _, seat := range s.Seats {
		if !seat.contesting() {
			continue
		}
		cards := append(cloneCards(seat.HoleCards), h.Board...)
		strength, best, err := poker.BestHand(cards...)
		if err != nil {
			// Hole cards and board come from one deck, so this is unreachable
			// for a state that passed validation.
			panic("showdown evaluation failed: " + err.Error())
		}
		strengths[seat.Index] = strength
		result.Shown = append(result.Shown, ShownHand{
			Seat:     seat.Index,
			Cards:    cloneCards(seat.HoleCards),
			Best:     best[:],
			Strength: strength,
		})
	}

	contested := potsTotal(pots)
	rake := clampRake(cfg.rake.Rake(RakeInput{
		PotTotal:   contested,
		Phase:      h.LastBetPhase,
		SmallBlind: s.Config.SmallBlind,
		BigBlind:   s.Config.BigBlind,
	}), contested)
	result.Rake = rake

	for _, pot := range pots {
		award := PotAward{Amount: pot.Amount, Eligible: slices.Clone(pot.Eligible)}
		take := min(rake, pot.Amount)
		award.Rake = take
		rake -= take

		award.Winners = bestSeats(pot.Eligible, strengths)
		award.Payouts = s.splitPot(pot.Amount-take, award.Winners)
		for _, p := range award.Payouts {
			s.Seats[p.Seat].Stack += p.Amount
		}
		result.Pots = append(result.Pots, award)
	}

	return s.finishHand(result)
}

// returnUncalled hands back the part of the largest contribution nobody
// matched. Those chips were never at risk, so they are neither raked nor won.
func (s *TableState) returnUncalled() (seat int, amount int64) {
	top := -1
	for _, st := range s.Seats {
		if st.InHand && (top == -1 || st.Committed > s.Seats[top].Committed) {
			top = st.Index
		}
	}
	if top == -1 {
		return -1, 0
	}
	var second int64
	for _, st := range s.Seats {
		if st.InHand && st.Index != top {
			second = max(second, st.Committed)
		}
	}
	excess := s.Seats[top].Committed - second
	if excess <= 0 {
		return -1, 0
	}
	s.Seats[top].Committed -= excess
	s.Seats[top].Stack += excess
	return top, excess
}

func bestSeats(eligible []int, strengths map[int]poker.HandStrength) []int {
	var winners []int
	var best poker.HandStrength
	for _, seat := range eligible {
		hs, ok := strengths[seat]
		if !ok {
			continue
		}
		switch {
		case winners == nil || hs > best:
			best = hs
			winners = []int{seat}
		case hs == best:
			winners = append(winners, seat)
		}
	}
	return winners
}

// splitPot divides amount evenly between winners. Odd chips go one at a time
// to the winners closest to the dealer's left.
func (s *TableState) splitPot(amount int64, winners []int) []Payout {
	if len(winners) == 0 || amount <= 0 {
		return nil
	}
	n := len(s.Seats)
	dealer := s.Hand.Dealer
	ordered := slices.Clone(winners)
	slices.SortFunc(ordered, func(a, b int) int {
		da := ((a-dealer-1)%n + n) % n
		db := ((b-dealer-1)%n + n) % n
		return da - db
	})

	share := amount / int64(len(ordered))
	odd := amount % int64(len(ordered))
	payouts := make([]Payout, len(ordered))
	for i, seat := range ordered {
		payouts[i] = Payout{Seat: seat, Amount: share}
		if int64(i) < odd {
			payouts[i].Amount++
		}
	}
	return payouts
}

// finishHand closes the hand: deltas, busted seats, pending sit outs.
func (s *TableState) finishHand(result *HandResult) []Event {
	h := s.Hand
	from := h.Phase
	h.Phase = PhaseFinished
	h.ToAct = -1
	h.CurrentBet = 0

	for i := range s.Seats {
		seat := &s.Seats[i]
		if !seat.InHand {
			continue
		}
		result.Deltas = append(result.Deltas, SeatDelta{
			Seat:  seat.Index,
			Delta: seat.Stack - h.StartingStacks[seat.Index],
		})
		seat.RoundBet = 0
		seat.Acted = false
		switch {
		case seat.Stack == 0, seat.SitOutNext:
			seat.Status = SeatSittingOut
			seat.SitOutNext = false
		default:
			seat.Status = SeatActive
		}
	}
	h.Result = result

	return []Event{
		s.phaseChanged(from, PhaseFinished),
		HandResultEvent{TableID: s.ID, Result: *result.clone(), Version: s.Version},
	}
}
