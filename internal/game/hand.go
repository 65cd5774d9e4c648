package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/holdem-engine/poker"
)

var (
	// ErrHandInProgress is returned when starting a hand while one is live.
	ErrHandInProgress = errors.New("hand already in progress")
	// ErrNotEnoughPlayers is returned when fewer than two seats can be dealt in.
	ErrNotEnoughPlayers = errors.New("not enough players")
	// ErrDeckExhausted is returned when the supplied deck cannot cover the hand.
	ErrDeckExhausted = errors.New("deck exhausted")
)

// dealable reports whether a seat is dealt into the next hand.
func dealable(s Seat) bool {
	return s.Occupied() && s.Status == SeatActive && s.Stack > 0
}

// StartHand moves the button, posts blinds, deals hole cards and enters
// preflop. The RNG shuffles a fresh deck unless WithDeck is given.
//
// Heads-up the button posts the small blind and acts first preflop.
func StartHand(state TableState, rng *rand.Rand, opts ...HandOption) (TableState, []Event, error) {
	if state.HandInProgress() {
		return state, nil, ErrHandInProgress
	}

	players := 0
	for _, seat := range state.Seats {
		if dealable(seat) {
			players++
		}
	}
	if players < 2 {
		return state, nil, fmt.Errorf("%w: %d dealable seats", ErrNotEnoughPlayers, players)
	}

	cfg := newHandConfig(opts)
	deck := cfg.deck
	if deck == nil {
		if rng == nil {
			panic("rng is required for hand creation")
		}
		deck = poker.NewDeck(rng)
	}
	if need := players*2 + 5; deck.CardsRemaining() < need {
		return state, nil, fmt.Errorf("%w: need %d cards, have %d", ErrDeckExhausted, need, deck.CardsRemaining())
	}

	next := state.Clone()
	next.HandsPlayed++
	next.Version++

	button := next.nextSeat(next.Button, dealable)
	var sb, bb int
	if players == 2 {
		sb = button
	} else {
		sb = next.nextSeat(button, dealable)
	}
	bb = next.nextSeat(sb, dealable)
	next.Button = button

	h := &HandState{
		ID:             cfg.handID,
		Number:         next.HandsPlayed,
		Phase:          PhasePreflop,
		MinRaise:       next.Config.BigBlind,
		LastAggressor:  -1,
		Dealer:         button,
		SmallBlindSeat: sb,
		BigBlindSeat:   bb,
		ToAct:          -1,
		StartingStacks: make([]int64, len(next.Seats)),
		LastBetPhase:   PhasePreflop,
	}
	if h.ID == "" {
		h.ID = fmt.Sprintf("%s-%d", next.ID, h.Number)
	}
	next.Hand = h

	stacks := make(map[int]int64, players)
	for i := range next.Seats {
		seat := &next.Seats[i]
		seat.InHand = dealable(*seat)
		seat.Committed = 0
		seat.RoundBet = 0
		seat.Acted = false
		seat.HoleCards = nil
		h.StartingStacks[i] = seat.Stack
		if seat.InHand {
			stacks[i] = seat.Stack
		}
	}

	next.post(sb, next.Config.SmallBlind)
	next.post(bb, next.Config.BigBlind)
	// A big blind all in for less still sets the full blind as the price to
	// call. The unmatched part of any call is returned at settlement.
	h.CurrentBet = next.Config.BigBlind

	// Two passes round the table starting left of the button.
	for round := 0; round < 2; round++ {
		seat := button
		for range players {
			seat = next.nextSeat(seat, func(s Seat) bool { return s.InHand })
			next.Seats[seat].HoleCards = append(next.Seats[seat].HoleCards, deck.Deal(1)...)
		}
	}
	h.Deck = deck.Remaining()
	h.Pots = CalculatePots(next.contributions())

	events := []Event{HandStartedEvent{
		TableID:        next.ID,
		HandID:         h.ID,
		HandNumber:     h.Number,
		Dealer:         button,
		SmallBlindSeat: sb,
		BigBlindSeat:   bb,
		SmallBlind:     next.Config.SmallBlind,
		BigBlind:       next.Config.BigBlind,
		Stacks:         stacks,
		Version:        next.Version,
	}}

	if closed, more := next.progress(cfg); closed {
		events = append(events, more...)
	} else {
		h.ToAct = next.nextToAct(bb)
	}
	return next, events, nil
}

// post moves a blind from the seat's stack into the pot, all in for less when
// the stack is short.
func (s *TableState) post(seat int, blind int64) {
	st := &s.Seats[seat]
	amount := min(blind, st.Stack)
	st.Stack -= amount
	st.RoundBet += amount
	st.Committed += amount
	if st.Stack == 0 {
		st.Status = SeatAllIn
	}
}
