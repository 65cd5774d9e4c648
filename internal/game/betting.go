package game

import (
	"fmt"
	"strings"
)

// ActionType is a player decision.
type ActionType uint8

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

var actionNames = [...]string{"fold", "check", "call", "bet", "raise", "all_in"}

func (a ActionType) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", a)
}

// Sized reports whether the player chooses the amount.
func (a ActionType) Sized() bool {
	return a == ActionBet || a == ActionRaise
}

func (a ActionType) MarshalText() ([]byte, error) {
	if int(a) >= len(actionNames) {
		return nil, fmt.Errorf("invalid action %d", a)
	}
	return []byte(a.String()), nil
}

func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseActionType accepts the lowercase names plus "allin".
func ParseActionType(s string) (ActionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "allin" {
		return ActionAllIn, nil
	}
	for i, name := range actionNames {
		if name == s {
			return ActionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ValidAction is one legal choice for the seat to act. Min and Max are the
// inclusive range of the seat's round total after the action; both are zero
// for fold and check.
type ValidAction struct {
	Type ActionType `json:"type"`
	Min  int64      `json:"min"`
	Max  int64      `json:"max"`
}

// LegalActions computes the legal set for seat. It is empty unless seat is the
// seat to act in a live hand.
func (s TableState) LegalActions(seat int) []ValidAction {
	h := s.Hand
	if !h.Live() || h.ToAct != seat || !s.seatInRange(seat) {
		return nil
	}
	st := s.Seats[seat]
	if !st.canAct() {
		return nil
	}
	owed := h.CurrentBet - st.RoundBet
	allInTo := st.RoundBet + st.Stack
	// A seat that acted and was not reopened by a full raise may only call
	// the short all-in or fold.
	closed := st.Acted && owed > 0

	actions := make([]ValidAction, 0, 4)
	actions = append(actions, ValidAction{Type: ActionFold})
	if owed <= 0 {
		actions = append(actions, ValidAction{Type: ActionCheck})
	}
	if owed > 0 {
		to := st.RoundBet + min(owed, st.Stack)
		actions = append(actions, ValidAction{Type: ActionCall, Min: to, Max: to})
	}
	if h.CurrentBet == 0 {
		actions = append(actions, ValidAction{
			Type: ActionBet,
			Min:  min(s.Config.BigBlind, allInTo),
			Max:  allInTo,
		})
	} else if st.Stack > owed && !closed {
		actions = append(actions, ValidAction{
			Type: ActionRaise,
			Min:  min(h.CurrentBet+h.MinRaise, allInTo),
			Max:  allInTo,
		})
	}
	if !closed || st.Stack <= owed {
		actions = append(actions, ValidAction{Type: ActionAllIn, Min: allInTo, Max: allInTo})
	}
	return actions
}

// findAction returns the legal descriptor for t, if any.
func findAction(actions []ValidAction, t ActionType) (ValidAction, bool) {
	for _, a := range actions {
		if a.Type == t {
			return a, true
		}
	}
	return ValidAction{}, false
}

// IsRoundComplete reports whether the current betting round is over. It only
// reads state, so asking twice gives the same answer.
func (s TableState) IsRoundComplete() bool {
	h := s.Hand
	if !h.Live() || h.Phase == PhaseShowdown {
		return false
	}

	contesting, actors := 0, 0
	var lastActor Seat
	for _, seat := range s.Seats {
		if seat.contesting() {
			contesting++
		}
		if seat.canAct() {
			actors++
			lastActor = seat
		}
	}
	switch {
	case contesting <= 1:
		return true
	case actors == 0:
		return true
	case actors == 1 && lastActor.RoundBet >= h.CurrentBet:
		return true
	}

	for _, seat := range s.Seats {
		if seat.canAct() && (!seat.Acted || seat.RoundBet != h.CurrentBet) {
			return false
		}
	}
	return true
}

// nextToAct returns the first seat clockwise after from that still owes a
// decision this round, or -1.
func (s TableState) nextToAct(from int) int {
	h := s.Hand
	return s.nextSeat(from, func(seat Seat) bool {
		return seat.canAct() && (!seat.Acted || seat.RoundBet < h.CurrentBet)
	})
}

// contestingCount is the number of seats that have not folded.
func (s TableState) contestingCount() int {
	n := 0
	for _, seat := range s.Seats {
		if seat.contesting() {
			n++
		}
	}
	return n
}

// startStreet resets the round bookkeeping and deals the next street.
// Heads-up this puts the button last, since the dealer is also the small blind.
func (s *TableState) startStreet(next Phase) {
	h := s.Hand
	for i := range s.Seats {
		s.Seats[i].RoundBet = 0
		s.Seats[i].Acted = false
	}
	h.CurrentBet = 0
	h.MinRaise = s.Config.BigBlind
	h.LastAggressor = -1
	h.Phase = next

	if n := next.boardSize() - len(h.Board); n > 0 {
		h.Board = append(h.Board, h.Deck[:n]...)
		h.Deck = h.Deck[n:]
	}
	h.ToAct = s.nextToAct(h.Dealer)
}

// progress moves the hand forward after a transition: it awards the pot when
// one seat remains, deals streets while rounds are complete, and settles at
// showdown. It reports whether a betting round closed.
func (s *TableState) progress(cfg *handConfig) (closed bool, events []Event) {
	h := s.Hand
	for h.Live() && s.IsRoundComplete() {
		closed = true
		if s.contestingCount() <= 1 {
			events = append(events, s.settleUncontested()...)
			return closed, events
		}

		from := h.Phase
		next := from + 1
		if next == PhaseShowdown {
			// Deal out whatever is left when players are all in before the river.
			if n := PhaseRiver.boardSize() - len(h.Board); n > 0 {
				h.Board = append(h.Board, h.Deck[:n]...)
				h.Deck = h.Deck[n:]
			}
			h.Phase = PhaseShowdown
			h.ToAct = -1
			events = append(events, s.phaseChanged(from, PhaseShowdown))
			events = append(events, s.settleShowdown(cfg)...)
			return closed, events
		}

		s.startStreet(next)
		events = append(events, s.phaseChanged(from, next))
	}
	return closed, events
}

func (s *TableState) phaseChanged(from, to Phase) PhaseChangedEvent {
	return PhaseChangedEvent{
		TableID:    s.ID,
		HandID:     s.Hand.ID,
		HandNumber: s.Hand.Number,
		From:       from,
		To:         to,
		Board:      cloneCards(s.Hand.Board),
		PotTotal:   s.PotTotal(),
		Version:    s.Version,
	}
}
