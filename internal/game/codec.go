package game

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/lox/holdem-engine/poker"
)

// ErrCorruptState is returned when a decoded snapshot is not a state the
// engine could have produced.
var ErrCorruptState = errors.New("corrupt table state")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeTableState serialises the full state, undealt deck included.
func EncodeTableState(s TableState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode table state: %w", err)
	}
	return data, nil
}

// DecodeTableState restores a state written by EncodeTableState. The result
// continues exactly as the table that was encoded would have.
func DecodeTableState(data []byte) (TableState, error) {
	var s TableState
	if err := json.Unmarshal(data, &s); err != nil {
		return TableState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if err := s.Validate(); err != nil {
		return TableState{}, err
	}
	return s, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}

// Validate checks the structural invariants of a state.
func (s TableState) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if len(s.Seats) != s.Config.MaxSeats {
		return corrupt("%d seats for max seats %d", len(s.Seats), s.Config.MaxSeats)
	}
	if s.Button < -1 || s.Button >= len(s.Seats) {
		return corrupt("button %d out of range", s.Button)
	}

	players := make(map[string]bool)
	for i, seat := range s.Seats {
		switch {
		case seat.Index != i:
			return corrupt("seat %d has index %d", i, seat.Index)
		case seat.Stack < 0 || seat.Committed < 0 || seat.RoundBet < 0:
			return corrupt("seat %d has negative chips", i)
		case seat.RoundBet > seat.Committed:
			return corrupt("seat %d round bet exceeds hand commitment", i)
		case int(seat.Status) >= len(seatStatusNames):
			return corrupt("seat %d has status %d", i, seat.Status)
		case seat.Occupied() == (seat.Status == SeatEmpty):
			return corrupt("seat %d occupancy does not match status %s", i, seat.Status)
		case seat.Occupied() && players[seat.PlayerID]:
			return corrupt("player %s seated twice", seat.PlayerID)
		}
		if seat.Occupied() {
			players[seat.PlayerID] = true
		}
	}

	if s.Hand == nil {
		return nil
	}
	return s.validateHand()
}

func (s TableState) validateHand() error {
	h := s.Hand
	n := len(s.Seats)
	inRange := func(seat int) bool { return seat >= 0 && seat < n }

	switch {
	case !h.Phase.Valid():
		return corrupt("phase %d", h.Phase)
	case h.Number <= 0 || h.Number > s.HandsPlayed:
		return corrupt("hand number %d with %d hands played", h.Number, s.HandsPlayed)
	case !inRange(h.Dealer) || !inRange(h.SmallBlindSeat) || !inRange(h.BigBlindSeat):
		return corrupt("dealer or blind seat out of range")
	case len(h.StartingStacks) != n:
		return corrupt("%d starting stacks for %d seats", len(h.StartingStacks), n)
	case h.CurrentBet < 0 || h.MinRaise < 0 || h.Sequence < 0:
		return corrupt("negative betting counters")
	}

	if h.Live() {
		if h.Phase <= PhaseRiver && len(h.Board) != h.Phase.boardSize() {
			return corrupt("%d board cards on the %s", len(h.Board), h.Phase)
		}
		if h.ToAct != -1 {
			if !inRange(h.ToAct) || !s.Seats[h.ToAct].canAct() {
				return corrupt("seat %d cannot be to act", h.ToAct)
			}
		}
		if h.Phase <= PhaseRiver && h.ToAct == -1 && !s.IsRoundComplete() {
			return corrupt("nobody to act in an open round")
		}
	} else if len(h.Board) > 5 {
		return corrupt("%d board cards", len(h.Board))
	}

	var seen poker.CardSet
	count := 0
	addCards := func(cards []poker.Card) error {
		for _, c := range cards {
			if !c.Valid() {
				return corrupt("invalid card %v", c)
			}
			if seen.Has(c) {
				return corrupt("card %s appears twice", c)
			}
			seen = seen.Add(c)
			count++
		}
		return nil
	}
	if err := addCards(h.Board); err != nil {
		return err
	}
	if err := addCards(h.Deck); err != nil {
		return err
	}

	var committed int64
	for _, seat := range s.Seats {
		if !seat.InHand {
			continue
		}
		committed += seat.Committed
		if h.Live() {
			if len(seat.HoleCards) != 2 {
				return corrupt("seat %d has %d hole cards", seat.Index, len(seat.HoleCards))
			}
			if seat.Status == SeatEmpty || seat.Status == SeatSittingOut {
				return corrupt("seat %d is in the hand but %s", seat.Index, seat.Status)
			}
		}
		if err := addCards(seat.HoleCards); err != nil {
			return err
		}
	}
	if h.Live() {
		if count != 52 {
			return corrupt("%d cards accounted for", count)
		}
		if pots := potsTotal(h.Pots); pots != committed {
			return corrupt("pots hold %d but seats committed %d", pots, committed)
		}
	}
	return nil
}
