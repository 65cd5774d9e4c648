package game

import (
	"errors"
	"fmt"
)

// Seating errors.
var (
	ErrSeatOutOfRange    = errors.New("seat out of range")
	ErrSeatTaken         = errors.New("seat taken")
	ErrSeatEmpty         = errors.New("seat empty")
	ErrPlayerSeated      = errors.New("player already seated")
	ErrBuyInOutOfRange   = errors.New("buy-in out of range")
	ErrSeatInHand        = errors.New("seat is in the current hand")
	ErrInsufficientChips = errors.New("insufficient chips")
)

func (s TableState) occupiedSeat(seat int) error {
	if !s.seatInRange(seat) {
		return fmt.Errorf("%w: %d", ErrSeatOutOfRange, seat)
	}
	if !s.Seats[seat].Occupied() {
		return fmt.Errorf("%w: %d", ErrSeatEmpty, seat)
	}
	return nil
}

// inLiveHand reports whether seat was dealt into a hand that is still running.
func (s TableState) inLiveHand(seat int) bool {
	return s.HandInProgress() && s.Seats[seat].InHand
}

// SitDown seats playerID with a buy-in between the table's bounds. A player
// joining mid-hand is dealt in from the next hand.
func SitDown(state TableState, seat int, playerID string, buyIn int64) (TableState, error) {
	if !state.seatInRange(seat) {
		return state, fmt.Errorf("%w: %d", ErrSeatOutOfRange, seat)
	}
	if playerID == "" {
		return state, errors.New("player id is required")
	}
	if state.Seats[seat].Occupied() {
		return state, fmt.Errorf("%w: %d", ErrSeatTaken, seat)
	}
	for _, st := range state.Seats {
		if st.PlayerID == playerID {
			return state, fmt.Errorf("%w: %s at seat %d", ErrPlayerSeated, playerID, st.Index)
		}
	}
	if buyIn < state.Config.MinBuyIn || buyIn > state.Config.MaxBuyIn {
		return state, fmt.Errorf("%w: %d not in [%d, %d]", ErrBuyInOutOfRange, buyIn, state.Config.MinBuyIn, state.Config.MaxBuyIn)
	}

	next := state.Clone()
	next.Seats[seat] = Seat{
		Index:    seat,
		PlayerID: playerID,
		Stack:    buyIn,
		Status:   SeatActive,
	}
	next.Version++
	return next, nil
}

// Leave empties the seat and returns the stack the player cashes out with.
// A seat still in the live hand must wait for it to finish.
func Leave(state TableState, seat int) (TableState, int64, error) {
	if err := state.occupiedSeat(seat); err != nil {
		return state, 0, err
	}
	if state.inLiveHand(seat) {
		return state, 0, fmt.Errorf("%w: %d", ErrSeatInHand, seat)
	}

	next := state.Clone()
	cashOut := next.Seats[seat].Stack
	next.Seats[seat] = Seat{Index: seat, Status: SeatEmpty}
	next.Version++
	return next, cashOut, nil
}

// SitOut stops the seat being dealt in. During a hand it takes effect once the
// hand is over.
func SitOut(state TableState, seat int) (TableState, error) {
	if err := state.occupiedSeat(seat); err != nil {
		return state, err
	}
	next := state.Clone()
	if next.inLiveHand(seat) {
		next.Seats[seat].SitOutNext = true
	} else {
		next.Seats[seat].Status = SeatSittingOut
	}
	next.Version++
	return next, nil
}

// SitIn makes a sitting out seat eligible for the next hand.
func SitIn(state TableState, seat int) (TableState, error) {
	if err := state.occupiedSeat(seat); err != nil {
		return state, err
	}
	next := state.Clone()
	st := &next.Seats[seat]
	if next.inLiveHand(seat) {
		st.SitOutNext = false
	} else {
		if st.Stack <= 0 {
			return state, fmt.Errorf("%w: seat %d has no chips", ErrInsufficientChips, seat)
		}
		st.Status = SeatActive
		st.SitOutNext = false
	}
	next.Version++
	return next, nil
}

// TopUp adds chips to a seat between hands, up to the max buy-in.
func TopUp(state TableState, seat int, amount int64) (TableState, error) {
	if err := state.occupiedSeat(seat); err != nil {
		return state, err
	}
	if state.inLiveHand(seat) {
		return state, fmt.Errorf("%w: %d", ErrSeatInHand, seat)
	}
	if amount <= 0 || state.Seats[seat].Stack+amount > state.Config.MaxBuyIn {
		return state, fmt.Errorf("%w: top up %d on stack %d exceeds max %d",
			ErrBuyInOutOfRange, amount, state.Seats[seat].Stack, state.Config.MaxBuyIn)
	}
	next := state.Clone()
	next.Seats[seat].Stack += amount
	next.Version++
	return next, nil
}
