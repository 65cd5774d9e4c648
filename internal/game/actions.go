package game

import (
	"errors"
	"fmt"
)

// ActionRequest is an already-parsed player command. Amount is the seat's
// round total after a bet or raise; it is optional for the other actions.
type ActionRequest struct {
	RequestID string     `json:"request_id"`
	Type      ActionType `json:"type"`
	Amount    int64      `json:"amount,omitempty"`
}

// RejectionReason classifies why an action was refused.
type RejectionReason uint8

const (
	HandNotInProgress RejectionReason = iota + 1
	NotYourTurn
	InvalidAction
	AmountOutOfRange
)

func (r RejectionReason) String() string {
	switch r {
	case HandNotInProgress:
		return "hand_not_in_progress"
	case NotYourTurn:
		return "not_your_turn"
	case InvalidAction:
		return "invalid_action"
	case AmountOutOfRange:
		return "amount_out_of_range"
	default:
		return "unknown"
	}
}

// Sentinels matched by *Rejection via errors.Is.
var (
	ErrHandNotInProgress = errors.New("hand not in progress")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrInvalidAction     = errors.New("invalid action")
	ErrAmountOutOfRange  = errors.New("amount out of range")
)

// Rejection is the typed refusal returned by Process. Rejections are expected
// results of bad client input, never engine faults.
type Rejection struct {
	Reason RejectionReason
	Seat   int
	Action ActionType
	Amount int64
	// Legal is the legal set at the time of the request, when there was one.
	Legal []ValidAction
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case AmountOutOfRange:
		return fmt.Sprintf("seat %d: %s amount %d out of range", r.Seat, r.Action, r.Amount)
	case InvalidAction:
		return fmt.Sprintf("seat %d: %s is not a legal action", r.Seat, r.Action)
	default:
		return fmt.Sprintf("seat %d: %s", r.Seat, r.sentinel())
	}
}

func (r *Rejection) sentinel() error {
	switch r.Reason {
	case HandNotInProgress:
		return ErrHandNotInProgress
	case NotYourTurn:
		return ErrNotYourTurn
	case InvalidAction:
		return ErrInvalidAction
	case AmountOutOfRange:
		return ErrAmountOutOfRange
	default:
		return nil
	}
}

func (r *Rejection) Is(target error) bool {
	return target != nil && target == r.sentinel()
}

// ActionResult describes an accepted action.
type ActionResult struct {
	Seat         int         `json:"seat"`
	Action       ActionType  `json:"action"`
	Amount       int64       `json:"amount"` // round total after the action
	Chips        int64       `json:"chips"`  // chips moved from stack to pot
	Sequence     int64       `json:"sequence"`
	Version      int64       `json:"version"`
	PotTotal     int64       `json:"pot_total"`
	RoundClosed  bool        `json:"round_closed"`
	PhaseBefore  Phase       `json:"phase_before"`
	PhaseAfter   Phase       `json:"phase_after"`
	Showdown     bool        `json:"showdown"`
	HandFinished bool        `json:"hand_finished"`
	Result       *HandResult `json:"result,omitempty"`
	Events       []Event     `json:"-"`
}

// Validate checks req against state without applying it. It returns the round
// total the action would bring the seat to.
func Validate(state TableState, seat int, req ActionRequest) (int64, error) {
	if !state.HandInProgress() || state.Hand.Phase == PhaseShowdown {
		return 0, &Rejection{Reason: HandNotInProgress, Seat: seat, Action: req.Type, Amount: req.Amount}
	}
	if state.Hand.ToAct != seat {
		return 0, &Rejection{Reason: NotYourTurn, Seat: seat, Action: req.Type, Amount: req.Amount}
	}

	legal := state.LegalActions(seat)
	va, ok := findAction(legal, req.Type)
	if !ok {
		return 0, &Rejection{Reason: InvalidAction, Seat: seat, Action: req.Type, Amount: req.Amount, Legal: legal}
	}

	to := va.Min
	switch {
	case req.Type.Sized():
		to = req.Amount
	case req.Amount != 0:
		// Fixed-size actions may echo their amount; it must match.
		to = req.Amount
	}
	if to < va.Min || to > va.Max {
		return 0, &Rejection{Reason: AmountOutOfRange, Seat: seat, Action: req.Type, Amount: req.Amount, Legal: legal}
	}
	return to, nil
}

// Process validates req for seat and applies it. The input state is never
// modified. On rejection the returned error is a *Rejection.
func Process(state TableState, seat int, req ActionRequest, opts ...HandOption) (TableState, ActionResult, error) {
	to, err := Validate(state, seat, req)
	if err != nil {
		return state, ActionResult{}, err
	}

	cfg := newHandConfig(opts)
	next := state.Clone()
	h := next.Hand
	phaseBefore := h.Phase
	st := &next.Seats[seat]

	var chips int64
	switch req.Type {
	case ActionFold:
		st.Status = SeatFolded
	case ActionCheck:
	default:
		chips = to - st.RoundBet
		st.Stack -= chips
		st.RoundBet = to
		st.Committed += chips
		if st.Stack == 0 {
			st.Status = SeatAllIn
		}
		if to > h.CurrentBet {
			// Only a full bet or raise reopens the action. Seats that already
			// acted may then only call or fold an all-in for less.
			if increment := to - h.CurrentBet; increment >= h.MinRaise {
				h.MinRaise = increment
				for i := range next.Seats {
					if i != seat {
						next.Seats[i].Acted = false
					}
				}
			}
			h.CurrentBet = to
			h.LastAggressor = seat
		}
	}
	st.Acted = true
	h.Sequence++
	h.LastBetPhase = h.Phase
	h.Pots = CalculatePots(next.contributions())
	next.Version++

	result := ActionResult{
		Seat:        seat,
		Action:      req.Type,
		Amount:      to,
		Chips:       chips,
		Sequence:    h.Sequence,
		Version:     next.Version,
		PotTotal:    next.PotTotal(),
		PhaseBefore: phaseBefore,
	}
	result.Events = append(result.Events, ActionAppliedEvent{
		TableID:    next.ID,
		HandID:     h.ID,
		HandNumber: h.Number,
		Sequence:   h.Sequence,
		Seat:       seat,
		Action:     req.Type,
		Amount:     to,
		Chips:      chips,
		PotTotal:   result.PotTotal,
		Phase:      phaseBefore,
		Version:    next.Version,
	})

	closed, events := next.progress(cfg)
	if !closed {
		h.ToAct = next.nextToAct(seat)
	}
	result.Events = append(result.Events, events...)
	result.RoundClosed = closed
	result.PhaseAfter = h.Phase
	result.HandFinished = h.Phase == PhaseFinished
	result.Showdown = result.HandFinished && !h.Result.Uncontested
	if h.Result != nil {
		result.Result = h.Result.clone()
	}
	return next, result, nil
}
