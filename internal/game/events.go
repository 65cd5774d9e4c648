package game

import (
	"github.com/lox/holdem-engine/poker"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for engine events. Events are plain data derived from a
// transition; publishing them is the caller's job.
const (
	EventTypeHandStarted          EventType = "hand_started"
	EventTypePhaseChanged         EventType = "phase_changed"
	EventTypeActionApplied        EventType = "action_applied"
	EventTypeHandResult           EventType = "hand_result"
	EventTypeChipIntegrityFailure EventType = "chip_integrity_failure"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything the engine reports about a transition.
type Event interface {
	EventType() EventType
}

// HandStartedEvent is emitted once blinds are posted and cards are dealt.
type HandStartedEvent struct {
	TableID        string        `json:"table_id"`
	HandID         string        `json:"hand_id"`
	HandNumber     int64         `json:"hand_number"`
	Dealer         int           `json:"dealer"`
	SmallBlindSeat int           `json:"small_blind_seat"`
	BigBlindSeat   int           `json:"big_blind_seat"`
	SmallBlind     int64         `json:"small_blind"`
	BigBlind       int64         `json:"big_blind"`
	Stacks         map[int]int64 `json:"stacks"` // before blinds
	Version        int64         `json:"version"`
}

func (HandStartedEvent) EventType() EventType { return EventTypeHandStarted }

// PhaseChangedEvent is emitted for every street dealt and for showdown.
type PhaseChangedEvent struct {
	TableID    string       `json:"table_id"`
	HandID     string       `json:"hand_id"`
	HandNumber int64        `json:"hand_number"`
	From       Phase        `json:"from"`
	To         Phase        `json:"to"`
	Board      []poker.Card `json:"board"`
	PotTotal   int64        `json:"pot_total"`
	Version    int64        `json:"version"`
}

func (PhaseChangedEvent) EventType() EventType { return EventTypePhaseChanged }

// ActionAppliedEvent is emitted for every accepted action.
type ActionAppliedEvent struct {
	TableID    string     `json:"table_id"`
	HandID     string     `json:"hand_id"`
	HandNumber int64      `json:"hand_number"`
	Sequence   int64      `json:"sequence"`
	Seat       int        `json:"seat"`
	Action     ActionType `json:"action"`
	Amount     int64      `json:"amount"` // round total after the action
	Chips      int64      `json:"chips"`  // chips moved by the action
	PotTotal   int64      `json:"pot_total"`
	Phase      Phase      `json:"phase"`
	Version    int64      `json:"version"`
}

func (ActionAppliedEvent) EventType() EventType { return EventTypeActionApplied }

// HandResultEvent is emitted when a hand is settled.
type HandResultEvent struct {
	TableID string     `json:"table_id"`
	Result  HandResult `json:"result"`
	Version int64      `json:"version"`
}

func (HandResultEvent) EventType() EventType { return EventTypeHandResult }

// ChipIntegrityFailureEvent reports a conservation breach. The table that
// produced it is halted.
type ChipIntegrityFailureEvent struct {
	TableID     string `json:"table_id"`
	HandNumber  int64  `json:"hand_number"`
	Discrepancy int64  `json:"discrepancy"`
	Reason      string `json:"reason"`
}

func (ChipIntegrityFailureEvent) EventType() EventType { return EventTypeChipIntegrityFailure }
