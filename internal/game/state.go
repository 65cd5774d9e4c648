package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/holdem-engine/poker"
)

// Phase is the street a hand is on.
type Phase uint8

const (
	PhasePreflop Phase = iota
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseFinished
)

var phaseNames = [...]string{"preflop", "flop", "turn", "river", "showdown", "finished"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", p)
}

func (p Phase) Valid() bool { return p <= PhaseFinished }

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", p)
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// boardSize is the number of community cards dealt once a street begins.
func (p Phase) boardSize() int {
	switch p {
	case PhaseFlop:
		return 3
	case PhaseTurn:
		return 4
	case PhaseRiver:
		return 5
	default:
		return 0
	}
}

// SeatStatus is the state of a seat at the table.
type SeatStatus uint8

const (
	SeatEmpty SeatStatus = iota
	SeatActive
	SeatFolded
	SeatAllIn
	SeatSittingOut
)

var seatStatusNames = [...]string{"empty", "active", "folded", "all_in", "sitting_out"}

func (s SeatStatus) String() string {
	if int(s) < len(seatStatusNames) {
		return seatStatusNames[s]
	}
	return fmt.Sprintf("status(%d)", s)
}

func (s SeatStatus) MarshalText() ([]byte, error) {
	if int(s) >= len(seatStatusNames) {
		return nil, fmt.Errorf("invalid seat status %d", s)
	}
	return []byte(s.String()), nil
}

func (s *SeatStatus) UnmarshalText(text []byte) error {
	for i, name := range seatStatusNames {
		if name == string(text) {
			*s = SeatStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown seat status %q", text)
}

// ErrInvalidConfig is returned for table configurations that cannot be played.
var ErrInvalidConfig = errors.New("invalid table config")

// TableConfig holds the per-table constants. It never changes after the table
// is created.
type TableConfig struct {
	SmallBlind int64 `json:"small_blind"`
	BigBlind   int64 `json:"big_blind"`
	MinBuyIn   int64 `json:"min_buy_in"`
	MaxBuyIn   int64 `json:"max_buy_in"`
	MaxSeats   int   `json:"max_seats"`
}

// Validate checks the blind, buy-in and seat bounds.
func (c TableConfig) Validate() error {
	switch {
	case c.MaxSeats < 2 || c.MaxSeats > 10:
		return fmt.Errorf("%w: max seats must be 2-10, got %d", ErrInvalidConfig, c.MaxSeats)
	case c.SmallBlind <= 0:
		return fmt.Errorf("%w: small blind must be positive, got %d", ErrInvalidConfig, c.SmallBlind)
	case c.BigBlind < c.SmallBlind:
		return fmt.Errorf("%w: big blind %d below small blind %d", ErrInvalidConfig, c.BigBlind, c.SmallBlind)
	case c.MinBuyIn <= 0:
		return fmt.Errorf("%w: min buy-in must be positive, got %d", ErrInvalidConfig, c.MinBuyIn)
	case c.MaxBuyIn < c.MinBuyIn:
		return fmt.Errorf("%w: max buy-in %d below min buy-in %d", ErrInvalidConfig, c.MaxBuyIn, c.MinBuyIn)
	}
	return nil
}

// Seat is one position at the table.
type Seat struct {
	Index     int          `json:"index"`
	PlayerID  string       `json:"player_id,omitempty"`
	Stack     int64        `json:"stack"`
	Committed int64        `json:"committed"` // chips put in this hand
	RoundBet  int64        `json:"round_bet"` // chips put in this betting round
	Status    SeatStatus   `json:"status"`
	HoleCards []poker.Card `json:"hole_cards,omitempty"`
	// Acted is set once the seat has acted since the last full bet or raise.
	Acted bool `json:"acted"`
	// InHand marks seats dealt into the current (or last) hand.
	InHand     bool `json:"in_hand"`
	SitOutNext bool `json:"sit_out_next,omitempty"`
}

// Occupied reports whether a player is sitting in the seat.
func (s Seat) Occupied() bool { return s.PlayerID != "" }

func (s Seat) canAct() bool {
	return s.InHand && s.Status == SeatActive && s.Stack > 0
}

func (s Seat) contesting() bool {
	return s.InHand && (s.Status == SeatActive || s.Status == SeatAllIn)
}

// Pot is the main pot or a side pot.
type Pot struct {
	Amount   int64 `json:"amount"`
	Eligible []int `json:"eligible"`
}

// HandState is the live (or most recently finished) hand at a table.
type HandState struct {
	ID             string       `json:"id"`
	Number         int64        `json:"number"`
	Phase          Phase        `json:"phase"`
	Board          []poker.Card `json:"board"`
	Deck           []poker.Card `json:"deck"` // undealt cards in deal order
	CurrentBet     int64        `json:"current_bet"`
	MinRaise       int64        `json:"min_raise"`
	LastAggressor  int          `json:"last_aggressor"`
	Dealer         int          `json:"dealer"`
	SmallBlindSeat int          `json:"small_blind_seat"`
	BigBlindSeat   int          `json:"big_blind_seat"`
	ToAct          int          `json:"to_act"`
	Pots           []Pot        `json:"pots"`
	StartingStacks []int64      `json:"starting_stacks"`
	Sequence       int64        `json:"sequence"`
	// LastBetPhase is the street on which the last betting action happened.
	LastBetPhase Phase       `json:"last_bet_phase"`
	Result       *HandResult `json:"result,omitempty"`
}

// Live reports whether the hand still accepts actions or settlement.
func (h *HandState) Live() bool {
	return h != nil && h.Phase < PhaseFinished
}

// TableState is the unit of truth for one table. Engine functions never mutate
// the value they are given; they return a new one.
type TableState struct {
	ID          string      `json:"id"`
	Config      TableConfig `json:"config"`
	Seats       []Seat      `json:"seats"`
	Hand        *HandState  `json:"hand,omitempty"`
	Button      int         `json:"button"`
	HandsPlayed int64       `json:"hands_played"`
	Version     int64       `json:"version"`
}

// NewTableState creates an empty table.
func NewTableState(id string, cfg TableConfig) (TableState, error) {
	if err := cfg.Validate(); err != nil {
		return TableState{}, err
	}
	seats := make([]Seat, cfg.MaxSeats)
	for i := range seats {
		seats[i] = Seat{Index: i, Status: SeatEmpty}
	}
	return TableState{
		ID:     id,
		Config: cfg,
		Seats:  seats,
		Button: -1,
	}, nil
}

// HandInProgress reports whether a hand is live.
func (s TableState) HandInProgress() bool {
	return s.Hand.Live()
}

// PotTotal is the sum of all chips committed to the live hand.
func (s TableState) PotTotal() int64 {
	if !s.Hand.Live() {
		return 0
	}
	var total int64
	for _, seat := range s.Seats {
		if seat.InHand {
			total += seat.Committed
		}
	}
	return total
}

// TotalChips is every chip on the table: stacks plus the live pot.
func (s TableState) TotalChips() int64 {
	var total int64
	for _, seat := range s.Seats {
		total += seat.Stack
	}
	return total + s.PotTotal()
}

// Stacks returns the stack of every seat dealt into the current hand.
func (s TableState) Stacks() map[int]int64 {
	stacks := make(map[int]int64)
	for _, seat := range s.Seats {
		if seat.InHand {
			stacks[seat.Index] = seat.Stack
		}
	}
	return stacks
}

// Clone returns a deep copy.
func (s TableState) Clone() TableState {
	out := s
	out.Seats = make([]Seat, len(s.Seats))
	for i, seat := range s.Seats {
		seat.HoleCards = cloneCards(seat.HoleCards)
		out.Seats[i] = seat
	}
	if s.Hand != nil {
		out.Hand = s.Hand.clone()
	}
	return out
}

func (h *HandState) clone() *HandState {
	out := *h
	out.Board = cloneCards(h.Board)
	out.Deck = cloneCards(h.Deck)
	out.Pots = clonePots(h.Pots)
	out.StartingStacks = slices.Clone(h.StartingStacks)
	if h.Result != nil {
		out.Result = h.Result.clone()
	}
	return &out
}

func cloneCards(cards []poker.Card) []poker.Card {
	return slices.Clone(cards)
}

func clonePots(pots []Pot) []Pot {
	if pots == nil {
		return nil
	}
	out := make([]Pot, len(pots))
	for i, p := range pots {
		out[i] = Pot{Amount: p.Amount, Eligible: slices.Clone(p.Eligible)}
	}
	return out
}

// nextSeat returns the first seat clockwise after from matching ok, or -1.
func (s TableState) nextSeat(from int, ok func(Seat) bool) int {
	n := len(s.Seats)
	for i := 1; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if ok(s.Seats[idx]) {
			return idx
		}
	}
	return -1
}

func (s TableState) seatInRange(seat int) bool {
	return seat >= 0 && seat < len(s.Seats)
}
