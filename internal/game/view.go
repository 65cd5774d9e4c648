package game

import (
	"github.com/lox/holdem-engine/poker"
)

// Spectator is the viewer index for someone not sitting at the table.
const Spectator = -1

// SeatView is a seat as one viewer may see it.
type SeatView struct {
	Index     int          `json:"index"`
	PlayerID  string       `json:"player_id,omitempty"`
	Stack     int64        `json:"stack"`
	Committed int64        `json:"committed"`
	RoundBet  int64        `json:"round_bet"`
	Status    SeatStatus   `json:"status"`
	InHand    bool         `json:"in_hand"`
	HoleCards []poker.Card `json:"hole_cards,omitempty"`
	// HasCards is true when the seat holds cards the viewer cannot see.
	HasCards bool `json:"has_cards,omitempty"`
}

// HandView is the public part of a hand.
type HandView struct {
	ID             string        `json:"id"`
	Number         int64         `json:"number"`
	Phase          Phase         `json:"phase"`
	Board          []poker.Card  `json:"board"`
	CurrentBet     int64         `json:"current_bet"`
	MinRaise       int64         `json:"min_raise"`
	Dealer         int           `json:"dealer"`
	SmallBlindSeat int           `json:"small_blind_seat"`
	BigBlindSeat   int           `json:"big_blind_seat"`
	ToAct          int           `json:"to_act"`
	Pots           []Pot         `json:"pots"`
	PotTotal       int64         `json:"pot_total"`
	Sequence       int64         `json:"sequence"`
	Legal          []ValidAction `json:"legal,omitempty"` // only for the viewer's own turn
	Result         *HandResult   `json:"result,omitempty"`
}

// TableView is a read-only projection of a TableState for one viewer.
type TableView struct {
	ID          string      `json:"id"`
	Viewer      int         `json:"viewer"`
	Config      TableConfig `json:"config"`
	Seats       []SeatView  `json:"seats"`
	Hand        *HandView   `json:"hand,omitempty"`
	Button      int         `json:"button"`
	HandsPlayed int64       `json:"hands_played"`
	Version     int64       `json:"version"`
}

// View projects the state for viewer, a seat index or Spectator. Other seats'
// hole cards and the undealt deck are never included; hands shown at a
// finished showdown are.
func (s TableState) View(viewer int) TableView {
	v := TableView{
		ID:          s.ID,
		Viewer:      viewer,
		Config:      s.Config,
		Seats:       make([]SeatView, len(s.Seats)),
		Button:      s.Button,
		HandsPlayed: s.HandsPlayed,
		Version:     s.Version,
	}

	shown := make(map[int][]poker.Card)
	if s.Hand != nil && s.Hand.Result != nil {
		for _, sh := range s.Hand.Result.Shown {
			shown[sh.Seat] = sh.Cards
		}
	}

	for i, seat := range s.Seats {
		sv := SeatView{
			Index:     seat.Index,
			PlayerID:  seat.PlayerID,
			Stack:     seat.Stack,
			Committed: seat.Committed,
			RoundBet:  seat.RoundBet,
			Status:    seat.Status,
			InHand:    seat.InHand,
		}
		switch cards, ok := shown[i]; {
		case ok:
			sv.HoleCards = cloneCards(cards)
		case i == viewer:
			sv.HoleCards = cloneCards(seat.HoleCards)
		default:
			sv.HasCards = len(seat.HoleCards) > 0 && seat.contesting() && s.HandInProgress()
		}
		v.Seats[i] = sv
	}

	if h := s.Hand; h != nil {
		hv := &HandView{
			ID:             h.ID,
			Number:         h.Number,
			Phase:          h.Phase,
			Board:          cloneCards(h.Board),
			CurrentBet:     h.CurrentBet,
			MinRaise:       h.MinRaise,
			Dealer:         h.Dealer,
			SmallBlindSeat: h.SmallBlindSeat,
			BigBlindSeat:   h.BigBlindSeat,
			ToAct:          h.ToAct,
			Pots:           clonePots(h.Pots),
			PotTotal:       s.PotTotal(),
			Sequence:       h.Sequence,
		}
		if viewer != Spectator && viewer == h.ToAct {
			hv.Legal = s.LegalActions(viewer)
		}
		if h.Result != nil {
			hv.Result = h.Result.clone()
		}
		v.Hand = hv
	}
	return v
}
