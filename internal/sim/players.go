package sim

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/poker"
)

// Player picks an action from the viewer's own table view. legal is never
// empty when Decide is called.
type Player interface {
	Decide(view game.TableView, legal []game.ValidAction) game.ActionRequest
}

// Strategies lists the deciding players NewPlayer accepts.
var Strategies = []string{"rand", "call", "fold", "tight", "maniac"}

// AbsentStrategy names a player that never answers. Its seat only moves when
// the turn timer acts for it, so it needs a turn timeout.
const AbsentStrategy = "afk"

// NewPlayer builds a player by strategy name. rng must not be shared with
// another goroutine.
func NewPlayer(strategy string, rng *rand.Rand) (Player, error) {
	switch strategy {
	case "rand":
		return &RandomPlayer{rng: rng}, nil
	case "call":
		return CallingStation{}, nil
	case "fold":
		return Folder{}, nil
	case "tight":
		return TightPlayer{}, nil
	case "maniac":
		return &Maniac{rng: rng}, nil
	case AbsentStrategy:
		return Absent{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want one of %v or %s)", strategy, Strategies, AbsentStrategy)
	}
}

// RandomPlayer makes uniform random legal actions, sizing bets uniformly in
// the legal range.
type RandomPlayer struct {
	rng *rand.Rand
}

func (r *RandomPlayer) Decide(_ game.TableView, legal []game.ValidAction) game.ActionRequest {
	va := legal[r.rng.IntN(len(legal))]
	return game.ActionRequest{Type: va.Type, Amount: r.size(va)}
}

func (r *RandomPlayer) size(va game.ValidAction) int64 {
	if !va.Type.Sized() || va.Max <= va.Min {
		return va.Min
	}
	return va.Min + r.rng.Int64N(va.Max-va.Min+1)
}

// Absent has walked away from the table. The runner never asks it to decide;
// Decide only exists so it can sit in a seat.
type Absent struct{}

func (Absent) Decide(game.TableView, []game.ValidAction) game.ActionRequest {
	return game.ActionRequest{}
}

// CallingStation never folds and never raises.
type CallingStation struct{}

func (CallingStation) Decide(_ game.TableView, legal []game.ValidAction) game.ActionRequest {
	return first(legal, game.ActionCheck, game.ActionCall, game.ActionAllIn, game.ActionFold)
}

// Folder checks when it is free and folds otherwise.
type Folder struct{}

func (Folder) Decide(_ game.TableView, legal []game.ValidAction) game.ActionRequest {
	return first(legal, game.ActionCheck, game.ActionFold)
}

// TightPlayer plays premium hands hard and little else.
type TightPlayer struct{}

func (TightPlayer) Decide(view game.TableView, legal []game.ValidAction) game.ActionRequest {
	hole := view.Seats[view.Viewer].HoleCards
	if len(hole) != 2 || view.Hand == nil {
		return first(legal, game.ActionCheck, game.ActionFold)
	}

	if view.Hand.Phase == game.PhasePreflop {
		switch poker.CategorizeHoleCards(hole[0], hole[1]) {
		case poker.CategoryPremium:
			return raise(legal, view.Hand.CurrentBet*3)
		case poker.CategoryStrong, poker.CategoryMedium:
			return first(legal, game.ActionCheck, game.ActionCall, game.ActionFold)
		default:
			return first(legal, game.ActionCheck, game.ActionFold)
		}
	}

	strength, _, err := poker.BestHand(append(slices.Clone(hole), view.Hand.Board...)...)
	if err != nil {
		return first(legal, game.ActionCheck, game.ActionFold)
	}
	switch t := strength.Type(); {
	case t >= poker.TwoPair:
		return raise(legal, view.Hand.CurrentBet+view.Hand.PotTotal/2)
	case t == poker.Pair:
		return first(legal, game.ActionCheck, game.ActionCall, game.ActionFold)
	default:
		return first(legal, game.ActionCheck, game.ActionFold)
	}
}

// Maniac bets or raises whenever it can, shoving one time in ten.
type Maniac struct {
	rng *rand.Rand
}

func (m *Maniac) Decide(_ game.TableView, legal []game.ValidAction) game.ActionRequest {
	if m.rng.IntN(10) == 0 {
		if req, ok := find(legal, game.ActionAllIn); ok {
			return req
		}
	}
	return raise(legal, 0)
}

// raise bets or raises to target, clamped to the legal range, and falls back
// to the passive options when aggression is not allowed.
func raise(legal []game.ValidAction, target int64) game.ActionRequest {
	for _, va := range legal {
		if va.Type == game.ActionBet || va.Type == game.ActionRaise {
			return game.ActionRequest{Type: va.Type, Amount: min(max(target, va.Min), va.Max)}
		}
	}
	return first(legal, game.ActionCall, game.ActionCheck, game.ActionAllIn, game.ActionFold)
}

// first returns the first preference present in legal.
func first(legal []game.ValidAction, prefs ...game.ActionType) game.ActionRequest {
	for _, p := range prefs {
		if req, ok := find(legal, p); ok {
			return req
		}
	}
	return game.ActionRequest{Type: legal[0].Type, Amount: legal[0].Min}
}

func find(legal []game.ValidAction, t game.ActionType) (game.ActionRequest, bool) {
	for _, va := range legal {
		if va.Type == t {
			req := game.ActionRequest{Type: t}
			if t.Sized() {
				req.Amount = va.Min
			}
			return req, true
		}
	}
	return game.ActionRequest{}, false
}
