package game

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/poker"
)

var testConfig = TableConfig{SmallBlind: 10, BigBlind: 20, MinBuyIn: 100, MaxBuyIn: 5000, MaxSeats: 6}

// newTable seats one player per stack, starting at seat 0.
func newTable(t *testing.T, cfg TableConfig, stacks ...int64) TableState {
	t.Helper()
	if cfg.MaxSeats == 0 {
		cfg.MaxSeats = max(2, len(stacks))
	}
	state, err := NewTableState("t1", cfg)
	require.NoError(t, err)
	for i, stack := range stacks {
		state, err = SitDown(state, i, playerName(i), stack)
		require.NoError(t, err)
	}
	return state
}

func playerName(i int) string {
	return string(rune('a' + i))
}

// startStacked starts a hand dealing the given cards first.
func startStacked(t *testing.T, state TableState, cards string, opts ...HandOption) (TableState, []Event) {
	t.Helper()
	opts = append([]HandOption{WithDeck(poker.MustStackedDeck(poker.MustParseCards(cards)...))}, opts...)
	next, events, err := StartHand(state, nil, opts...)
	require.NoError(t, err)
	return next, events
}

// act applies an action for the seat to act and fails the test on rejection.
func act(t *testing.T, state TableState, typ ActionType, amount int64, opts ...HandOption) (TableState, ActionResult) {
	t.Helper()
	require.True(t, state.HandInProgress(), "no hand in progress")
	seat := state.Hand.ToAct
	next, res, err := Process(state, seat, ActionRequest{Type: typ, Amount: amount}, opts...)
	require.NoError(t, err, "seat %d %s %d", seat, typ, amount)
	return next, res
}

func sumStacks(state TableState) int64 {
	var total int64
	for _, s := range state.Seats {
		total += s.Stack
	}
	return total
}

// randomRequest picks a uniformly random legal action and amount.
func randomRequest(rng *rand.Rand, legal []ValidAction) ActionRequest {
	va := legal[rng.IntN(len(legal))]
	req := ActionRequest{Type: va.Type}
	if va.Type.Sized() {
		req.Amount = va.Min
		if va.Max > va.Min {
			req.Amount += rng.Int64N(va.Max - va.Min + 1)
		}
	}
	return req
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.EventType()
	}
	return out
}
