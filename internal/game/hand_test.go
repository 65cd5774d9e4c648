package game

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/poker"
)

func TestStartHandPostsBlindsAndDeals(t *testing.T) {
	t.Parallel()

	state := newTable(t, testConfig, 1000, 1000, 1000)
	// Deal order starts left of the button (seat 0): seats 1, 2, 0, 1, 2, 0.
	state, events := startStacked(t, state, "2c 2d 2h 3c 3d 3h", WithHandID("hand-1"))

	h := state.Hand
	require.NotNil(t, h)
	assert.Equal(t, "hand-1", h.ID)
	assert.Equal(t, int64(1), h.Number)
	assert.Equal(t, PhasePreflop, h.Phase)
	assert.Equal(t, int64(20), h.CurrentBet)
	assert.Equal(t, int64(20), h.MinRaise)
	assert.Equal(t, poker.MustParseCards("2h3h"), state.Seats[0].HoleCards)
	assert.Equal(t, poker.MustParseCards("2c3c"), state.Seats[1].HoleCards)
	assert.Equal(t, poker.MustParseCards("2d3d"), state.Seats[2].HoleCards)
	assert.Len(t, h.Deck, 46)
	assert.Empty(t, h.Board)

	assert.Equal(t, int64(990), state.Seats[1].Stack)
	assert.Equal(t, int64(980), state.Seats[2].Stack)
	assert.Equal(t, int64(30), state.PotTotal())
	assert.Equal(t, int64(30), potsTotal(h.Pots))

	require.Len(t, events, 1)
	started, ok := events[0].(HandStartedEvent)
	require.True(t, ok)
	assert.Equal(t, map[int]int64{0: 1000, 1: 1000, 2: 1000}, started.Stacks)
	assert.Equal(t, 1, started.SmallBlindSeat)
}

func TestStartHandErrors(t *testing.T) {
	t.Parallel()

	lonely := newTable(t, testConfig, 1000)
	_, _, err := StartHand(lonely, rand.New(rand.NewPCG(1, 1)))
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	state := newTable(t, testConfig, 1000, 1000)
	state, _ = startStacked(t, state, "")
	_, _, err = StartHand(state, rand.New(rand.NewPCG(1, 1)))
	require.ErrorIs(t, err, ErrHandInProgress)

	short := newTable(t, testConfig, 1000, 1000)
	deck := poker.NewDeck(rand.New(rand.NewPCG(1, 1)))
	deck.Deal(45)
	_, _, err = StartHand(short, nil, WithDeck(deck))
	require.ErrorIs(t, err, ErrDeckExhausted)
}

func TestButtonMovesAndSkipsSittingOut(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 5))
	state := newTable(t, testConfig, 1000, 1000, 1000)

	state, _, err := StartHand(state, rng)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Button)
	for state.HandInProgress() {
		state, _ = act(t, state, ActionFold, 0)
	}

	state, err = SitOut(state, 1)
	require.NoError(t, err)
	state, _, err = StartHand(state, rng)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Button, "seat 1 is sitting out")
	assert.False(t, state.Seats[1].InHand)
	// Heads-up now: the button posts the small blind.
	assert.Equal(t, 2, state.Hand.SmallBlindSeat)
	assert.Equal(t, 0, state.Hand.BigBlindSeat)
	assert.Equal(t, 2, state.Hand.ToAct)
}

func TestShortBlindsRunOutImmediately(t *testing.T) {
	t.Parallel()

	cfg := TableConfig{SmallBlind: 100, BigBlind: 200, MinBuyIn: 100, MaxBuyIn: 5000, MaxSeats: 2}
	state := newTable(t, cfg, 1000, 150)

	// Seat 0 is the button and small blind. Seat 1 posts its whole stack as big blind.
	state, events := startStacked(t, state, "KdAs KcAh 2c7d9hJs3c")
	assert.Equal(t, SeatAllIn, state.Seats[1].Status)
	assert.Equal(t, 0, state.Hand.ToAct, "small blind may still complete")

	state, res := act(t, state, ActionCall, 0)
	require.True(t, res.HandFinished)
	assert.True(t, res.Showdown)
	assert.Equal(t, int64(1150), state.Seats[0].Stack)
	assert.Equal(t, int64(0), state.Seats[1].Stack)
	assert.Equal(t, SeatSittingOut, state.Seats[1].Status, "busted seats sit out")
	assert.Len(t, events, 1)
}

func TestShortBigBlindStillPricesTheFullBlind(t *testing.T) {
	t.Parallel()

	cfg := TableConfig{SmallBlind: 10, BigBlind: 20, MinBuyIn: 10, MaxBuyIn: 5000, MaxSeats: 3}
	state := newTable(t, cfg, 1000, 1000, 15)
	state, _ = startStacked(t, state, "")

	// Seat 2 posts its whole stack as the big blind.
	require.Equal(t, SeatAllIn, state.Seats[2].Status)
	assert.Equal(t, int64(20), state.Hand.CurrentBet)
	require.Equal(t, 0, state.Hand.ToAct)
	assert.Equal(t, []ValidAction{
		{Type: ActionFold},
		{Type: ActionCall, Min: 20, Max: 20},
		{Type: ActionRaise, Min: 40, Max: 1000},
		{Type: ActionAllIn, Min: 1000, Max: 1000},
	}, state.LegalActions(0))

	state, _ = act(t, state, ActionCall, 0) // seat 0
	state, res := act(t, state, ActionCall, 0)
	assert.Equal(t, int64(10), res.Chips, "small blind completes to the full blind")
	require.Equal(t, PhaseFlop, state.Hand.Phase)
	assert.Equal(t, []Pot{
		{Amount: 45, Eligible: []int{0, 1, 2}},
		{Amount: 10, Eligible: []int{0, 1}},
	}, state.Hand.Pots)

	for state.HandInProgress() {
		state, _ = act(t, state, ActionCheck, 0)
	}
	assert.Equal(t, int64(2015), sumStacks(state))
}

func TestBlindAllInWithNoDecisionsLeft(t *testing.T) {
	t.Parallel()

	cfg := TableConfig{SmallBlind: 100, BigBlind: 200, MinBuyIn: 100, MaxBuyIn: 5000, MaxSeats: 2}
	state := newTable(t, cfg, 100, 1000)

	// The button posts its whole stack as small blind; nobody has a decision.
	state, events := startStacked(t, state, "KdAs KcAh 2c7d9hJs3c")
	require.Equal(t, PhaseFinished, state.Hand.Phase)
	assert.Equal(t, []EventType{
		EventTypeHandStarted,
		EventTypePhaseChanged, EventTypePhaseChanged, EventTypePhaseChanged, // flop, turn, river
		EventTypePhaseChanged, // showdown
		EventTypePhaseChanged, // finished
		EventTypeHandResult,
	}, eventTypes(events))

	result := state.Hand.Result
	require.NotNil(t, result)
	assert.Equal(t, 1, result.ReturnedTo)
	assert.Equal(t, int64(100), result.Returned)
	assert.Equal(t, int64(200), result.PotSize)
	assert.Equal(t, []int{0}, result.Winners())
	assert.Equal(t, int64(200), state.Seats[0].Stack)
	assert.Equal(t, int64(900), state.Seats[1].Stack)
}

// Two seats, 1000 each, blinds 10/20. The big blind shoves preflop and the
// button calls; the board runs out and the best seven card hand takes 2000.
func TestEndToEndHeadsUpAllIn(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		rake RakeCalculator
		want int64
	}{
		{"no rake", NoRake{}, 2000},
		{"capped rake", PercentageRake{BasisPoints: 500, Cap: 60}, 1940},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := newTable(t, testConfig, 1000, 1000)
			// Seat 1 gets KdKc, seat 0 gets AsAh.
			state, _ = startStacked(t, state, "Kd As Kc Ah 2c 7d 9h Js 3c")
			require.Equal(t, 1, state.Hand.BigBlindSeat)

			state, _ = act(t, state, ActionCall, 0, WithRake(tc.rake))
			state, _ = act(t, state, ActionAllIn, 0, WithRake(tc.rake))
			require.Equal(t, int64(1000), state.Hand.CurrentBet)
			require.Equal(t, int64(1020), state.PotTotal())

			state, res := act(t, state, ActionCall, 0, WithRake(tc.rake))
			require.True(t, res.HandFinished)
			require.True(t, res.Showdown)
			assert.Equal(t, PhasePreflop, res.PhaseBefore)
			assert.Equal(t, PhaseFinished, res.PhaseAfter)

			result := res.Result
			require.NotNil(t, result)
			assert.Equal(t, int64(2000), result.PotSize)
			assert.Equal(t, 2000-tc.want, result.Rake)
			assert.Equal(t, []int{0}, result.Winners())
			assert.Len(t, result.Board, 5)
			assert.Len(t, result.Shown, 2)

			assert.Equal(t, tc.want, state.Seats[0].Stack)
			assert.Equal(t, int64(0), state.Seats[1].Stack)
			assert.Equal(t, tc.want-1000, result.Delta(0))
			assert.Equal(t, int64(-1000), result.Delta(1))
		})
	}
}

func TestOddChipGoesLeftOfDealer(t *testing.T) {
	t.Parallel()

	cfg := TableConfig{SmallBlind: 5, BigBlind: 10, MinBuyIn: 100, MaxBuyIn: 5000, MaxSeats: 3}

	run := func() TableState {
		state := newTable(t, cfg, 1000, 1000, 1000)
		// Deal order 1, 2, 0: nobody holds a spade, the board is a royal flush.
		state, _ = startStacked(t, state, "2c 2d 2h 3c 3d 3h As Ks Qs Js Ts")
		state, _ = act(t, state, ActionRaise, 48) // seat 0
		state, _ = act(t, state, ActionFold, 0)   // seat 1 leaves 5 behind
		state, _ = act(t, state, ActionCall, 0)   // seat 2
		for state.HandInProgress() {
			state, _ = act(t, state, ActionCheck, 0)
		}
		return state
	}

	state := run()
	result := state.Hand.Result
	require.NotNil(t, result)
	// The folded small blind's level is its own slice, split on its own.
	require.Len(t, result.Pots, 2)
	assert.Equal(t, int64(15), result.Pots[0].Amount)
	assert.Equal(t, int64(86), result.Pots[1].Amount)
	for _, pot := range result.Pots {
		assert.Equal(t, []int{0, 2}, pot.Winners)
	}
	// Seat 2 is the first winner clockwise from the dealer (seat 0).
	assert.Equal(t, []Payout{{Seat: 2, Amount: 8}, {Seat: 0, Amount: 7}}, result.Pots[0].Payouts)
	assert.Equal(t, []Payout{{Seat: 2, Amount: 43}, {Seat: 0, Amount: 43}}, result.Pots[1].Payouts)
	assert.Equal(t, int64(1002), state.Seats[0].Stack)
	assert.Equal(t, int64(995), state.Seats[1].Stack)
	assert.Equal(t, int64(1003), state.Seats[2].Stack)

	assert.Equal(t, state, run(), "same inputs give the same result")
}

func TestThreeWayAllInSidePots(t *testing.T) {
	t.Parallel()

	state := newTable(t, testConfig, 300, 200, 100)
	// Deal order 1, 2, 0: seat 2 aces, seat 1 kings, seat 0 queens.
	state, _ = startStacked(t, state, "Kc Ac Qc Kd Ad Qd 2s 5h 8d 9c Jh")

	state, _ = act(t, state, ActionAllIn, 0) // seat 0 to 300
	state, _ = act(t, state, ActionAllIn, 0) // seat 1 calls all in for 200
	require.Equal(t, 2, state.Hand.ToAct)
	state, res := act(t, state, ActionCall, 0) // seat 2 calls all in for 100

	require.True(t, res.Showdown)
	result := res.Result
	assert.Equal(t, 0, result.ReturnedTo)
	assert.Equal(t, int64(100), result.Returned)
	require.Len(t, result.Pots, 2)
	assert.Equal(t, int64(300), result.Pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, result.Pots[0].Eligible)
	assert.Equal(t, []int{2}, result.Pots[0].Winners)
	assert.Equal(t, int64(200), result.Pots[1].Amount)
	assert.Equal(t, []int{0, 1}, result.Pots[1].Eligible)
	assert.Equal(t, []int{1}, result.Pots[1].Winners)

	assert.Equal(t, int64(100), state.Seats[0].Stack)
	assert.Equal(t, int64(200), state.Seats[1].Stack)
	assert.Equal(t, int64(300), state.Seats[2].Stack)
}

func TestRakeFromMainPotFirst(t *testing.T) {
	t.Parallel()

	state := newTable(t, testConfig, 300, 200, 100)
	state, _ = startStacked(t, state, "Kc Ac Qc Kd Ad Qd 2s 5h 8d 9c Jh")
	rake := WithRake(PercentageRake{BasisPoints: 1000}) // 10% of 500

	state, _ = act(t, state, ActionAllIn, 0, rake)
	state, _ = act(t, state, ActionAllIn, 0, rake)
	state, res := act(t, state, ActionCall, 0, rake)

	result := res.Result
	assert.Equal(t, int64(50), result.Rake)
	assert.Equal(t, int64(50), result.Pots[0].Rake)
	assert.Equal(t, int64(0), result.Pots[1].Rake)
	assert.Equal(t, int64(250), state.Seats[2].Stack)
	assert.Equal(t, int64(550), sumStacks(state))
}

func TestPercentageRake(t *testing.T) {
	t.Parallel()

	r := PercentageRake{BasisPoints: 500, Cap: 30, MinPot: 100, NoFlopNoDrop: true}
	assert.Equal(t, int64(0), r.Rake(RakeInput{PotTotal: 1000, Phase: PhasePreflop}))
	assert.Equal(t, int64(0), r.Rake(RakeInput{PotTotal: 99, Phase: PhaseFlop}))
	assert.Equal(t, int64(5), r.Rake(RakeInput{PotTotal: 119, Phase: PhaseRiver}))
	assert.Equal(t, int64(30), r.Rake(RakeInput{PotTotal: 5000, Phase: PhaseTurn}))
	assert.Equal(t, int64(0), NoRake{}.Rake(RakeInput{PotTotal: 5000}))
	assert.Equal(t, int64(10), clampRake(50, 10))
	assert.Equal(t, int64(0), clampRake(-5, 10))
}
