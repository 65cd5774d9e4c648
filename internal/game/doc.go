// Package game implements the Texas Hold'em table state machine.
//
// The main type is TableState, a plain value holding the table config, the
// seats and the current HandState. Every operation is a pure transition that
// returns a new TableState and never modifies its input, so a state can be
// read from many goroutines while the next one is computed.
//
// # Basic Usage
//
//	state, _ := game.NewTableState("t1", game.TableConfig{
//	    SmallBlind: 10, BigBlind: 20, MinBuyIn: 400, MaxBuyIn: 2000, MaxSeats: 6,
//	})
//	state, _ = game.SitDown(state, 0, "alice", 1000)
//	state, _ = game.SitDown(state, 1, "bob", 1000)
//	state, events, _ := game.StartHand(state, rng)
//	state, result, err := game.Process(state, state.Hand.ToAct, game.ActionRequest{Type: game.ActionCall})
//	var rej *game.Rejection
//	if errors.As(err, &rej) {
//	    // rej.Reason explains the refusal
//	}
//
// # Deterministic Testing
//
// StartHand takes the RNG used to shuffle. Pass a seeded *rand.Rand, or a
// stacked deck with WithDeck for complete control:
//
//	deck := poker.MustStackedDeck(poker.MustParseCards("AsAh KdKc")...)
//	state, _, _ = game.StartHand(state, nil, game.WithDeck(deck))
//
// The undealt deck is part of HandState, so a state decoded with
// DecodeTableState continues exactly like the table that was encoded.
//
// # Architecture
//
//   - CalculatePots: contribution levels to main and side pots
//   - LegalActions / IsRoundComplete: betting round rules
//   - Process: validation and application of one action
//   - StartHand and settlement: blinds, dealing, showdown and odd chips
//   - RakeCalculator: pluggable rake policy
//   - View: per-viewer projection with hidden cards removed
//
// The package does no I/O and keeps no timers or logs.
package game
