// Package table runs TableStates behind a single-writer guard. Readers load the
// current state without locking; writers are serialised in arrival order.
package table

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/coder/quartz"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/lox/holdem-engine/internal/eventbus"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/gameid"
	"github.com/lox/holdem-engine/internal/integrity"
	"github.com/lox/holdem-engine/internal/logging"
	"github.com/lox/holdem-engine/internal/metrics"
)

var (
	// ErrTableHalted is returned by every write once a table has failed a chip
	// integrity check. A halted table is never repaired in place.
	ErrTableHalted = errors.New("table halted")
	// ErrStaleSequence is returned by SubmitAt when the hand moved on.
	ErrStaleSequence = errors.New("stale action sequence")
)

const defaultDedupeSize = 1024

// Options configures a Table. Zero values get working defaults.
type Options struct {
	Logger     zerolog.Logger
	Clock      quartz.Clock
	Publisher  eventbus.Publisher
	Metrics    *metrics.Metrics
	Rake       game.RakeCalculator
	Rand       *rand.Rand    // shuffles decks; only used under the writer lock
	HandIDs    func() string // defaults to gameid.NewHandID
	Sync       *SyncWriter   // receives every committed state
	DedupeSize int

	// RandFor gives each table created by a Registry its own RNG.
	RandFor func(tableID string) *rand.Rand
}

// outcome is what a request id resolved to the first time.
type outcome struct {
	result game.ActionResult
	err    error
}

// Table is a handle on one table's state.
type Table struct {
	id    string
	state atomic.Pointer[game.TableState]

	// writer serialises transitions. semaphore.Weighted hands out permits in
	// request order and honours the caller's context.
	writer *semaphore.Weighted
	// publish keeps events in commit order after the writer is released.
	publish sync.Mutex

	halted atomic.Pointer[error]

	// Guarded by writer.
	snapshot *integrity.Snapshot
	eventSeq uint64
	dedupe   *lru.Cache[string, outcome]

	logger    zerolog.Logger
	clock     quartz.Clock
	publisher eventbus.Publisher
	metrics   *metrics.Metrics
	rake      game.RakeCalculator
	rng       *rand.Rand
	handIDs   func() string
	sync      *SyncWriter
}

// New wraps an initial state.
func New(initial game.TableState, opts Options) (*Table, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Publisher == nil {
		opts.Publisher = eventbus.Discard{}
	}
	if opts.Rake == nil {
		opts.Rake = game.NoRake{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.HandIDs == nil {
		opts.HandIDs = gameid.NewHandID
	}
	if opts.DedupeSize <= 0 {
		opts.DedupeSize = defaultDedupeSize
	}
	cache, err := lru.New[string, outcome](opts.DedupeSize)
	if err != nil {
		return nil, fmt.Errorf("dedupe cache: %w", err)
	}

	t := &Table{
		id:        initial.ID,
		writer:    semaphore.NewWeighted(1),
		dedupe:    cache,
		logger:    logging.ForTable(logging.Component(opts.Logger, "table"), initial.ID),
		clock:     opts.Clock,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		rake:      opts.Rake,
		rng:       opts.Rand,
		handIDs:   opts.HandIDs,
		sync:      opts.Sync,
	}
	state := initial.Clone()
	t.state.Store(&state)

	// A table restored mid-hand resumes checking against its starting stacks.
	if h := state.Hand; h.Live() {
		snap := integrity.Capture(state.ID, h.Number, startingStacks(state))
		t.snapshot = &snap
	}
	return t, nil
}

func (t *Table) ID() string { return t.id }

// State returns a copy of the current state.
func (t *Table) State() game.TableState {
	return t.state.Load().Clone()
}

// View projects the current state for a seat or game.Spectator.
func (t *Table) View(viewer int) game.TableView {
	return t.state.Load().View(viewer)
}

// Halted returns the integrity failure that stopped the table, or nil.
func (t *Table) Halted() error {
	if err := t.halted.Load(); err != nil {
		return *err
	}
	return nil
}

// Submit applies an action for seat. A request id seen before returns the
// first outcome again without touching the state.
func (t *Table) Submit(ctx context.Context, seat int, req game.ActionRequest) (game.ActionResult, error) {
	return t.submit(ctx, seat, req, nil)
}

// SubmitAt is Submit that only applies while handID is live and its action
// sequence is still seq. Sequences restart every hand, so both are compared.
// Timers use it so a late fire cannot act on a newer decision.
func (t *Table) SubmitAt(ctx context.Context, seat int, req game.ActionRequest, handID string, seq int64) (game.ActionResult, error) {
	return t.submit(ctx, seat, req, &decision{handID: handID, seq: seq})
}

// decision pins a submission to one point in one hand.
type decision struct {
	handID string
	seq    int64
}

func (d *decision) current(st game.TableState) bool {
	return d == nil || (st.HandInProgress() && st.Hand.ID == d.handID && st.Hand.Sequence == d.seq)
}

func (t *Table) submit(ctx context.Context, seat int, req game.ActionRequest, at *decision) (game.ActionResult, error) {
	start := t.clock.Now()
	defer func() { t.metrics.ObserveSubmit(t.clock.Since(start)) }()

	var res game.ActionResult
	var envelopes []eventbus.Envelope
	err := t.write(ctx, func(cur game.TableState) (*game.TableState, error) {
		key := dedupeKey(seat, req.RequestID)
		if key != "" {
			if prev, ok := t.dedupe.Get(key); ok {
				t.metrics.DuplicateRequest()
				res = prev.result
				return nil, prev.err
			}
		}
		if !at.current(cur) {
			return nil, fmt.Errorf("%w: expected hand %s at %d", ErrStaleSequence, at.handID, at.seq)
		}

		next, r, err := game.Process(cur, seat, req, game.WithRake(t.rake))
		if err != nil {
			var rej *game.Rejection
			if errors.As(err, &rej) {
				t.metrics.ActionRejected(rej.Reason.String())
			}
			if key != "" {
				t.dedupe.Add(key, outcome{err: err})
			}
			return nil, err
		}
		if err := t.checkIntegrity(next); err != nil {
			return nil, err
		}

		res = r
		t.metrics.ActionApplied(req.Type.String())
		if r.HandFinished {
			t.finishHand(r.Result)
		}
		if key != "" {
			t.dedupe.Add(key, outcome{result: r})
		}
		envelopes = t.wrap(r.Events)
		t.logger.Debug().
			Int(logging.SeatKey, seat).
			Stringer("action", r.Action).
			Int64("amount", r.Amount).
			Int64(logging.SequenceKey, r.Sequence).
			Msg("action applied")
		return &next, nil
	}, &envelopes)
	return res, err
}

// StartHand deals the next hand and returns the new state.
func (t *Table) StartHand(ctx context.Context) (game.TableState, error) {
	var started game.TableState
	var envelopes []eventbus.Envelope
	err := t.write(ctx, func(cur game.TableState) (*game.TableState, error) {
		next, events, err := game.StartHand(cur, t.rng,
			game.WithHandID(t.handIDs()),
			game.WithRake(t.rake),
		)
		if err != nil {
			return nil, err
		}

		h := next.Hand
		snap := integrity.Capture(next.ID, h.Number, startingStacks(next))
		t.snapshot = &snap
		if err := t.checkIntegrity(next); err != nil {
			return nil, err
		}
		t.metrics.HandStarted()
		if h.Result != nil {
			t.finishHand(h.Result)
		}

		started = next.Clone()
		envelopes = t.wrap(events)
		t.logger.Info().
			Str(logging.HandIDKey, h.ID).
			Int64(logging.HandNumberKey, h.Number).
			Int("dealer", h.Dealer).
			Msg("hand started")
		return &next, nil
	}, &envelopes)
	return started, err
}

// SitDown seats a player.
func (t *Table) SitDown(ctx context.Context, seat int, playerID string, buyIn int64) error {
	return t.seating(ctx, func(s game.TableState) (game.TableState, error) {
		return game.SitDown(s, seat, playerID, buyIn)
	})
}

// Leave empties a seat and returns the chips the player leaves with.
func (t *Table) Leave(ctx context.Context, seat int) (int64, error) {
	var cashOut int64
	err := t.seating(ctx, func(s game.TableState) (game.TableState, error) {
		next, chips, err := game.Leave(s, seat)
		cashOut = chips
		return next, err
	})
	return cashOut, err
}

func (t *Table) SitOut(ctx context.Context, seat int) error {
	return t.seating(ctx, func(s game.TableState) (game.TableState, error) {
		return game.SitOut(s, seat)
	})
}

func (t *Table) SitIn(ctx context.Context, seat int) error {
	return t.seating(ctx, func(s game.TableState) (game.TableState, error) {
		return game.SitIn(s, seat)
	})
}

func (t *Table) TopUp(ctx context.Context, seat int, amount int64) error {
	return t.seating(ctx, func(s game.TableState) (game.TableState, error) {
		return game.TopUp(s, seat, amount)
	})
}

func (t *Table) seating(ctx context.Context, op func(game.TableState) (game.TableState, error)) error {
	return t.write(ctx, func(cur game.TableState) (*game.TableState, error) {
		next, err := op(cur)
		if err != nil {
			return nil, err
		}
		return &next, nil
	}, nil)
}

// write runs fn under the writer guard. fn returns the state to commit, or nil
// to leave the table unchanged. Envelopes collected by fn are published in
// commit order after the guard is released.
func (t *Table) write(ctx context.Context, fn func(game.TableState) (*game.TableState, error), envelopes *[]eventbus.Envelope) error {
	if err := t.writer.Acquire(ctx, 1); err != nil {
		return err
	}
	released := false
	release := func() {
		if !released {
			released = true
			t.writer.Release(1)
		}
	}
	defer release()

	if err := t.Halted(); err != nil {
		return err
	}

	next, err := fn(*t.state.Load())
	if next != nil {
		t.state.Store(next)
		if t.sync != nil {
			t.sync.Enqueue(next.Clone())
		}
	}
	if envelopes == nil || len(*envelopes) == 0 {
		return err
	}

	// Take the publish lock before letting the next writer in so events
	// leave in the order their transitions committed.
	t.publish.Lock()
	release()
	defer t.publish.Unlock()
	for _, env := range *envelopes {
		if perr := t.publisher.Publish(ctx, env); perr != nil {
			t.logger.Warn().Err(perr).Str("event", string(env.Type)).Msg("publish failed")
		}
	}
	return err
}

// checkIntegrity compares next against the hand's snapshot. Must hold writer.
func (t *Table) checkIntegrity(next game.TableState) error {
	if t.snapshot == nil || next.Hand == nil {
		return nil
	}
	var err error
	if next.Hand.Live() {
		err = t.snapshot.CheckInFlight(next.Stacks(), next.PotTotal())
	} else if next.Hand.Result != nil {
		err = t.snapshot.Validate(t.id, next.Stacks(), next.Hand.Result.Rake)
	}
	if err == nil {
		return nil
	}
	return t.halt(next.Hand.Number, err)
}

// halt stops the table for good. Must hold writer.
func (t *Table) halt(handNumber int64, cause error) error {
	err := fmt.Errorf("%w: %w", ErrTableHalted, cause)
	t.halted.Store(&err)
	t.metrics.IntegrityFailure()

	ev := game.ChipIntegrityFailureEvent{TableID: t.id, HandNumber: handNumber, Reason: cause.Error()}
	var ie *integrity.IntegrityError
	if errors.As(cause, &ie) {
		ev.Discrepancy = ie.Discrepancy
	}
	t.logger.Error().Err(cause).Int64(logging.HandNumberKey, handNumber).Msg("chip integrity failure, table halted")

	// The publish happens while holding the writer: nothing else will run on
	// this table again.
	for _, env := range t.wrap([]game.Event{ev}) {
		_ = t.publisher.Publish(context.Background(), env)
	}
	return err
}

// finishHand consumes the hand's snapshot. Must hold writer.
func (t *Table) finishHand(result *game.HandResult) {
	t.snapshot = nil
	showdown := result != nil && !result.Uncontested
	var rake int64
	if result != nil {
		rake = result.Rake
	}
	t.metrics.HandFinished(showdown, rake)
	if result != nil {
		t.logger.Info().
			Str(logging.HandIDKey, result.HandID).
			Ints("winners", result.Winners()).
			Int64("pot", result.PotSize).
			Int64("rake", rake).
			Msg("hand finished")
	}
}

// wrap stamps events with the table's event sequence. Must hold writer.
func (t *Table) wrap(events []game.Event) []eventbus.Envelope {
	out := make([]eventbus.Envelope, len(events))
	now := t.clock.Now()
	for i, ev := range events {
		t.eventSeq++
		out[i] = eventbus.Envelope{
			TableID:  t.id,
			Sequence: t.eventSeq,
			At:       now,
			Type:     ev.EventType(),
			Event:    ev,
		}
	}
	return out
}

func dedupeKey(seat int, requestID string) string {
	if requestID == "" {
		return ""
	}
	return fmt.Sprintf("%d/%s", seat, requestID)
}

// startingStacks returns the stacks of every seat dealt in, before blinds.
func startingStacks(s game.TableState) map[int]int64 {
	stacks := make(map[int]int64)
	for i, seat := range s.Seats {
		if seat.InHand {
			stacks[i] = s.Hand.StartingStacks[i]
		}
	}
	return stacks
}
