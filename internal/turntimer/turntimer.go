// Package turntimer force-acts for seats that miss their turn deadline. It sits
// outside the engine: a timeout is an ordinary CHECK or FOLD submitted through
// the table, pinned to the hand and action sequence it was armed for.
package turntimer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/eventbus"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/logging"
	"github.com/lox/holdem-engine/internal/table"
)

// DefaultTimeout matches the decision window bots get by default.
const DefaultTimeout = 100 * time.Millisecond

// Submitter is the slice of *table.Table the timer needs.
type Submitter interface {
	ID() string
	State() game.TableState
	SubmitAt(ctx context.Context, seat int, req game.ActionRequest, handID string, seq int64) (game.ActionResult, error)
}

type Options struct {
	Clock   quartz.Clock
	Timeout time.Duration
	Logger  zerolog.Logger
}

// turn identifies one pending decision.
type turn struct {
	handID string
	seq    int64
	seat   int
}

// Timer watches one table. Subscribe it to the bus the table publishes on.
type Timer struct {
	table   Submitter
	clock   quartz.Clock
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	armed   turn
	pending *quartz.Timer
	closed  bool
	fired   int
}

func New(t Submitter, opts Options) *Timer {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Timer{
		table:   t,
		clock:   opts.Clock,
		timeout: opts.Timeout,
		logger:  logging.ForTable(logging.Component(opts.Logger, "turntimer"), t.ID()),
	}
}

// OnEvent re-arms the deadline whenever the table moves. It runs on the
// publishing goroutine and never calls back into the table's writer.
func (t *Timer) OnEvent(env eventbus.Envelope) {
	if env.TableID != t.table.ID() {
		return
	}
	t.Sync()
}

// Sync arms the deadline for the table's current decision, leaving an already
// running deadline for the same decision alone.
func (t *Timer) Sync() {
	st := t.table.State()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	live := st.HandInProgress() && st.Hand.ToAct >= 0
	var next turn
	if live {
		next = turn{handID: st.Hand.ID, seq: st.Hand.Sequence, seat: st.Hand.ToAct}
		if t.pending != nil && t.armed == next {
			return
		}
	}
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	if !live {
		return
	}
	t.armed = next
	t.pending = t.clock.AfterFunc(t.timeout, func() { t.fire(next) }, "turntimer", "deadline")
}

// Stop cancels any pending deadline. The timer ignores events afterwards.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Fired reports how many timeouts were applied.
func (t *Timer) Fired() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

func (t *Timer) fire(k turn) {
	t.mu.Lock()
	if t.closed || t.armed != k {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.mu.Unlock()

	// The legal set is only read to choose between CHECK and FOLD. SubmitAt
	// rechecks the hand and sequence under the writer.
	st := t.table.State()
	if !st.HandInProgress() || st.Hand.ID != k.handID {
		return
	}
	req := game.ActionRequest{
		RequestID: fmt.Sprintf("timeout-%s-%d", k.handID, k.seq),
		Type:      timeoutAction(st.LegalActions(k.seat)),
	}

	// The submit publishes, which re-enters Sync; the lock must be free here.
	_, err := t.table.SubmitAt(context.Background(), k.seat, req, k.handID, k.seq)
	log := t.logger.With().
		Str(logging.HandIDKey, k.handID).
		Int(logging.SeatKey, k.seat).
		Int64(logging.SequenceKey, k.seq).
		Logger()
	switch {
	case errors.Is(err, table.ErrStaleSequence):
		log.Debug().Msg("deadline passed after seat acted")
	case err != nil:
		log.Warn().Err(err).Msg("timeout action rejected")
	default:
		t.mu.Lock()
		t.fired++
		t.mu.Unlock()
		log.Info().Stringer("action", req.Type).Msg("turn timed out")
	}
}

// timeoutAction checks when checking is free and folds otherwise.
func timeoutAction(legal []game.ValidAction) game.ActionType {
	for _, va := range legal {
		if va.Type == game.ActionCheck {
			return game.ActionCheck
		}
	}
	return game.ActionFold
}
