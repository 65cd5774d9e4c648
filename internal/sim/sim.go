// Package sim drives many tables with automated players. It is the engine's
// soak test: every hand is checked for chip conservation end to end.
package sim

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	rand "math/rand/v2"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/eventbus"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/logging"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/table"
	"github.com/lox/holdem-engine/internal/turntimer"
)

var (
	// ErrChipsLeaked is returned when a table's chips stop adding up.
	ErrChipsLeaked = errors.New("chips leaked")
	// ErrStalled is returned when a seat's turn never moves on.
	ErrStalled = errors.New("table stalled")
)

// Config holds configuration for a simulation run.
type Config struct {
	Tables     int
	Hands      int // per table
	Players    int // per table, defaults to every seat
	Strategies []string
	Seed       int64
	Table      game.TableConfig
	BuyIn      int64 // defaults to 100 big blinds within the buy-in range
	Parallel   int   // tables run at once, 0 means all

	// TurnTimeout arms a turn timer on every table when positive. Seats that
	// miss it check or fold. The afk strategy relies on it.
	TurnTimeout time.Duration
	Clock       quartz.Clock // drives turn timers; defaults to the real clock

	// TableOptions is passed to every table. Rand and RandFor are replaced
	// so that runs are reproducible from Seed.
	TableOptions table.Options
	Logger       zerolog.Logger
}

// Simulator runs hands across tables.
type Simulator struct {
	cfg    Config
	logger zerolog.Logger
	bus    *eventbus.Bus // carries table events to turn timers
}

func New(cfg Config) (*Simulator, error) {
	if cfg.Tables <= 0 || cfg.Hands <= 0 {
		return nil, fmt.Errorf("tables and hands must be positive")
	}
	if err := cfg.Table.Validate(); err != nil {
		return nil, err
	}
	if cfg.Players == 0 {
		cfg.Players = cfg.Table.MaxSeats
	}
	if cfg.Players < 2 || cfg.Players > cfg.Table.MaxSeats {
		return nil, fmt.Errorf("players must be between 2 and %d", cfg.Table.MaxSeats)
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = []string{"rand"}
	}
	for _, s := range cfg.Strategies {
		if _, err := NewPlayer(s, nil); err != nil {
			return nil, err
		}
		if s == AbsentStrategy && cfg.TurnTimeout <= 0 {
			return nil, fmt.Errorf("strategy %s needs a turn timeout", AbsentStrategy)
		}
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.BuyIn == 0 {
		cfg.BuyIn = min(max(cfg.Table.BigBlind*100, cfg.Table.MinBuyIn), cfg.Table.MaxBuyIn)
	}
	if cfg.BuyIn < cfg.Table.MinBuyIn || cfg.BuyIn > cfg.Table.MaxBuyIn {
		return nil, fmt.Errorf("buy-in %d outside %d-%d", cfg.BuyIn, cfg.Table.MinBuyIn, cfg.Table.MaxBuyIn)
	}
	return &Simulator{cfg: cfg, logger: logging.Component(cfg.Logger, "sim")}, nil
}

// Run plays every table to completion, or until the first failure.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	opts := s.cfg.TableOptions
	opts.Rand = nil
	opts.RandFor = func(id string) *rand.Rand {
		return randutil.Derive(s.cfg.Seed, stream(id))
	}
	if s.cfg.TurnTimeout > 0 {
		s.bus = eventbus.NewBus()
		if opts.Publisher != nil {
			opts.Publisher = eventbus.Multi{s.bus, opts.Publisher}
		} else {
			opts.Publisher = s.bus
		}
	}
	reg := table.NewRegistry(opts)

	reports := make([]*Report, s.cfg.Tables)
	g, ctx := errgroup.WithContext(ctx)
	if s.cfg.Parallel > 0 {
		g.SetLimit(s.cfg.Parallel)
	}
	for i := range s.cfg.Tables {
		g.Go(func() error {
			r, err := s.runTable(ctx, reg, i)
			reports[i] = r
			return err
		})
	}
	err := g.Wait()

	total := newReport()
	for _, r := range reports {
		if r != nil {
			total.merge(r)
		}
	}
	total.Elapsed = time.Since(start)
	return total, err
}

type seated struct {
	strategy string
	player   Player
}

func (s *Simulator) runTable(ctx context.Context, reg *table.Registry, index int) (*Report, error) {
	id := fmt.Sprintf("sim-%04d", index)
	tbl, err := reg.Create(id, s.cfg.Table)
	if err != nil {
		return nil, err
	}
	defer reg.Remove(id)

	rng := randutil.Derive(s.cfg.Seed^0x5eed, index)
	seats := make([]seated, s.cfg.Players)
	for seat := range seats {
		strategy := s.cfg.Strategies[(index+seat)%len(s.cfg.Strategies)]
		p, err := NewPlayer(strategy, randutil.New(randutil.Seed(rng)))
		if err != nil {
			return nil, err
		}
		seats[seat] = seated{strategy: strategy, player: p}
		if err := tbl.SitDown(ctx, seat, fmt.Sprintf("%s-%d", strategy, seat), s.cfg.BuyIn); err != nil {
			return nil, err
		}
	}

	report := newReport()
	report.Tables = 1
	bankroll := int64(len(seats)) * s.cfg.BuyIn
	logger := logging.ForTable(s.logger, id)

	// moved is signalled whenever this table publishes, so a runner waiting
	// on an absent seat wakes once the turn timer has acted.
	var moved chan struct{}
	if s.bus != nil {
		timer := turntimer.New(tbl, turntimer.Options{
			Clock:   s.cfg.Clock,
			Timeout: s.cfg.TurnTimeout,
			Logger:  s.cfg.Logger,
		})
		moved = make(chan struct{}, 1)
		unsubscribe := s.bus.Subscribe(eventbus.SubscriberFunc(func(env eventbus.Envelope) {
			if env.TableID != id {
				return
			}
			timer.OnEvent(env)
			select {
			case moved <- struct{}{}:
			default:
			}
		}))
		defer func() {
			unsubscribe()
			timer.Stop()
			report.TimedOut += timer.Fired()
		}()
	}

	for range s.cfg.Hands {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.rebuy(ctx, tbl, report); err != nil {
			return report, err
		}
		if _, err := tbl.StartHand(ctx); err != nil {
			return report, fmt.Errorf("table %s: start hand: %w", id, err)
		}

		for st := tbl.State(); st.HandInProgress() && st.Hand.ToAct >= 0; st = tbl.State() {
			seat := st.Hand.ToAct
			if _, away := seats[seat].player.(Absent); away {
				if err := s.await(ctx, moved); err != nil {
					return report, fmt.Errorf("table %s hand %d seat %d: %w", id, st.Hand.Number, seat, err)
				}
				continue
			}
			view := st.View(seat)
			req := seats[seat].player.Decide(view, view.Hand.Legal)
			req.RequestID = fmt.Sprintf("%s-%d", st.Hand.ID, st.Hand.Sequence)
			_, err := tbl.SubmitAt(ctx, seat, req, st.Hand.ID, st.Hand.Sequence)
			switch {
			case errors.Is(err, table.ErrStaleSequence):
				// The turn timer acted for this seat first.
				continue
			case err != nil:
				return report, fmt.Errorf("table %s hand %d seat %d %s: %w", id, st.Hand.Number, seat, req.Type, err)
			}
			report.Actions++
		}

		final := tbl.State()
		if final.HandInProgress() || final.Hand.Result == nil {
			return report, fmt.Errorf("table %s hand %d: stalled in %s", id, final.Hand.Number, final.Hand.Phase)
		}
		result := final.Hand.Result
		showdown := !result.Uncontested
		report.Hands++
		report.Rake += result.Rake
		if showdown {
			report.Showdowns++
		}
		for seat, p := range seats {
			if final.Seats[seat].InHand {
				bb := float64(result.Delta(seat)) / float64(s.cfg.Table.BigBlind)
				report.strategy(p.strategy).add(bb, showdown)
			}
		}

		if got, want := final.TotalChips()+report.Rake, bankroll+report.Rebuys; got != want {
			return report, fmt.Errorf("%w: table %s hand %d has %d, expected %d", ErrChipsLeaked, id, final.Hand.Number, got, want)
		}
	}

	logger.Debug().Int("hands", report.Hands).Int64("rake", report.Rake).Msg("table finished")
	return report, nil
}

// await blocks until the table publishes again. A turn timer acts within one
// timeout, so waiting well past that means nothing will.
func (s *Simulator) await(ctx context.Context, moved <-chan struct{}) error {
	if moved == nil {
		return fmt.Errorf("%w: absent seat without a turn timer", ErrStalled)
	}
	limit := 4*s.cfg.TurnTimeout + time.Second
	timer := s.cfg.Clock.NewTimer(limit, "sim", "await")
	defer timer.Stop()
	select {
	case <-moved:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: no action after %s", ErrStalled, limit)
	}
}

// rebuy tops busted seats back up so the table keeps running.
func (s *Simulator) rebuy(ctx context.Context, tbl *table.Table, report *Report) error {
	for _, seat := range tbl.State().Seats {
		if !seat.Occupied() || seat.Stack > 0 {
			continue
		}
		if err := tbl.TopUp(ctx, seat.Index, s.cfg.BuyIn); err != nil {
			return fmt.Errorf("rebuy seat %d: %w", seat.Index, err)
		}
		if err := tbl.SitIn(ctx, seat.Index); err != nil {
			return fmt.Errorf("rebuy seat %d: %w", seat.Index, err)
		}
		report.Rebuys += s.cfg.BuyIn
	}
	return nil
}

// stream maps a table id onto a deck RNG stream.
func stream(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32())
}
