package eventbus

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/logging"
)

// LogPublisher writes a line per event.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logging.Component(logger, "events")}
}

func (p *LogPublisher) Publish(_ context.Context, env Envelope) error {
	e := p.logger.Debug()
	if env.Type == game.EventTypeChipIntegrityFailure {
		e = p.logger.Error()
	}
	e = e.Str(logging.TableIDKey, env.TableID).
		Uint64(logging.SequenceKey, env.Sequence).
		Str("event", string(env.Type))

	switch ev := env.Event.(type) {
	case game.HandStartedEvent:
		e = e.Str(logging.HandIDKey, ev.HandID).Int("dealer", ev.Dealer)
	case game.ActionAppliedEvent:
		e = e.Int(logging.SeatKey, ev.Seat).
			Stringer("action", ev.Action).
			Int64("amount", ev.Amount).
			Int64("pot", ev.PotTotal)
	case game.PhaseChangedEvent:
		e = e.Stringer("phase", ev.To).Int64("pot", ev.PotTotal)
	case game.HandResultEvent:
		e = e.Str(logging.HandIDKey, ev.Result.HandID).
			Ints("winners", ev.Result.Winners()).
			Int64("pot", ev.Result.PotSize).
			Int64("rake", ev.Result.Rake)
	case game.ChipIntegrityFailureEvent:
		e = e.Int64("discrepancy", ev.Discrepancy).Str("reason", ev.Reason)
	}
	e.Msg("table event")
	return nil
}
