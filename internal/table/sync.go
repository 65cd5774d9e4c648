package table

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/logging"
	"github.com/lox/holdem-engine/internal/metrics"
	"github.com/lox/holdem-engine/internal/store"
)

// SyncWriter persists table states in the background. Only the newest state
// per table is kept; intermediate versions may never be written. Enqueue never
// blocks, so persistence never delays the next action.
type SyncWriter struct {
	store   store.Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
	workers int

	mu      sync.Mutex
	pending map[string]game.TableState
	notify  chan struct{}
}

func NewSyncWriter(s store.Store, logger zerolog.Logger, m *metrics.Metrics, workers int) *SyncWriter {
	if workers <= 0 {
		workers = 4
	}
	return &SyncWriter{
		store:   s,
		logger:  logging.Component(logger, "sync"),
		metrics: m,
		workers: workers,
		pending: make(map[string]game.TableState),
		notify:  make(chan struct{}, 1),
	}
}

// Enqueue replaces any pending state for the same table unless it is newer.
func (w *SyncWriter) Enqueue(state game.TableState) {
	w.mu.Lock()
	if prev, ok := w.pending[state.ID]; !ok || prev.Version <= state.Version {
		w.pending[state.ID] = state
	}
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// Pending is the number of tables waiting to be written.
func (w *SyncWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Run writes pending states until ctx is done, then flushes what is left.
func (w *SyncWriter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return w.Flush(context.WithoutCancel(ctx))
		case <-w.notify:
			if err := w.Flush(ctx); err != nil && ctx.Err() == nil {
				w.logger.Warn().Err(err).Msg("snapshot flush failed")
			}
		}
	}
}

// Flush writes every pending state, in parallel across tables. States that
// fail are re-queued unless a newer one arrived meanwhile.
func (w *SyncWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]game.TableState)
	w.mu.Unlock()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(w.workers)
	for _, state := range batch {
		g.Go(func() error {
			err := w.store.Save(ctx, state)
			w.metrics.SnapshotSaved(err)
			if err != nil {
				w.logger.Warn().Err(err).
					Str(logging.TableIDKey, state.ID).
					Int64(logging.VersionKey, state.Version).
					Msg("snapshot save failed")
				w.requeue(state)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (w *SyncWriter) requeue(state game.TableState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending[state.ID]; !ok {
		w.pending[state.ID] = state
	}
}
