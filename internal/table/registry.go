package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/metrics"
	"github.com/lox/holdem-engine/internal/store"
)

var (
	ErrTableExists   = errors.New("table already exists")
	ErrTableNotFound = errors.New("table not found")
)

// Registry maps table ids to handles. Tables are independent: the registry
// lock is only held to look a table up, never while it runs.
type Registry struct {
	mu      sync.RWMutex
	tables  map[string]*Table
	opts    Options
	metrics *metrics.Metrics
}

// NewRegistry creates tables with opts. Options.Rand is ignored: each table
// gets Options.RandFor(id), or a randomly seeded RNG.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		tables:  make(map[string]*Table),
		opts:    opts,
		metrics: opts.Metrics,
	}
}

// Create opens a new empty table.
func (r *Registry) Create(id string, cfg game.TableConfig) (*Table, error) {
	state, err := game.NewTableState(id, cfg)
	if err != nil {
		return nil, err
	}
	return r.Add(state)
}

// Add registers a table from an existing state, e.g. a restored snapshot.
func (r *Registry) Add(state game.TableState) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[state.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, state.ID)
	}
	opts := r.opts
	// Tables never share an RNG: *rand.Rand is not safe for concurrent use.
	opts.Rand = nil
	if opts.RandFor != nil {
		opts.Rand = opts.RandFor(state.ID)
	}
	t, err := New(state, opts)
	if err != nil {
		return nil, err
	}
	r.tables[state.ID] = t
	r.metrics.SetActiveTables(len(r.tables))
	return t, nil
}

// Restore loads a snapshot from s and registers it.
func (r *Registry) Restore(ctx context.Context, s store.Store, id string) (*Table, error) {
	state, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Add(state)
}

func (r *Registry) Get(id string) (*Table, error) {
	r.mu.RLock()
	t, ok := r.tables[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	return t, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.tables, id)
	r.metrics.SetActiveTables(len(r.tables))
	r.mu.Unlock()
}

// IDs returns every table id in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}
