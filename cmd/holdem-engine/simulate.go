package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lox/holdem-engine/internal/sim"
	"github.com/lox/holdem-engine/internal/table"
)

// SimulateCmd plays automated hands against the configured tables.
type SimulateCmd struct {
	Table      string        `default:"main" help:"Table block to simulate"`
	Tables     int           `default:"4" help:"Number of concurrent tables"`
	Hands      int           `default:"1000" help:"Hands per table"`
	Players    int           `help:"Players per table (defaults to the table block)"`
	Strategies []string      `default:"rand,call,tight,maniac" help:"Player strategies, assigned round robin (afk never acts)"`
	Seed       *int64        `help:"Deterministic RNG seed (optional)"`
	Parallel   int           `help:"Tables run at once (0 for all)"`
	Persist    bool          `help:"Write table snapshots to the configured store"`
	Timeout    time.Duration `name:"turn-timeout" help:"Turn deadline, overriding engine.turn_timeout"`
	Metrics    string        `name:"metrics-addr" help:"Serve /metrics on this address, overriding the config"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}
	tc, ok := cfg.Table(c.Table)
	if !ok {
		return fmt.Errorf("no table %q in %s", c.Table, g.Config)
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn().Err(err).Msg("Shutdown failed")
		}
	}()

	addr := c.Metrics
	if addr == "" && cfg.Metrics != nil {
		addr = cfg.Metrics.Listen
	}
	if addr != "" {
		rt.serveMetrics(ctx, addr)
	}

	seed := cfg.Engine.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	} else {
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	}

	opts := table.Options{
		Logger:     logger,
		Metrics:    rt.metrics,
		Publisher:  rt.publisher,
		Rake:       cfg.RakeCalculator(),
		DedupeSize: cfg.Engine.DedupeSize,
	}

	var writerDone chan error
	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()
	if c.Persist {
		writer := table.NewSyncWriter(rt.store, logger, rt.metrics, cfg.Engine.SyncWorkers)
		opts.Sync = writer
		writerDone = make(chan error, 1)
		go func() { writerDone <- writer.Run(writerCtx) }()
	}

	timeout := cfg.Engine.TurnTimeoutDuration()
	if c.Timeout > 0 {
		timeout = c.Timeout
	}

	players := c.Players
	if players == 0 {
		players = tc.Players
	}
	s, err := sim.New(sim.Config{
		Tables:       c.Tables,
		Hands:        c.Hands,
		Players:      players,
		Strategies:   c.Strategies,
		Seed:         seed,
		Table:        tc.Game(),
		Parallel:     c.Parallel,
		TurnTimeout:  timeout,
		TableOptions: opts,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("table", tc.Name).
		Int("tables", c.Tables).
		Int("hands", c.Hands).
		Int("players", players).
		Strs("strategies", c.Strategies).
		Dur("turn_timeout", timeout).
		Msg("Starting simulation")

	report, runErr := s.Run(ctx)

	if writerDone != nil {
		stopWriter()
		if err := <-writerDone; err != nil {
			logger.Warn().Err(err).Msg("Final snapshot flush failed")
		}
	}
	if report != nil {
		if err := report.Write(os.Stdout); err != nil {
			return err
		}
	}
	return runErr
}
