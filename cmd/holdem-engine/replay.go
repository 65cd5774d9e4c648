package main

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/sim"
	"github.com/lox/holdem-engine/internal/table"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReplayCmd restores a snapshot. Because the undealt deck is part of the
// snapshot, finishing a live hand always produces the same result.
type ReplayCmd struct {
	TableID string `arg:"" optional:"" help:"Table id to load from the configured store"`
	File    string `type:"existingfile" help:"Read a snapshot file instead of the store"`
	Seat    int    `default:"-1" help:"Print the view for this seat (-1 for a spectator)"`
	Finish  bool   `help:"Play out a live hand by checking and calling"`
}

func (c *ReplayCmd) Run(g *Globals) error {
	if (c.TableID == "") == (c.File == "") {
		return fmt.Errorf("give either a table id or --file")
	}
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	reg := table.NewRegistry(table.Options{Logger: logger, Rake: cfg.RakeCalculator()})
	tbl, err := c.restore(ctx, reg, cfg, logger)
	if err != nil {
		return err
	}

	if c.Finish {
		var player sim.CallingStation
		for st := tbl.State(); st.HandInProgress() && st.Hand.ToAct >= 0; st = tbl.State() {
			view := st.View(st.Hand.ToAct)
			if _, err := tbl.Submit(ctx, st.Hand.ToAct, player.Decide(view, view.Hand.Legal)); err != nil {
				return err
			}
		}
	}
	state := tbl.State()

	viewer := game.Spectator
	if c.Seat >= 0 {
		viewer = c.Seat
	}
	out, err := json.MarshalIndent(state.View(viewer), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// restore registers the snapshot named by the command with reg.
func (c *ReplayCmd) restore(ctx context.Context, reg *table.Registry, cfg *config.Config, logger zerolog.Logger) (*table.Table, error) {
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, err
		}
		state, err := game.DecodeTableState(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.File, err)
		}
		return reg.Add(state)
	}

	// Only the store is needed here, not the event publishers.
	rt := &runtime{cfg: cfg, logger: logger}
	defer rt.Close()
	s, err := rt.openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return reg.Restore(ctx, s, c.TableID)
}
