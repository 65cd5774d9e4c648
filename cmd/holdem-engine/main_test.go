package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/store"
)

func TestSimulateWithDefaultConfig(t *testing.T) {
	t.Parallel()

	seed := int64(3)
	cmd := SimulateCmd{
		Table:      "main",
		Tables:     2,
		Hands:      25,
		Strategies: []string{"rand", "tight"},
		Seed:       &seed,
		Persist:    true,
	}
	require.NoError(t, cmd.Run(&Globals{Config: filepath.Join(t.TempDir(), "none.hcl")}))
}

func TestSimulateTimesOutAbsentSeats(t *testing.T) {
	t.Parallel()

	seed := int64(4)
	cmd := SimulateCmd{
		Table:      "main",
		Tables:     1,
		Hands:      10,
		Players:    2,
		Strategies: []string{"afk", "call"},
		Seed:       &seed,
		Timeout:    5 * time.Millisecond,
	}
	require.NoError(t, cmd.Run(&Globals{Config: filepath.Join(t.TempDir(), "none.hcl")}))
}

func TestSimulateUnknownTable(t *testing.T) {
	t.Parallel()

	cmd := SimulateCmd{Table: "vip", Tables: 1, Hands: 1}
	require.ErrorContains(t, cmd.Run(&Globals{Config: filepath.Join(t.TempDir(), "none.hcl")}), `no table "vip"`)
}

func TestCheckConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "holdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
store {
  kind = "file"
  dir  = "`+filepath.ToSlash(dir)+`"
}

table "main" {
  small_blind = 10
  big_blind   = 20
}
`), 0o600))

	var cmd CheckConfigCmd
	require.NoError(t, cmd.Run(&Globals{Config: path}))
	require.Error(t, cmd.Run(&Globals{Config: filepath.Join(dir, "missing.hcl")}))
}

func TestReplayFinishesSnapshotHand(t *testing.T) {
	t.Parallel()

	state, err := game.NewTableState("t1", game.TableConfig{SmallBlind: 10, BigBlind: 20, MinBuyIn: 100, MaxBuyIn: 5000, MaxSeats: 6})
	require.NoError(t, err)
	state, err = game.SitDown(state, 0, "a", 1000)
	require.NoError(t, err)
	state, err = game.SitDown(state, 1, "b", 1000)
	require.NoError(t, err)
	state, _, err = game.StartHand(state, randutil.New(9))
	require.NoError(t, err)

	data, err := game.EncodeTableState(state)
	require.NoError(t, err)
	dir := t.TempDir()
	path := filepath.Join(dir, "t1.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	g := &Globals{Config: filepath.Join(dir, "none.hcl")}
	cmd := ReplayCmd{File: path, Seat: -1, Finish: true}
	require.NoError(t, cmd.Run(g))

	both := ReplayCmd{TableID: "t1", File: path, Seat: -1}
	require.Error(t, both.Run(g))
}

func TestReplayRestoresFromStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	state, err := game.NewTableState("t2", game.TableConfig{SmallBlind: 10, BigBlind: 20, MinBuyIn: 100, MaxBuyIn: 5000, MaxSeats: 6})
	require.NoError(t, err)
	state, err = game.SitDown(state, 0, "a", 1000)
	require.NoError(t, err)
	state, err = game.SitDown(state, 1, "b", 1000)
	require.NoError(t, err)
	state, _, err = game.StartHand(state, randutil.New(2))
	require.NoError(t, err)

	snapshots := filepath.Join(dir, "snapshots")
	fs, err := store.NewFileStore(snapshots)
	require.NoError(t, err)
	require.NoError(t, fs.Save(context.Background(), state))

	path := filepath.Join(dir, "holdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
store {
  kind = "file"
  dir  = "`+filepath.ToSlash(snapshots)+`"
}

table "main" {
  small_blind = 10
  big_blind   = 20
}
`), 0o600))
	g := &Globals{Config: path}

	cmd := ReplayCmd{TableID: "t2", Seat: 0, Finish: true}
	require.NoError(t, cmd.Run(g))

	missing := ReplayCmd{TableID: "nope", Seat: -1}
	require.ErrorIs(t, missing.Run(g), store.ErrNotFound)
}
