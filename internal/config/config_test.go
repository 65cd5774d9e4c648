package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/game"
)

const fullConfig = `
engine {
  log_level    = "debug"
  json_logs    = true
  seed         = 42
  turn_timeout = "5s"
  sync_workers = 2
}

store {
  kind         = "redis"
  redis_addr   = "cache:6379"
  redis_ttl    = "24h"
}

nats {
  url = "nats://localhost:4222"
}

rake {
  basis_points    = 500
  cap             = 30
  no_flop_no_drop = true
}

metrics {
  listen = ":9090"
}

table "low" {
  small_blind = 1
  big_blind   = 2
}

table "high" {
  small_blind = 50
  big_blind   = 100
  buy_in_min  = 2000
  buy_in_max  = 20000
  max_seats   = 9
  players     = 4
}
`

func TestParseFullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(fullConfig), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Engine.LogLevel)
	assert.True(t, cfg.Engine.JSONLogs)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	assert.Equal(t, 5*time.Second, cfg.Engine.TurnTimeoutDuration())
	assert.Equal(t, 1024, cfg.Engine.DedupeSize)
	assert.Equal(t, 2, cfg.Engine.SyncWorkers)

	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.Store.RedisTTLDuration())

	require.NotNil(t, cfg.NATS)
	assert.Equal(t, "table", cfg.NATS.SubjectPrefix)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)

	assert.Equal(t, game.PercentageRake{BasisPoints: 500, Cap: 30, NoFlopNoDrop: true}, cfg.RakeCalculator())

	require.Len(t, cfg.Tables, 2)
	low, ok := cfg.Table("low")
	require.True(t, ok)
	assert.Equal(t, game.TableConfig{SmallBlind: 1, BigBlind: 2, MinBuyIn: 100, MaxBuyIn: 1000, MaxSeats: 6}, low.Game())
	assert.Equal(t, 6, low.Players)

	high, ok := cfg.Table("high")
	require.True(t, ok)
	assert.Equal(t, 9, high.MaxSeats)
	assert.Equal(t, 4, high.Players)

	_, ok = cfg.Table("missing")
	assert.False(t, ok)
}

func TestParseMinimalConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`table "main" {
  small_blind = 10
  big_blind   = 20
}`), "min.hcl")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Engine.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Engine.TurnTimeoutDuration())
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Nil(t, cfg.NATS)
	assert.Nil(t, cfg.Metrics)
	assert.Equal(t, game.NoRake{}, cfg.RakeCalculator())
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	const table = `table "t" {
  small_blind = 10
  big_blind   = 20
}
`
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `table "t" {`, "failed to parse"},
		{"unknown attribute", `engine { colour = "red" }` + "\n" + table, "failed to decode"},
		{"no tables", `engine {}`, "at least one table"},
		{"bad log level", `engine { log_level = "loud" }` + "\n" + table, "log_level"},
		{"bad timeout", `engine { turn_timeout = "soon" }` + "\n" + table, "turn_timeout"},
		{"unknown store", `store { kind = "tape" }` + "\n" + table, "unknown kind"},
		{"postgres without dsn", `store { kind = "postgres" }` + "\n" + table, "postgres_dsn"},
		{"bad redis ttl", `store {
  kind      = "redis"
  redis_ttl = "-1h"
}` + "\n" + table, "redis_ttl"},
		{"rake too high", `rake { basis_points = 20000 }` + "\n" + table, "basis_points"},
		{"nats without url", `nats {}` + "\n" + table, "url"},
		{"duplicate table", table + table, "defined twice"},
		{"big blind below small", `table "t" {
  small_blind = 20
  big_blind   = 10
}`, "invalid table config"},
		{"too many players", `table "t" {
  small_blind = 10
  big_blind   = 20
  max_seats   = 2
  players     = 3
}`, "players must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, "engine.hcl")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Tables, 2)
}
