// Package config loads the engine's HCL configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/game"
)

// Config is the complete configuration file.
type Config struct {
	Engine  *EngineConfig  `hcl:"engine,block"`
	Store   *StoreConfig   `hcl:"store,block"`
	NATS    *NATSConfig    `hcl:"nats,block"`
	Rake    *RakeConfig    `hcl:"rake,block"`
	Metrics *MetricsConfig `hcl:"metrics,block"`
	Tables  []TableConfig  `hcl:"table,block"`
}

type EngineConfig struct {
	LogLevel    string `hcl:"log_level,optional"`
	JSONLogs    bool   `hcl:"json_logs,optional"`
	Seed        int64  `hcl:"seed,optional"` // 0 picks a random seed
	TurnTimeout string `hcl:"turn_timeout,optional"`
	DedupeSize  int    `hcl:"dedupe_size,optional"`
	SyncWorkers int    `hcl:"sync_workers,optional"`

	turnTimeout time.Duration
}

// TurnTimeoutDuration is the parsed turn_timeout.
func (e *EngineConfig) TurnTimeoutDuration() time.Duration { return e.turnTimeout }

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type StoreConfig struct {
	Kind        string `hcl:"kind,optional"`
	Dir         string `hcl:"dir,optional"`
	RedisAddr   string `hcl:"redis_addr,optional"`
	RedisDB     int    `hcl:"redis_db,optional"`
	RedisPrefix string `hcl:"redis_prefix,optional"`
	RedisTTL    string `hcl:"redis_ttl,optional"`
	PostgresDSN string `hcl:"postgres_dsn,optional"`

	redisTTL time.Duration
}

// RedisTTLDuration is the parsed redis_ttl; zero keeps keys forever.
func (s *StoreConfig) RedisTTLDuration() time.Duration { return s.redisTTL }

type NATSConfig struct {
	URL           string `hcl:"url"`
	SubjectPrefix string `hcl:"subject_prefix,optional"`
}

type RakeConfig struct {
	BasisPoints  int64 `hcl:"basis_points"`
	Cap          int64 `hcl:"cap,optional"`
	MinPot       int64 `hcl:"min_pot,optional"`
	NoFlopNoDrop bool  `hcl:"no_flop_no_drop,optional"`
}

type MetricsConfig struct {
	Listen string `hcl:"listen,optional"`
}

// TableConfig is one `table "<name>"` block.
type TableConfig struct {
	Name       string `hcl:"name,label"`
	SmallBlind int64  `hcl:"small_blind"`
	BigBlind   int64  `hcl:"big_blind"`
	BuyInMin   int64  `hcl:"buy_in_min,optional"`
	BuyInMax   int64  `hcl:"buy_in_max,optional"`
	MaxSeats   int    `hcl:"max_seats,optional"`
	Players    int    `hcl:"players,optional"` // seats filled by the simulator
}

// Game converts the block into the engine's table config.
func (t TableConfig) Game() game.TableConfig {
	return game.TableConfig{
		SmallBlind: t.SmallBlind,
		BigBlind:   t.BigBlind,
		MinBuyIn:   t.BuyInMin,
		MaxBuyIn:   t.BuyInMax,
		MaxSeats:   t.MaxSeats,
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		Tables: []TableConfig{{Name: "main", SmallBlind: 10, BigBlind: 20}},
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// Load reads filename. A missing file yields Default().
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source, applies defaults and validates the result.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine == nil {
		c.Engine = &EngineConfig{}
	}
	if c.Engine.LogLevel == "" {
		c.Engine.LogLevel = "info"
	}
	if c.Engine.TurnTimeout == "" {
		c.Engine.TurnTimeout = "30s"
	}
	if c.Engine.DedupeSize == 0 {
		c.Engine.DedupeSize = 1024
	}
	if c.Engine.SyncWorkers == 0 {
		c.Engine.SyncWorkers = 4
	}

	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if c.Store.Kind == "" {
		c.Store.Kind = StoreMemory
	}
	if c.Store.Kind == StoreFile && c.Store.Dir == "" {
		c.Store.Dir = "snapshots"
	}
	if c.Store.Kind == StoreRedis && c.Store.RedisAddr == "" {
		c.Store.RedisAddr = "localhost:6379"
	}

	if c.NATS != nil && c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "table"
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxSeats == 0 {
			t.MaxSeats = 6
		}
		if t.BuyInMin == 0 {
			t.BuyInMin = t.BigBlind * 50 // 50 big blinds minimum
		}
		if t.BuyInMax == 0 {
			t.BuyInMax = t.BigBlind * 500
		}
		if t.Players == 0 {
			t.Players = t.MaxSeats
		}
	}
}

// Validate checks the configuration and parses its durations.
func (c *Config) Validate() error {
	if c.Engine == nil || c.Store == nil {
		c.applyDefaults()
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Engine.LogLevel)); err != nil {
		return fmt.Errorf("engine: invalid log_level %q", c.Engine.LogLevel)
	}
	d, err := time.ParseDuration(c.Engine.TurnTimeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("engine: invalid turn_timeout %q", c.Engine.TurnTimeout)
	}
	c.Engine.turnTimeout = d
	if c.Engine.DedupeSize < 0 || c.Engine.SyncWorkers < 0 {
		return fmt.Errorf("engine: dedupe_size and sync_workers must not be negative")
	}

	if err := c.Store.validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if c.NATS != nil && c.NATS.URL == "" {
		return fmt.Errorf("nats: url is required")
	}
	if r := c.Rake; r != nil {
		if r.BasisPoints < 0 || r.BasisPoints > 10000 {
			return fmt.Errorf("rake: basis_points must be 0-10000, got %d", r.BasisPoints)
		}
		if r.Cap < 0 || r.MinPot < 0 {
			return fmt.Errorf("rake: cap and min_pot must not be negative")
		}
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("table %s: defined twice", t.Name)
		}
		seen[t.Name] = true
		if err := t.Game().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		if t.Players < 2 || t.Players > t.MaxSeats {
			return fmt.Errorf("table %s: players must be between 2 and %d", t.Name, t.MaxSeats)
		}
	}
	return nil
}

func (s *StoreConfig) validate() error {
	switch s.Kind {
	case StoreMemory:
	case StoreFile:
		if s.Dir == "" {
			return fmt.Errorf("dir is required for the file store")
		}
	case StoreRedis:
		if s.RedisTTL != "" {
			ttl, err := time.ParseDuration(s.RedisTTL)
			if err != nil || ttl < 0 {
				return fmt.Errorf("invalid redis_ttl %q", s.RedisTTL)
			}
			s.redisTTL = ttl
		}
	case StorePostgres:
		if s.PostgresDSN == "" {
			return fmt.Errorf("postgres_dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	return nil
}

// RakeCalculator returns the configured rake policy.
func (c *Config) RakeCalculator() game.RakeCalculator {
	if c.Rake == nil || c.Rake.BasisPoints == 0 {
		return game.NoRake{}
	}
	return game.PercentageRake{
		BasisPoints:  c.Rake.BasisPoints,
		Cap:          c.Rake.Cap,
		MinPot:       c.Rake.MinPot,
		NoFlopNoDrop: c.Rake.NoFlopNoDrop,
	}
}

// Table returns the block with the given name.
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}
