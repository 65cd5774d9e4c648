package game

import (
	"github.com/lox/holdem-engine/poker"
)

// HandOption configures StartHand and Process.
type HandOption func(*handConfig)

// handConfig holds the optional collaborators for a transition.
type handConfig struct {
	handID string
	deck   *poker.Deck    // If provided, used instead of shuffling with the RNG
	rake   RakeCalculator // Default: NoRake
}

func newHandConfig(opts []HandOption) *handConfig {
	cfg := &handConfig{rake: NoRake{}}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rake == nil {
		cfg.rake = NoRake{}
	}
	return cfg
}

// WithHandID sets the id of the hand being started.
// Default is "<table id>-<hand number>".
func WithHandID(id string) HandOption {
	return func(c *handConfig) {
		c.handID = id
	}
}

// WithDeck sets a specific pre-shuffled (or stacked) deck.
// This overrides the RNG for deck creation.
func WithDeck(deck *poker.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = deck
	}
}

// WithRake sets the rake policy applied when a hand is settled at showdown.
func WithRake(rake RakeCalculator) HandOption {
	return func(c *handConfig) {
		c.rake = rake
	}
}
