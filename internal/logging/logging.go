// Package logging builds the zerolog loggers used outside the pure engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field keys shared by every component.
const (
	TableIDKey    = "table_id"
	HandIDKey     = "hand_id"
	HandNumberKey = "hand_no"
	SeatKey       = "seat"
	PlayerKey     = "player_id"
	SequenceKey   = "seq"
	VersionKey    = "version"
	ComponentKey  = "component"
	RequestIDKey  = "request_id"
)

// Options selects the output format and level.
type Options struct {
	Level string // zerolog level name, "info" when empty
	JSON  bool   // structured output instead of the console writer
	Out   io.Writer
}

// New returns a logger writing to Options.Out, or stderr.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// Component returns a sub-logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str(ComponentKey, name).Logger()
}

// ForTable returns a sub-logger tagged with the table id.
func ForTable(logger zerolog.Logger, tableID string) zerolog.Logger {
	return logger.With().Str(TableIDKey, tableID).Logger()
}
