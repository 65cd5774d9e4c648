// Package store persists table snapshots. The engine never calls a store
// itself; the table layer hands snapshots to one in the background.
package store

import (
	"context"
	"errors"

	"github.com/lox/holdem-engine/internal/game"
)

// ErrNotFound is returned by Load when no snapshot exists for a table.
var ErrNotFound = errors.New("snapshot not found")

// Store saves and restores the latest snapshot of each table.
type Store interface {
	Save(ctx context.Context, state game.TableState) error
	Load(ctx context.Context, tableID string) (game.TableState, error)
	Delete(ctx context.Context, tableID string) error
}
