package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/lox/holdem-engine/internal/game"
)

// MemoryStore keeps encoded snapshots in a map. Snapshots go through the codec
// so a load never aliases a live state.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, state game.TableState) error {
	data, err := game.EncodeTableState(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.snapshots[state.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, tableID string) (game.TableState, error) {
	m.mu.RLock()
	data, ok := m.snapshots[tableID]
	m.mu.RUnlock()
	if !ok {
		return game.TableState{}, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
	}
	return game.DecodeTableState(data)
}

func (m *MemoryStore) Delete(_ context.Context, tableID string) error {
	m.mu.Lock()
	delete(m.snapshots, tableID)
	m.mu.Unlock()
	return nil
}

// Len is the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}
