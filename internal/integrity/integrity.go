// Package integrity verifies that a hand neither creates nor destroys chips.
//
// A Snapshot is captured when a hand starts and validated once when it ends:
// the stacks afterwards plus the rake must add up to the stacks before.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrChipMismatch is matched by every *IntegrityError.
	ErrChipMismatch = errors.New("chip conservation violated")
	// ErrSnapshotTampered is returned when a snapshot no longer matches its hash.
	ErrSnapshotTampered = errors.New("snapshot hash mismatch")
	// ErrTableMismatch is returned when a snapshot is checked against another table.
	ErrTableMismatch = errors.New("snapshot belongs to another table")
)

// IntegrityError describes a conservation failure. The table that produced it
// must not continue.
type IntegrityError struct {
	TableID     string
	HandNumber  int64
	Before      int64
	After       int64
	Rake        int64
	Discrepancy int64 // After + Rake - Before
	Reason      string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("table %s hand %d: %s: before %d, after %d, rake %d (discrepancy %+d)",
		e.TableID, e.HandNumber, e.Reason, e.Before, e.After, e.Rake, e.Discrepancy)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrChipMismatch
}

// Snapshot records every stack at the start of a hand.
type Snapshot struct {
	TableID    string        `json:"table_id"`
	HandNumber int64         `json:"hand_number"`
	Stacks     map[int]int64 `json:"stacks"`
	Total      int64         `json:"total"`
	Hash       string        `json:"hash"`
}

// Capture takes a snapshot of stacks, keyed by seat index.
func Capture(tableID string, handNumber int64, stacks map[int]int64) Snapshot {
	s := Snapshot{
		TableID:    tableID,
		HandNumber: handNumber,
		Stacks:     make(map[int]int64, len(stacks)),
	}
	for seat, stack := range stacks {
		s.Stacks[seat] = stack
		s.Total += stack
	}
	s.Hash = s.computeHash()
	return s
}

// computeHash hashes a canonical rendering with seats in ascending order.
func (s Snapshot) computeHash() string {
	seats := make([]int, 0, len(s.Stacks))
	for seat := range s.Stacks {
		seats = append(seats, seat)
	}
	slices.Sort(seats)

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%d", s.TableID, s.HandNumber, s.Total)
	for _, seat := range seats {
		fmt.Fprintf(&b, "|%d:%d", seat, s.Stacks[seat])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the snapshot is unchanged since Capture.
func (s Snapshot) Verify() error {
	if s.Hash != s.computeHash() {
		return fmt.Errorf("%w: table %s hand %d", ErrSnapshotTampered, s.TableID, s.HandNumber)
	}
	return nil
}

// Validate checks the stacks after the hand against the snapshot. Chips leave
// the table only as rake.
func (s Snapshot) Validate(tableID string, finalStacks map[int]int64, rake int64) error {
	if err := s.Verify(); err != nil {
		return err
	}
	if tableID != s.TableID {
		return fmt.Errorf("%w: snapshot for %s, checked against %s", ErrTableMismatch, s.TableID, tableID)
	}

	var after int64
	for _, stack := range finalStacks {
		after += stack
	}
	return s.compare(after, rake, "stacks after settlement")
}

// CheckInFlight checks a hand between actions: stacks plus the live pot must
// still equal the starting total.
func (s Snapshot) CheckInFlight(stacks map[int]int64, pot int64) error {
	var total int64
	for _, stack := range stacks {
		total += stack
	}
	return s.compare(total+pot, 0, "stacks plus pot")
}

func (s Snapshot) compare(after, rake int64, reason string) error {
	if after+rake == s.Total && rake >= 0 {
		return nil
	}
	return &IntegrityError{
		TableID:     s.TableID,
		HandNumber:  s.HandNumber,
		Before:      s.Total,
		After:       after,
		Rake:        rake,
		Discrepancy: after + rake - s.Total,
		Reason:      reason,
	}
}
