// Package gameid issues sortable identifiers for tables and hands: a UUIDv7
// in Crockford base32, optionally behind a type prefix ("hand_01h5n0...").
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const encodedLen = 26

// Well-known prefixes.
const (
	TablePrefix = "table"
	HandPrefix  = "hand"
)

// Generator creates IDs. The zero value uses crypto randomness.
type Generator struct {
	// Rand, when set, supplies the random bits. Used for reproducible IDs in
	// tests and simulations.
	Rand io.Reader
}

// New returns a fresh ID with the given prefix, or a bare ID if prefix is empty.
func (g Generator) New(prefix string) (string, error) {
	var (
		u   uuid.UUID
		err error
	)
	if g.Rand != nil {
		u, err = uuid.NewV7FromReader(g.Rand)
	} else {
		u, err = uuid.NewV7()
	}
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}
	return format(prefix, u), nil
}

// Must is New that panics, for callers that cannot handle a broken entropy source.
func (g Generator) Must(prefix string) string {
	id, err := g.New(prefix)
	if err != nil {
		panic(err)
	}
	return id
}

// Generate creates a bare ID using crypto randomness.
func Generate() string {
	return Generator{}.Must("")
}

// NewTableID creates a table ID.
func NewTableID() string {
	return Generator{}.Must(TablePrefix)
}

// NewHandID creates a hand ID.
func NewHandID() string {
	return Generator{}.Must(HandPrefix)
}

func format(prefix string, u uuid.UUID) string {
	if prefix == "" {
		return encodeBase32(u)
	}
	return prefix + "_" + encodeBase32(u)
}

// encodeBase32 treats the UUID as a 130-bit number with two leading zero
// bits, five bits per character, so the first character is always 0-7.
func encodeBase32(u uuid.UUID) string {
	var out [encodedLen]byte
	for i := range out {
		var v byte
		for b := 0; b < 5; b++ {
			bit := i*5 + b - 2
			v <<= 1
			if bit >= 0 && u[bit/8]&(0x80>>(bit%8)) != 0 {
				v |= 1
			}
		}
		out[i] = alphabet[v]
	}
	return string(out[:])
}

func decodeBase32(s string) (uuid.UUID, error) {
	var u uuid.UUID
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(alphabet, s[i])
		if v < 0 {
			return uuid.Nil, fmt.Errorf("invalid character %c at position %d", s[i], i)
		}
		for b := 0; b < 5; b++ {
			bit := i*5 + b - 2
			if v&(0x10>>b) == 0 || bit < 0 {
				continue
			}
			u[bit/8] |= 0x80 >> (bit % 8)
		}
	}
	return u, nil
}

// Parse splits an ID into its prefix and UUID.
func Parse(id string) (prefix string, u uuid.UUID, err error) {
	body := id
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		prefix, body = id[:i], id[i+1:]
		if prefix == "" {
			return "", uuid.Nil, fmt.Errorf("empty prefix in %q", id)
		}
	}
	if err := validateBody(body); err != nil {
		return "", uuid.Nil, err
	}
	u, err = decodeBase32(body)
	if err != nil {
		return "", uuid.Nil, err
	}
	return prefix, u, nil
}

// Validate checks that id is a well-formed ID, with or without a prefix.
func Validate(id string) error {
	_, _, err := Parse(id)
	return err
}

func validateBody(body string) error {
	if len(body) != encodedLen {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", encodedLen, len(body))
	}
	// The first character carries only three bits.
	if body[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", body[0])
	}
	return nil
}
