package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()

	aceSpades := NewCard(Ace, Spades)
	if aceSpades.Rank != Ace {
		t.Errorf("Expected rank Ace, got %d", aceSpades.Rank)
	}
	if aceSpades.Suit != Spades {
		t.Errorf("Expected suit Spades, got %d", aceSpades.Suit)
	}
	if aceSpades.String() != "As" {
		t.Errorf("Expected 'As', got %s", aceSpades.String())
	}

	twoClubs := NewCard(Two, Clubs)
	if twoClubs.String() != "2c" {
		t.Errorf("Expected '2c', got %s", twoClubs.String())
	}
	if twoClubs.Index() != 0 || aceSpades.Index() != 51 {
		t.Errorf("unexpected indexes %d, %d", twoClubs.Index(), aceSpades.Index())
	}
}

func TestParseCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		wantCard Card
		wantErr  bool
	}{
		{"As", NewCard(Ace, Spades), false},
		{"Td", NewCard(Ten, Diamonds), false},
		{"td", NewCard(Ten, Diamonds), false},
		{"2C", NewCard(Two, Clubs), false},
		{"9h", NewCard(Nine, Hearts), false},
		{"1s", Card{}, true},
		{"Ax", Card{}, true},
		{"A", Card{}, true},
		{"10s", Card{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCard, got)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("AsKs Qh Jd")
	require.NoError(t, err)
	assert.Equal(t, []Card{
		NewCard(Ace, Spades), NewCard(King, Spades), NewCard(Queen, Hearts), NewCard(Jack, Diamonds),
	}, cards)

	_, err = ParseCards("AsK")
	require.Error(t, err)

	_, err = ParseCards("AsXx")
	require.Error(t, err)
}

func TestCardTextRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewCard(Queen, Hearts)
	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Qh", string(text))

	var back Card
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, c, back)

	_, err = Card{}.MarshalText()
	require.Error(t, err)
}

func TestCardSet(t *testing.T) {
	t.Parallel()

	set := NewCardSet(MustParseCards("As Kd")...)
	assert.True(t, set.Has(NewCard(Ace, Spades)))
	assert.True(t, set.Has(NewCard(King, Diamonds)))
	assert.False(t, set.Has(NewCard(King, Spades)))
}
