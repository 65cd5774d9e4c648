package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePots(t *testing.T) {
	t.Parallel()

	const A, B, C, D = 0, 1, 2, 3

	tests := []struct {
		name     string
		contribs []Contribution
		want     []Pot
	}{
		{
			name: "folded short stack funds the main pot",
			contribs: []Contribution{
				{Seat: A, Amount: 100, InHand: true},
				{Seat: B, Amount: 50, InHand: true},
				{Seat: C, Amount: 50, InHand: false},
			},
			want: []Pot{
				{Amount: 150, Eligible: []int{A, B}},
				{Amount: 50, Eligible: []int{A}},
			},
		},
		{
			name: "single pot when everyone matches",
			contribs: []Contribution{
				{Seat: A, Amount: 40, InHand: true},
				{Seat: B, Amount: 40, InHand: true},
				{Seat: C, Amount: 40, InHand: true},
			},
			want: []Pot{{Amount: 120, Eligible: []int{A, B, C}}},
		},
		{
			name: "two way uneven all in",
			contribs: []Contribution{
				{Seat: A, Amount: 100, InHand: true},
				{Seat: B, Amount: 60, InHand: true},
			},
			want: []Pot{
				{Amount: 120, Eligible: []int{A, B}},
				{Amount: 40, Eligible: []int{A}},
			},
		},
		{
			name: "three way uneven all in",
			contribs: []Contribution{
				{Seat: A, Amount: 50, InHand: true},
				{Seat: B, Amount: 100, InHand: true},
				{Seat: C, Amount: 150, InHand: true},
			},
			want: []Pot{
				{Amount: 150, Eligible: []int{A, B, C}},
				{Amount: 100, Eligible: []int{B, C}},
				{Amount: 50, Eligible: []int{C}},
			},
		},
		{
			name: "four way uneven all in",
			contribs: []Contribution{
				{Seat: A, Amount: 25, InHand: true},
				{Seat: B, Amount: 75, InHand: true},
				{Seat: C, Amount: 150, InHand: true},
				{Seat: D, Amount: 150, InHand: true},
			},
			want: []Pot{
				{Amount: 100, Eligible: []int{A, B, C, D}},
				{Amount: 150, Eligible: []int{B, C, D}},
				{Amount: 150, Eligible: []int{C, D}},
			},
		},
		{
			name: "four way with a fold keeps one pot per level",
			contribs: []Contribution{
				{Seat: A, Amount: 25, InHand: true},
				{Seat: B, Amount: 75, InHand: false},
				{Seat: C, Amount: 150, InHand: true},
				{Seat: D, Amount: 200, InHand: true},
			},
			want: []Pot{
				{Amount: 100, Eligible: []int{A, C, D}},
				{Amount: 150, Eligible: []int{C, D}},
				{Amount: 150, Eligible: []int{C, D}},
				{Amount: 50, Eligible: []int{D}},
			},
		},
		{
			name: "folded big contributor rolls into the pot below",
			contribs: []Contribution{
				{Seat: A, Amount: 100, InHand: false},
				{Seat: B, Amount: 50, InHand: true},
				{Seat: C, Amount: 50, InHand: true},
			},
			want: []Pot{{Amount: 200, Eligible: []int{B, C}}},
		},
		{
			name: "eligibility is in seat order",
			contribs: []Contribution{
				{Seat: 5, Amount: 30, InHand: true},
				{Seat: 2, Amount: 30, InHand: true},
				{Seat: 0, Amount: 10, InHand: false},
			},
			want: []Pot{
				{Amount: 30, Eligible: []int{2, 5}},
				{Amount: 40, Eligible: []int{2, 5}},
			},
		},
		{
			name: "nobody in hand keeps the chips",
			contribs: []Contribution{
				{Seat: A, Amount: 30, InHand: false},
			},
			want: []Pot{{Amount: 30, Eligible: []int{}}},
		},
		{
			name:     "no contributions",
			contribs: []Contribution{{Seat: A}, {Seat: B}},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculatePots(tt.contribs)
			assert.Equal(t, tt.want, got)

			var in int64
			for _, c := range tt.contribs {
				in += c.Amount
			}
			assert.Equal(t, in, potsTotal(got), "chips must be conserved")
		})
	}
}
