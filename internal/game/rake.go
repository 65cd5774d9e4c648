package game

// RakeInput is what a rake policy gets to see about a settled pot.
type RakeInput struct {
	PotTotal   int64
	Phase      Phase // street on which betting ended
	SmallBlind int64
	BigBlind   int64
}

// RakeCalculator decides the house cut of a pot that went to showdown.
type RakeCalculator interface {
	Rake(in RakeInput) int64
}

// NoRake takes nothing.
type NoRake struct{}

func (NoRake) Rake(RakeInput) int64 { return 0 }

// PercentageRake takes BasisPoints/10000 of the pot, rounded down.
type PercentageRake struct {
	BasisPoints  int64
	Cap          int64 // 0 means uncapped
	MinPot       int64 // pots below this are not raked
	NoFlopNoDrop bool  // no rake when betting ended preflop
}

func (r PercentageRake) Rake(in RakeInput) int64 {
	if r.BasisPoints <= 0 || in.PotTotal <= 0 {
		return 0
	}
	if r.NoFlopNoDrop && in.Phase == PhasePreflop {
		return 0
	}
	if in.PotTotal < r.MinPot {
		return 0
	}
	rake := in.PotTotal * r.BasisPoints / 10000
	if r.Cap > 0 && rake > r.Cap {
		rake = r.Cap
	}
	return rake
}

// clampRake keeps a policy's answer within the pot.
func clampRake(rake, pot int64) int64 {
	if rake < 0 {
		return 0
	}
	if rake > pot {
		return pot
	}
	return rake
}
