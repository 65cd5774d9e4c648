// Package randutil derives reproducible RNGs for decks and simulated players.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand seeded from a single int64, so a run can
// be reproduced from one number.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns an independent stream for one of many consumers sharing a
// base seed, e.g. table i of a simulation.
func Derive(seed int64, stream int) *rand.Rand {
	return New(int64(mix(uint64(seed) ^ mix(uint64(stream)+goldenRatio64))))
}

// Seed draws a seed for a child RNG from parent.
func Seed(parent *rand.Rand) int64 {
	return parent.Int64()
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
