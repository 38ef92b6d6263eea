// Package random provides the deterministic pseudo-random primitives used by
// the rotation engine: a seeded linear congruential generator, weighted
// sampling without replacement, and combination enumeration.
//
// Everything here is reproducible from a seed. A Source is an ordinary value
// owned by its caller; there is no package-level generator.
package random

// LCG parameters (Numerical Recipes).
const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
	lcgModulus           = 1 << 32
)

// DefaultSeed is the seed timelines use when none is configured.
const DefaultSeed uint32 = 91231242333 & 0xFFFFFFFF

// Source is a linear congruential generator over uint32 state.
// It is not safe for concurrent use.
type Source struct {
	state uint32
}

// NewSource returns a Source seeded with seed.
func NewSource(seed uint32) *Source {
	return &Source{state: seed}
}

// Seed resets the generator state.
func (s *Source) Seed(value uint32) {
	s.state = value
}

// NextRaw advances the generator and returns the raw 32-bit state.
func (s *Source) NextRaw() uint32 {
	s.state = lcgMultiplier*s.state + lcgIncrement
	return s.state
}

// Next advances the generator and returns a value in [0, 1).
func (s *Source) Next() float64 {
	return float64(s.NextRaw()) / lcgModulus
}

// Hash folds a sequence of integers into a uint32 with djb2.
func Hash(nums ...int) uint32 {
	h := uint32(5381)
	for _, n := range nums {
		h = h*33 + uint32(n)
	}
	return h
}
