package combat

import "math/rand/v2"

// Roller is the random source used for critical rolls and multi-hit flips.
type Roller interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// NewRoller returns a PCG-backed Roller. Equal seeds give equal sequences.
func NewRoller(seed, stream uint64) Roller {
	return rand.New(rand.NewPCG(seed, stream))
}
