package nn

import (
	"math/rand"
)

// Uniform draws a value from U(lo, hi) using rng.
//
// A nil rng falls back to the package-level source.
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	f := rand.Float64
	if rng != nil {
		f = rng.Float64
	}
	return lo + f()*(hi-lo)
}
