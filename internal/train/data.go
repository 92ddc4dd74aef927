package train

import (
	"fmt"
	"math/rand"
)

// LinearData draws n samples of y = w·x + b with every x_i uniform in
// [-1, 1).
func LinearData(rng *rand.Rand, n int, w []float64, b float64) ([]Sample, error) {
	if n <= 0 || len(w) == 0 {
		return nil, fmt.Errorf("%w: %d samples of %d inputs", ErrInvalidConfig, n, len(w))
	}
	data := make([]Sample, n)
	for i := range data {
		x := make([]float64, len(w))
		y := b
		for j := range x {
			x[j] = 2*rng.Float64() - 1
			y += w[j] * x[j]
		}
		data[i] = Sample{Inputs: x, Targets: []float64{y}}
	}
	return data, nil
}
