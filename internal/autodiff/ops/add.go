package ops

// addForward computes a + b.
func addForward(a, b float64) float64 {
	return a + b
}

// additiveRule is the gradient rule of addition:
//   - d(a+b)/da = 1, so grad_a = outGrad
//   - d(a+b)/db = 1, so grad_b = outGrad
//
// Subtraction reuses it.
func additiveRule(_, _, outGrad float64) (float64, float64) {
	return 1.0 * outGrad, 1.0 * outGrad
}
