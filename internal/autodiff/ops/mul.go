package ops

// mulForward computes a * b.
func mulForward(a, b float64) float64 {
	return a * b
}

// multiplicativeRule is the gradient rule of multiplication:
//   - d(a*b)/da = b, so grad_a = outGrad * b
//   - d(a*b)/db = a, so grad_b = outGrad * a
//
// Division reuses it.
func multiplicativeRule(a, b, outGrad float64) (float64, float64) {
	return b * outGrad, a * outGrad
}
