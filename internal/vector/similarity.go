package vector

import "math"

// InnerProduct returns the inner product of two vectors, accumulated in
// float64. Mismatched or empty inputs score 0.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// CosineSimilarity returns the inner product of two unit-norm vectors clamped
// to [-1, 1] to absorb float32 rounding.
func CosineSimilarity(a, b []float32) float64 {
	return math.Max(-1, math.Min(1, InnerProduct(a, b)))
}
