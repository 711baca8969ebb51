package vision

import "math"

// Softmax converts logits to probabilities. The maximum logit is subtracted
// first so large inputs do not overflow.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Argmax returns the index of the largest value, the lowest such index on
// ties, or -1 for an empty slice.
func Argmax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}
