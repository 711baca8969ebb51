package embedding

// meanPool averages per-token hidden states over positions whose attention
// mask is 1. hidden is flat [seqLen * dim]; the result has length dim.
func meanPool(hidden []float32, mask []int64, seqLen, dim int64) []float32 {
	out := make([]float32, dim)
	var count float32
	for s := int64(0); s < seqLen; s++ {
		if mask[s] != 1 {
			continue
		}
		count++
		off := s * dim
		for d := int64(0); d < dim; d++ {
			out[d] += hidden[off+d]
		}
	}
	if count == 0 {
		return out
	}
	inv := 1 / count
	for d := range out {
		out[d] *= inv
	}
	return out
}
