package embedding

import (
	"context"
	"hash/fnv"

	"github.com/hyperjump/civicroute/pkg/utils"
)

// HashEmbedder is a deterministic feature-hashing encoder. Each basic token
// is hashed into a signed bucket and the bag is L2-normalized, so texts that
// share words score positively and identical texts score 1.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns an embedder producing vectors of the given
// dimension. Non-positive dimensions default to 384.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns the hashed bag-of-words embedding of text.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	emb := make([]float32, e.dimensions)
	tokens := basicTokenize(text)
	if len(tokens) == 0 {
		tokens = []string{""}
	}
	for _, tok := range tokens {
		h := HashString(tok)
		bucket := int(h % uint64(e.dimensions))
		if h&(1<<63) != 0 {
			emb[bucket]--
		} else {
			emb[bucket]++
		}
	}
	utils.NormalizeL2(emb)
	if utils.L2Norm(emb) == 0 {
		// Opposite-signed collisions cancelled out.
		emb[int(HashString(text)%uint64(e.dimensions))] = 1
	}
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}

// HashString returns the 64-bit FNV-1a hash of s.
func HashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
