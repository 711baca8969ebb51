package vector

import (
	"fmt"
	"sort"

	"github.com/hyperjump/civicroute/internal/models"
)

// FlatIndex is an immutable brute-force inner-product index. It is safe for
// concurrent Search calls without locking.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
}

// NewFlatIndex copies vectors into a new index. Every vector must have the
// given dimension.
func NewFlatIndex(dimensions int, vectors [][]float32) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dimensions {
			return nil, fmt.Errorf("vector %d dimension mismatch: got %d, expected %d", i, len(v), dimensions)
		}
		vec := make([]float32, dimensions)
		copy(vec, v)
		stored[i] = vec
	}
	return &FlatIndex{dimensions: dimensions, vectors: stored}, nil
}

// Search scores every stored vector against query and returns the k best,
// highest score first. Equal scores keep insertion order. k <= 0 or an empty
// index yields an empty result; k larger than the index returns everything.
func (f *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dimensions {
		return nil, models.NewError(models.ErrDimensionMismatch, "vector search",
			"query has %d dimensions, index has %d", len(query), f.dimensions)
	}
	if k <= 0 || len(f.vectors) == 0 {
		return []Hit{}, nil
	}
	hits := make([]Hit, len(f.vectors))
	for i, vec := range f.vectors {
		hits[i] = Hit{Position: i, Score: CosineSimilarity(query, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Dimensions returns the vector dimension of the index.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	return len(f.vectors)
}
