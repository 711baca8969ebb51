// Package vector provides exact similarity search over unit-norm vectors.
package vector

// Index ranks stored vectors against a query. Implementations must return the
// exact top-k by inner product, ties broken by ascending insertion position.
type Index interface {
	Search(query []float32, k int) ([]Hit, error)
	Dimensions() int
	Size() int
}

// Hit is a single search result: the position of the stored vector and its
// score against the query.
type Hit struct {
	Position int
	Score    float64
}
