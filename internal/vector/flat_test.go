package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/civicroute/internal/models"
)

func unit(v ...float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

func TestFlatIndex_Search(t *testing.T) {
	idx, err := NewFlatIndex(3, [][]float32{
		{1, 0, 0},
		unit(0.9, 0.1, 0),
		{0, 1, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 || idx.Dimensions() != 3 {
		t.Errorf("Size=%d Dimensions=%d", idx.Size(), idx.Dimensions())
	}

	hits, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Position != 0 || math.Abs(hits[0].Score-1) > 1e-6 {
		t.Errorf("top hit should be position 0 with score 1, got %+v", hits[0])
	}
	if hits[1].Position != 1 {
		t.Errorf("second hit should be position 1, got %+v", hits[1])
	}
}

func TestFlatIndex_SearchOrdersScores(t *testing.T) {
	// Two-dimensional unit vectors whose first component is the target score
	// against the query (1, 0).
	scores := []float64{0.9, 0.1, 0.5, 0.7, 0.3}
	vecs := make([][]float32, len(scores))
	for i, s := range scores {
		vecs[i] = []float32{float32(s), float32(math.Sqrt(1 - s*s))}
	}
	idx, err := NewFlatIndex(2, vecs)
	if err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	wantPos := []int{0, 3, 2}
	for i, h := range hits {
		if h.Position != wantPos[i] {
			t.Errorf("hit %d: position %d, want %d", i, h.Position, wantPos[i])
		}
		if math.Abs(h.Score-scores[wantPos[i]]) > 1e-6 {
			t.Errorf("hit %d: score %f, want %f", i, h.Score, scores[wantPos[i]])
		}
	}
}

func TestFlatIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewFlatIndex(2, [][]float32{{0, 1}, {1, 0}, {0, 1}, {1, 0}})
	hits, err := idx.Search([]float32{1, 0}, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 3, 0, 2}
	for i, h := range hits {
		if h.Position != want[i] {
			t.Fatalf("positions: got %v, want %v", hits, want)
		}
	}
}

func TestFlatIndex_Bounds(t *testing.T) {
	idx, _ := NewFlatIndex(2, [][]float32{{1, 0}, {0, 1}})
	for _, k := range []int{0, -3} {
		hits, err := idx.Search([]float32{1, 0}, k)
		if err != nil {
			t.Fatal(err)
		}
		if len(hits) != 0 {
			t.Errorf("k=%d: expected empty result, got %v", k, hits)
		}
	}
	hits, _ := idx.Search([]float32{1, 0}, 10)
	if len(hits) != 2 {
		t.Errorf("k > size should return all entries, got %d", len(hits))
	}

	empty, err := NewFlatIndex(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	hits, err = empty.Search([]float32{1, 0}, 3)
	if err != nil || len(hits) != 0 {
		t.Errorf("empty index: got %v, %v", hits, err)
	}
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewFlatIndex(3, [][]float32{{1, 0, 0}})
	_, err := idx.Search([]float32{1, 0}, 1)
	if !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := NewFlatIndex(3, [][]float32{{1, 0}}); err == nil {
		t.Error("expected error for ragged vectors")
	}
	if _, err := NewFlatIndex(0, nil); err == nil {
		t.Error("expected error for non-positive dimensions")
	}
}

func TestCosineSimilarity_Range(t *testing.T) {
	a := unit(1, 2, 3)
	if s := CosineSimilarity(a, a); s > 1 || math.Abs(s-1) > 1e-6 {
		t.Errorf("self similarity = %f", s)
	}
	neg := []float32{-a[0], -a[1], -a[2]}
	if s := CosineSimilarity(a, neg); s < -1 || math.Abs(s+1) > 1e-6 {
		t.Errorf("opposite similarity = %f", s)
	}
	if InnerProduct([]float32{1}, []float32{1, 2}) != 0 {
		t.Error("mismatched lengths should score 0")
	}
}
