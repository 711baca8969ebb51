// Package rag loads the precomputed evidence store and retrieves the chunks
// most similar to a query.
package rag

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/hyperjump/civicroute/internal/models"
	"github.com/hyperjump/civicroute/internal/vector"
	"github.com/hyperjump/civicroute/pkg/utils"
)

// NormTolerance is the allowed deviation of a stored embedding's L2 norm
// from 1.
const NormTolerance = 1e-3

// Entry is one stored chunk.
type Entry struct {
	Text      string
	Source    string
	ChunkID   int
	Embedding []float32
}

// Store is an immutable, ordered evidence corpus with its exact index.
type Store struct {
	entries []Entry
	index   vector.Index
}

// NewStore validates the parallel arrays and builds a store. Length
// mismatches, ragged or non-unit embeddings and negative chunk ids fail with
// models.ErrStoreLoad.
func NewStore(texts []string, embeddings [][]float32, sources []string, chunkIDs []int) (*Store, error) {
	const op = "build store"
	n := len(texts)
	if len(embeddings) != n || len(sources) != n || len(chunkIDs) != n {
		return nil, models.NewError(models.ErrStoreLoad, op,
			"array lengths differ: texts=%d embeddings=%d sources=%d chunk_ids=%d",
			n, len(embeddings), len(sources), len(chunkIDs))
	}
	if n == 0 {
		return &Store{}, nil
	}

	dim := len(embeddings[0])
	if dim == 0 {
		return nil, models.NewError(models.ErrStoreLoad, op, "embedding 0 is empty")
	}
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		if len(embeddings[i]) != dim {
			return nil, models.NewError(models.ErrStoreLoad, op,
				"embedding %d has dimension %d, expected %d", i, len(embeddings[i]), dim)
		}
		if norm := utils.L2Norm(embeddings[i]); math.Abs(norm-1) > NormTolerance {
			return nil, models.NewError(models.ErrStoreLoad, op, "embedding %d is not unit-norm (norm %.6f)", i, norm)
		}
		if chunkIDs[i] < 0 {
			return nil, models.NewError(models.ErrStoreLoad, op, "chunk_id %d is negative (%d)", i, chunkIDs[i])
		}
		entries[i] = Entry{Text: texts[i], Source: sources[i], ChunkID: chunkIDs[i], Embedding: embeddings[i]}
	}
	index, err := vector.NewFlatIndex(dim, embeddings)
	if err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	return &Store{entries: entries, index: index}, nil
}

// LoadStore reads a store artifact. The format follows the extension:
// .json or .json.gz for parallel JSON arrays, .db/.sqlite/.sqlite3 for a
// SQLite database.
func LoadStore(path string) (*Store, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"), strings.HasSuffix(lower, ".json.gz"):
		return loadJSONStore(path)
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return loadSQLiteStore(path)
	default:
		return nil, models.NewError(models.ErrStoreLoad, "load store",
			"unsupported store format %q (supported: .json, .json.gz, .db, .sqlite)", filepath.Ext(path))
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Dimensions returns the embedding dimension, or 0 for an empty store.
func (s *Store) Dimensions() int {
	if s.index == nil {
		return 0
	}
	return s.index.Dimensions()
}

// Entry returns the i-th entry in store order.
func (s *Store) Entry(i int) Entry {
	return s.entries[i]
}

// Sources returns the distinct sources in first-appearance order.
func (s *Store) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.entries {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	return out
}

func (s *Store) String() string {
	return fmt.Sprintf("store(entries=%d, dimensions=%d)", s.Len(), s.Dimensions())
}
