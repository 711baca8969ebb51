package rag

import (
	"context"
	"fmt"

	"github.com/hyperjump/civicroute/internal/embedding"
	"github.com/hyperjump/civicroute/internal/models"
)

// DefaultTopK is the number of evidence items retrieved per request.
const DefaultTopK = 3

// Retriever embeds a query with the store's embedding function and returns
// the most similar entries.
type Retriever struct {
	store    *Store
	embedder embedding.Embedder
}

// NewRetriever binds a store to the embedder that built it.
func NewRetriever(store *Store, embedder embedding.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve returns at most topK entries ordered by descending cosine
// similarity to query, ties in store order. topK <= 0 and an empty store
// yield an empty slice. A query embedding whose dimension differs from the
// store's fails with models.ErrDimensionMismatch.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.EvidenceItem, error) {
	if topK <= 0 || r.store.Len() == 0 {
		return []models.EvidenceItem{}, nil
	}
	q, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(q) != r.store.Dimensions() {
		return nil, models.NewError(models.ErrDimensionMismatch, "retrieve",
			"query embedding has %d dimensions, store has %d", len(q), r.store.Dimensions())
	}
	hits, err := r.store.index.Search(q, topK)
	if err != nil {
		return nil, err
	}
	items := make([]models.EvidenceItem, len(hits))
	for i, h := range hits {
		e := r.store.entries[h.Position]
		items[i] = models.EvidenceItem{
			Text:    e.Text,
			Source:  e.Source,
			ChunkID: e.ChunkID,
			Score:   h.Score,
		}
	}
	return items, nil
}
