package rag

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/civicroute/internal/models"
)

// jsonArtifact mirrors the parallel-array store layout. Pointers distinguish
// a missing array from an empty one.
type jsonArtifact struct {
	Texts      *[]string    `json:"texts"`
	Embeddings *[][]float32 `json:"embeddings"`
	Sources    *[]string    `json:"sources"`
	ChunkIDs   *[]int       `json:"chunk_ids"`
}

func loadJSONStore(path string) (*Store, error) {
	const op = "load json store"
	f, err := os.Open(path)
	if err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, models.WrapError(models.ErrStoreLoad, op, err)
		}
		defer gz.Close()
		r = gz
	}

	var a jsonArtifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, models.WrapError(models.ErrStoreLoad, op, err)
	}
	var missing []string
	if a.Texts == nil {
		missing = append(missing, "texts")
	}
	if a.Embeddings == nil {
		missing = append(missing, "embeddings")
	}
	if a.Sources == nil {
		missing = append(missing, "sources")
	}
	if a.ChunkIDs == nil {
		missing = append(missing, "chunk_ids")
	}
	if len(missing) > 0 {
		return nil, models.NewError(models.ErrStoreLoad, op, "missing arrays: %s", strings.Join(missing, ", "))
	}
	return NewStore(*a.Texts, *a.Embeddings, *a.Sources, *a.ChunkIDs)
}
