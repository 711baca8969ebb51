// Package embedding provides the query embedding function shared with the
// offline store builder: an ONNX sentence encoder and a deterministic hashed
// encoder.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces unit-norm vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}

// Provider names accepted by New.
const (
	ProviderONNX = "onnx"
	ProviderHash = "hash"
)

// Options configures New.
type Options struct {
	Provider    string
	ModelPath   string
	VocabPath   string
	RuntimePath string
	Dimensions  int
	MaxTokens   int
}

// New builds the embedder named by opts.Provider. An empty provider selects
// the ONNX encoder.
func New(opts Options) (Embedder, error) {
	switch opts.Provider {
	case ProviderONNX, "":
		e, err := NewONNXEmbedder(opts.ModelPath, opts.VocabPath, opts.RuntimePath, opts.MaxTokens)
		if err != nil {
			return nil, err
		}
		return e, nil
	case ProviderHash:
		return NewHashEmbedder(opts.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, hash)", opts.Provider)
	}
}
