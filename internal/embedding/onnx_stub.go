//go:build !cgo
// +build !cgo

package embedding

import (
	"context"

	"github.com/hyperjump/civicroute/internal/onnxrt"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_, _, _ string, _ int) (*ONNXEmbedder, error) {
	return nil, onnxrt.ErrUnavailable
}

func (e *ONNXEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, onnxrt.ErrUnavailable
}

func (e *ONNXEmbedder) Dimensions() int { return 0 }

func (e *ONNXEmbedder) Close() error { return nil }
