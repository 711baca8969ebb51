//go:build !cgo
// +build !cgo

package vision

import "github.com/hyperjump/civicroute/internal/onnxrt"

// ONNXBackend is unavailable without cgo.
type ONNXBackend struct{}

func newONNXBackend(_, _ string, _, _ int) (*ONNXBackend, error) {
	return nil, onnxrt.ErrUnavailable
}

func (b *ONNXBackend) Forward(_ []float32) ([]float32, []float32, error) {
	return nil, nil, onnxrt.ErrUnavailable
}

func (b *ONNXBackend) Close() error { return nil }
