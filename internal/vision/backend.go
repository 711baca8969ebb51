package vision

import "fmt"

// BackbonePooledLinear selects the pure-Go backend. Any other backbone id is
// treated as an exported ONNX model.
const BackbonePooledLinear = "pooled_linear"

// Backend runs the shared feature extractor and both heads on one
// preprocessed image.
type Backend interface {
	Forward(pixels []float32) (categoryLogits, severityLogits []float32, err error)
	Close() error
}

func newBackend(ck *Checkpoint, runtimePath string) (Backend, error) {
	if ck.Backbone == BackbonePooledLinear {
		b, err := newLinearBackend(ck.Weights, len(ck.Classes), ck.ImageSize)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	b, err := newONNXBackend(ck.Weights, runtimePath, len(ck.Classes), ck.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("backbone %s: %w", ck.Backbone, err)
	}
	return b, nil
}
