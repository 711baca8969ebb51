// Package vision implements the issue classifier: a shared feature extractor
// with a category head and a three-level severity head.
package vision

import (
	"fmt"

	"github.com/hyperjump/civicroute/internal/models"
)

// Classifier is an immutable handle bound to one checkpoint. It is safe for
// concurrent use when its backend is.
type Classifier struct {
	backbone string
	classes  []string
	size     int
	backend  Backend
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	runtimePath string
}

// WithRuntimePath points the ONNX backend at a specific onnxruntime shared
// library.
func WithRuntimePath(path string) Option {
	return func(o *loadOptions) { o.runtimePath = path }
}

// Load reads the checkpoint manifest at path and builds its backend. Every
// failure carries models.ErrModelLoad.
func Load(path string, opts ...Option) (*Classifier, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	ck, err := ReadCheckpoint(path)
	if err != nil {
		return nil, models.WrapError(models.ErrModelLoad, "load checkpoint", err)
	}
	backend, err := newBackend(ck, o.runtimePath)
	if err != nil {
		return nil, models.WrapError(models.ErrModelLoad, "load checkpoint", err)
	}
	return &Classifier{
		backbone: ck.Backbone,
		classes:  append([]string(nil), ck.Classes...),
		size:     ck.ImageSize,
		backend:  backend,
	}, nil
}

// NewClassifier wraps an already constructed backend.
func NewClassifier(backbone string, classes []string, imageSize int, backend Backend) (*Classifier, error) {
	if backend == nil {
		return nil, models.NewError(models.ErrModelLoad, "new classifier", "nil backend")
	}
	if backbone == "" || imageSize < 1 {
		return nil, models.NewError(models.ErrModelLoad, "new classifier", "backbone and image size are required")
	}
	if err := validateClasses(classes); err != nil {
		return nil, models.WrapError(models.ErrModelLoad, "new classifier", err)
	}
	return &Classifier{
		backbone: backbone,
		classes:  append([]string(nil), classes...),
		size:     imageSize,
		backend:  backend,
	}, nil
}

// Infer classifies one encoded image. Undecodable input returns
// models.ErrInvalidImage.
func (c *Classifier) Infer(imageBytes []byte) (*models.ClassificationResult, error) {
	pixels, err := Preprocess(imageBytes, c.size)
	if err != nil {
		return nil, err
	}
	catLogits, sevLogits, err := c.backend.Forward(pixels)
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}
	if len(catLogits) != len(c.classes) || len(sevLogits) != len(models.SeverityLevels) {
		return nil, fmt.Errorf("infer: backend returned %d category and %d severity logits", len(catLogits), len(sevLogits))
	}

	catProbs := Softmax(catLogits)
	sevProbs := Softmax(sevLogits)
	ci := Argmax(catProbs)
	si := Argmax(sevProbs)
	return &models.ClassificationResult{
		IssueType:          c.classes[ci],
		CategoryConfidence: catProbs[ci],
		Severity:           models.SeverityFromIndex(si),
		SeverityConfidence: sevProbs[si],
	}, nil
}

// Classes returns the category labels in head order.
func (c *Classifier) Classes() []string {
	return append([]string(nil), c.classes...)
}

// Backbone returns the checkpoint's backbone id.
func (c *Classifier) Backbone() string { return c.backbone }

// ImageSize returns the square input resolution.
func (c *Classifier) ImageSize() int { return c.size }

// Close releases the backend.
func (c *Classifier) Close() error {
	return c.backend.Close()
}
