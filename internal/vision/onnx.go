//go:build cgo
// +build cgo

package vision

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/civicroute/internal/models"
	"github.com/hyperjump/civicroute/internal/onnxrt"
)

// ONNXBackend runs an exported two-head classifier. Run calls are
// serialized on one session.
type ONNXBackend struct {
	session    *ort.DynamicAdvancedSession
	size       int
	numClasses int
	mu         sync.Mutex
}

func newONNXBackend(modelPath, runtimePath string, numClasses, size int) (*ONNXBackend, error) {
	if err := onnxrt.Init(runtimePath); err != nil {
		return nil, err
	}
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("model has %d inputs, want 1", len(inputs))
	}
	if err := checkImageInput(inputs[0].Dimensions, size); err != nil {
		return nil, err
	}
	if len(outputs) != 2 {
		return nil, fmt.Errorf("model has %d outputs, want 2", len(outputs))
	}
	outputNames, err := orderHeads(outputs, numClasses)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()
	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputs[0].Name}, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &ONNXBackend{session: session, size: size, numClasses: numClasses}, nil
}

func checkImageInput(dims ort.Shape, size int) error {
	if len(dims) != 4 || dims[1] != 3 {
		return fmt.Errorf("input shape %v, want [N,3,%d,%d]", dims, size, size)
	}
	for _, d := range dims[2:] {
		if d > 0 && d != int64(size) {
			return fmt.Errorf("input shape %v, want [N,3,%d,%d]", dims, size, size)
		}
	}
	return nil
}

// orderHeads returns the output names as category head, severity head. When
// the last dimensions cannot tell them apart the declared order is used.
func orderHeads(outputs []ort.InputOutputInfo, numClasses int) ([]string, error) {
	last := func(i int) int64 {
		d := outputs[i].Dimensions
		if len(d) == 0 {
			return -1
		}
		return d[len(d)-1]
	}
	sev := int64(len(models.SeverityLevels))
	switch {
	case last(0) == int64(numClasses) && last(1) == sev:
		return []string{outputs[0].Name, outputs[1].Name}, nil
	case last(0) == sev && last(1) == int64(numClasses):
		return []string{outputs[1].Name, outputs[0].Name}, nil
	}
	return nil, fmt.Errorf("outputs %v and %v do not match %d classes and %d severities",
		outputs[0].Dimensions, outputs[1].Dimensions, numClasses, sev)
}

// Forward implements Backend.
func (b *ONNXBackend) Forward(pixels []float32) ([]float32, []float32, error) {
	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(b.size), int64(b.size)), pixels)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()
	category, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(b.numClasses)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer category.Destroy()
	severity, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(models.SeverityLevels))))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer severity.Destroy()

	b.mu.Lock()
	err = b.session.Run([]ort.Value{input}, []ort.Value{category, severity})
	b.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("inference failed: %w", err)
	}
	return append([]float32(nil), category.GetData()...), append([]float32(nil), severity.GetData()...), nil
}

// Close destroys the session.
func (b *ONNXBackend) Close() error {
	if b.session == nil {
		return nil
	}
	err := b.session.Destroy()
	b.session = nil
	return err
}
