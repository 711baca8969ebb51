//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/civicroute/internal/onnxrt"
	"github.com/hyperjump/civicroute/pkg/utils"
)

// ONNXEmbedder runs a sentence-transformer ONNX export: WordPiece tokenize,
// encode, mean pool (unless the model is already pooled), L2 normalize.
// Run calls are serialized on one session.
type ONNXEmbedder struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	pooled     bool
	dimensions int
	tok        *tokenizer
	mu         sync.Mutex
}

// NewONNXEmbedder loads the model and vocabulary. runtimePath optionally
// points at the onnxruntime shared library.
func NewONNXEmbedder(modelPath, vocabPath, runtimePath string, maxTokens int) (*ONNXEmbedder, error) {
	if err := onnxrt.Init(runtimePath); err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	tok, err := newTokenizer(vocabPath, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("embedder: failed to read model info: %w", err)
	}
	inputNames, err := selectInputs(inputs)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("embedder: model has no outputs")
	}
	dims := outputs[0].Dimensions
	var pooled bool
	switch len(dims) {
	case 2:
		pooled = true
	case 3:
	default:
		return nil, fmt.Errorf("embedder: expected 2D or 3D output tensor, got %v", dims)
	}
	dim := dims[len(dims)-1]
	if dim <= 0 {
		return nil, fmt.Errorf("embedder: output embedding dimension is not static: %v", dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("embedder: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("embedder: failed to create session: %w", err)
	}

	return &ONNXEmbedder{
		session:    session,
		inputNames: inputNames,
		pooled:     pooled,
		dimensions: int(dim),
		tok:        tok,
	}, nil
}

// selectInputs requires input_ids and attention_mask; token_type_ids is fed
// only when the model declares it.
func selectInputs(inputs []ort.InputOutputInfo) ([]string, error) {
	present := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		present[in.Name] = true
	}
	for _, name := range []string{"input_ids", "attention_mask"} {
		if !present[name] {
			return nil, fmt.Errorf("embedder: model missing required input %q", name)
		}
	}
	names := []string{"input_ids", "attention_mask"}
	if present["token_type_ids"] {
		names = append(names, "token_type_ids")
	}
	return names, nil
}

// Embed returns the unit-norm embedding for text.
func (e *ONNXEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	enc := e.tok.encode(text)
	shape := ort.NewShape(1, enc.seqLen)
	data := map[string][]int64{
		"input_ids":      enc.inputIDs,
		"attention_mask": enc.attentionMask,
		"token_type_ids": enc.tokenTypeIDs,
	}
	inputs := make([]ort.Value, 0, len(e.inputNames))
	for _, name := range e.inputNames {
		t, err := ort.NewTensor(shape, data[name])
		if err != nil {
			return nil, fmt.Errorf("embedder: failed to create %s tensor: %w", name, err)
		}
		defer t.Destroy()
		inputs = append(inputs, t)
	}

	outShape := ort.NewShape(1, enc.seqLen, int64(e.dimensions))
	if e.pooled {
		outShape = ort.NewShape(1, int64(e.dimensions))
	}
	out, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("embedder: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	e.mu.Lock()
	err = e.session.Run(inputs, []ort.Value{out})
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("embedder: inference failed: %w", err)
	}

	var vec []float32
	if e.pooled {
		vec = make([]float32, e.dimensions)
		copy(vec, out.GetData())
	} else {
		vec = meanPool(out.GetData(), enc.attentionMask, enc.seqLen, int64(e.dimensions))
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// Dimensions returns the embedding dimension read from the model.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session.
func (e *ONNXEmbedder) Close() error {
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}
