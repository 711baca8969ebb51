// Package pipeline chains classification, evidence retrieval and decision
// fusion for a single image.
package pipeline

import (
	"context"
	"fmt"

	"github.com/hyperjump/civicroute/internal/decision"
	"github.com/hyperjump/civicroute/internal/models"
	"github.com/hyperjump/civicroute/internal/rag"
)

// Stage markers recorded on every decision.
const (
	AgentVision   = "Vision"
	AgentRAG      = "RAG"
	AgentDecision = "Decision"
)

// ImageClassifier predicts an issue type and severity from an encoded image.
type ImageClassifier interface {
	Infer(imageBytes []byte) (*models.ClassificationResult, error)
}

// EvidenceRetriever returns the store entries most similar to a query.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.EvidenceItem, error)
}

// Orchestrator owns no mutable state; one instance serves concurrent
// requests when its classifier and retriever do.
type Orchestrator struct {
	classifier ImageClassifier
	retriever  EvidenceRetriever
	topK       int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTopK overrides the number of evidence items retrieved per image.
func WithTopK(k int) Option {
	return func(o *Orchestrator) { o.topK = k }
}

// New builds an orchestrator retrieving rag.DefaultTopK items unless
// overridden.
func New(classifier ImageClassifier, retriever EvidenceRetriever, opts ...Option) *Orchestrator {
	o := &Orchestrator{classifier: classifier, retriever: retriever, topK: rag.DefaultTopK}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TopK returns the configured retrieval depth.
func (o *Orchestrator) TopK() int { return o.topK }

// HandleImage classifies the image, retrieves evidence using the predicted
// issue type as the query and fuses both into a decision. ctx is handed to
// the retriever unchanged; callers enforce their own deadlines.
func (o *Orchestrator) HandleImage(ctx context.Context, imageBytes []byte) (*models.DecisionRecord, error) {
	c, err := o.classifier.Infer(imageBytes)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	evidence, err := o.retriever.Retrieve(ctx, c.IssueType, o.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve evidence: %w", err)
	}
	rec := decision.Fuse(*c, evidence)
	rec.AgentsUsed = []string{AgentVision, AgentRAG, AgentDecision}
	return &rec, nil
}
