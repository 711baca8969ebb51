// Package models defines the records exchanged between the classifier, the
// evidence retriever and the decision stage.
package models

// Severity is the label predicted by the classifier's severity head.
type Severity string

// Severity labels in training label order: index 0, 1, 2.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityLevels lists the severity labels by head index.
var SeverityLevels = [3]Severity{SeverityLow, SeverityMedium, SeverityHigh}

// SeverityFromIndex maps a severity head index to its label. Indices outside
// the head fall back to medium.
func SeverityFromIndex(i int) Severity {
	if i < 0 || i >= len(SeverityLevels) {
		return SeverityMedium
	}
	return SeverityLevels[i]
}

// Index returns the head index of s, or -1 for an unknown label.
func (s Severity) Index() int {
	for i, l := range SeverityLevels {
		if l == s {
			return i
		}
	}
	return -1
}

// ClassificationResult is the output of one classifier inference.
type ClassificationResult struct {
	IssueType          string   `json:"issue_type"`
	CategoryConfidence float64  `json:"category_confidence"`
	Severity           Severity `json:"severity"`
	SeverityConfidence float64  `json:"severity_confidence"`
}
