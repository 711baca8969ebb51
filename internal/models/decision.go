package models

// EvidenceItem is a ranked store entry returned by the retriever. Score is
// the cosine similarity of the query against the entry.
type EvidenceItem struct {
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// DecisionRecord is the routing decision returned for one image.
type DecisionRecord struct {
	IssueType      string   `json:"issue_type"`
	Department     string   `json:"department"`
	Confidence     float64  `json:"confidence"`
	Severity       Severity `json:"severity"`
	Evidence       []string `json:"evidence"`
	DecisionReason string   `json:"decision_reason"`
	AgentsUsed     []string `json:"agents_used,omitempty"`
}
