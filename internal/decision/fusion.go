// Package decision fuses a classification and its retrieved evidence into a
// department routing with a readable justification. Everything here is pure.
package decision

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperjump/civicroute/internal/models"
	"github.com/hyperjump/civicroute/pkg/utils"
)

// SnippetRunes is the length of the evidence excerpt quoted in the reason.
const SnippetRunes = 100

// Fuse resolves the department for c and builds the decision record. The
// first evidence item is quoted whatever its score.
func Fuse(c models.ClassificationResult, evidence []models.EvidenceItem) models.DecisionRecord {
	texts := make([]string, len(evidence))
	for i, e := range evidence {
		texts[i] = e.Text
	}
	dept := ResolveDepartment(c.IssueType, texts)
	return models.DecisionRecord{
		IssueType:      c.IssueType,
		Department:     dept,
		Confidence:     c.CategoryConfidence,
		Severity:       c.Severity,
		Evidence:       texts,
		DecisionReason: Reason(c.IssueType, c.CategoryConfidence, dept, texts),
	}
}

// ResolveDepartment applies, in order: the static issue table, the keyword
// scan over the evidence texts, the default department.
func ResolveDepartment(issueType string, evidenceTexts []string) string {
	if dept, ok := StaticDepartment(issueType); ok {
		return dept
	}
	if dept, ok := keywordDepartment(evidenceTexts); ok {
		return dept
	}
	return DefaultDepartment
}

func keywordDepartment(texts []string) (string, bool) {
	if len(texts) == 0 {
		return "", false
	}
	combined := cases.Lower(language.Und).String(strings.Join(texts, " "))
	for _, r := range keywordRoutes {
		for _, kw := range r.keywords {
			if strings.Contains(combined, kw) {
				return r.department, true
			}
		}
	}
	return "", false
}

// Reason renders the decision justification.
func Reason(issueType string, confidence float64, department string, evidenceTexts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "AI detected '%s' with %.2f confidence. Assigned to %s.", issueType, confidence, department)
	if len(evidenceTexts) > 0 {
		fmt.Fprintf(&b, " Relevant Rule: %s...", utils.TruncateRunes(evidenceTexts[0], SnippetRunes))
	}
	return b.String()
}
