// Package cli provides output helpers for the civicroute command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/civicroute/internal/models"
	"github.com/hyperjump/civicroute/pkg/utils"
)

// OutputFormat is the format for decision output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is the decision record as JSON, the same shape the HTTP API returns.
	OutputJSON OutputFormat = "json"
)

// evidence lines in text output are cut to this many runes
const evidencePreviewRunes = 200

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

// WriteDecision writes rec to w in the given format.
func WriteDecision(w io.Writer, rec *models.DecisionRecord, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	writeDecisionText(w, rec)
	return nil
}

func writeDecisionText(w io.Writer, rec *models.DecisionRecord) {
	fmt.Fprintf(w, "Issue:      %s (confidence %.2f)\n", rec.IssueType, rec.Confidence)
	fmt.Fprintf(w, "Severity:   %s\n", rec.Severity)
	fmt.Fprintf(w, "Department: %s\n", rec.Department)
	fmt.Fprintf(w, "Reason:     %s\n", rec.DecisionReason)
	if len(rec.Evidence) == 0 {
		fmt.Fprintln(w, "Evidence:   none")
	} else {
		fmt.Fprintln(w, "Evidence:")
		for i, e := range rec.Evidence {
			collapsed := strings.Join(strings.Fields(e), " ")
			preview := utils.TruncateRunes(collapsed, evidencePreviewRunes)
			if len(preview) < len(collapsed) {
				preview += "..."
			}
			fmt.Fprintf(w, "  %d. %s\n", i+1, preview)
		}
	}
	if len(rec.AgentsUsed) > 0 {
		fmt.Fprintf(w, "Agents:     %s\n", strings.Join(rec.AgentsUsed, ", "))
	}
}
