package diagnosis

import (
	"fmt"
	"strings"
)

// Finding is one matched rule's output: a symptom category plus the
// recommended checks for it.
type Finding struct {
	Category       string `json:"category"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// Report is an ordered sequence of findings in rule-table priority order.
// Never empty: when no symptom rule matches, a generic fallback finding is
// appended.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Render formats the report as the text stored on a case. Byte-stable for
// identical inputs: no timestamps, no randomness.
func (r Report) Render() string {
	parts := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		parts = append(parts, fmt.Sprintf("- %s\n  → %s", f.Summary, f.Recommendation))
	}
	return strings.Join(parts, "\n\n")
}
