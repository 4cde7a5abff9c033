package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"devops-report/internal/stats"
)

const hierarchyInstructions = `The report should include:
1. A summary of Epics, their associated User Stories, and Tasks
2. The total number of Epics, User Stories, and Tasks
3. Any potential risks or blockers based on due dates or unassigned items
4. Progress overview for each Epic

Format the report in markdown, using appropriate headers and bullet points to show the hierarchy.`

const flatInstructions = `The report should include:
1. A summary of the work items with their assignee name (no email) and due dates
2. The total number of work items, per type
3. Any potential risks or blockers based on due dates or unassigned items
4. Progress overview grouped by state

Format the report in markdown.`

// BuildPrompt combines the instruction template for the strategy's shape with the
// serialized structure and the precomputed fact sheet.
func BuildPrompt(strategy Strategy, structure any, digest stats.Digest) (string, error) {
	data, err := json.MarshalIndent(structure, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize work items: %w", err)
	}
	facts, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize digest: %w", err)
	}

	var sb strings.Builder
	switch strategy.Shape {
	case ShapeHierarchy:
		sb.WriteString("Generate a status report based on the following work item hierarchy:\n")
	default:
		sb.WriteString(fmt.Sprintf("Generate a status report based on the following work items (%s) from the project:\n", strings.Join(strategy.Types, ", ")))
	}
	sb.WriteString(string(data))
	sb.WriteString("\n\nPrecomputed totals, risk flags and progress (treat these numbers as authoritative):\n")
	sb.WriteString(string(facts))
	sb.WriteString("\n\n")

	switch strategy.Shape {
	case ShapeHierarchy:
		sb.WriteString(hierarchyInstructions)
	default:
		sb.WriteString(flatInstructions)
	}

	return sb.String(), nil
}
