package devops

import (
	"fmt"
	"strings"
)

// StateFilter narrows a query by System.State. Include wins over Exclude when both
// are set.
type StateFilter struct {
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// BuildWIQL returns the WIQL selecting work items of one type, narrowed by state.
func BuildWIQL(workItemType string, states StateFilter) string {
	var sb strings.Builder
	sb.WriteString("Select [System.Id], [System.Title], [System.State], [System.AssignedTo], [Microsoft.VSTS.Scheduling.DueDate] From WorkItems")
	sb.WriteString(fmt.Sprintf(" Where [System.WorkItemType] = %s", quote(workItemType)))

	switch {
	case len(states.Include) == 1:
		sb.WriteString(fmt.Sprintf(" AND [System.State] = %s", quote(states.Include[0])))
	case len(states.Include) > 1:
		sb.WriteString(fmt.Sprintf(" AND [System.State] In (%s)", quoteAll(states.Include)))
	case len(states.Exclude) == 1:
		sb.WriteString(fmt.Sprintf(" AND [System.State] <> %s", quote(states.Exclude[0])))
	case len(states.Exclude) > 1:
		sb.WriteString(fmt.Sprintf(" AND [System.State] Not In (%s)", quoteAll(states.Exclude)))
	}

	return sb.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return strings.Join(quoted, ", ")
}
