package visuals

import (
	"fmt"
	"strings"

	"devops-report/internal/stats"
	"devops-report/internal/workitem"
)

// GenerateHierarchyChart creates a Mermaid flowchart of the Epic -> Story -> Task tree.
// Finished items are drawn with the "done" class.
func GenerateHierarchyChart(h *workitem.Hierarchy) string {
	if h == nil || len(h.Epics()) == 0 {
		return ""
	}

	var sb strings.Builder
	var done []string

	sb.WriteString("```mermaid\n")
	sb.WriteString("flowchart LR\n")

	node := func(prefix string, item workitem.WorkItem) string {
		id := fmt.Sprintf("%s%d", prefix, item.ID)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, label(item)))
		if stats.DoneStates[item.State] {
			done = append(done, id)
		}
		return id
	}

	for _, epic := range h.Epics() {
		eid := node("E", epic.WorkItem)
		for _, sid := range workitem.SortedIDs(epic.UserStories) {
			story := epic.UserStories[sid]
			snode := node("S", story.WorkItem)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", eid, snode))
			for _, tid := range workitem.SortedIDs(story.Tasks) {
				tnode := node("T", story.Tasks[tid])
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", snode, tnode))
			}
		}
	}

	if len(done) > 0 {
		sb.WriteString("    classDef done fill:#d3f9d8,stroke:#2b8a3e\n")
		sb.WriteString(fmt.Sprintf("    class %s done\n", strings.Join(done, ",")))
	}
	sb.WriteString("```")
	return sb.String()
}

const maxLabelRunes = 40

func label(item workitem.WorkItem) string {
	title := item.Title
	if r := []rune(title); len(r) > maxLabelRunes {
		title = string(r[:maxLabelRunes-3]) + "..."
	}
	// Mermaid labels cannot carry raw double quotes.
	title = strings.ReplaceAll(title, "\"", "'")
	return fmt.Sprintf("#%d %s<br/>%s", item.ID, title, item.State)
}
