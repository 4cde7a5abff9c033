package stats

import (
	"math"
	"time"

	"devops-report/internal/workitem"
)

// CalculateProgress summarises each epic of the hierarchy: how many of its stories
// and tasks are finished and how its open work is spread across states.
func CalculateProgress(h *workitem.Hierarchy) []Progress {
	var results []Progress

	for _, epic := range h.Epics() {
		p := Progress{
			EpicID:        epic.ID,
			Title:         epic.Title,
			State:         epic.State,
			StatesByCount: make(map[string]int),
		}

		for _, story := range epic.UserStories {
			p.Stories++
			p.StatesByCount[story.State]++
			if DoneStates[story.State] {
				p.StoriesDone++
			} else if story.Assignee() == "" {
				p.UnassignedOpen++
			}

			for _, task := range story.Tasks {
				p.Tasks++
				if DoneStates[task.State] {
					p.TasksDone++
				} else if task.Assignee() == "" {
					p.UnassignedOpen++
				}
			}
		}

		// Tasks are the finest grain; fall back to stories for epics without tasks.
		switch {
		case p.Tasks > 0:
			p.PercentDone = percent(p.TasksDone, p.Tasks)
		case p.Stories > 0:
			p.PercentDone = percent(p.StoriesDone, p.Stories)
		case DoneStates[epic.State]:
			p.PercentDone = 100
		}

		results = append(results, p)
	}

	return results
}

// BuildDigest assembles totals, risks, and (for a hierarchy) per-epic progress.
func BuildDigest(items []workitem.WorkItem, h *workitem.Hierarchy, now time.Time, horizon time.Duration) Digest {
	d := Digest{
		Totals: make(map[string]int),
		Risks:  AssessRisks(items, now, horizon),
	}

	for _, item := range items {
		typ := item.Type
		if typ == "" {
			typ = "Work Item"
		}
		d.Totals[typ]++
	}

	if h != nil {
		d.Progress = CalculateProgress(h)
	}

	return d
}

func percent(done, total int) float64 {
	return math.Round(float64(done)/float64(total)*1000) / 10
}
