package stats

import (
	"math"
	"sort"
	"time"

	"devops-report/internal/workitem"
)

// AssessRisks flags open items that have no assignee, are past their due date,
// or fall due within horizon of now. An item can carry more than one flag.
// Results are ordered most urgent first: overdue, due soon, then unassigned.
func AssessRisks(items []workitem.WorkItem, now time.Time, horizon time.Duration) []Risk {
	var results []Risk

	for _, item := range items {
		if DoneStates[item.State] {
			continue
		}

		base := Risk{
			ID:    item.ID,
			Type:  item.Type,
			Title: item.Title,
			State: item.State,
		}

		if item.DueDate != nil {
			days := daysUntil(now, *item.DueDate)
			r := base
			r.DueDate = item.DueDate
			r.DaysLeft = &days
			switch {
			case item.DueDate.Before(now):
				r.Kind = RiskOverdue
				results = append(results, r)
			case item.DueDate.Sub(now) <= horizon:
				r.Kind = RiskDueSoon
				results = append(results, r)
			}
		}

		if item.Assignee() == "" {
			r := base
			r.Kind = RiskUnassigned
			results = append(results, r)
		}
	}

	rank := map[RiskKind]int{RiskOverdue: 0, RiskDueSoon: 1, RiskUnassigned: 2}
	sort.SliceStable(results, func(i, j int) bool {
		if rank[results[i].Kind] != rank[results[j].Kind] {
			return rank[results[i].Kind] < rank[results[j].Kind]
		}
		if di, dj := daysLeft(results[i]), daysLeft(results[j]); di != dj {
			return di < dj
		}
		return results[i].ID < results[j].ID
	})

	return results
}

func daysUntil(now, due time.Time) int {
	return int(math.Floor(due.Sub(now).Hours() / 24))
}

func daysLeft(r Risk) int {
	if r.DaysLeft == nil {
		return 0
	}
	return *r.DaysLeft
}
