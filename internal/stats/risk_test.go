package stats

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"devops-report/internal/workitem"
)

func TestAssessRisks(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -3)
	soon := now.AddDate(0, 0, 2)
	later := now.AddDate(0, 1, 0)
	ada := &workitem.Identity{DisplayName: "Ada"}

	items := []workitem.WorkItem{
		{ID: 1, State: "Active", AssignedTo: ada, DueDate: &later}, // healthy
		{ID: 2, State: "Active", AssignedTo: ada, DueDate: &past},
		{ID: 3, State: "New", DueDate: &soon},    // due soon and unassigned
		{ID: 4, State: "Closed", DueDate: &past}, // finished, ignored
		{ID: 5, State: "Active"},
	}

	risks := AssessRisks(items, now, 7*24*time.Hour)

	type flag struct {
		id   workitem.ID
		kind RiskKind
	}
	want := []flag{
		{2, RiskOverdue},
		{3, RiskDueSoon},
		{3, RiskUnassigned},
		{5, RiskUnassigned},
	}

	if len(risks) != len(want) {
		t.Fatalf("expected %d risks, got %d: %+v", len(want), len(risks), risks)
	}
	for i, w := range want {
		if risks[i].ID != w.id || risks[i].Kind != w.kind {
			t.Errorf("at index %d: got (%d, %s), want (%d, %s)", i, risks[i].ID, risks[i].Kind, w.id, w.kind)
		}
	}
	if d := risks[0].DaysLeft; d == nil || *d != -3 {
		t.Errorf("overdue DaysLeft = %v, want -3", d)
	}
	if risks[3].DaysLeft != nil {
		t.Errorf("unassigned item without due date should have no DaysLeft, got %d", *risks[3].DaysLeft)
	}
}

func TestAssessRisks_DueTodayKeepsDaysLeft(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	today := now.Add(2 * time.Hour)
	ada := &workitem.Identity{DisplayName: "Ada"}

	risks := AssessRisks([]workitem.WorkItem{{ID: 7, State: "Active", AssignedTo: ada, DueDate: &today}}, now, 7*24*time.Hour)
	if len(risks) != 1 || risks[0].Kind != RiskDueSoon {
		t.Fatalf("expected one due_soon risk, got %+v", risks)
	}

	data, err := json.Marshal(risks[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"daysLeft":0`) {
		t.Errorf("item due today must report daysLeft 0, got %s", data)
	}
}

func TestCalculateProgress(t *testing.T) {
	parent := func(id string) []workitem.Relation {
		return []workitem.Relation{{Rel: workitem.RelParent, URL: "x/" + id}}
	}
	h := workitem.Build(
		[]workitem.WorkItem{{ID: 1, Title: "Checkout", State: "Active"}, {ID: 2, State: "Closed"}},
		[]workitem.WorkItem{
			{ID: 10, State: "Active", Relations: parent("1")},
			{ID: 11, State: "Closed", Relations: parent("1")},
		},
		[]workitem.WorkItem{
			{ID: 100, State: "Closed", Relations: parent("10")},
			{ID: 101, State: "Active", Relations: parent("10")},
			{ID: 102, State: "Done", Relations: parent("11")},
			{ID: 103, State: "New", Relations: parent("11")},
		},
	)

	progress := CalculateProgress(h)
	if len(progress) != 2 {
		t.Fatalf("expected 2 progress entries, got %d", len(progress))
	}

	p := progress[0]
	if p.EpicID != 1 || p.Stories != 2 || p.StoriesDone != 1 || p.Tasks != 4 || p.TasksDone != 2 {
		t.Errorf("unexpected progress for epic 1: %+v", p)
	}
	if p.PercentDone != 50 {
		t.Errorf("PercentDone = %v, want 50", p.PercentDone)
	}
	if p.UnassignedOpen != 3 {
		t.Errorf("UnassignedOpen = %d, want 3", p.UnassignedOpen)
	}
	if progress[1].PercentDone != 100 {
		t.Errorf("closed empty epic PercentDone = %v, want 100", progress[1].PercentDone)
	}
}

func TestBuildDigest_Totals(t *testing.T) {
	items := []workitem.WorkItem{
		{ID: 1, Type: workitem.TypeEpic},
		{ID: 2, Type: workitem.TypeTask},
		{ID: 3, Type: workitem.TypeTask},
		{ID: 4},
	}

	d := BuildDigest(items, nil, time.Now(), 0)

	if d.Totals[workitem.TypeTask] != 2 || d.Totals[workitem.TypeEpic] != 1 || d.Totals["Work Item"] != 1 {
		t.Errorf("Totals = %v", d.Totals)
	}
	if d.Progress != nil {
		t.Errorf("Progress should be empty without a hierarchy, got %+v", d.Progress)
	}
}
