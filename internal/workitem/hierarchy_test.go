package workitem

import (
	"encoding/json"
	"reflect"
	"testing"
)

func parentOf(id string) []Relation {
	return []Relation{{Rel: RelParent, URL: "https://dev.azure.com/org/_apis/wit/workItems/" + id}}
}

func TestBuild_ThreeTiers(t *testing.T) {
	epics := []WorkItem{{ID: 1, Title: "Epic"}}
	stories := []WorkItem{{ID: 10, Title: "Story", Relations: parentOf("1")}}
	tasks := []WorkItem{{ID: 100, Title: "Task", Relations: parentOf("10")}}

	h := Build(epics, stories, tasks)

	epic, ok := h.Epic(1)
	if !ok {
		t.Fatal("epic 1 missing from hierarchy")
	}
	story, ok := epic.UserStories[10]
	if !ok {
		t.Fatal("story 10 missing under epic 1")
	}
	if _, ok := story.Tasks[100]; !ok {
		t.Fatal("task 100 missing under story 10")
	}

	want := Counts{Epics: 1, UserStories: 1, Tasks: 1}
	if got := h.Counts(); got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
}

func TestBuild_DropsUnresolvable(t *testing.T) {
	epics := []WorkItem{{ID: 1}, {ID: 2}}
	stories := []WorkItem{
		{ID: 10, Relations: parentOf("1")},
		{ID: 11},                            // no relations at all
		{ID: 12, Relations: parentOf("99")}, // parent epic not fetched
		{ID: 13, Relations: []Relation{{Rel: "Related", URL: ".../1"}}},
		{ID: 14, Relations: parentOf("abc")},
	}
	tasks := []WorkItem{
		{ID: 100, Relations: parentOf("10")},
		{ID: 101, Relations: parentOf("12")}, // story was dropped
		{ID: 102, Relations: parentOf("500")},
		{ID: 103},
	}

	h := Build(epics, stories, tasks)

	if got := len(h.Epics()); got != 2 {
		t.Fatalf("expected 2 epics, got %d", got)
	}
	for _, e := range h.Epics() {
		for sid := range e.UserStories {
			if sid != 10 {
				t.Errorf("unexpected story %d under epic %d", sid, e.ID)
			}
		}
	}

	e1, _ := h.Epic(1)
	if got := SortedIDs(e1.UserStories[10].Tasks); !reflect.DeepEqual(got, []ID{100}) {
		t.Errorf("tasks under story 10 = %v, want [100]", got)
	}

	want := Counts{Epics: 2, UserStories: 1, Tasks: 1}
	if got := h.Counts(); got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
}

func TestBuild_FirstParentRelationWins(t *testing.T) {
	epics := []WorkItem{{ID: 1}, {ID: 2}}
	stories := []WorkItem{{ID: 10, Relations: []Relation{
		{Rel: "Child", URL: ".../2"},
		{Rel: RelParent, URL: ".../2"},
		{Rel: RelParent, URL: ".../1"},
	}}}

	h := Build(epics, stories, nil)

	e2, _ := h.Epic(2)
	if _, ok := e2.UserStories[10]; !ok {
		t.Error("story 10 should be placed under the first Parent relation (epic 2)")
	}
	e1, _ := h.Epic(1)
	if len(e1.UserStories) != 0 {
		t.Errorf("epic 1 should have no stories, got %d", len(e1.UserStories))
	}
}

func TestBuild_TaskSearchFollowsEpicOrder(t *testing.T) {
	// Both epics claim story 10 (inconsistent data). The task attaches to the first
	// epic in insertion order only.
	epics := []WorkItem{{ID: 2}, {ID: 1}}
	stories := []WorkItem{
		{ID: 10, Title: "under 1", Relations: parentOf("1")},
		{ID: 10, Title: "under 2", Relations: parentOf("2")},
	}
	tasks := []WorkItem{{ID: 100, Relations: parentOf("10")}}

	h := Build(epics, stories, tasks)

	e2, _ := h.Epic(2)
	e1, _ := h.Epic(1)
	if _, ok := e2.UserStories[10].Tasks[100]; !ok {
		t.Error("task 100 should be attached under epic 2 (first in order)")
	}
	if _, ok := e1.UserStories[10].Tasks[100]; ok {
		t.Error("task 100 must not be attached under a second epic")
	}
}

func TestBuild_DuplicateEpicKeepsPosition(t *testing.T) {
	epics := []WorkItem{{ID: 1, Title: "old"}, {ID: 2}, {ID: 1, Title: "new"}}

	h := Build(epics, nil, nil)

	if len(h.Epics()) != 2 {
		t.Fatalf("expected 2 epics, got %d", len(h.Epics()))
	}
	if h.Epics()[0].ID != 1 || h.Epics()[0].Title != "new" {
		t.Errorf("first epic = %+v, want id 1 titled 'new'", h.Epics()[0].WorkItem)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	epics := []WorkItem{{ID: 1}, {ID: 2}}
	stories := []WorkItem{{ID: 10, Relations: parentOf("1")}, {ID: 20, Relations: parentOf("2")}}
	tasks := []WorkItem{{ID: 100, Relations: parentOf("10")}, {ID: 200, Relations: parentOf("20")}}

	first, err := json.Marshal(Build(epics, stories, tasks))
	if err != nil {
		t.Fatal(err)
	}
	for try := 0; try < 10; try++ {
		again, err := json.Marshal(Build(epics, stories, tasks))
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) {
			t.Fatalf("output changed on try %d:\n%s\nvs\n%s", try, again, first)
		}
	}
}

func TestHierarchy_MarshalJSON(t *testing.T) {
	h := Build(
		[]WorkItem{{ID: 1, Title: "E"}},
		[]WorkItem{{ID: 10, Title: "S", Relations: parentOf("1")}},
		[]WorkItem{{ID: 100, Title: "T", Relations: parentOf("10")}},
	)

	raw, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]struct {
		Title       string `json:"title"`
		UserStories map[string]struct {
			Title string `json:"title"`
			Tasks map[string]struct {
				Title string `json:"title"`
			} `json:"tasks"`
		} `json:"userStories"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid JSON %s: %v", raw, err)
	}
	if got := decoded["1"].UserStories["10"].Tasks["100"].Title; got != "T" {
		t.Errorf("decoded task title = %q, want %q (json: %s)", got, "T", raw)
	}
}

func TestHierarchy_Items(t *testing.T) {
	h := Build(
		[]WorkItem{{ID: 1}},
		[]WorkItem{{ID: 20, Relations: parentOf("1")}, {ID: 10, Relations: parentOf("1")}},
		[]WorkItem{{ID: 100, Relations: parentOf("20")}},
	)

	var ids []ID
	for _, it := range h.Items() {
		ids = append(ids, it.ID)
	}
	if want := []ID{1, 10, 20, 100}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Items() ids = %v, want %v", ids, want)
	}
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		url    string
		want   ID
		wantOK bool
	}{
		{"https://dev.azure.com/org/_apis/wit/workItems/42", 42, true},
		{"42", 42, true},
		{"https://dev.azure.com/org/_apis/wit/workItems/", 0, false},
		{"https://dev.azure.com/org/_apis/wit/workItems/x1", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := IDFromURL(tt.url)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("IDFromURL(%q) = (%d, %v), want (%d, %v)", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}
