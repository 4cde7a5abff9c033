package stats

import (
	"time"

	"devops-report/internal/workitem"
)

// RiskKind classifies why an item was flagged.
type RiskKind string

const (
	RiskUnassigned RiskKind = "unassigned"
	RiskOverdue    RiskKind = "overdue"
	RiskDueSoon    RiskKind = "due_soon"
)

// Risk is a single flag raised against a work item.
type Risk struct {
	ID       workitem.ID `json:"id"`
	Type     string      `json:"type,omitempty"`
	Title    string      `json:"title"`
	State    string      `json:"state"`
	Kind     RiskKind    `json:"kind"`
	DueDate  *time.Time  `json:"dueDate,omitempty"`
	DaysLeft *int        `json:"daysLeft,omitempty"` // negative when overdue, 0 when due today
}

// Progress is the completion picture of one epic.
type Progress struct {
	EpicID         workitem.ID    `json:"epicId"`
	Title          string         `json:"title"`
	State          string         `json:"state"`
	Stories        int            `json:"stories"`
	StoriesDone    int            `json:"storiesDone"`
	Tasks          int            `json:"tasks"`
	TasksDone      int            `json:"tasksDone"`
	PercentDone    float64        `json:"percentDone"`
	StatesByCount  map[string]int `json:"states"`
	UnassignedOpen int            `json:"unassignedOpen"`
}

// Digest is the deterministic fact sheet handed to the summarizer next to the raw data.
type Digest struct {
	Totals   map[string]int `json:"totals"`
	Risks    []Risk         `json:"risks"`
	Progress []Progress     `json:"progress,omitempty"`
}

// DoneStates lists the states counted as finished when computing progress and
// skipping risk flags.
var DoneStates = map[string]bool{
	"Closed":   true,
	"Done":     true,
	"Resolved": true,
	"Removed":  true,
}
