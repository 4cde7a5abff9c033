package workitem

import (
	"strconv"
	"strings"
	"time"
)

// ID is the canonical work item identifier. Ids parsed out of relation URLs are
// converted to this type before any comparison.
type ID int

// String renders the id the way Azure DevOps prints it.
func (id ID) String() string {
	return strconv.Itoa(int(id))
}

// Work item type names as reported by Azure DevOps (System.WorkItemType).
const (
	TypeEpic      = "Epic"
	TypeUserStory = "User Story"
	TypeTask      = "Task"
)

// RelParent is the only relation kind consulted when rebuilding the hierarchy.
const RelParent = "Parent"

// Identity is a reference to a person (System.AssignedTo).
type Identity struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName,omitempty"`
}

// Relation is a link from a work item to another work item.
type Relation struct {
	Rel string `json:"rel"`
	URL string `json:"url"`
}

// WorkItem is a single record returned by the tracker. Values are not modified
// after the fetcher hands them out.
type WorkItem struct {
	ID         ID         `json:"id"`
	Type       string     `json:"type,omitempty"`
	Title      string     `json:"title"`
	State      string     `json:"state"`
	AssignedTo *Identity  `json:"assignedTo,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Relations  []Relation `json:"relations,omitempty"`
}

// Assignee returns the display name of the assignee, or "" when unassigned.
func (w WorkItem) Assignee() string {
	if w.AssignedTo == nil {
		return ""
	}
	return w.AssignedTo.DisplayName
}

// ParentID resolves the id of the item's parent from its first "Parent" relation.
// The second return value is false when there is no such relation or its URL does
// not end in a numeric id.
func ParentID(w WorkItem) (ID, bool) {
	for _, r := range w.Relations {
		if r.Rel != RelParent {
			continue
		}
		return IDFromURL(r.URL)
	}
	return 0, false
}

// IDFromURL extracts the id encoded as the final path segment of a work item URL.
func IDFromURL(u string) (ID, bool) {
	seg := u
	if i := strings.LastIndex(u, "/"); i >= 0 {
		seg = u[i+1:]
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return ID(n), true
}
