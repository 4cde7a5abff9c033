package devops

import (
	"time"

	"devops-report/internal/workitem"
)

// relHierarchyReverse is the raw link type Azure DevOps uses for "this item's parent".
const relHierarchyReverse = "System.LinkTypes.Hierarchy-Reverse"

// MapWorkItem transforms an Azure DevOps DTO into a domain work item.
func MapWorkItem(dto WorkItemDTO) workitem.WorkItem {
	item := workitem.WorkItem{
		ID:    workitem.ID(dto.ID),
		Type:  dto.Fields.WorkItemType,
		Title: dto.Fields.Title,
		State: dto.Fields.State,
	}

	if a := dto.Fields.AssignedTo; a != nil && (a.DisplayName != "" || a.UniqueName != "") {
		item.AssignedTo = &workitem.Identity{
			DisplayName: a.DisplayName,
			UniqueName:  a.UniqueName,
		}
	}

	if dto.Fields.DueDate != "" {
		if t, err := ParseTime(dto.Fields.DueDate); err == nil {
			item.DueDate = &t
		}
	}

	for _, r := range dto.Relations {
		item.Relations = append(item.Relations, workitem.Relation{
			Rel: relationName(r),
			URL: r.URL,
		})
	}

	return item
}

// relationName prefers the friendly link name ("Parent", "Child") carried in the
// attributes over the raw reference name.
func relationName(r RelationDTO) string {
	if name, ok := r.Attributes["name"].(string); ok && name != "" {
		return name
	}
	if r.Rel == relHierarchyReverse {
		return workitem.RelParent
	}
	return r.Rel
}

// ParseTime parses the date-time format Azure DevOps uses for date fields.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
