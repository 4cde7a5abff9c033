package devops

// WiqlRequest is the body of a WIQL query.
type WiqlRequest struct {
	Query string `json:"query"`
}

// WiqlResponse is the flat result of a WIQL query.
type WiqlResponse struct {
	QueryType string              `json:"queryType"`
	WorkItems []WorkItemReference `json:"workItems"`
}

// WorkItemReference is an id/url pair returned by WIQL.
type WorkItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// WorkItemsResponse is the container returned by the work items batch endpoint.
type WorkItemsResponse struct {
	Count int           `json:"count"`
	Value []WorkItemDTO `json:"value"`
}

// WorkItemDTO represents a single work item in the batch response.
type WorkItemDTO struct {
	ID        int           `json:"id"`
	Rev       int           `json:"rev"`
	Fields    FieldsDTO     `json:"fields"`
	Relations []RelationDTO `json:"relations,omitempty"`
	URL       string        `json:"url"`
}

// FieldsDTO contains the specific fields we care about.
type FieldsDTO struct {
	WorkItemType string       `json:"System.WorkItemType"`
	Title        string       `json:"System.Title"`
	State        string       `json:"System.State"`
	AssignedTo   *IdentityDTO `json:"System.AssignedTo,omitempty"`
	DueDate      string       `json:"Microsoft.VSTS.Scheduling.DueDate,omitempty"`
}

// IdentityDTO is the identity reference Azure DevOps embeds for person fields.
type IdentityDTO struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
	ID          string `json:"id"`
}

// RelationDTO is a link entry of an expanded work item.
type RelationDTO struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// detailFields are requested when relations are not expanded; the API rejects
// fields and $expand in the same request.
var detailFields = []string{
	"System.Id",
	"System.WorkItemType",
	"System.Title",
	"System.State",
	"System.AssignedTo",
	"Microsoft.VSTS.Scheduling.DueDate",
}
