package devops

import (
	"context"
	"time"

	"devops-report/internal/workitem"
)

// Client is the interface for interacting with Azure DevOps work item tracking.
type Client interface {
	// QueryIDs runs a WIQL query and returns the ids of matching work items.
	QueryIDs(ctx context.Context, wiql string) ([]workitem.ID, error)
	// GetWorkItems fetches full records for the given ids. When expandRelations is
	// set, relation links (Parent, Child, ...) are included in the records.
	GetWorkItems(ctx context.Context, ids []workitem.ID, expandRelations bool) ([]workitem.WorkItem, error)
}

// Config holds the authentication and connection settings for Azure DevOps.
type Config struct {
	// BaseURL defaults to https://dev.azure.com.
	BaseURL      string
	Organization string
	Project      string
	// PAT is a personal access token, sent as Basic auth with an empty user.
	PAT string

	APIVersion string

	// Performance Settings
	RequestDelay time.Duration
	BatchSize    int
	Timeout      time.Duration
}

const (
	defaultBaseURL    = "https://dev.azure.com"
	defaultAPIVersion = "6.0"
	// maxBatchSize is the server-side cap on ids per work items request.
	maxBatchSize = 200
)

// NewClient creates a new Azure DevOps client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewRESTClient(cfg)
}
