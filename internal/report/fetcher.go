package report

import (
	"context"

	"devops-report/internal/devops"
	"devops-report/internal/workitem"

	"github.com/rs/zerolog"
)

// Fetcher retrieves work items for the orchestrator. Implementations absorb
// transport failures and return empty results instead.
type Fetcher interface {
	FetchIDs(ctx context.Context, workItemType string, states devops.StateFilter) []workitem.ID
	FetchDetails(ctx context.Context, ids []workitem.ID, expandRelations bool) []workitem.WorkItem
}

// Summarizer turns a prompt into report text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

type clientFetcher struct {
	client devops.Client
}

// NewFetcher adapts a devops.Client to the Fetcher contract: errors are logged and
// reported as empty results.
func NewFetcher(client devops.Client) Fetcher {
	return &clientFetcher{client: client}
}

func (f *clientFetcher) FetchIDs(ctx context.Context, workItemType string, states devops.StateFilter) []workitem.ID {
	ids, err := f.client.QueryIDs(ctx, devops.BuildWIQL(workItemType, states))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("type", workItemType).Msg("Error fetching work item ids")
		return nil
	}
	return ids
}

func (f *clientFetcher) FetchDetails(ctx context.Context, ids []workitem.ID, expandRelations bool) []workitem.WorkItem {
	if len(ids) == 0 {
		return nil
	}
	items, err := f.client.GetWorkItems(ctx, ids, expandRelations)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("ids", len(ids)).Msg("Error fetching work item details")
		return nil
	}
	return items
}
