package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"devops-report/internal/devops"
	"devops-report/internal/stats"
	"devops-report/internal/workitem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupStrategy(t *testing.T) {
	s, err := LookupStrategy("Active-Stories")
	require.NoError(t, err)
	assert.Equal(t, ShapeFlat, s.Shape)
	assert.Equal(t, []string{"Active"}, s.States.Include)

	s, err = LookupStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyOpenHierarchy, s.Name)

	_, err = LookupStrategy("weekly")
	assert.ErrorContains(t, err, "unknown report strategy")
}

func TestStrategyValidate(t *testing.T) {
	assert.NoError(t, ActiveStories().Validate())
	assert.NoError(t, OpenHierarchy().Validate())

	noExpand := OpenHierarchy()
	noExpand.ExpandRelations = false
	assert.ErrorContains(t, noExpand.Validate(), "expand_relations")

	reordered := OpenHierarchy()
	reordered.Types = []string{workitem.TypeTask, workitem.TypeUserStory, workitem.TypeEpic}
	assert.ErrorContains(t, reordered.Validate(), "in that order")

	twoTiers := OpenHierarchy()
	twoTiers.Types = []string{workitem.TypeEpic, workitem.TypeUserStory}
	assert.Error(t, twoTiers.Validate())

	assert.Error(t, Strategy{Name: "x", Shape: ShapeFlat}.Validate())
	assert.Error(t, Strategy{Name: "x", Shape: "tree", Types: []string{"Epic"}}.Validate())
}

func TestBuildPrompt(t *testing.T) {
	items := []workitem.WorkItem{{ID: 7, Title: "Login page", State: "Active"}}
	digest := stats.Digest{Totals: map[string]int{"User Story": 1}}

	prompt, err := BuildPrompt(ActiveStories(), items, digest)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Generate a status report based on the following work items (User Story)"))
	assert.Contains(t, prompt, `"title": "Login page"`)
	assert.Contains(t, prompt, `"User Story": 1`)
	assert.Contains(t, prompt, "risks or blockers")
	assert.True(t, strings.HasSuffix(prompt, "Format the report in markdown."))
}

type stubClient struct {
	idsErr     error
	detailsErr error
}

func (c stubClient) QueryIDs(context.Context, string) ([]workitem.ID, error) {
	if c.idsErr != nil {
		return nil, c.idsErr
	}
	return []workitem.ID{1}, nil
}

func (c stubClient) GetWorkItems(_ context.Context, ids []workitem.ID, _ bool) ([]workitem.WorkItem, error) {
	if c.detailsErr != nil {
		return nil, c.detailsErr
	}
	return []workitem.WorkItem{{ID: ids[0]}}, nil
}

func TestClientFetcher_SwallowsErrors(t *testing.T) {
	ctx := context.Background()

	ok := NewFetcher(stubClient{})
	assert.Equal(t, []workitem.ID{1}, ok.FetchIDs(ctx, "Epic", devops.StateFilter{}))
	assert.Len(t, ok.FetchDetails(ctx, []workitem.ID{1}, true), 1)
	assert.Empty(t, ok.FetchDetails(ctx, nil, true))

	failing := NewFetcher(stubClient{idsErr: errors.New("dial tcp"), detailsErr: errors.New("401")})
	assert.Empty(t, failing.FetchIDs(ctx, "Epic", devops.StateFilter{}))
	assert.Empty(t, failing.FetchDetails(ctx, []workitem.ID{1}, true))
}
