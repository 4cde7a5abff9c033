package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devops-report/internal/stats"
	"devops-report/internal/visuals"
	"devops-report/internal/workitem"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Fixed messages returned in place of a report when a stage yields nothing usable.
const (
	SentinelNoWorkItems   = "No work items found. Please check your project setup and permissions."
	SentinelNoDetails     = "Failed to fetch work item details. Please check your permissions and API access."
	SentinelSummaryFailed = "Unable to generate status report."
)

// Orchestrator drives fetch -> build -> summarize for one report request at a time.
// It holds no per-request state, so a single value can serve concurrent requests.
type Orchestrator struct {
	fetcher    Fetcher
	summarizer Summarizer
	settings   Settings
	now        func() time.Time
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for due-date risk flags.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator over the given collaborators.
func New(fetcher Fetcher, summarizer Summarizer, settings Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:    fetcher,
		summarizer: summarizer,
		settings:   settings,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Strategy returns the configured default strategy.
func (o *Orchestrator) Strategy() Strategy {
	return o.settings.Strategy
}

// Run produces a report with the configured strategy. It always returns text:
// either the summarizer's report or one of the sentinel messages.
func (o *Orchestrator) Run(ctx context.Context) string {
	return o.RunStrategy(ctx, o.settings.Strategy)
}

// RunStrategy produces a report for an explicit strategy.
func (o *Orchestrator) RunStrategy(ctx context.Context, strategy Strategy) string {
	start := time.Now()
	logger := log.With().
		Str("request_id", uuid.NewString()).
		Str("strategy", strategy.Name).
		Logger()
	ctx = logger.WithContext(ctx)

	outcome, text := o.run(ctx, strategy)

	reportsTotal.WithLabelValues(strategy.Name, outcome).Inc()
	reportDuration.WithLabelValues(strategy.Name).Observe(time.Since(start).Seconds())
	logger.Info().Str("outcome", outcome).Dur("elapsed", time.Since(start)).Msg("Report request finished")

	return text
}

func (o *Orchestrator) run(ctx context.Context, strategy Strategy) (string, string) {
	logger := zerolog.Ctx(ctx)

	if err := strategy.Validate(); err != nil {
		logger.Error().Err(err).Msg("Invalid report strategy")
		return OutcomeSummaryFailed, SentinelSummaryFailed
	}

	// 1. Identifiers, one query per type.
	logger.Info().Strs("types", strategy.Types).Msg("Fetching work items...")
	ids := make([][]workitem.ID, len(strategy.Types))
	var idGroup errgroup.Group
	for i, typ := range strategy.Types {
		idGroup.Go(func() error {
			ids[i] = o.fetcher.FetchIDs(ctx, typ, strategy.States)
			return nil
		})
	}
	_ = idGroup.Wait()

	if countIDs(ids) == 0 {
		return OutcomeNoWorkItems, SentinelNoWorkItems
	}

	// 2. Details, one batch call per non-empty group.
	groups := make([][]workitem.WorkItem, len(strategy.Types))
	var detailGroup errgroup.Group
	for i, typ := range strategy.Types {
		if len(ids[i]) == 0 {
			continue
		}
		detailGroup.Go(func() error {
			groups[i] = withType(o.fetcher.FetchDetails(ctx, ids[i], strategy.ExpandRelations), typ)
			itemsFetched.WithLabelValues(typ).Add(float64(len(groups[i])))
			return nil
		})
	}
	_ = detailGroup.Wait()

	var fetched []workitem.WorkItem
	for _, grp := range groups {
		fetched = append(fetched, grp...)
	}
	if len(fetched) == 0 {
		return OutcomeNoDetails, SentinelNoDetails
	}

	// 3. Arrange.
	var structure any = fetched
	items := fetched
	var hierarchy *workitem.Hierarchy
	if strategy.Shape == ShapeHierarchy {
		logger.Info().Msg("Building hierarchy...")
		hierarchy = workitem.Build(groups[0], groups[1], groups[2])
		structure = hierarchy
		items = hierarchy.Items()
		counts := hierarchy.Counts()
		logger.Debug().
			Int("epics", counts.Epics).
			Int("stories", counts.UserStories).
			Int("tasks", counts.Tasks).
			Int("dropped", len(fetched)-len(items)).
			Msg("Hierarchy built")
	}

	// 4. Prompt.
	digest := stats.BuildDigest(items, hierarchy, o.now(), o.settings.RiskHorizon)
	prompt, err := BuildPrompt(strategy, structure, digest)
	if err != nil {
		logger.Error().Err(err).Msg("Error building report prompt")
		return OutcomeSummaryFailed, SentinelSummaryFailed
	}

	// 5. Summarize.
	logger.Info().Msg("Generating status report...")
	text, err := o.summarizer.Summarize(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Msg("Error generating status report")
		return OutcomeSummaryFailed, SentinelSummaryFailed
	}
	if strings.TrimSpace(text) == "" {
		logger.Error().Msg("Summarizer returned an empty report")
		return OutcomeSummaryFailed, SentinelSummaryFailed
	}

	if o.settings.EnableMermaidCharts && hierarchy != nil {
		if chart := visuals.GenerateHierarchyChart(hierarchy); chart != "" {
			text = fmt.Sprintf("%s\n\n## Hierarchy Chart\n\n%s\n", strings.TrimRight(text, "\n"), chart)
		}
	}

	return OutcomeGenerated, text
}

func countIDs(groups [][]workitem.ID) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}

// withType returns a copy of items with the work item type filled in where the
// record came back without it.
func withType(items []workitem.WorkItem, typ string) []workitem.WorkItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]workitem.WorkItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Type == "" {
			out[i].Type = typ
		}
	}
	return out
}
