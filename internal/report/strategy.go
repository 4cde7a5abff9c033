package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"devops-report/internal/devops"
	"devops-report/internal/workitem"
)

// Shape selects how fetched items are arranged before summarization.
type Shape string

const (
	// ShapeFlat passes the fetched records through as a list.
	ShapeFlat Shape = "flat"
	// ShapeHierarchy rebuilds Epic -> User Story -> Task from Parent relations.
	ShapeHierarchy Shape = "hierarchy"
)

// Strategy describes which work items a report covers and how they are arranged.
type Strategy struct {
	Name   string             `yaml:"name" json:"name"`
	Shape  Shape              `yaml:"shape" json:"shape"`
	Types  []string           `yaml:"types" json:"types"`
	States devops.StateFilter `yaml:"states" json:"states"`
	// ExpandRelations requests relation links with the details. Required for
	// ShapeHierarchy.
	ExpandRelations bool `yaml:"expand_relations" json:"expandRelations"`
}

// Preset names.
const (
	StrategyActiveStories = "active-stories"
	StrategyOpenHierarchy = "open-hierarchy"
)

// hierarchyTypes are the tiers a hierarchy is built from, parent tier first.
var hierarchyTypes = []string{workitem.TypeEpic, workitem.TypeUserStory, workitem.TypeTask}

// ActiveStories reports on active user stories as a flat list.
func ActiveStories() Strategy {
	return Strategy{
		Name:   StrategyActiveStories,
		Shape:  ShapeFlat,
		Types:  []string{workitem.TypeUserStory},
		States: devops.StateFilter{Include: []string{"Active"}},
	}
}

// OpenHierarchy reports on every Epic, User Story and Task that is not closed,
// arranged as a hierarchy.
func OpenHierarchy() Strategy {
	return Strategy{
		Name:            StrategyOpenHierarchy,
		Shape:           ShapeHierarchy,
		Types:           []string{workitem.TypeEpic, workitem.TypeUserStory, workitem.TypeTask},
		States:          devops.StateFilter{Exclude: []string{"Closed"}},
		ExpandRelations: true,
	}
}

// LookupStrategy returns the preset registered under name.
func LookupStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyActiveStories:
		return ActiveStories(), nil
	case StrategyOpenHierarchy, "":
		return OpenHierarchy(), nil
	default:
		return Strategy{}, fmt.Errorf("unknown report strategy %q. Available strategies: %s, %s", name, StrategyActiveStories, StrategyOpenHierarchy)
	}
}

// Validate checks that the strategy can be executed.
func (s Strategy) Validate() error {
	switch s.Shape {
	case ShapeFlat:
		if len(s.Types) == 0 {
			return fmt.Errorf("strategy %q: at least one work item type is required", s.Name)
		}
	case ShapeHierarchy:
		if !slices.Equal(s.Types, hierarchyTypes) {
			return fmt.Errorf("strategy %q: hierarchy types must be %q in that order, got %q", s.Name, hierarchyTypes, s.Types)
		}
		if !s.ExpandRelations {
			return fmt.Errorf("strategy %q: hierarchy requires expand_relations", s.Name)
		}
	default:
		return fmt.Errorf("strategy %q: unknown shape %q", s.Name, s.Shape)
	}
	return nil
}

// Settings holds the report options owned by configuration.
type Settings struct {
	Strategy            Strategy
	RiskHorizon         time.Duration
	EnableMermaidCharts bool
}

// DefaultSettings returns the three-tier hierarchy report with a one week risk horizon.
func DefaultSettings() Settings {
	return Settings{
		Strategy:    OpenHierarchy(),
		RiskHorizon: 7 * 24 * time.Hour,
	}
}
