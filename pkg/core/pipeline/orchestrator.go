// Package pipeline runs a client's balance sheet through every scenario of a
// scenario set: load, project, aggregate.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"wealth_planner/pkg/core/assumption"
	"wealth_planner/pkg/core/calc"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/core/store"
	"wealth_planner/pkg/models"
)

// maxParallel bounds concurrent scenario runs per request.
const maxParallel = 4

// Result is the outcome of one scenario.
type Result struct {
	Scenario    string                 `json:"scenario"`
	Label       string                 `json:"label,omitempty"`
	Assumptions projection.Assumptions `json:"assumptions"`
	Rows        []models.ProjectionRow `json:"rows"`
	Totals      *models.Totals         `json:"totals"`
}

// Orchestrator wires the item store to the projection engine.
type Orchestrator struct {
	store  store.ItemStore
	engine projection.Projector
}

// NewOrchestrator creates an orchestrator. A nil engine uses the default.
func NewOrchestrator(s store.ItemStore, engine projection.Projector) *Orchestrator {
	if engine == nil {
		engine = projection.NewEngine()
	}
	return &Orchestrator{store: s, engine: engine}
}

// RunForClient loads the client's items and runs every scenario.
func (o *Orchestrator) RunForClient(ctx context.Context, teamID, clientID string, set *assumption.ScenarioSet) ([]Result, error) {
	if o.store == nil {
		return nil, fmt.Errorf("item store not configured")
	}
	items, err := o.store.Load(ctx, teamID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for %s/%s: %w", teamID, clientID, err)
	}
	return o.RunScenarios(ctx, items, set)
}

// RunScenarios projects items under each scenario. Results follow
// set.Names(): base first, then alphabetical.
func (o *Orchestrator) RunScenarios(ctx context.Context, items []models.BalanceSheetItem, set *assumption.ScenarioSet) ([]Result, error) {
	if set == nil {
		return nil, fmt.Errorf("scenario set is nil")
	}

	names := set.Names()
	scenarios := make([]*assumption.Scenario, len(names))
	for i, name := range names {
		s, err := set.GetScenario(name)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("scenario '%s' is empty", name)
		}
		scenarios[i] = s
	}
	results := make([]Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, name := range names {
		s := scenarios[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a := s.Assumptions.Sanitized()
			rows := o.engine.Project(items, a)
			results[i] = Result{
				Scenario:    name,
				Label:       s.Label,
				Assumptions: a,
				Rows:        rows,
				Totals:      calc.Aggregate(rows, s.AggregateParams()),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scenario run cancelled: %w", err)
	}
	return results, nil
}
