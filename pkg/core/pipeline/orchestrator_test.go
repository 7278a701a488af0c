package pipeline_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"wealth_planner/pkg/core/assumption"
	"wealth_planner/pkg/core/pipeline"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/core/store"
	"wealth_planner/pkg/models"
)

// MockStore is an in-memory ItemStore.
type MockStore struct {
	sheets map[string][]models.BalanceSheetItem
}

func (m *MockStore) Load(ctx context.Context, team, client string) ([]models.BalanceSheetItem, error) {
	items, ok := m.sheets[team+"/"+client]
	if !ok {
		return nil, store.ErrNotFound
	}
	return items, nil
}

func (m *MockStore) Save(ctx context.Context, team, client string, items []models.BalanceSheetItem) error {
	m.sheets[team+"/"+client] = items
	return nil
}

func newSet() *assumption.ScenarioSet {
	set := assumption.NewScenarioSet("c1", projection.Assumptions{Years: 10, GrowthRatePercent: 5})
	_ = set.AddScenario(&assumption.Scenario{
		Name:        "crash",
		Assumptions: projection.Assumptions{Years: 10, GrowthRatePercent: -5},
	})
	_ = set.AddScenario(&assumption.Scenario{
		Name:        "austerity",
		Assumptions: projection.Assumptions{Years: 10, GrowthRatePercent: 5},
		Highlight:   map[string]bool{"asset": false},
	})
	return set
}

func TestRunForClient(t *testing.T) {
	ms := &MockStore{sheets: map[string][]models.BalanceSheetItem{}}
	_ = ms.Save(context.Background(), "t1", "c1", []models.BalanceSheetItem{
		{Kind: "isa", Data: models.CapitalData{InvestmentValue: models.Int64Ptr(1000)}},
	})

	orch := pipeline.NewOrchestrator(ms, nil)
	results, err := orch.RunForClient(context.Background(), "t1", "c1", newSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	order := []string{"base", "austerity", "crash"}
	for i, name := range order {
		if results[i].Scenario != name {
			t.Errorf("position %d: expected %s, got %s", i, name, results[i].Scenario)
		}
	}

	base, austerity, crash := results[0], results[1], results[2]
	if !(crash.Totals.FutureSum < base.Totals.FutureSum) {
		t.Errorf("crash should end lower than base: %.2f vs %.2f", crash.Totals.FutureSum, base.Totals.FutureSum)
	}
	if austerity.Totals.FutureSum != 0 {
		t.Errorf("excluded assets should leave nothing, got %.2f", austerity.Totals.FutureSum)
	}
}

func TestRunForClient_NotFound(t *testing.T) {
	orch := pipeline.NewOrchestrator(&MockStore{sheets: map[string][]models.BalanceSheetItem{}}, nil)

	_, err := orch.RunForClient(context.Background(), "t", "missing", newSet())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestRunScenarios_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := pipeline.NewOrchestrator(nil, projection.NewEngine())
	if _, err := orch.RunScenarios(ctx, nil, newSet()); err == nil {
		t.Error("expected error for cancelled context")
	}
	if _, err := orch.RunScenarios(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil set")
	}
}

// countingEngine records how many projections ran.
type countingEngine struct {
	calls atomic.Int32
}

func (c *countingEngine) Project(items []models.BalanceSheetItem, a projection.Assumptions) []models.ProjectionRow {
	c.calls.Add(1)
	return nil
}

func TestRunScenarios_BadScenarioStartsNothing(t *testing.T) {
	set := newSet()
	set.Scenarios["zz-broken"] = nil

	engine := &countingEngine{}
	orch := pipeline.NewOrchestrator(nil, engine)
	if _, err := orch.RunScenarios(context.Background(), nil, set); err == nil {
		t.Fatal("expected error for an empty scenario")
	}
	if n := engine.calls.Load(); n != 0 {
		t.Errorf("expected no projections before the set is resolved, got %d", n)
	}
}
