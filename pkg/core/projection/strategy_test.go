package projection_test

import (
	"math"
	"testing"

	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/models"
)

func TestCompoundGrowthStrategy(t *testing.T) {
	s := &projection.CompoundGrowthStrategy{}

	series := s.Series(projection.Context{Base: 100, Years: 1, Rate: 0.05})
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	expected := 105.0
	if series[1] != expected {
		t.Errorf("expected %.2f, got %.2f", expected, series[1])
	}
}

func TestCompoundGrowthStrategy_FloorsAtTotalLoss(t *testing.T) {
	s := &projection.CompoundGrowthStrategy{}

	series := s.Series(projection.Context{Base: 100, Years: 3, Rate: -1.5})
	for i, v := range series[1:] {
		if v != 0 {
			t.Errorf("year %d: expected 0 after total loss, got %.2f", i+1, v)
		}
	}
}

func TestCompoundGrowthStrategy_NonFiniteRate(t *testing.T) {
	s := &projection.CompoundGrowthStrategy{}

	series := s.Series(projection.Context{Base: 100, Years: 2, Rate: math.NaN()})
	if series[2] != 100 {
		t.Errorf("non-finite rate should have no effect, got %.2f", series[2])
	}
}

func TestAmortizingLoanStrategy(t *testing.T) {
	s := &projection.AmortizingLoanStrategy{}

	tests := []struct {
		name     string
		ctx      projection.Context
		expected float64
	}{
		{"no repayment holds flat", projection.Context{Base: 1000, Years: 5, Rate: 0.2}, 1000},
		{"interest then repayment", projection.Context{Base: 1000, Years: 1, Rate: 0.1, AnnualRepayment: 300}, 800},
		{"repayment below interest clamps", projection.Context{Base: 1000, Years: 1, Rate: 0.5, AnnualRepayment: 100}, 1000},
		{"overpayment floors at zero", projection.Context{Base: 1000, Years: 1, AnnualRepayment: 5000}, 0},
		{"zero balance stays zero", projection.Context{Base: 0, Years: 3, AnnualRepayment: 100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := s.Series(tt.ctx)
			got := series[len(series)-1]
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestStrategySelector(t *testing.T) {
	sel := projection.NewStrategySelector()

	tests := map[models.Category]string{
		models.CategoryAsset:    "CompoundGrowth",
		models.CategoryProperty: "CompoundGrowth",
		models.CategoryLoan:     "AmortizingLoan",
		models.CategoryIncome:   "CashFlow",
		models.CategoryPension:  "CashFlow",
		models.CategoryOther:    "CompoundGrowth",
		models.Category("???"):  "CompoundGrowth",
	}
	for category, expected := range tests {
		if got := sel.For(category).Name(); got != expected {
			t.Errorf("%s: expected %s, got %s", category, expected, got)
		}
	}

	if err := sel.Register(models.CategoryAsset, nil); err == nil {
		t.Error("expected error registering nil constructor")
	}
	if err := sel.Register(models.CategoryAsset, func() projection.ProjectionStrategy { return &projection.CashFlowStrategy{} }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sel.For(models.CategoryAsset).Name(); got != "CashFlow" {
		t.Errorf("expected registered strategy, got %s", got)
	}
}
