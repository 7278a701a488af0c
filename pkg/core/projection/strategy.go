// Package projection projects balance sheet items forward year by year.
// Each category is driven by a pluggable ProjectionStrategy; the engine
// picks one per item through the StrategySelector.
package projection

import (
	"math"
)

// =============================================================================
// PROJECTION STRATEGY INTERFACE
// =============================================================================

// Context provides the inputs a strategy needs for one item.
type Context struct {
	Base  float64 // Value at year 0
	Years int     // Horizon
	Rate  float64 // Annual rate as a decimal, e.g. 0.025 for 2.5%

	// AnnualRepayment is the yearly amount paid off a loan.
	AnnualRepayment float64
}

// ProjectionStrategy produces the value of an item for years 0..Years.
// The returned slice always has Years+1 entries and finite values.
type ProjectionStrategy interface {
	Name() string
	Series(ctx Context) []float64
}

// =============================================================================
// BUILT-IN STRATEGIES
// =============================================================================

// CompoundGrowthStrategy compounds the base value annually.
// Formula: Value(t) = Base * (1 + Rate)^t
// Rates below -100% are floored at -100% so a value decays to zero instead
// of flipping sign.
type CompoundGrowthStrategy struct{}

func (s *CompoundGrowthStrategy) Name() string { return "CompoundGrowth" }

func (s *CompoundGrowthStrategy) Series(ctx Context) []float64 {
	factor := 1 + math.Max(finiteOrZero(ctx.Rate), -1)
	series := make([]float64, horizon(ctx)+1)
	for t := range series {
		series[t] = finiteOrZero(ctx.Base * math.Pow(factor, float64(t)))
	}
	return series
}

// AmortizingLoanStrategy runs a balance down by its annual repayment after
// charging interest. Without a repayment the balance is held flat.
// Formula: Balance(t) = Balance(t-1) * (1 + Rate) - AnnualRepayment,
// clamped to [0, Balance(t-1)] so a loan never grows.
type AmortizingLoanStrategy struct{}

func (s *AmortizingLoanStrategy) Name() string { return "AmortizingLoan" }

func (s *AmortizingLoanStrategy) Series(ctx Context) []float64 {
	series := make([]float64, horizon(ctx)+1)
	series[0] = finiteOrZero(ctx.Base)
	for t := 1; t < len(series); t++ {
		prev := series[t-1]
		if prev <= 0 || !(ctx.AnnualRepayment > 0) || math.IsInf(ctx.AnnualRepayment, 0) {
			series[t] = prev
			continue
		}
		next := prev*(1+math.Max(finiteOrZero(ctx.Rate), 0)) - ctx.AnnualRepayment
		series[t] = math.Max(0, math.Min(finiteOrZero(next), prev))
	}
	return series
}

// CashFlowStrategy reports an annualised income stream. Nominal amounts are
// held level unless an escalation rate is supplied.
type CashFlowStrategy struct{}

func (s *CashFlowStrategy) Name() string { return "CashFlow" }

func (s *CashFlowStrategy) Series(ctx Context) []float64 {
	return (&CompoundGrowthStrategy{}).Series(ctx)
}

func horizon(ctx Context) int {
	if ctx.Years < 0 {
		return 0
	}
	return ctx.Years
}
