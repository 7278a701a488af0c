package projection

import (
	"math"

	"wealth_planner/pkg/core/cashflow"
	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/models"
)

// Projector is implemented by Engine and CachedEngine.
type Projector interface {
	Project(items []models.BalanceSheetItem, assumptions Assumptions) []models.ProjectionRow
}

// Engine projects canonical balance sheet items. It holds no per-run state,
// never mutates its inputs and is safe for concurrent use.
type Engine struct {
	selector *StrategySelector
}

// NewEngine creates an engine with the built-in strategies.
func NewEngine() *Engine {
	return &Engine{selector: NewStrategySelector()}
}

// NewEngineWithSelector creates an engine with a custom selector.
func NewEngineWithSelector(selector *StrategySelector) *Engine {
	if selector == nil {
		selector = NewStrategySelector()
	}
	return &Engine{selector: selector}
}

// Project returns one row per item, in input order. A malformed item never
// aborts the run: missing numbers count as 0 and unknown kinds are projected
// under the fallback category.
func (e *Engine) Project(items []models.BalanceSheetItem, assumptions Assumptions) []models.ProjectionRow {
	a := assumptions.Sanitized()
	rows := make([]models.ProjectionRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, e.projectItem(item, a))
	}
	return rows
}

// ProjectItem projects a single item.
func (e *Engine) ProjectItem(item models.BalanceSheetItem, assumptions Assumptions) models.ProjectionRow {
	return e.projectItem(item, assumptions.Sanitized())
}

func (e *Engine) projectItem(item models.BalanceSheetItem, a Assumptions) models.ProjectionRow {
	info, _ := classify.Lookup(item.Kind)

	row := models.ProjectionRow{
		ItemRef:     item.Key(),
		Kind:        item.Kind,
		Description: item.Description,
		Category:    info.Category,
	}

	// -------------------------------------------------------------------------
	// Strategy inputs per category
	// -------------------------------------------------------------------------
	ctx := Context{Years: a.Years}
	switch info.Category {
	case models.CategoryLoan:
		ctx.Base = float64(models.AuthoritativeValue(item))
		if loan, ok := loanOf(item); ok {
			if loan.InterestRatePercent != nil {
				ctx.Rate = finiteOrZero(*loan.InterestRatePercent) / 100
			}
			ctx.AnnualRepayment = cashflow.Annualize(loan.Repayment)
		}

	case models.CategoryIncome, models.CategoryPension:
		ctx.Base = cashflow.Annualize(flowOf(item))
		// Nominal by default; only an item override escalates a stream.
		if rate, ok := a.overrideRate(item); ok {
			ctx.Rate = rate
		}

	default:
		ctx.Base = float64(models.AuthoritativeValue(item))
		ctx.Rate = a.growthRate(item)
	}

	series := e.selector.For(info.Category).Series(ctx)
	if a.RealTerms {
		deflate(series, a.InflationRatePercent/100)
		if info.Category == models.CategoryLoan {
			// Deflation is growth under negative inflation; a debt never grows.
			capRunning(series)
		}
	}

	row.Series = series
	row.Current = series[0]
	row.Future = series[len(series)-1]

	// -------------------------------------------------------------------------
	// Property behaviour: rent / sell / none
	// -------------------------------------------------------------------------
	if info.Category == models.CategoryProperty {
		row.Mode = a.modeFor(item)
		switch row.Mode {
		case models.ModeRent:
			rent := 0.0
			if capital, ok := capitalOf(item); ok {
				rent = cashflow.Annualize(capital.Rent)
			}
			row.IncomeCurrent = rent
			// Rent is indexed to inflation; in real terms it stays level.
			row.IncomeFuture = rent
			if !a.RealTerms {
				row.IncomeFuture = finiteOrZero(rent * compound(a.InflationRatePercent/100, a.Years))
			}
		case models.ModeSell:
			// Liquidation proceeds land in the final year of the horizon.
			row.IncomeFuture = row.Future
		}
	}

	return row
}

// deflate converts a nominal series into today's money in place.
func deflate(series []float64, inflation float64) {
	if inflation <= -1 {
		return
	}
	for t := range series {
		series[t] = finiteOrZero(series[t] / compound(inflation, t))
	}
}

// capRunning clamps each value to at most the one before it.
func capRunning(series []float64) {
	for t := 1; t < len(series); t++ {
		if series[t] > series[t-1] {
			series[t] = series[t-1]
		}
	}
}

func compound(rate float64, years int) float64 {
	return math.Pow(1+rate, float64(years))
}

func capitalOf(item models.BalanceSheetItem) (models.CapitalData, bool) {
	switch d := item.Data.(type) {
	case models.CapitalData:
		return d, true
	case *models.CapitalData:
		if d != nil {
			return *d, true
		}
	}
	return models.CapitalData{}, false
}

func loanOf(item models.BalanceSheetItem) (models.Loan, bool) {
	switch d := item.Data.(type) {
	case models.LoanData:
		return d.Loan, true
	case *models.LoanData:
		if d != nil {
			return d.Loan, true
		}
	}
	return models.Loan{}, false
}

func flowOf(item models.BalanceSheetItem) *models.CashFlow {
	switch d := item.Data.(type) {
	case models.CashFlowData:
		return &d.Flow
	case *models.CashFlowData:
		if d != nil {
			return &d.Flow
		}
	}
	return nil
}
