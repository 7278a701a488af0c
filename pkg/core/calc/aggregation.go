package calc

import (
	"math"

	"github.com/shopspring/decimal"

	"wealth_planner/pkg/models"
)

// AggregateParams controls which rows count toward the headline totals.
type AggregateParams struct {
	// Highlight is keyed by item key or category name. An item entry wins
	// over its category entry; rows with no entry are included.
	Highlight map[string]bool `json:"highlight,omitempty"`

	Years                int     `json:"years"`
	InflationRatePercent float64 `json:"inflationRatePercent"`

	// Adjustment is a flat one-off amount added to both sums.
	Adjustment float64 `json:"adjustment,omitempty"`
}

// Included reports whether row passes the highlight selection.
func (p *AggregateParams) Included(row models.ProjectionRow) bool {
	if p == nil || p.Highlight == nil {
		return true
	}
	if on, ok := p.Highlight[row.ItemRef]; ok && row.ItemRef != "" {
		return on
	}
	if on, ok := p.Highlight[string(row.Category)]; ok {
		return on
	}
	return true
}

// categoryOn reports whether a category-level highlight entry leaves c in.
func (p *AggregateParams) categoryOn(c models.Category) bool {
	if p == nil || p.Highlight == nil {
		return true
	}
	on, ok := p.Highlight[string(c)]
	return !ok || on
}

type bucketSum struct {
	current decimal.Decimal
	future  decimal.Decimal
}

func (b *bucketSum) add(current, future float64) {
	b.current = b.current.Add(dec(current))
	b.future = b.future.Add(dec(future))
}

// Aggregate sums projection rows into headline totals.
//
// Loans subtract from the sums; every other category adds. Rows excluded by
// the highlight selection are skipped entirely and never create a bucket.
// Property income (rent, sale proceeds) is booked to the income bucket, and
// a sold property contributes nothing to the property bucket's future. That
// income follows the highlight entry for the income category, if any.
//
// A nil params means "no computation requested" and returns nil, which is
// distinct from the zero Totals returned for an empty row set.
func Aggregate(rows []models.ProjectionRow, params *AggregateParams) *models.Totals {
	if params == nil {
		return nil
	}

	buckets := make(map[models.Category]*bucketSum)
	bucket := func(c models.Category) *bucketSum {
		b, ok := buckets[c]
		if !ok {
			b = &bucketSum{}
			buckets[c] = b
		}
		return b
	}

	currentSum := decimal.Zero
	futureSum := decimal.Zero
	incomeOn := params.categoryOn(models.CategoryIncome)

	for _, row := range rows {
		if !params.Included(row) {
			continue
		}

		current, future := finite(row.Current), finite(row.Future)

		switch {
		case row.Category == models.CategoryLoan:
			bucket(row.Category).add(current, future)
			currentSum = currentSum.Sub(dec(current))
			futureSum = futureSum.Sub(dec(future))

		case row.Category == models.CategoryProperty && row.Mode == models.ModeSell:
			bucket(row.Category).add(current, 0)
			currentSum = currentSum.Add(dec(current))
			if incomeOn {
				bucket(models.CategoryIncome).add(0, finite(row.IncomeFuture))
				futureSum = futureSum.Add(dec(finite(row.IncomeFuture)))
			}

		case row.Category == models.CategoryProperty && row.Mode == models.ModeRent:
			bucket(row.Category).add(current, future)
			currentSum = currentSum.Add(dec(current))
			futureSum = futureSum.Add(dec(future))
			if incomeOn {
				bucket(models.CategoryIncome).add(finite(row.IncomeCurrent), finite(row.IncomeFuture))
				currentSum = currentSum.Add(dec(finite(row.IncomeCurrent)))
				futureSum = futureSum.Add(dec(finite(row.IncomeFuture)))
			}

		default:
			bucket(row.Category).add(current, future)
			currentSum = currentSum.Add(dec(current))
			futureSum = futureSum.Add(dec(future))
		}
	}

	adjustment := dec(finite(params.Adjustment))
	currentSum = currentSum.Add(adjustment)
	futureSum = futureSum.Add(adjustment)

	totals := &models.Totals{
		CurrentSum: currentSum.InexactFloat64(),
		FutureSum:  futureSum.InexactFloat64(),
		ByCategory: make(map[models.Category]models.Bucket, len(buckets)),
	}
	for c, b := range buckets {
		totals.ByCategory[c] = models.Bucket{
			Current: b.current.InexactFloat64(),
			Future:  b.future.InexactFloat64(),
		}
	}
	totals.FutureSumReal = RealValue(totals.FutureSum, params.InflationRatePercent, params.Years)

	return totals
}

// RealValue discounts a nominal amount back to today's money.
// Non-finite or impossible inflation (<= -100%) leaves the amount unchanged.
func RealValue(nominal, inflationPercent float64, years int) float64 {
	inflation := finite(inflationPercent) / 100
	if years <= 0 || inflation <= -1 {
		return nominal
	}
	return finite(nominal / math.Pow(1+inflation, float64(years)))
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
