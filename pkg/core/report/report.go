// Package report renders projection results for people: Markdown and HTML
// for the advisor UI, an aligned table for the terminal, and an XLSX
// workbook for clients who want the year-by-year series.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/models"
)

// DefaultCurrency is used when a report names none or an unknown one.
const DefaultCurrency = money.GBP

// Report is one projection run ready for rendering.
type Report struct {
	Title       string
	Currency    string
	Assumptions projection.Assumptions
	Rows        []models.ProjectionRow
	Totals      *models.Totals // nil renders without a totals section
}

// New builds a report with the default currency.
func New(title string, a projection.Assumptions, rows []models.ProjectionRow, totals *models.Totals) *Report {
	return &Report{
		Title:       title,
		Currency:    DefaultCurrency,
		Assumptions: a.Sanitized(),
		Rows:        rows,
		Totals:      totals,
	}
}

// FormatAmount renders v in the report currency, rounded to its minor unit.
func (r *Report) FormatAmount(v float64) string {
	cur := money.GetCurrency(strings.ToUpper(r.Currency))
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func kindLabel(kind models.Kind) string {
	info, _ := classify.Lookup(kind)
	return info.Label
}

func rowName(row models.ProjectionRow) string {
	if row.Description != "" {
		return row.Description
	}
	return kindLabel(row.Kind)
}

func modeLabel(mode models.PropertyMode) string {
	if mode == "" || mode == models.ModeNone {
		return ""
	}
	return string(mode)
}

// categoryOrder lists bucket keys in a stable, reader-friendly order.
func categoryOrder(t *models.Totals) []models.Category {
	rank := map[models.Category]int{
		models.CategoryAsset:    0,
		models.CategoryProperty: 1,
		models.CategoryPension:  2,
		models.CategoryIncome:   3,
		models.CategoryLoan:     4,
		models.CategoryOther:    5,
	}
	out := make([]models.Category, 0, len(t.ByCategory))
	for c := range t.ByCategory {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i] < out[j]
		}
	})
	return out
}

func (r *Report) futureHeading() string {
	return fmt.Sprintf("In %d years", r.Assumptions.Years)
}

func (r *Report) assumptionLine() string {
	a := r.Assumptions
	terms := "nominal"
	if a.RealTerms {
		terms = "real"
	}
	return fmt.Sprintf("%d years, growth %.2f%%, inflation %.2f%%, %s terms",
		a.Years, a.GrowthRatePercent, a.InflationRatePercent, terms)
}
