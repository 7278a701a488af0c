// Package cashflow converts periodic amounts into the annual figures every
// projection works in.
package cashflow

import (
	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/models"
)

// Multiplier returns the number of periods per year for freq.
// Unknown or unrecognised frequencies are treated as already annual.
func Multiplier(freq models.Frequency) float64 {
	switch freq {
	case models.FrequencyWeekly:
		return 52
	case models.FrequencyMonthly:
		return 12
	case models.FrequencyQuarterly:
		return 4
	case models.FrequencySixMonthly:
		return 2
	default:
		return 1
	}
}

// Annualize returns the annual amount of cf. A nil flow or a nil amount is 0.
func Annualize(cf *models.CashFlow) float64 {
	if cf == nil || cf.PeriodicAmount == nil {
		return 0
	}
	return float64(*cf.PeriodicAmount) * Multiplier(cf.Frequency)
}

// AnnualizeRaw annualizes an untyped cash flow object, using
// periodicAmount, then amount, then 0. Non-numeric amounts count as 0.
func AnnualizeRaw(v any) float64 {
	return Annualize(classify.ParseCashFlow(v))
}
