// Package validate reports balance-sheet items and assumptions that the
// projection will handle in a degraded way. Nothing here rejects input; the
// engine projects everything regardless. Issues are advisory, for editors
// and import tooling.
package validate

import (
	"fmt"
	"math"

	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/models"
)

// =============================================================================
// ISSUES
// =============================================================================

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue describes one finding against an item or override.
type Issue struct {
	Index    int      `json:"index"` // position in the item list, -1 for assumptions
	ItemRef  string   `json:"itemRef,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: item %d (%s): %s", i.Severity, i.Index, i.Kind, i.Message)
}

// HasWarnings reports whether any issue is a warning.
func HasWarnings(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// =============================================================================
// ITEM CHECKS
// =============================================================================

// maxInterestRatePercent flags rates that are almost certainly typos.
const maxInterestRatePercent = 100

// Items checks each item independently.
func Items(items []models.BalanceSheetItem) []Issue {
	var issues []Issue
	for idx, item := range items {
		add := func(sev Severity, format string, args ...any) {
			issues = append(issues, Issue{
				Index:    idx,
				ItemRef:  item.Key(),
				Kind:     string(item.Kind),
				Severity: sev,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		info, known := classify.Lookup(item.Kind)
		if !known {
			add(SeverityWarning, "unknown kind, projected as %s", models.CategoryOther)
		}

		switch info.Category {
		case models.CategoryIncome, models.CategoryPension:
			checkFlow(flowOf(item), add)
		case models.CategoryLoan:
			checkLoan(item, add)
		default:
			checkCapital(item, add)
		}
	}
	return issues
}

type addFunc func(sev Severity, format string, args ...any)

func checkCapital(item models.BalanceSheetItem, add addFunc) {
	value := models.AuthoritativeValue(item)
	switch {
	case value == 0:
		add(SeverityWarning, "no value, counted as 0")
	case value < 0:
		add(SeverityWarning, "negative value %d", value)
	}

	if capital, ok := capitalOf(item); ok && capital.Rent != nil {
		if classify.CategoryOf(item.Kind) != models.CategoryProperty {
			add(SeverityInfo, "rent is only used for property items")
		}
		checkFlow(capital.Rent, add)
	}
}

func checkLoan(item models.BalanceSheetItem, add addFunc) {
	if models.AuthoritativeValue(item) == 0 {
		add(SeverityWarning, "no balance, counted as 0")
	}
	loan, ok := loanOf(item)
	if !ok {
		return
	}
	if r := loan.InterestRatePercent; r != nil {
		if math.IsNaN(*r) || math.IsInf(*r, 0) || *r < 0 || *r > maxInterestRatePercent {
			add(SeverityWarning, "interest rate %.2f%% is out of range", *r)
		}
	}
	if loan.Repayment == nil {
		add(SeverityInfo, "no repayment, balance held flat")
		return
	}
	checkFlow(loan.Repayment, add)
}

func checkFlow(cf *models.CashFlow, add addFunc) {
	if cf == nil || cf.PeriodicAmount == nil {
		add(SeverityWarning, "no amount, counted as 0")
		return
	}
	if *cf.PeriodicAmount < 0 {
		add(SeverityWarning, "negative amount %d", *cf.PeriodicAmount)
	}
	if cf.Frequency == "" || cf.Frequency == models.FrequencyUnknown {
		add(SeverityInfo, "unknown frequency, treated as annual")
	}
}

// =============================================================================
// ASSUMPTION CHECKS
// =============================================================================

// Assumptions checks overrides against the items they refer to.
func Assumptions(items []models.BalanceSheetItem, a projection.Assumptions) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{Index: -1, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
	}

	if a.Years < 0 || a.Years > projection.MaxYears {
		add("years %d clamped to [0, %d]", a.Years, projection.MaxYears)
	}
	for name, v := range map[string]float64{"growth": a.GrowthRatePercent, "inflation": a.InflationRatePercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			add("%s rate is not a number, treated as 0", name)
		}
	}

	byKey := make(map[string]models.BalanceSheetItem, len(items)*2)
	for _, item := range items {
		for _, key := range []string{item.ID, item.LocalID} {
			if key != "" {
				byKey[key] = item
			}
		}
	}

	for key, mode := range a.ModeOverrides {
		item, ok := byKey[key]
		switch {
		case !ok:
			add("mode override for unknown item %q", key)
		case !mode.Valid():
			add("mode %q for item %q is not none, rent or sell", mode, key)
		case classify.CategoryOf(item.Kind) != models.CategoryProperty:
			add("mode override for non-property item %q is ignored", key)
		}
	}
	for key := range a.AssumptionOverrides {
		if _, ok := byKey[key]; !ok {
			add("growth override for unknown item %q", key)
		}
	}
	return issues
}

// =============================================================================
// HELPERS
// =============================================================================

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
