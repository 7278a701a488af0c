package projection

import (
	"math"

	"wealth_planner/pkg/models"
)

// MaxYears bounds a projection horizon so one request cannot allocate
// unbounded series.
const MaxYears = 100

// ItemAssumption overrides global assumptions for a single item.
type ItemAssumption struct {
	GrowthRatePercent *float64 `json:"growthRatePercent,omitempty" yaml:"growth_rate_percent,omitempty"`
}

// Assumptions defines the drivers for a projection run.
// Override maps are keyed by item key (server id, else local id).
type Assumptions struct {
	Years                int     `json:"years" yaml:"years"`
	GrowthRatePercent    float64 `json:"growthRatePercent" yaml:"growth_rate_percent"`       // % per year, may be negative
	InflationRatePercent float64 `json:"inflationRatePercent" yaml:"inflation_rate_percent"` // % per year

	// RealTerms deflates every future value by cumulative inflation.
	// Nominal figures are the default.
	RealTerms bool `json:"realTerms,omitempty" yaml:"real_terms,omitempty"`

	ModeOverrides       map[string]models.PropertyMode `json:"modeOverrides,omitempty" yaml:"mode_overrides,omitempty"`
	AssumptionOverrides map[string]ItemAssumption      `json:"assumptionOverrides,omitempty" yaml:"assumption_overrides,omitempty"`
}

// Sanitized returns a copy with scalar inputs made safe: non-finite rates
// become 0 (no effect) and years are clamped to [0, MaxYears].
// Override maps are shared, not copied; the engine only reads them.
func (a Assumptions) Sanitized() Assumptions {
	a.GrowthRatePercent = finiteOrZero(a.GrowthRatePercent)
	a.InflationRatePercent = finiteOrZero(a.InflationRatePercent)
	if a.Years < 0 {
		a.Years = 0
	}
	if a.Years > MaxYears {
		a.Years = MaxYears
	}
	return a
}

// growthRate returns the decimal growth rate for item, preferring an
// item-level override over the global rate.
func (a Assumptions) growthRate(item models.BalanceSheetItem) float64 {
	if rate, ok := a.overrideRate(item); ok {
		return rate
	}
	return a.GrowthRatePercent / 100
}

// overrideRate returns the item-level rate when one is set and finite.
func (a Assumptions) overrideRate(item models.BalanceSheetItem) (float64, bool) {
	for _, key := range itemKeys(item) {
		ov, ok := a.AssumptionOverrides[key]
		if !ok || ov.GrowthRatePercent == nil {
			continue
		}
		pct := *ov.GrowthRatePercent
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			return 0, true
		}
		return pct / 100, true
	}
	return 0, false
}

// modeFor resolves the property mode for item, defaulting to none.
func (a Assumptions) modeFor(item models.BalanceSheetItem) models.PropertyMode {
	for _, key := range itemKeys(item) {
		if mode, ok := a.ModeOverrides[key]; ok && mode.Valid() {
			return mode
		}
	}
	return models.ModeNone
}

// itemKeys lists the keys an override may be registered under.
func itemKeys(item models.BalanceSheetItem) []string {
	keys := make([]string, 0, 2)
	if item.ID != "" {
		keys = append(keys, item.ID)
	}
	if item.LocalID != "" {
		keys = append(keys, item.LocalID)
	}
	return keys
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
