// Package classify owns the kind catalog and turns loosely typed balance
// sheet records into canonical models.BalanceSheetItem values.
package classify

import (
	"sort"

	"wealth_planner/pkg/models"
)

// PayloadShape selects which ItemData variant a kind carries.
type PayloadShape string

const (
	PayloadCapital PayloadShape = "capital"
	PayloadLoan    PayloadShape = "loan"
	PayloadIncome  PayloadShape = "income"
	PayloadPension PayloadShape = "pension"
)

// KindInfo is the catalog entry for one canonical kind.
type KindInfo struct {
	Kind     models.Kind     `json:"kind"`
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Payload  PayloadShape    `json:"payload"`
}

// =============================================================================
// KIND CATALOG
// Single source of truth for kind -> category. Shared by the projection
// engine, the totals aggregator and the API's /kinds listing.
// =============================================================================

var catalog = buildCatalog(map[models.Category][]models.Kind{
	models.CategoryAsset: {
		"current_account", "savings_account", "cash_isa", "isa", "lifetime_isa",
		"junior_isa", "gia", "premium_bonds", "investment_bond", "crypto",
		"sipp", "personal_pension", "workplace_pension",
	},
	models.CategoryProperty: {
		"main_residence", "holiday_home", "buy_to_let", "other_valuable_item",
	},
	models.CategoryLoan: {
		"mortgage", "credit_card", "personal_loan", "student_loan", "car_finance", "overdraft",
	},
	models.CategoryIncome: {
		"salary_income", "self_employment_income", "rental_income", "dividend_income", "other_income",
	},
	models.CategoryPension: {
		"state_pension", "annuity_pension", "defined_benefit_pension",
	},
})

// aliases maps legacy kinds to their canonical replacement.
var aliases = map[models.Kind]models.Kind{
	"car": "other_valuable_item",
}

func buildCatalog(byCategory map[models.Category][]models.Kind) map[models.Kind]KindInfo {
	out := make(map[models.Kind]KindInfo)
	for category, kinds := range byCategory {
		for _, kind := range kinds {
			out[kind] = KindInfo{
				Kind:     kind,
				Category: category,
				Label:    TitleCase(string(kind)),
				Payload:  payloadFor(category),
			}
		}
	}
	return out
}

func payloadFor(category models.Category) PayloadShape {
	switch category {
	case models.CategoryLoan:
		return PayloadLoan
	case models.CategoryIncome:
		return PayloadIncome
	case models.CategoryPension:
		return PayloadPension
	default:
		return PayloadCapital
	}
}

// Lookup returns the catalog entry for kind. The second result is false for
// unrecognised kinds, which get the fallback category and a capital payload.
func Lookup(kind models.Kind) (KindInfo, bool) {
	info, ok := catalog[CanonicalKind(kind)]
	if !ok {
		return KindInfo{
			Kind:     kind,
			Category: models.CategoryOther,
			Label:    TitleCase(string(kind)),
			Payload:  PayloadCapital,
		}, false
	}
	return info, true
}

// CategoryOf maps a kind to its projection category.
func CategoryOf(kind models.Kind) models.Category {
	info, _ := Lookup(kind)
	return info.Category
}

// CanonicalKind resolves legacy aliases. Unknown kinds pass through unchanged.
func CanonicalKind(kind models.Kind) models.Kind {
	if target, ok := aliases[kind]; ok {
		return target
	}
	return kind
}

// IsCanonical reports whether kind is in the catalog (aliases are not).
func IsCanonical(kind models.Kind) bool {
	_, ok := catalog[kind]
	return ok
}

// CanonicalKinds lists every catalog entry, ordered by category then kind.
func CanonicalKinds() []KindInfo {
	out := make([]KindInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
