package projection

import (
	"fmt"

	"wealth_planner/pkg/models"
)

// StrategySelector maps a category to the strategy that projects it.
type StrategySelector struct {
	strategies map[models.Category]func() ProjectionStrategy
	fallback   func() ProjectionStrategy
}

// NewStrategySelector creates a selector with the built-in strategies.
// Unrecognised categories compound like assets.
func NewStrategySelector() *StrategySelector {
	growth := func() ProjectionStrategy { return &CompoundGrowthStrategy{} }
	return &StrategySelector{
		strategies: map[models.Category]func() ProjectionStrategy{
			models.CategoryAsset:    growth,
			models.CategoryProperty: growth,
			models.CategoryOther:    growth,
			models.CategoryLoan:     func() ProjectionStrategy { return &AmortizingLoanStrategy{} },
			models.CategoryIncome:   func() ProjectionStrategy { return &CashFlowStrategy{} },
			models.CategoryPension:  func() ProjectionStrategy { return &CashFlowStrategy{} },
		},
		fallback: growth,
	}
}

// For returns the strategy for category.
func (s *StrategySelector) For(category models.Category) ProjectionStrategy {
	if ctor, ok := s.strategies[category]; ok {
		return ctor()
	}
	return s.fallback()
}

// Register replaces the strategy for a category.
func (s *StrategySelector) Register(category models.Category, ctor func() ProjectionStrategy) error {
	if ctor == nil {
		return fmt.Errorf("nil strategy constructor for category '%s'", category)
	}
	s.strategies[category] = ctor
	return nil
}
