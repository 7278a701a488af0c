package models

// Frequency of a periodic cash flow.
type Frequency string

const (
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySixMonthly Frequency = "six_monthly"
	FrequencyAnnually   Frequency = "annually"
	FrequencyUnknown    Frequency = "unknown"
)

// NetGross marks whether a cash flow is quoted before or after tax.
type NetGross string

const (
	Net             NetGross = "net"
	Gross           NetGross = "gross"
	NetGrossUnknown NetGross = "unknown"
)

// CashFlow is a periodic amount. A nil PeriodicAmount means "not yet provided".
type CashFlow struct {
	PeriodicAmount *int64    `json:"periodicAmount"`
	Frequency      Frequency `json:"frequency"`
	NetGross       NetGross  `json:"netGross"`
}

// =============================================================================
// ITEM DATA (tagged union)
// =============================================================================

// ItemData is the kind-dependent payload of a BalanceSheetItem.
// Implementations: CapitalData, LoanData, CashFlowData.
type ItemData interface {
	// writeTo merges the payload into the persisted "ite" object.
	writeTo(ite map[string]any)
}

// CapitalData backs asset and property kinds.
type CapitalData struct {
	InvestmentValue *int64
	Value           *int64
	PropertyValue   *int64

	// Rent is the rental income used when a property is projected in rent mode.
	Rent *CashFlow
}

func (d CapitalData) writeTo(ite map[string]any) {
	if d.InvestmentValue != nil {
		ite["investmentValue"] = *d.InvestmentValue
	}
	if d.Value != nil {
		ite["value"] = *d.Value
	}
	if d.PropertyValue != nil {
		ite["propertyValue"] = *d.PropertyValue
	}
	if d.Rent != nil {
		ite["rent"] = *d.Rent
	}
}

// Loan is the nested loan sub-record.
type Loan struct {
	Balance             *int64    `json:"balance"`
	InterestRatePercent *float64  `json:"interestRate,omitempty"`
	Repayment           *CashFlow `json:"repayment,omitempty"`
}

// LoanData backs loan kinds.
type LoanData struct {
	Loan Loan
}

func (d LoanData) writeTo(ite map[string]any) {
	ite["loan"] = d.Loan
}

// CashFlowData backs income and pension kinds. Key is the persisted
// sub-record name ("income" or "pension").
type CashFlowData struct {
	Key  string
	Flow CashFlow
}

func (d CashFlowData) writeTo(ite map[string]any) {
	key := d.Key
	if key == "" {
		key = "income"
	}
	ite[key] = d.Flow
}

// AuthoritativeValue extracts the single monetary value of an item.
// Priority: investmentValue, value, propertyValue, loan balance, else 0.
func AuthoritativeValue(item BalanceSheetItem) int64 {
	switch d := item.Data.(type) {
	case CapitalData:
		return firstOf(d.InvestmentValue, d.Value, d.PropertyValue)
	case *CapitalData:
		if d != nil {
			return firstOf(d.InvestmentValue, d.Value, d.PropertyValue)
		}
	case LoanData:
		return firstOf(d.Loan.Balance)
	case *LoanData:
		if d != nil {
			return firstOf(d.Loan.Balance)
		}
	}
	return 0
}

func firstOf(values ...*int64) int64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Int64Ptr is a helper for building payloads in code and tests.
func Int64Ptr(v int64) *int64 { return &v }

// Float64Ptr is a helper for building payloads in code and tests.
func Float64Ptr(v float64) *float64 { return &v }
