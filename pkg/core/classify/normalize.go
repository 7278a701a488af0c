package classify

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wealth_planner/pkg/models"
)

// RawRecord is one persisted item as decoded from JSON, before any typing.
type RawRecord = map[string]any

// newLocalID synthesises a client-only identifier. Replaced in tests.
var newLocalID = func() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(rand.Uint64(), 36)
}

// TitleCase turns a kind into a label: "other_valuable_item" -> "Other Valuable Item".
func TitleCase(kind string) string {
	words := strings.ReplaceAll(strings.TrimSpace(kind), "_", " ")
	// Casers carry state, so one per call keeps this safe for concurrent use.
	return cases.Title(language.English).String(words)
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize converts raw records into canonical items, preserving order.
// It never rejects a record: unknown kinds pass through with a capital
// payload and invalid numbers are treated as absent.
func Normalize(records []RawRecord) []models.BalanceSheetItem {
	items := make([]models.BalanceSheetItem, 0, len(records))
	for _, rec := range records {
		items = append(items, decodeRecord(rec))
	}
	return items
}

// NormalizeItems applies the same defaulting to already-typed items.
// Running it on its own output is a no-op.
func NormalizeItems(items []models.BalanceSheetItem) []models.BalanceSheetItem {
	out := make([]models.BalanceSheetItem, len(items))
	for i, item := range items {
		item.Kind = CanonicalKind(models.Kind(strings.TrimSpace(string(item.Kind))))
		item.Description = defaultDescription(item.Description, item.Kind)
		item.Currency = strings.TrimSpace(item.Currency)
		if item.LocalID == "" {
			item.LocalID = newLocalID()
		}
		if item.Data == nil {
			item.Data = emptyPayload(item.Kind)
		}
		out[i] = item
	}
	return out
}

func defaultDescription(desc string, kind models.Kind) string {
	if strings.TrimSpace(desc) == "" {
		return TitleCase(string(kind))
	}
	return desc
}

func emptyPayload(kind models.Kind) models.ItemData {
	info, _ := Lookup(kind)
	switch info.Payload {
	case PayloadLoan:
		return models.LoanData{}
	case PayloadIncome:
		return models.CashFlowData{Key: "income", Flow: models.CashFlow{Frequency: models.FrequencyUnknown, NetGross: models.NetGrossUnknown}}
	case PayloadPension:
		return models.CashFlowData{Key: "pension", Flow: models.CashFlow{Frequency: models.FrequencyUnknown, NetGross: models.NetGrossUnknown}}
	default:
		return models.CapitalData{}
	}
}

func decodeRecord(rec RawRecord) models.BalanceSheetItem {
	kind := CanonicalKind(models.Kind(toString(rec["kind"])))

	item := models.BalanceSheetItem{
		ItemIdentity: models.ItemIdentity{
			ID:      toString(rec["id"]),
			LocalID: toString(rec["localId"]),
		},
		Kind: kind,
	}

	desc, _ := rec["description"].(string)
	item.Description = defaultDescription(desc, kind)

	// Falsy currency is omitted, never stored as "".
	if cur, ok := rec["currency"].(string); ok {
		item.Currency = strings.TrimSpace(cur)
	}

	ite := asMap(rec["ite"])
	if ite == nil {
		ite = asMap(rec["itemData"])
	}
	item.Data, item.Extra = decodePayload(kind, ite)

	if item.LocalID == "" {
		item.LocalID = newLocalID()
	}
	return item
}

// decodePayload builds the ItemData variant for kind and returns the keys
// it did not consume.
func decodePayload(kind models.Kind, ite map[string]any) (models.ItemData, map[string]any) {
	consumed := make(map[string]bool)
	take := func(key string) any {
		v, ok := ite[key]
		if ok {
			consumed[key] = true
		}
		return v
	}

	var data models.ItemData
	info, _ := Lookup(kind)
	switch info.Payload {
	case PayloadLoan:
		loanRec := asMap(take("loan"))
		if loanRec == nil {
			// Flat legacy layout: balance sits directly in ite.
			loanRec = map[string]any{
				"balance":      take("balance"),
				"interestRate": take("interestRate"),
				"repayment":    take("repayment"),
			}
		}
		loan := models.Loan{
			Balance:             toInt64Ptr(loanRec["balance"]),
			InterestRatePercent: toFloat64Ptr(loanRec["interestRate"]),
			Repayment:           ParseCashFlow(loanRec["repayment"]),
		}
		if loan.Balance == nil {
			loan.Balance = firstPresent(take("investmentValue"), take("value"), take("propertyValue"))
		}
		data = models.LoanData{Loan: loan}

	case PayloadIncome, PayloadPension:
		key := string(info.Payload)
		flow := ParseCashFlow(take(key))
		if flow == nil {
			flow = ParseCashFlow(ite)
			if flow == nil {
				flow = ParseCashFlow(map[string]any{})
			}
			for _, k := range []string{"periodicAmount", "amount", "frequency", "netGross"} {
				take(k)
			}
		}
		data = models.CashFlowData{Key: key, Flow: *flow}

	default:
		data = models.CapitalData{
			InvestmentValue: toInt64Ptr(take("investmentValue")),
			Value:           toInt64Ptr(take("value")),
			PropertyValue:   toInt64Ptr(take("propertyValue")),
			Rent:            ParseCashFlow(take("rent")),
		}
	}

	var extra map[string]any
	for k, v := range ite {
		if consumed[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return data, extra
}

func firstPresent(values ...any) *int64 {
	for _, v := range values {
		if p := toInt64Ptr(v); p != nil {
			return p
		}
	}
	return nil
}
