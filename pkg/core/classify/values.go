package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"wealth_planner/pkg/models"
)

// toFloat coerces a decoded JSON value into a finite float.
// Numbers and numeric strings are accepted; everything else is rejected.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toInt64Ptr returns nil for absent or non-numeric values so the
// authoritative-value priority can fall through to the next field.
func toInt64Ptr(v any) *int64 {
	f, ok := toFloat(v)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if !ok || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	i := int64(math.Round(f))
	return &i
}

func toFloat64Ptr(v any) *float64 {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// toString renders ids that may arrive as numbers.
func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) && s >= math.MinInt64 && s < math.MaxInt64 {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// ParseCashFlow reads a CashFlow from a loosely typed value.
// periodicAmount wins over the legacy "amount" key. Returns nil when v is
// not an object.
func ParseCashFlow(v any) *models.CashFlow {
	switch typed := v.(type) {
	case models.CashFlow:
		return &typed
	case *models.CashFlow:
		if typed == nil {
			return nil
		}
		cp := *typed
		return &cp
	}

	m := asMap(v)
	if m == nil {
		return nil
	}
	cf := &models.CashFlow{
		Frequency: models.FrequencyUnknown,
		NetGross:  models.NetGrossUnknown,
	}
	if amount := toInt64Ptr(m["periodicAmount"]); amount != nil {
		cf.PeriodicAmount = amount
	} else {
		cf.PeriodicAmount = toInt64Ptr(m["amount"])
	}
	if freq := toString(m["frequency"]); freq != "" {
		cf.Frequency = models.Frequency(strings.ToLower(freq))
	}
	if ng := toString(m["netGross"]); ng != "" {
		cf.NetGross = models.NetGross(strings.ToLower(ng))
	}
	return cf
}
