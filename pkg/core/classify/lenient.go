package classify

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"wealth_planner/pkg/models"
)

// NormalizeJSON decodes a persisted item array and normalizes it.
// Input that is not an array (null, object, scalar) yields an empty slice.
// Malformed JSON is repaired before giving up; the returned slice is never
// nil, so callers can always render a result even when err is set.
func NormalizeJSON(data []byte) ([]models.BalanceSheetItem, error) {
	var decoded any
	if err := SmartDecode(data, &decoded); err != nil {
		return []models.BalanceSheetItem{}, err
	}
	return Normalize(RecordsFrom(decoded)), nil
}

// RecordsFrom keeps the object entries of a decoded array and drops the rest.
func RecordsFrom(decoded any) []RawRecord {
	arr, ok := decoded.([]any)
	if !ok {
		return nil
	}
	records := make([]RawRecord, 0, len(arr))
	for _, entry := range arr {
		if rec, ok := entry.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}

// SmartDecode tries progressively more lenient parsers:
// 1. Standard JSON
// 2. JSON repair (trailing commas, single quotes, unclosed brackets)
// 3. Hjson (comments, unquoted keys)
func SmartDecode(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if err := json.Unmarshal(trimmed, out); err == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(string(trimmed)); err == nil {
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return nil
		}
	}

	var loose any
	if err := hjson.Unmarshal(trimmed, &loose); err == nil {
		// Round-trip through encoding/json so numbers decode as float64.
		if canonical, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(canonical, out); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("failed to decode balance sheet payload: all parsing strategies failed")
}
