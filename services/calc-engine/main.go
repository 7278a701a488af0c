package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"wealth_planner/pkg/core/calc"
	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/core/validate"
	"wealth_planner/pkg/models"
)

// Input is the payload accepted on --data: raw items plus assumptions.
type Input struct {
	Items       json.RawMessage        `json:"items"`
	Assumptions projection.Assumptions `json:"assumptions"`
	Highlight   map[string]bool        `json:"highlight,omitempty"`
}

type Output struct {
	Rows   []models.ProjectionRow `json:"rows"`
	Totals *models.Totals         `json:"totals"`
}

func main() {
	mode := flag.String("mode", "calculate", "Mode: check or calculate")
	dataStr := flag.String("data", "", "JSON data payload")
	flag.Parse()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	var in Input
	if err := classify.SmartDecode([]byte(*dataStr), &in); err != nil {
		fmt.Printf("Error unmarshaling data: %v\n", err)
		os.Exit(1)
	}
	items, err := classify.NormalizeJSON(in.Items)
	if err != nil {
		fmt.Printf("Error reading items: %v\n", err)
		os.Exit(1)
	}

	switch *mode {
	case "check":
		issues := runChecks(items, in.Assumptions)
		for _, issue := range issues {
			fmt.Println(issue)
		}
		if validate.HasWarnings(issues) {
			os.Exit(2)
		}
		fmt.Printf("Success: %d items classified\n", len(items))
	case "calculate":
		if err := runCalculations(items, in); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

// runChecks lists items and overrides that will be projected with degraded
// information.
func runChecks(items []models.BalanceSheetItem, a projection.Assumptions) []validate.Issue {
	issues := validate.Items(items)
	return append(issues, validate.Assumptions(items, a)...)
}

func runCalculations(items []models.BalanceSheetItem, in Input) error {
	a := in.Assumptions.Sanitized()
	rows := projection.NewEngine().Project(items, a)
	totals := calc.Aggregate(rows, &calc.AggregateParams{
		Highlight:            in.Highlight,
		Years:                a.Years,
		InflationRatePercent: a.InflationRatePercent,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(Output{Rows: rows, Totals: totals})
}
