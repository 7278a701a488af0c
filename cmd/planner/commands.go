package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wealth_planner/pkg/core/assumption"
	"wealth_planner/pkg/core/calc"
	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/core/config"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/core/report"
)

// =============================================================================
// ROOT
// =============================================================================

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Project a client balance sheet forward",
		Long: `planner reads a balance sheet (a JSON array of items, leniently parsed),
projects every item over a horizon and prints the rows and net-worth totals.

Assumptions come from config/planner.yaml, an optional scenario file
(YAML, JSON or HJSON) and finally the command-line flags.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	root.AddCommand(newProjectCmd(), newKindsCmd(), newYearsToCmd())
	return root
}

// =============================================================================
// PROJECT
// =============================================================================

type projectOptions struct {
	itemsPath    string
	scenarioPath string
	configPath   string
	years        int
	growth       float64
	inflation    float64
	realTerms    bool
	format       string
	outPath      string
	currency     string
	exclude      []string
	adjustment   float64
}

func newProjectCmd() *cobra.Command {
	opts := &projectOptions{}

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a balance sheet and print rows and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.itemsPath, "items", "i", "", "balance sheet JSON file (required)")
	f.StringVarP(&opts.scenarioPath, "scenario", "s", "", "scenario file (.yaml, .json, .hjson)")
	f.StringVar(&opts.configPath, "config", config.DefaultPath, "service config supplying default assumptions")
	f.IntVarP(&opts.years, "years", "y", 0, "projection horizon in years")
	f.Float64VarP(&opts.growth, "growth", "g", 0, "annual growth rate, percent")
	f.Float64Var(&opts.inflation, "inflation", 0, "annual inflation rate, percent")
	f.BoolVar(&opts.realTerms, "real", false, "report future values in today's money")
	f.StringVarP(&opts.format, "format", "f", "table", "output format: table, markdown, html, xlsx")
	f.StringVarP(&opts.outPath, "out", "o", "", "write output to a file instead of stdout (required for xlsx)")
	f.StringVar(&opts.currency, "currency", report.DefaultCurrency, "ISO currency code for formatting")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "item keys or categories to leave out of the totals")
	f.Float64Var(&opts.adjustment, "adjustment", 0, "flat amount added to both totals")
	cmd.MarkFlagRequired("items")

	return cmd
}

func runProject(cmd *cobra.Command, opts *projectOptions) error {
	data, err := os.ReadFile(opts.itemsPath)
	if err != nil {
		return fmt.Errorf("failed to read items: %w", err)
	}
	items, err := classify.NormalizeJSON(data)
	if err != nil {
		return err
	}

	scenario, err := loadScenario(opts)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, scenario)

	a := scenario.Assumptions.Sanitized()
	rows := projection.NewEngine().Project(items, a)
	totals := calc.Aggregate(rows, scenario.AggregateParams())

	rep := report.New(fmt.Sprintf("Projection: %s", opts.itemsPath), a, rows, totals)
	rep.Currency = opts.currency

	out := cmd.OutOrStdout()
	if opts.outPath != "" {
		file, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		out = file
	}
	return render(out, rep, opts.format, opts.outPath != "")
}

// loadScenario starts from the configured defaults and layers the scenario
// file on top when one is given.
func loadScenario(opts *projectOptions) (*assumption.Scenario, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.scenarioPath == "" {
		return &assumption.Scenario{Name: assumption.BaseScenario, Assumptions: cfg.Assumptions}, nil
	}
	return assumption.LoadFile(opts.scenarioPath)
}

// applyFlags overrides scenario values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, opts *projectOptions, s *assumption.Scenario) {
	f := cmd.Flags()
	if f.Changed("years") {
		s.Assumptions.Years = opts.years
	}
	if f.Changed("growth") {
		s.Assumptions.GrowthRatePercent = opts.growth
	}
	if f.Changed("inflation") {
		s.Assumptions.InflationRatePercent = opts.inflation
	}
	if f.Changed("real") {
		s.Assumptions.RealTerms = opts.realTerms
	}
	if f.Changed("adjustment") {
		s.Adjustment = opts.adjustment
	}
	if len(opts.exclude) > 0 {
		highlight := make(map[string]bool, len(s.Highlight)+len(opts.exclude))
		for k, v := range s.Highlight {
			highlight[k] = v
		}
		for _, key := range opts.exclude {
			highlight[key] = false
		}
		s.Highlight = highlight
	}
}

func render(w io.Writer, rep *report.Report, format string, toFile bool) error {
	switch format {
	case "table", "":
		_, err := io.WriteString(w, rep.Table())
		return err
	case "markdown", "md":
		_, err := io.WriteString(w, rep.Markdown())
		return err
	case "html":
		html, err := rep.HTML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case "xlsx":
		if !toFile {
			return fmt.Errorf("xlsx output needs --out")
		}
		return rep.WriteXLSX(w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// =============================================================================
// KINDS
// =============================================================================

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List every item kind and its category",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, info := range classify.CanonicalKinds() {
				fmt.Fprintf(out, "%-10s %-26s %s\n", info.Category, info.Kind, info.Label)
			}
		},
	}
}

// =============================================================================
// YEARS-TO
// =============================================================================

func newYearsToCmd() *cobra.Command {
	var (
		dob    string
		age    int
		asOfIn string
	)

	cmd := &cobra.Command{
		Use:   "years-to",
		Short: "Whole years until a person reaches an age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := time.Now()
			if asOfIn != "" {
				parsed, ok := calc.ParseDate(asOfIn)
				if !ok {
					return fmt.Errorf("invalid --as-of date %q", asOfIn)
				}
				asOf = parsed
			}

			years := calc.YearsToTarget(dob, age, asOf)
			if years == nil {
				return fmt.Errorf("invalid date of birth %q", dob)
			}
			fmt.Fprintln(cmd.OutOrStdout(), *years)
			return nil
		},
	}

	cmd.Flags().StringVar(&dob, "dob", "", "date of birth (2006-01-02 or 02/01/2006)")
	cmd.Flags().IntVar(&age, "age", 67, "target age")
	cmd.Flags().StringVar(&asOfIn, "as-of", "", "reference date, defaults to today")
	cmd.MarkFlagRequired("dob")

	return cmd
}
