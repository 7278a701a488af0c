package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	projectionSheet = "Projection"
	totalsSheet     = "Totals"
)

// WriteXLSX writes a workbook with one row per item (year-by-year series in
// columns) and, when totals are present, a totals sheet.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", projectionSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []any{"Item", "Type", "Category", "Mode"}
	for year := 0; year <= r.Assumptions.Years; year++ {
		header = append(header, fmt.Sprintf("Year %d", year))
	}
	if err := f.SetSheetRow(projectionSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range r.Rows {
		values := []any{rowName(row), kindLabel(row.Kind), string(row.Category), modeLabel(row.Mode)}
		for _, v := range row.Series {
			values = append(values, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(projectionSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if r.Totals != nil {
		if err := r.writeTotals(f); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (r *Report) writeTotals(f *excelize.File) error {
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("failed to add totals sheet: %w", err)
	}

	rows := [][]any{{"Category", "Today", r.futureHeading()}}
	for _, c := range categoryOrder(r.Totals) {
		b := r.Totals.ByCategory[c]
		rows = append(rows, []any{string(c), b.Current, b.Future})
	}
	rows = append(rows,
		[]any{"Net worth", r.Totals.CurrentSum, r.Totals.FutureSum},
		[]any{"Net worth in today's money", nil, r.Totals.FutureSumReal},
	)

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(totalsSheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write totals row %d: %w", i, err)
		}
	}
	return nil
}
