package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// Markdown renders the report as GitHub-flavoured Markdown.
func (r *Report) Markdown() string {
	var b strings.Builder

	if r.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", cellEscaper.Replace(r.Title))
	}
	fmt.Fprintf(&b, "_%s_\n\n", r.assumptionLine())

	fmt.Fprintf(&b, "| Item | Type | Category | Today | %s | Mode |\n", r.futureHeading())
	b.WriteString("|---|---|---|---:|---:|---|\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			cellEscaper.Replace(rowName(row)),
			cellEscaper.Replace(kindLabel(row.Kind)),
			row.Category,
			r.FormatAmount(row.Current),
			r.FormatAmount(row.Future),
			modeLabel(row.Mode),
		)
	}

	if r.Totals == nil {
		return b.String()
	}

	b.WriteString("\n## Totals\n\n")
	fmt.Fprintf(&b, "| Category | Today | %s |\n", r.futureHeading())
	b.WriteString("|---|---:|---:|\n")
	for _, c := range categoryOrder(r.Totals) {
		bucket := r.Totals.ByCategory[c]
		fmt.Fprintf(&b, "| %s | %s | %s |\n", c, r.FormatAmount(bucket.Current), r.FormatAmount(bucket.Future))
	}
	fmt.Fprintf(&b, "| **Net worth** | **%s** | **%s** |\n", r.FormatAmount(r.Totals.CurrentSum), r.FormatAmount(r.Totals.FutureSum))
	fmt.Fprintf(&b, "| Net worth in today's money | | %s |\n", r.FormatAmount(r.Totals.FutureSumReal))

	return b.String()
}

// HTML renders the Markdown report to an HTML fragment.
func (r *Report) HTML() (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return buf.String(), nil
}

// Table renders the rows as a bordered terminal table.
func (r *Report) Table() string {
	rows := make([][]string, 0, len(r.Rows)+2)
	for _, row := range r.Rows {
		rows = append(rows, []string{
			rowName(row),
			string(row.Category),
			r.FormatAmount(row.Current),
			r.FormatAmount(row.Future),
			modeLabel(row.Mode),
		})
	}
	if r.Totals != nil {
		rows = append(rows,
			[]string{"Net worth", "", r.FormatAmount(r.Totals.CurrentSum), r.FormatAmount(r.Totals.FutureSum), ""},
			[]string{"Today's money", "", "", r.FormatAmount(r.Totals.FutureSumReal), ""},
		)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Item", "Category", "Today", r.futureHeading(), "Mode").
		Rows(rows...)

	return r.assumptionLine() + "\n" + t.Render() + "\n"
}
