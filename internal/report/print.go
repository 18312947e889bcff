package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/pages"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	noticeColor  = color.New(color.FgYellow)
	insightColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

// printOutput writes one page: title, active filters, notice, insights and
// table.
func printOutput(w io.Writer, out pages.Output) {
	titleColor.Fprintf(w, "\n=== %s ===\n", out.Title)
	if f := activeFilters(out.Selection); f != "" {
		fmt.Fprintf(w, "Filtros: %s\n", f)
	}
	if out.Notice != "" {
		noticeColor.Fprintln(w, out.Notice)
	}
	for _, s := range out.Insights {
		insightColor.Fprintf(w, "• %s\n", s)
	}
	if out.Table != nil && len(out.Table.Rows) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader(out.Table.Columns)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.AppendBulk(out.Table.Rows)
		table.Render()
	}
}

func printError(w io.Writer, id string, err error) {
	errorColor.Fprintf(w, "\n=== %s ===\n%v\n", id, err)
}

func activeFilters(sel filter.Selection) string {
	var parts []string
	for _, d := range filter.Order() {
		if d == filter.CohortMulti {
			if len(sel.Cohorts) > 0 {
				parts = append(parts, d.Label()+": "+strings.Join(sel.Cohorts, ", "))
			}
			continue
		}
		if sel.IsSet(d) {
			parts = append(parts, d.Label()+": "+sel.Values[d])
		}
	}
	return strings.Join(parts, " | ")
}
