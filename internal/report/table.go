package report

import (
	"fmt"
	"io"

	"campcheck/internal/checker"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Table renders one row per qualifying range, parks without availability
// get a single row with their totals.
func Table(w io.Writer, results []checker.ParkResult) bool {
	t := NewTable(w)
	t.AppendHeader(table.Row{"Park", "Sites", "Site", "Nights", "Start", "End"})

	hasAvailability := false
	for _, result := range results {
		park := fmt.Sprintf("%s (%d)", result.Name, result.ParkID)
		sites := fmt.Sprintf("%d / %d", result.Report.Available, result.Report.Total)

		if result.Report.Available == 0 {
			t.AppendRow(table.Row{park, sites, "-", "-", "-", "-"})
			continue
		}
		hasAvailability = true

		for _, site := range sortedSites(result.Report.Ranges) {
			for _, r := range result.Report.Ranges[site] {
				t.AppendRow(table.Row{park, sites, site, r.Nights(), r.Start, r.End})
			}
		}
		t.AppendSeparator()
	}

	t.Render()
	return hasAvailability
}
