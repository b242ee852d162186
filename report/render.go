// ABOUTME: Text rendering of pipeline reports
// ABOUTME: Formats grouped deals, the quarter window and stats as terminal tables
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/harperreed/pipetrack/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var dollars = money.NewFormatter(0, ".", ",", "$", "$1")

// FormatAmount renders whole dollars, e.g. "$1,234".
func FormatAmount(amount int64) string {
	return dollars.Format(amount)
}

// FormatChange renders a signed delta with an arrow, e.g. "▲ $300".
func FormatChange(delta int64) string {
	switch {
	case delta > 0:
		return "▲ " + FormatAmount(delta)
	case delta < 0:
		return "▼ " + FormatAmount(-delta)
	}
	return "-"
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// RenderGroups prints one line per deal, naming partner and quarter on the first line of
// each group. notesFor may be nil.
func RenderGroups(w io.Writer, groups []PartnerGroup, notesFor func(string) []models.Note) {
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(w, "No pipeline data.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Partner", "Quarter", "Opportunity", "Amount", "Close Date", "Stage", "Notes"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})

	for _, g := range groups {
		for qi, b := range g.Quarters {
			quarterCell := b.Label + " (" + FormatAmount(b.Total) + ")"
			if notesFor != nil {
				if s := SummarizeNotes(b.Records, notesFor); s.Count > 0 {
					quarterCell += " " + noteBadge(s)
				}
			}
			for i, rec := range b.Records {
				partnerCell, qCell := "", ""
				if qi == 0 && i == 0 {
					partnerCell = g.Partner + " (" + FormatAmount(g.Total) + ")"
				}
				if i == 0 {
					qCell = quarterCell
				}
				noteCell := ""
				if notesFor != nil {
					if s := SummarizeNotes([]models.Opportunity{rec}, notesFor); s.Count > 0 {
						noteCell = noteBadge(s)
					}
				}
				t.AppendRow(table.Row{
					partnerCell,
					qCell,
					rec.DisplayName(),
					FormatAmount(rec.Amount),
					rec.CloseDate.Format("1/2/2006"),
					rec.Stage,
					noteCell,
				})
			}
		}
		t.AppendSeparator()
	}
	t.Render()
}

func noteBadge(s NoteSummary) string {
	label := strconv.Itoa(s.Count) + " note"
	if s.Count != 1 {
		label += "s"
	}
	if s.HasAction {
		label += " !"
	}
	return "(" + label + ")"
}

// RenderWindow prints the four-quarter partner table with a totals footer.
func RenderWindow(w io.Writer, wt WindowTable) {
	if len(wt.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "No pipeline data.")
		return
	}

	header := table.Row{"Partner", "Opps"}
	for _, l := range wt.Labels() {
		header = append(header, l)
	}
	header = append(header, "Total")

	t := newTable(w)
	t.AppendHeader(header)
	for _, r := range wt.Rows {
		t.AppendRow(windowLine(r))
	}
	t.AppendFooter(windowLine(wt.Totals))
	t.Render()
}

func windowLine(r WindowRow) table.Row {
	line := table.Row{r.Partner, r.Opportunities}
	for _, a := range r.Amounts {
		line = append(line, FormatAmount(a))
	}
	return append(line, FormatAmount(r.Total))
}

// RenderStats prints totals with their change since the previous upload.
func RenderStats(w io.Writer, s models.PipelineStats) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Value", "Change"})
	t.AppendRow(table.Row{"Total pipeline", FormatAmount(s.TotalValue), FormatChange(s.ChangeFromLastUpload.TotalValue)})
	t.AppendRow(table.Row{"Active deals", s.ActiveDeals, fmt.Sprintf("%+d", s.ChangeFromLastUpload.ActiveDeals)})
	t.AppendRow(table.Row{
		"Average deal",
		FormatAmount(roundAmount(s.AverageDealSize)),
		FormatChange(roundAmount(s.ChangeFromLastUpload.AverageDealSize)),
	})
	t.Render()
}

func roundAmount(f float64) int64 {
	return int64(math.Round(f))
}
