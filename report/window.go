package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/harperreed/pipetrack/fiscal"
	"github.com/harperreed/pipetrack/models"
)

// WindowRow is one partner line of the four-quarter table. Amounts lines up with
// WindowTable.Quarters.
type WindowRow struct {
	Partner       string  `json:"partner"`
	Opportunities int     `json:"opportunities"`
	Amounts       []int64 `json:"amounts"`
	Total         int64   `json:"total"`
}

// WindowTable is the pipeline by partner over the current rolling fiscal window.
type WindowTable struct {
	Quarters []fiscal.Quarter `json:"quarters"`
	Rows     []WindowRow      `json:"rows"`
	Totals   WindowRow        `json:"totals"`
}

// Labels returns the quarter headings.
func (t WindowTable) Labels() []string {
	labels := make([]string, len(t.Quarters))
	for i, q := range t.Quarters {
		labels[i] = q.Label()
	}
	return labels
}

// BuildWindow places every record in its partner row. Opportunities and Total count all
// of a partner's records; a quarter amount only counts records closing inside it.
func BuildWindow(records []models.Opportunity, partners []models.Partner, today time.Time) WindowTable {
	quarters := fiscal.Window(today)
	idx := NewPartnerIndex(partners)

	rows := make(map[string]*WindowRow)
	for _, name := range idx.Names() {
		rows[name] = &WindowRow{Partner: name, Amounts: make([]int64, len(quarters))}
	}

	for _, rec := range records {
		r := rows[idx.Resolve(rec.CoSellingWith)]
		r.Opportunities++
		r.Total += rec.Amount
		for i, q := range quarters {
			if q.Contains(rec.CloseDate) {
				r.Amounts[i] += rec.Amount
				break
			}
		}
	}

	table := WindowTable{
		Quarters: quarters,
		Totals:   WindowRow{Partner: "Total", Amounts: make([]int64, len(quarters))},
	}
	for _, name := range idx.Names() {
		r := rows[name]
		if r.Opportunities == 0 {
			continue
		}
		table.Rows = append(table.Rows, *r)
		table.Totals.Opportunities += r.Opportunities
		table.Totals.Total += r.Total
		for i, a := range r.Amounts {
			table.Totals.Amounts[i] += a
		}
	}

	slices.SortStableFunc(table.Rows, func(x, y WindowRow) int {
		return cmp.Compare(y.Total, x.Total)
	})
	return table
}
