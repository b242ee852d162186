package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
)

// listRow is one table line and the record it opens, if any.
type listRow struct {
	cells table.Row
	id    string
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PIPETRACK"))
	s.WriteString("\n")
	s.WriteString(m.renderSummary())
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderSummary() string {
	stats := m.tr.Stats()
	return fmt.Sprintf("%s across %d deal(s), avg %s  (%s since last upload)",
		report.FormatAmount(stats.TotalValue),
		stats.ActiveDeals,
		report.FormatAmount(int64(math.Round(stats.AverageDealSize))),
		report.FormatChange(stats.ChangeFromLastUpload.TotalValue))
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	columns, rows := m.tableData()
	if len(rows) == 0 {
		return helpStyle.Render("Nothing here yet.")
	}

	cells := make([]table.Row, len(rows))
	for i, r := range rows {
		cells[i] = r.cells
	}

	height := m.height - 12
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(cells),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func (m Model) tableData() ([]table.Column, []listRow) {
	switch m.tab {
	case TabPipeline:
		return m.pipelineTable()
	case TabWindow:
		return m.windowTable()
	case TabInitiatives:
		return m.initiativesTable()
	case TabActions:
		return m.actionsTable()
	}
	return nil, nil
}

func (m Model) pipelineTable() ([]table.Column, []listRow) {
	columns := []table.Column{
		{Title: "Partner", Width: 16},
		{Title: "Quarter", Width: 10},
		{Title: "Opportunity", Width: 18},
		{Title: "Amount", Width: 12},
		{Title: "Close", Width: 10},
		{Title: "Notes", Width: 6},
	}

	var rows []listRow
	for _, g := range m.tr.Groups() {
		for _, b := range g.Quarters {
			for _, rec := range b.Records {
				rows = append(rows, listRow{
					id: rec.ID,
					cells: table.Row{
						g.Partner,
						b.Label,
						rec.DisplayName(),
						report.FormatAmount(rec.Amount),
						rec.CloseDate.Format("2006-01-02"),
						noteMark(m.tr.NotesForOpportunity(rec.ID)),
					},
				})
			}
		}
	}
	return columns, rows
}

func (m Model) windowTable() ([]table.Column, []listRow) {
	wt := m.tr.Window()
	columns := []table.Column{{Title: "Partner", Width: 16}, {Title: "Deals", Width: 6}}
	for _, label := range wt.Labels() {
		columns = append(columns, table.Column{Title: label, Width: 12})
	}
	columns = append(columns, table.Column{Title: "Total", Width: 12})

	line := func(r report.WindowRow) listRow {
		cells := table.Row{r.Partner, fmt.Sprintf("%d", r.Opportunities)}
		for _, a := range r.Amounts {
			cells = append(cells, report.FormatAmount(a))
		}
		return listRow{cells: append(cells, report.FormatAmount(r.Total))}
	}

	var rows []listRow
	for _, r := range wt.Rows {
		rows = append(rows, line(r))
	}
	if len(rows) > 0 {
		rows = append(rows, line(wt.Totals))
	}
	return columns, rows
}

func (m Model) initiativesTable() ([]table.Column, []listRow) {
	columns := []table.Column{
		{Title: "Quarter", Width: 8},
		{Title: "Partner", Width: 16},
		{Title: "Project", Width: 24},
		{Title: "HPE Owner", Width: 14},
		{Title: "Notes", Width: 6},
	}

	var rows []listRow
	for _, ini := range m.tr.Initiatives() {
		rows = append(rows, listRow{
			id: ini.ID,
			cells: table.Row{
				string(ini.TargetQuarter),
				ini.Partner,
				models.Truncate(ini.Project, 21),
				ini.HPEOwner,
				noteMark(m.tr.NotesForInitiative(ini.ID)),
			},
		})
	}
	return columns, rows
}

func (m Model) actionsTable() ([]table.Column, []listRow) {
	columns := []table.Column{
		{Title: "Partner", Width: 16},
		{Title: "Type", Width: 12},
		{Title: "Record", Width: 20},
		{Title: "Action", Width: 36},
	}

	var rows []listRow
	for _, it := range m.tr.ActionItems() {
		rows = append(rows, listRow{
			id: it.Note.ParentID(),
			cells: table.Row{
				it.PartnerName,
				string(it.Kind),
				models.Truncate(it.Title(), 17),
				models.Truncate(strings.Join(strings.Fields(it.Note.Content), " "), 33),
			},
		})
	}
	return columns, rows
}

// noteMark is the note count with a "!" when any note needs action.
func noteMark(notes []models.Note) string {
	if len(notes) == 0 {
		return ""
	}
	for _, n := range notes {
		if n.HasAction {
			return fmt.Sprintf("%d!", len(notes))
		}
	}
	return fmt.Sprintf("%d", len(notes))
}

func (m Model) renderListHelp() string {
	return helpStyle.Render("↑/↓: navigate • tab: switch view • enter: notes • r: reload • q: quit")
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		_, rows := m.tableData()
		if m.selectedRow < len(rows)-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "enter":
		if id := m.getSelectedID(); id != "" {
			m.selectedID = id
			m.viewMode = ViewDetail
		}
	}
	return m, nil
}

func (m Model) getSelectedID() string {
	_, rows := m.tableData()
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return ""
	}
	return rows[m.selectedRow].id
}
