package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	actionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DETAIL VIEW"))
	s.WriteString("\n\n")

	var notes []models.Note
	if opp, ok := m.tr.Opportunity(m.selectedID); ok {
		s.WriteString(m.renderOpportunityDetail(opp))
		notes = m.tr.NotesForOpportunity(opp.ID)
	} else if ini, ok := m.tr.Initiative(m.selectedID); ok {
		s.WriteString(m.renderInitiativeDetail(ini))
		notes = m.tr.NotesForInitiative(ini.ID)
	} else {
		s.WriteString(errorStyle.Render("Record no longer exists."))
	}

	s.WriteString("\n")
	s.WriteString(titleStyle.Render(fmt.Sprintf("Notes (%d)", len(notes))))
	s.WriteString("\n")
	if len(notes) == 0 {
		s.WriteString(helpStyle.Render("No notes."))
		s.WriteString("\n")
	}
	for _, n := range notes {
		marker := "  "
		if n.HasAction {
			marker = actionStyle.Render("! ")
		}
		s.WriteString(fmt.Sprintf("%s%s  %s\n", marker, n.UpdatedAt.Format("2006-01-02"), n.Content))
	}

	s.WriteString(m.renderDetailHelp())
	return s.String()
}

func (m Model) renderOpportunityDetail(o models.Opportunity) string {
	var s strings.Builder
	s.WriteString(m.renderField("Opportunity", o.OpportunityName))
	s.WriteString(m.renderField("Amount", report.FormatAmount(o.Amount)))
	s.WriteString(m.renderField("Close Date", o.CloseDate.Format("2006-01-02")))
	s.WriteString(m.renderField("Co-Selling With", o.CoSellingWith))
	s.WriteString(m.renderField("Owner", o.OpportunityOwner))
	s.WriteString(m.renderField("Stage", o.Stage))
	s.WriteString(m.renderField("Account", o.AccountName))
	s.WriteString(m.renderField("Status", o.CurrentStatus))
	return s.String()
}

func (m Model) renderInitiativeDetail(ini models.Initiative) string {
	var s strings.Builder
	s.WriteString(m.renderField("Project", ini.Project))
	s.WriteString(m.renderField("Partner", ini.Partner))
	s.WriteString(m.renderField("Target Quarter", string(ini.TargetQuarter)))
	s.WriteString(m.renderField("HPE Owner", ini.HPEOwner))
	s.WriteString(m.renderField("Partner Owner", ini.PartnerOwner))
	s.WriteString(m.renderField("HPE Resource", ini.HPEResource))
	s.WriteString(m.renderField("Partner Resource", ini.PartnerResource))
	s.WriteString(m.renderField("Role", ini.Role))
	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		return ""
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp() string {
	return helpStyle.Render("esc: back • r: reload • q: quit")
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewList
		m.selectedID = ""
	}
	return m, nil
}
