// ABOUTME: Terminal dashboard using the bubbletea framework
// ABOUTME: Read-only tabs over the pipeline, the quarter window, initiatives and action items
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/pipetrack/tracker"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Tab is one of the list views.
type Tab int

const (
	TabPipeline Tab = iota
	TabWindow
	TabInitiatives
	TabActions
)

var tabNames = []string{"Pipeline", "Window", "Initiatives", "Actions"}

// Model is the main bubbletea model
type Model struct {
	tr       *tracker.Tracker
	viewMode ViewMode
	tab      Tab

	selectedRow int
	selectedID  string

	width  int
	height int
	err    error
}

func NewModel(tr *tracker.Tracker) Model {
	return Model{
		tr:       tr,
		viewMode: ViewList,
		tab:      TabPipeline,
		width:    80,
		height:   24,
	}
}

// Run starts the dashboard in the alternate screen and blocks until the user quits.
func Run(tr *tracker.Tracker) error {
	_, err := tea.NewProgram(NewModel(tr), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		// picks up writes made by another pipetrack process
		m.err = m.tr.Reload()
		return m, nil
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	}
	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)
