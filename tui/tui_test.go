// ABOUTME: Tests for the terminal dashboard
// ABOUTME: Drives the model with key messages and checks the rendered views
package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/pipetrack/ingest"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/store"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	kv, err := store.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	now := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	tr, err := tracker.Open(kv, tracker.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, err = tr.UploadPipeline([]ingest.Row{
		{{Header: "Opportunity Name", Value: "Renewal"}, {Header: "Amount", Value: "1200"}, {Header: "Close Date", Value: "2025-04-02"}, {Header: "Co-Selling With", Value: "Acme"}},
	})
	require.NoError(t, err)
	return tr
}

func press(m tea.Model, key string) tea.Model {
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next
}

func TestListViewTabs(t *testing.T) {
	tr := setupTracker(t)
	var m tea.Model = NewModel(tr)

	view := m.View()
	assert.Contains(t, view, "PIPETRACK")
	assert.Contains(t, view, "Renewal")
	assert.Contains(t, view, "$1,200")

	m = press(m, "tab")
	assert.Equal(t, TabWindow, m.(Model).tab)
	assert.Contains(t, m.View(), "Q2 FY2025")

	m = press(m, "tab")
	m = press(m, "tab")
	assert.Equal(t, TabActions, m.(Model).tab)
	assert.Contains(t, m.View(), "Nothing here yet.")

	m = press(m, "tab")
	assert.Equal(t, TabPipeline, m.(Model).tab)
}

func TestDetailShowsNotes(t *testing.T) {
	tr := setupTracker(t)
	opp := tr.CurrentPipeline()[0]
	_, err := tr.AddNote(opp.ID, "chase the PO", true, models.NoteOpportunity)
	require.NoError(t, err)

	var m tea.Model = NewModel(tr)
	assert.Contains(t, m.View(), "1!")

	m = press(m, "enter")
	require.Equal(t, ViewDetail, m.(Model).viewMode)
	view := m.View()
	assert.Contains(t, view, "Renewal")
	assert.Contains(t, view, "chase the PO")
	assert.True(t, strings.Contains(view, "Notes (1)"))

	m = press(m, "esc")
	assert.Equal(t, ViewList, m.(Model).viewMode)
}

func TestQuitKey(t *testing.T) {
	tr := setupTracker(t)
	_, cmd := NewModel(tr).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
