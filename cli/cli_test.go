// ABOUTME: Tests for pipetrack CLI commands
// ABOUTME: Runs commands against a temp SQLite store and checks output and state
package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/pipetrack/config"
	"github.com/harperreed/pipetrack/db"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupTestCLI(t *testing.T) *tracker.Tracker {
	t.Helper()
	kv, err := db.OpenKV(filepath.Join(t.TempDir(), "pipetrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	now := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
	tr, err := tracker.Open(kv, tracker.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return tr
}

func setInteractive(t *testing.T, tty bool) {
	t.Helper()
	orig := interactive
	interactive = func() bool { return tty }
	t.Cleanup(func() { interactive = orig })
}

func writePipeline(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	lines := [][]any{
		{"Opportunity Name", "Amount (converted)", "Close Date", "Co-Selling With", "Stage"},
		{"Renewal", 1200, "2025-04-02", "Acme", "Commit"},
		{"Expansion", 800, "2025-08-15", "Globex", "Upside"},
	}
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &line))
	}
	path := filepath.Join(dir, "pipeline.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestPartnerCommands(t *testing.T) {
	tr := setupTestCLI(t)
	var out bytes.Buffer

	require.NoError(t, AddPartnerCommand(tr, &out, []string{"--name", "Acme", "--category", "focus"}))
	assert.Contains(t, out.String(), "✓ Partner added: Acme")
	assert.Error(t, AddPartnerCommand(tr, &out, []string{}))
	assert.Error(t, AddPartnerCommand(tr, &out, []string{"--name", "ACME"}))

	out.Reset()
	require.NoError(t, UpdatePartnerCommand(tr, &out, []string{"--status", "inactive", "acme"}))
	assert.Contains(t, out.String(), "inactive")
	p, err := tr.FindPartner("Acme")
	require.NoError(t, err)
	assert.Equal(t, "focus", p.Category, "unset flags are left alone")

	out.Reset()
	require.NoError(t, ListPartnersCommand(tr, &out, []string{"--status", "inactive"}))
	assert.Contains(t, out.String(), "Acme")
	assert.Contains(t, out.String(), "Total: 1 partner(s)")

	out.Reset()
	require.NoError(t, DeletePartnerCommand(tr, &out, []string{"Acme"}))
	assert.Empty(t, tr.Partners())
	assert.Error(t, DeletePartnerCommand(tr, &out, []string{"Acme"}))

	require.NoError(t, AddPartnerCommand(tr, &out, []string{"Globex"}))
	setInteractive(t, false)
	assert.Error(t, ClearPartnersCommand(tr, &out, nil))
	assert.Len(t, tr.Partners(), 1)
	out.Reset()
	require.NoError(t, ClearPartnersCommand(tr, &out, []string{"--confirm"}))
	assert.Contains(t, out.String(), "✓ Partners cleared")
	assert.Empty(t, tr.Partners())
}

func TestPipelineCommands(t *testing.T) {
	tr := setupTestCLI(t)
	dir := t.TempDir()
	path := writePipeline(t, dir)
	var out bytes.Buffer

	require.NoError(t, UploadPipelineCommand(tr, &out, []string{path}))
	assert.Contains(t, out.String(), "✓ Pipeline uploaded: 2 record(s)")
	assert.Contains(t, out.String(), "new IDs: 2")
	assert.Len(t, tr.CurrentPipeline(), 2)

	out.Reset()
	require.NoError(t, UploadPipelineCommand(tr, &out, []string{path}))
	assert.Contains(t, out.String(), "Kept IDs: 2, new IDs: 0")

	out.Reset()
	require.NoError(t, ListPipelineCommand(tr, &out, []string{"--partner", "acme"}))
	assert.Contains(t, out.String(), "Renewal")
	assert.NotContains(t, out.String(), "Expansion")

	out.Reset()
	require.NoError(t, GroupsCommand(tr, &out, nil))
	assert.Contains(t, out.String(), "Q2 FY2025")
	assert.Contains(t, out.String(), "Globex")

	out.Reset()
	require.NoError(t, WindowCommand(tr, &out, nil))
	assert.Contains(t, out.String(), "Q1 FY2026")

	out.Reset()
	require.NoError(t, StatsCommand(tr, &out, nil))
	assert.Contains(t, out.String(), "$2,000")

	export := filepath.Join(dir, "out.xlsx")
	out.Reset()
	require.NoError(t, ExportPipelineCommand(tr, &out, []string{export}))
	_, err := os.Stat(export)
	require.NoError(t, err)

	setInteractive(t, false)
	assert.Error(t, ClearPipelineCommand(tr, &out, nil))
	assert.Len(t, tr.CurrentPipeline(), 2)
	require.NoError(t, ClearPipelineCommand(tr, &out, []string{"--confirm"}))
	assert.Empty(t, tr.CurrentPipeline())
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	tr := setupTestCLI(t)
	path := filepath.Join(t.TempDir(), "pipeline.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))

	var out bytes.Buffer
	assert.Error(t, UploadPipelineCommand(tr, &out, []string{path}))
	assert.Error(t, UploadPipelineCommand(tr, &out, nil))
}

func TestInitiativeAndNoteCommands(t *testing.T) {
	tr := setupTestCLI(t)
	var out bytes.Buffer

	require.NoError(t, AddInitiativeCommand(tr, &out, []string{"--partner", "Acme", "--project", "Launch", "--quarter", "q3"}))
	require.Len(t, tr.Initiatives(), 1)
	ini := tr.Initiatives()[0]
	assert.Equal(t, models.Q3, ini.TargetQuarter)

	assert.Error(t, AddInitiativeCommand(tr, &out, []string{"--partner", "Acme", "--project", "X", "--quarter", "Q7"}))

	require.NoError(t, UpdateInitiativeCommand(tr, &out, []string{"--role", "Lead", ini.ID}))
	updated, ok := tr.Initiative(ini.ID)
	require.True(t, ok)
	assert.Equal(t, "Lead", updated.Role)
	assert.Equal(t, "Launch", updated.Project)

	require.NoError(t, AddNoteCommand(tr, &out, []string{"--initiative", ini.ID, "--action", "send", "the", "deck"}))
	notes := tr.NotesForInitiative(ini.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "send the deck", notes[0].Content)
	assert.Error(t, AddNoteCommand(tr, &out, []string{"--opportunity", "nope", "text"}))
	assert.Error(t, AddNoteCommand(tr, &out, []string{"text"}))

	out.Reset()
	require.NoError(t, ListInitiativesCommand(tr, &out, []string{"--quarter", "Q3"}))
	assert.Contains(t, out.String(), "1 (1 action)")

	out.Reset()
	require.NoError(t, ActionsCommand(tr, &out, nil))
	assert.Contains(t, out.String(), "send the deck")
	assert.Contains(t, out.String(), "Acme")

	require.NoError(t, UpdateNoteCommand(tr, &out, []string{"--action=false", notes[0].ID}))
	n, ok := tr.Note(notes[0].ID)
	require.True(t, ok)
	assert.False(t, n.HasAction)
	assert.Equal(t, "send the deck", n.Content)

	require.NoError(t, DeleteInitiativeCommand(tr, &out, []string{ini.ID}))
	require.NoError(t, PruneNotesCommand(tr, &out, []string{"--confirm"}))
	assert.Empty(t, tr.AllNotes())

	out.Reset()
	require.NoError(t, ListNotesCommand(tr, &out, nil))
	assert.Contains(t, out.String(), "No notes found")
}

func TestDataCommands(t *testing.T) {
	tr := setupTestCLI(t)
	dir := t.TempDir()
	_, err := tr.AddPartner("Acme", models.CategoryFocus, "")
	require.NoError(t, err)

	backup := filepath.Join(dir, "backup.json")
	var out bytes.Buffer
	require.NoError(t, ExportDataCommand(tr, &out, []string{backup}))
	assert.Contains(t, out.String(), "Partners: 1")

	require.NoError(t, ClearDataCommand(tr, &out, []string{"--confirm"}))
	assert.Empty(t, tr.Partners())

	require.NoError(t, ImportDataCommand(tr, &out, []string{"--confirm", backup}))
	assert.Len(t, tr.Partners(), 1)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"partners":[]}`), 0644))
	assert.ErrorIs(t, ImportDataCommand(tr, &out, []string{"--confirm", bad}), tracker.ErrInvalidBackup)

	out.Reset()
	require.NoError(t, RollbackCommand(tr, &out, []string{"--confirm"}))
	assert.Contains(t, out.String(), "Rolled back the import")
	assert.Empty(t, tr.Partners())
	assert.ErrorIs(t, RollbackCommand(tr, &out, []string{"--confirm"}), tracker.ErrNoSnapshot)

	out.Reset()
	require.NoError(t, ExportDataCommand(tr, &out, nil))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out.String()), "{"))
}

func TestConfirmPrompt(t *testing.T) {
	setInteractive(t, true)
	origInput := promptInput
	t.Cleanup(func() { promptInput = origInput })

	var out bytes.Buffer
	promptInput = strings.NewReader("y\n")
	assert.NoError(t, confirm(&out, "wipe things", false))
	assert.Contains(t, out.String(), "This will wipe things. Continue? [y/N]")

	promptInput = strings.NewReader("\n")
	assert.Error(t, confirm(&out, "wipe things", false))

	promptInput = strings.NewReader("")
	assert.Error(t, confirm(&out, "wipe things", false))
}

func TestVizCommands(t *testing.T) {
	tr := setupTestCLI(t)
	var out bytes.Buffer
	require.NoError(t, UploadPipelineCommand(tr, &out, []string{writePipeline(t, t.TempDir())}))

	out.Reset()
	require.NoError(t, DashboardCommand(tr, &out, nil))
	assert.Contains(t, out.String(), "PARTNER PIPELINE DASHBOARD")

	out.Reset()
	require.NoError(t, GraphCommand(t.Context(), tr, &out, nil))
	assert.Contains(t, out.String(), "digraph")

	assert.Error(t, GraphCommand(t.Context(), tr, &out, []string{"partner"}))
}

func TestOpenBackend(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}

	kv, err := OpenBackend(cfg, config.BackendSQLite)
	require.NoError(t, err)
	require.NoError(t, kv.Set("k", []byte("v")))
	require.NoError(t, kv.Close())
	_, err = os.Stat(cfg.DatabasePath())
	require.NoError(t, err)

	kv, err = OpenBackend(cfg, config.BackendBadger)
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	_, err = OpenBackend(cfg, "postgres")
	assert.Error(t, err)
}
