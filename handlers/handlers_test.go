// ABOUTME: Tests for pipetrack MCP tools, resources and prompts
// ABOUTME: Calls handlers directly and through an in-memory MCP session
package handlers

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/pipetrack/ingest"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/store"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	kv, err := store.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	now := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	tr, err := tracker.Open(kv, tracker.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return tr
}

func seedPipeline(t *testing.T, tr *tracker.Tracker) []models.Opportunity {
	t.Helper()
	_, err := tr.UploadPipeline([]ingest.Row{
		{{Header: "Opportunity Name", Value: "Renewal"}, {Header: "Amount", Value: "1,200"}, {Header: "Close Date", Value: "2025-04-02"}, {Header: "Co-Selling With", Value: "Acme"}},
		{{Header: "Opportunity Name", Value: "Expansion"}, {Header: "Amount", Value: "800"}, {Header: "Close Date", Value: "2025-08-15"}, {Header: "Co-Selling With", Value: "Globex"}},
	})
	require.NoError(t, err)
	return tr.CurrentPipeline()
}

func TestPartnerTools(t *testing.T) {
	tr := setupTracker(t)
	h := NewPartnerHandlers(tr)
	ctx := context.Background()

	_, added, err := h.AddPartner(ctx, nil, AddPartnerInput{Name: "Acme", Category: models.CategoryFocus})
	require.NoError(t, err)
	assert.Equal(t, "active", added.Status)

	_, _, err = h.AddPartner(ctx, nil, AddPartnerInput{})
	assert.Error(t, err)

	status := models.PartnerInactive
	_, updated, err := h.UpdatePartner(ctx, nil, UpdatePartnerInput{Partner: "acme", Status: &status})
	require.NoError(t, err)
	assert.Equal(t, added.ID, updated.ID)
	assert.Equal(t, "inactive", updated.Status)

	_, list, err := h.ListPartners(ctx, nil, ListPartnersInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	_, del, err := h.DeletePartner(ctx, nil, DeletePartnerInput{Partner: added.ID})
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.Empty(t, tr.Partners())
}

func TestUploadPipelineTool(t *testing.T) {
	tr := setupTracker(t)
	h := NewPipelineHandlers(tr)
	ctx := context.Background()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Opportunity Name", "Amount (converted)", "Close Date", "Co-Selling With", "Deal Size"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Alpha", "$1,000.40", "03/15/2025", "Acme", "L"}))
	path := filepath.Join(t.TempDir(), "pipeline.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, out, err := h.UploadPipeline(ctx, nil, UploadPipelineInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Records)
	assert.Equal(t, 1, out.Minted)
	assert.Equal(t, []string{"deal size"}, out.Unmapped)

	_, stats, err := h.PipelineStats(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stats.Stats.TotalValue)
	assert.Equal(t, "$1,000", stats.TotalValue)

	_, _, err = h.UploadPipeline(ctx, nil, UploadPipelineInput{})
	assert.Error(t, err)
}

func TestGroupsAndWindowTools(t *testing.T) {
	tr := setupTracker(t)
	seedPipeline(t, tr)
	_, err := tr.AddPartner("Acme", "", "")
	require.NoError(t, err)
	h := NewPipelineHandlers(tr)
	ctx := context.Background()

	_, groups, err := h.PipelineGroups(ctx, nil, GroupsInput{})
	require.NoError(t, err)
	require.Len(t, groups.Groups, 2)
	assert.Equal(t, "Acme", groups.Groups[0].Partner)
	assert.Equal(t, "Other", groups.Groups[1].Partner)

	_, one, err := h.PipelineGroups(ctx, nil, GroupsInput{Partner: "other"})
	require.NoError(t, err)
	require.Len(t, one.Groups, 1)
	assert.Equal(t, int64(800), one.Groups[0].Total)

	_, w, err := h.PipelineWindow(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Q2 FY2025", "Q3 FY2025", "Q4 FY2025", "Q1 FY2026"}, w.Quarters)
	assert.Equal(t, int64(2000), w.Totals.Total)
}

func TestNoteTools(t *testing.T) {
	tr := setupTracker(t)
	recs := seedPipeline(t, tr)
	notes := NewNoteHandlers(tr)
	inis := NewInitiativeHandlers(tr)
	ctx := context.Background()

	_, ini, err := inis.AddInitiative(ctx, nil, AddInitiativeInput{Partner: "Acme", Project: "Launch", TargetQuarter: "Q3"})
	require.NoError(t, err)

	_, _, err = notes.AddNote(ctx, nil, AddNoteInput{ParentID: recs[0].ID, Kind: "deal", Content: "x"})
	assert.Error(t, err)

	_, n1, err := notes.AddNote(ctx, nil, AddNoteInput{ParentID: recs[0].ID, Kind: "opportunity", Content: "send quote", HasAction: true})
	require.NoError(t, err)
	_, _, err = notes.AddNote(ctx, nil, AddNoteInput{ParentID: ini.ID, Kind: "initiative", Content: "plan workshop", HasAction: true})
	require.NoError(t, err)

	_, list, err := notes.ListNotes(ctx, nil, ListNotesInput{ParentID: recs[0].ID, Kind: "opportunity"})
	require.NoError(t, err)
	require.Len(t, list.Notes, 1)

	_, items, err := notes.ListActionItems(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	require.Equal(t, 2, items.Count)
	assert.Equal(t, "Renewal", items.Items[0].Title)
	assert.Equal(t, "Launch", items.Items[1].Title)

	_, upd, err := notes.UpdateNote(ctx, nil, UpdateNoteInput{ID: n1.ID, Content: "quote sent", HasAction: false})
	require.NoError(t, err)
	assert.False(t, upd.HasAction)

	_, _, err = notes.DeleteNote(ctx, nil, DeleteNoteInput{ID: n1.ID})
	require.NoError(t, err)
	assert.False(t, tr.HasNotes(recs[0].ID))

	_, filtered, err := inis.ListInitiatives(ctx, nil, ListInitiativesInput{Quarter: "q3"})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Count)
	_, filtered, err = inis.ListInitiatives(ctx, nil, ListInitiativesInput{Partner: "Globex"})
	require.NoError(t, err)
	assert.Zero(t, filtered.Count)
}

func connect(t *testing.T, tr *tracker.Tracker) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := NewServer(tr, "test")
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestServerSession(t *testing.T) {
	tr := setupTracker(t)
	seedPipeline(t, tr)
	cs := connect(t, tr)
	ctx := context.Background()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "list_action_items")
	assert.Contains(t, names, "upload_pipeline")

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "pipeline_stats", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)

	rr, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "pipetrack://stats"})
	require.NoError(t, err)
	require.Len(t, rr.Contents, 1)
	var stats models.PipelineStats
	require.NoError(t, json.Unmarshal([]byte(rr.Contents[0].Text), &stats))
	assert.Equal(t, int64(2000), stats.TotalValue)
	assert.Equal(t, 2, stats.ActiveDeals)

	prompt, err := cs.GetPrompt(ctx, &mcp.GetPromptParams{Name: "pipeline-summary"})
	require.NoError(t, err)
	require.Len(t, prompt.Messages, 1)
	text, ok := prompt.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Q2 FY2025")
}
