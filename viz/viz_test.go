package viz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

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

	_, err = tr.AddPartner("Acme", models.CategoryFocus, "")
	require.NoError(t, err)
	_, err = tr.UploadPipeline([]ingest.Row{
		{{Header: "Opportunity Name", Value: "Big Renewal"}, {Header: "Amount", Value: "5000"}, {Header: "Close Date", Value: "2025-03-01"}, {Header: "Co-Selling With", Value: "Acme"}},
		{{Header: "Opportunity Name", Value: "Side Deal"}, {Header: "Amount", Value: "1000"}, {Header: "Close Date", Value: "2025-06-01"}, {Header: "Co-Selling With", Value: "Nobody"}},
	})
	require.NoError(t, err)
	ini, err := tr.AddInitiative(tracker.InitiativeInput{Partner: "Acme", Project: "Edge Launch", TargetQuarter: "Q2"})
	require.NoError(t, err)
	_, err = tr.AddNote(ini.ID, "book the kickoff", true, models.NoteInitiative)
	require.NoError(t, err)
	return tr
}

func TestDashboard(t *testing.T) {
	tr := setupTracker(t)
	stats := GenerateDashboardStats(tr)

	assert.Equal(t, int64(6000), stats.Pipeline.TotalValue)
	require.Len(t, stats.Partners, 2)
	assert.Equal(t, "Acme", stats.Partners[0].Partner)
	assert.Equal(t, 1, stats.TotalPartners)
	assert.Len(t, stats.OpenActions, 1)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "PARTNER PIPELINE DASHBOARD")
	assert.Contains(t, out, "$6,000")
	assert.Contains(t, out, "██████████")
	assert.Contains(t, out, "book the kickoff")
	assert.Contains(t, out, "Q2 FY2025")
}

func TestGraphs(t *testing.T) {
	tr := setupTracker(t)
	g := NewGraphGenerator(tr)
	ctx := context.Background()

	dot, err := g.Generate(ctx, GraphPipeline, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(dot), "digraph") || strings.Contains(dot, "digraph"))
	assert.Contains(t, dot, "Acme")
	assert.Contains(t, dot, "Other")

	dot, err = g.Generate(ctx, GraphPartner, "acme")
	require.NoError(t, err)
	assert.Contains(t, dot, "Big Renewal")

	_, err = g.Generate(ctx, GraphPartner, "Globex")
	assert.True(t, errors.Is(err, tracker.ErrNotFound))

	dot, err = g.Generate(ctx, GraphInitiatives, "")
	require.NoError(t, err)
	assert.Contains(t, dot, "Edge Launch")

	_, err = g.Generate(ctx, "bogus", "")
	assert.Error(t, err)
}
