// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarizes pipeline value, partner share, initiatives and open action items
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
	"github.com/harperreed/pipetrack/tracker"
)

type DashboardStats struct {
	Pipeline models.PipelineStats

	// Share of the current pipeline per partner, largest first
	Partners []PartnerShare

	// Four-quarter outlook
	Window report.WindowTable

	TotalPartners    int
	TotalInitiatives int
	TotalNotes       int

	OpenActions []models.ActionItem
}

type PartnerShare struct {
	Partner string
	Count   int
	Amount  int64
}

func GenerateDashboardStats(tr *tracker.Tracker) *DashboardStats {
	stats := &DashboardStats{
		Pipeline:         tr.Stats(),
		Window:           tr.Window(),
		TotalPartners:    len(tr.Partners()),
		TotalInitiatives: len(tr.Initiatives()),
		TotalNotes:       len(tr.AllNotes()),
		OpenActions:      tr.ActionItems(),
	}
	for _, g := range tr.Groups() {
		stats.Partners = append(stats.Partners, PartnerShare{
			Partner: g.Partner,
			Count:   g.Count,
			Amount:  g.Total,
		})
	}
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  PARTNER PIPELINE DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE\n")
	p := stats.Pipeline
	out.WriteString(fmt.Sprintf("  Total value   %s  (%s)\n",
		report.FormatAmount(p.TotalValue), report.FormatChange(p.ChangeFromLastUpload.TotalValue)))
	out.WriteString(fmt.Sprintf("  Active deals  %d  (%+d)\n", p.ActiveDeals, p.ChangeFromLastUpload.ActiveDeals))
	out.WriteString(fmt.Sprintf("  Avg deal      %s\n\n", report.FormatAmount(int64(math.Round(p.AverageDealSize)))))

	if len(stats.Partners) > 0 {
		out.WriteString("BY PARTNER\n")
		renderShares(&out, stats.Partners)
		out.WriteString("\n")
	}

	if len(stats.Window.Rows) > 0 {
		out.WriteString("NEXT FOUR QUARTERS\n")
		for i, label := range stats.Window.Labels() {
			out.WriteString(fmt.Sprintf("  %-10s %s\n", label, report.FormatAmount(stats.Window.Totals.Amounts[i])))
		}
		out.WriteString("\n")
	}

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  🤝 %d partners  🚀 %d initiatives  📝 %d notes\n\n",
		stats.TotalPartners, stats.TotalInitiatives, stats.TotalNotes))

	if len(stats.OpenActions) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		out.WriteString(fmt.Sprintf("  ⚠️  %d action items\n", len(stats.OpenActions)))
		for _, item := range stats.OpenActions {
			out.WriteString(fmt.Sprintf("  - %s: %s\n",
				models.Truncate(item.PartnerName, 15), models.Truncate(item.Note.Content, 50)))
		}
	}

	return out.String()
}

func renderShares(out *strings.Builder, shares []PartnerShare) {
	var maxAmount int64
	for _, s := range shares {
		if s.Amount > maxAmount {
			maxAmount = s.Amount
		}
	}

	for _, s := range shares {
		// 0-10 blocks, negative totals render empty
		barLength := 0
		if maxAmount > 0 && s.Amount > 0 {
			barLength = int(s.Amount * 10 / maxAmount)
		}
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-15s %s  %3d  %s\n",
			models.Truncate(s.Partner, 12), bar, s.Count, report.FormatAmount(s.Amount)))
	}
}
