// ABOUTME: Pipeline CLI commands
// ABOUTME: Uploads spreadsheets, prints grouped and windowed views, exports and clears deals
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/pipetrack/config"
	"github.com/harperreed/pipetrack/ingest"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
	"github.com/harperreed/pipetrack/tracker"
)

// UploadPipelineCommand imports an .xlsx or .xls export as the new current generation.
func UploadPipelineCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline upload", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("spreadsheet file required")
	}

	rows, err := ingest.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	return applyUpload(tr, out, rows)
}

// UploadSheetsCommand imports the first sheet of a Google spreadsheet. Run "sheets auth" first.
func UploadSheetsCommand(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline sheets", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("spreadsheet ID required")
	}

	oauthCfg, err := ingest.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, oauthListenAddr)
	if err != nil {
		return err
	}
	token, err := ingest.LoadToken(ingest.TokenPath())
	if err != nil {
		return fmt.Errorf("not authorized with Google, run 'pipetrack sheets auth': %w", err)
	}
	reader, err := ingest.NewSheetsReader(ctx, oauthCfg, token)
	if err != nil {
		return err
	}

	rows, err := reader.ReadFirstSheet(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return applyUpload(tr, out, rows)
}

func applyUpload(tr *tracker.Tracker, out io.Writer, rows []ingest.Row) error {
	res, err := tr.UploadPipeline(rows)
	if err != nil {
		return fmt.Errorf("upload rejected: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Pipeline uploaded: %d record(s)\n", len(res.Records))
	_, _ = fmt.Fprintf(out, "  Kept IDs: %d, new IDs: %d\n", res.Reused, res.Minted)
	if len(res.Unmapped) > 0 {
		_, _ = fmt.Fprintf(out, "  Extra columns: %s\n", strings.Join(res.Unmapped, ", "))
	}
	_, _ = fmt.Fprintln(out)
	report.RenderStats(out, tr.Stats())
	return nil
}

// ListPipelineCommand lists the current generation.
func ListPipelineCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline list", flag.ContinueOnError)
	previous := fs.Bool("previous", false, "List the previous upload instead")
	partner := fs.String("partner", "", "Filter by Co-Selling With")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records := tr.CurrentPipeline()
	if *previous {
		records = tr.PipelineState().Previous
	}
	if *partner != "" {
		kept := records[:0:0]
		for _, r := range records {
			if strings.EqualFold(strings.TrimSpace(r.CoSellingWith), strings.TrimSpace(*partner)) {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No opportunities found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "OPPORTUNITY\tPARTNER\tAMOUNT\tCLOSE\tSTAGE\tID")
	_, _ = fmt.Fprintln(w, "-----------\t-------\t------\t-----\t-----\t--")
	var total int64
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.OpportunityName, orDash(r.CoSellingWith), report.FormatAmount(r.Amount),
			r.CloseDate.Format("2006-01-02"), orDash(r.Stage), r.ID)
		total += r.Amount
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nTotal: %d opportunit(ies) - %s\n", len(records), report.FormatAmount(total))
	return nil
}

// GroupsCommand prints deals grouped by partner and fiscal quarter.
func GroupsCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline groups", flag.ContinueOnError)
	partner := fs.String("partner", "", "Only show this partner")
	if err := fs.Parse(args); err != nil {
		return err
	}

	groups := tr.Groups()
	if *partner != "" {
		kept := groups[:0:0]
		for _, g := range groups {
			if strings.EqualFold(g.Partner, *partner) {
				kept = append(kept, g)
			}
		}
		groups = kept
	}
	report.RenderGroups(out, groups, tr.NotesForOpportunity)
	return nil
}

// WindowCommand prints the four-quarter pipeline table.
func WindowCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline window", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	report.RenderWindow(out, tr.Window())
	return nil
}

// StatsCommand prints totals and the change since the previous upload.
func StatsCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	report.RenderStats(out, tr.Stats())
	return nil
}

// ExportPipelineCommand writes the current generation as an .xlsx workbook.
func ExportPipelineCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline export", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := exportPath(fs, "partner-opportunities", tr)
	records := tr.CurrentPipeline()

	if err := writeWorkbook(path, func(w io.Writer) error {
		return report.WriteOpportunities(w, records)
	}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Exported %d opportunit(ies) to %s\n", len(records), path)
	return nil
}

// ClearPipelineCommand empties both generations. Notes are kept.
func ClearPipelineCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipeline clear", flag.ContinueOnError)
	force := fs.Bool("confirm", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := confirm(out, "delete all pipeline data", *force); err != nil {
		return err
	}
	if err := tr.ClearPipeline(); err != nil {
		return fmt.Errorf("failed to clear pipeline: %w", err)
	}
	_, _ = fmt.Fprintln(out, "✓ Pipeline cleared")
	return nil
}

// exportPath is the first argument, or a dated default name in the working directory.
func exportPath(fs *flag.FlagSet, base string, tr *tracker.Tracker) string {
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	return fmt.Sprintf("%s-%s.xlsx", base, tr.Now().Format("2006-01-02"))
}

func writeWorkbook(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// noteCount is shown next to records in note listings.
func noteCount(notes []models.Note) string {
	actions := 0
	for _, n := range notes {
		if n.HasAction {
			actions++
		}
	}
	if actions == 0 {
		return fmt.Sprintf("%d", len(notes))
	}
	return fmt.Sprintf("%d (%d action)", len(notes), actions)
}
