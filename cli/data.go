// ABOUTME: Backup CLI commands
// ABOUTME: Exports and imports the JSON backup, rolls back the last replace and clears everything
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/pipetrack/tracker"
)

// ExportDataCommand writes the backup JSON to a file, or stdout when no file is given.
func ExportDataCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("data export", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := tr.ExportJSON()
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if fs.NArg() == 0 {
		_, err := out.Write(append(data, '\n'))
		return err
	}

	path := fs.Arg(0)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	b := tr.Export()
	_, _ = fmt.Fprintf(out, "✓ Backup written to %s\n", path)
	_, _ = fmt.Fprintf(out, "  Partners: %d, opportunities: %d, initiatives: %d, note buckets: %d\n",
		len(b.Partners), len(b.PipelineData), len(b.Initiatives), len(b.Notes))
	return nil
}

// ImportDataCommand replaces all data with a backup file. The prior state can be rolled back.
func ImportDataCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("data import", flag.ContinueOnError)
	force := fs.Bool("confirm", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("backup file required")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", fs.Arg(0), err)
	}
	if _, err := tracker.ValidateBackup(raw); err != nil {
		return err
	}
	if err := confirm(out, "replace all data with "+fs.Arg(0), *force); err != nil {
		return err
	}

	b, err := tr.Import(raw)
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Imported backup from %s\n", fs.Arg(0))
	_, _ = fmt.Fprintf(out, "  Partners: %d, opportunities: %d, initiatives: %d, note buckets: %d\n",
		len(b.Partners), len(b.PipelineData), len(b.Initiatives), len(b.Notes))
	_, _ = fmt.Fprintln(out, "  Run 'pipetrack data rollback' to undo")
	return nil
}

// RollbackCommand restores the snapshot taken before the last import or clear.
func RollbackCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("data rollback", flag.ContinueOnError)
	force := fs.Bool("confirm", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, ok := tr.LastSnapshot()
	if !ok {
		return tracker.ErrNoSnapshot
	}
	action := fmt.Sprintf("restore the state from before the %s at %s", snap.Reason, snap.TakenAt.Format("2006-01-02 15:04"))
	if err := confirm(out, action, *force); err != nil {
		return err
	}

	if _, err := tr.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Rolled back the %s\n", snap.Reason)
	return nil
}

// ClearDataCommand deletes partners, pipeline, initiatives and notes.
func ClearDataCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("data clear", flag.ContinueOnError)
	force := fs.Bool("confirm", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := confirm(out, "delete ALL partners, pipeline data, initiatives and notes", *force); err != nil {
		return err
	}
	if err := tr.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	_, _ = fmt.Fprintln(out, "✓ All data cleared")
	_, _ = fmt.Fprintln(out, "  Run 'pipetrack data rollback' to undo")
	return nil
}
