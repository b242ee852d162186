// ABOUTME: Note and action item CLI commands
// ABOUTME: Attaches notes to opportunities or initiatives and lists open action items
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/tracker"
)

// AddNoteCommand attaches a note. The note text is the remaining arguments.
func AddNoteCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("notes add", flag.ContinueOnError)
	opportunity := fs.String("opportunity", "", "Opportunity ID")
	initiative := fs.String("initiative", "", "Initiative ID")
	action := fs.Bool("action", false, "Flag the note as an action item")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parent, kind, err := noteParent(*opportunity, *initiative)
	if err != nil {
		return err
	}
	content := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("note text required")
	}

	n, err := tr.AddNote(parent, content, *action, kind)
	if err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Note added (ID: %s)\n", n.ID)
	if n.HasAction {
		_, _ = fmt.Fprintln(out, "  Flagged as action item")
	}
	return nil
}

func noteParent(opportunity, initiative string) (string, models.NoteKind, error) {
	switch {
	case opportunity != "" && initiative != "":
		return "", "", fmt.Errorf("use either --opportunity or --initiative, not both")
	case opportunity != "":
		return opportunity, models.NoteOpportunity, nil
	case initiative != "":
		return initiative, models.NoteInitiative, nil
	}
	return "", "", fmt.Errorf("--opportunity or --initiative is required")
}

// ListNotesCommand lists the notes of one record, or every note.
func ListNotesCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("notes list", flag.ContinueOnError)
	opportunity := fs.String("opportunity", "", "Opportunity ID")
	initiative := fs.String("initiative", "", "Initiative ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var notes []models.Note
	switch {
	case *opportunity != "":
		notes = tr.NotesForOpportunity(*opportunity)
	case *initiative != "":
		notes = tr.NotesForInitiative(*initiative)
	default:
		notes = tr.AllNotes()
	}
	if len(notes) == 0 {
		_, _ = fmt.Fprintln(out, "No notes found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CREATED\tKIND\tPARENT\tACTION\tNOTE\tID")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t------\t----\t--")
	for _, n := range notes {
		flagged := ""
		if n.HasAction {
			flagged = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			n.CreatedAt.Format("2006-01-02 15:04"), n.Kind(), n.ParentID(), flagged,
			models.Truncate(oneLine(n.Content), 60), n.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nTotal: %d note(s)\n", len(notes))
	return nil
}

// UpdateNoteCommand replaces a note's text and action flag. Flags must come before the ID.
func UpdateNoteCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("notes update", flag.ContinueOnError)
	content := fs.String("content", "", "New note text")
	action := fs.Bool("action", false, "Action item flag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("note ID required")
	}

	existing, ok := tr.Note(fs.Arg(0))
	if !ok {
		return fmt.Errorf("%w: note %s", tracker.ErrNotFound, fs.Arg(0))
	}
	text, flagged := existing.Content, existing.HasAction
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "content":
			text = *content
		case "action":
			flagged = *action
		}
	})

	n, err := tr.UpdateNote(existing.ID, text, flagged)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Note updated: %s\n", n.ID)
	return nil
}

// DeleteNoteCommand removes a note.
func DeleteNoteCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("notes delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("note ID required")
	}
	if err := tr.DeleteNote(fs.Arg(0)); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Note deleted: %s\n", fs.Arg(0))
	return nil
}

// PruneNotesCommand deletes notes whose opportunity or initiative no longer exists.
func PruneNotesCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("notes prune", flag.ContinueOnError)
	force := fs.Bool("confirm", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := confirm(out, "delete notes whose record no longer exists", *force); err != nil {
		return err
	}
	n, err := tr.PruneOrphanNotes()
	if err != nil {
		return fmt.Errorf("failed to prune notes: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Pruned %d orphaned note(s)\n", n)
	return nil
}

// ActionsCommand lists action-flagged notes by partner.
func ActionsCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("actions", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	items := tr.ActionItems()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, "No action items")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PARTNER\tTYPE\tRECORD\tACTION\tUPDATED\tNOTE ID")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t------\t-------\t-------")
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(it.PartnerName), it.Kind, models.Truncate(it.Title(), 30),
			models.Truncate(oneLine(it.Note.Content), 60), it.Note.UpdatedAt.Format("2006-01-02"), it.Note.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nTotal: %d action item(s)\n", len(items))
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
