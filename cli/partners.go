// ABOUTME: Partner CLI commands
// ABOUTME: Add, list, update and delete the partners that pipeline deals are grouped under
package cli

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harperreed/pipetrack/tracker"
)

// AddPartnerCommand adds a new partner.
func AddPartnerCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("partners add", flag.ContinueOnError)
	name := fs.String("name", "", "Partner name (required)")
	category := fs.String("category", "", "Category (focus, incubate, reference)")
	status := fs.String("status", "active", "Status (active, inactive)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" && fs.NArg() > 0 {
		*name = fs.Arg(0)
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	p, err := tr.AddPartner(*name, *category, *status)
	if err != nil {
		return fmt.Errorf("failed to add partner: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Partner added: %s (ID: %s)\n", p.Name, p.ID)
	if p.Category != "" {
		_, _ = fmt.Fprintf(out, "  Category: %s\n", p.Category)
	}
	_, _ = fmt.Fprintf(out, "  Status: %s\n", p.Status)
	return nil
}

// ListPartnersCommand lists partners in the order they were added.
func ListPartnersCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("partners list", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	partners := tr.Partners()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY\tSTATUS\tADDED\tID")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t-----\t--")

	shown := 0
	for _, p := range partners {
		if *status != "" && p.Status != *status {
			continue
		}
		category := p.Category
		if category == "" {
			category = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, category, p.Status, p.DateAdded.Format("2006-01-02"), p.ID)
		shown++
	}
	if shown == 0 {
		_, _ = fmt.Fprintln(out, "No partners found")
		return nil
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nTotal: %d partner(s)\n", shown)
	return nil
}

// UpdatePartnerCommand changes the flags that were given. Flags must come before the partner.
func UpdatePartnerCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("partners update", flag.ContinueOnError)
	name := fs.String("name", "", "New partner name")
	category := fs.String("category", "", "Category")
	status := fs.String("status", "", "Status (active, inactive)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner ID or name required")
	}

	p, err := tr.FindPartner(fs.Arg(0))
	if err != nil {
		return err
	}

	var patch tracker.PartnerPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "category":
			patch.Category = category
		case "status":
			patch.Status = status
		}
	})

	updated, err := tr.UpdatePartner(p.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Partner updated: %s (%s, %s)\n", updated.Name, updated.Status, orDash(updated.Category))
	return nil
}

// DeletePartnerCommand removes a partner. Its deals show up under Other afterwards.
func DeletePartnerCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("partners delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("partner ID or name required")
	}

	p, err := tr.FindPartner(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := tr.DeletePartner(p.ID); err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Partner deleted: %s\n", p.Name)
	return nil
}

// ClearPartnersCommand removes every partner.
func ClearPartnersCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("partners clear", flag.ContinueOnError)
	force := fs.Bool("confirm", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := confirm(out, "delete all partners", *force); err != nil {
		return err
	}
	if err := tr.ClearPartners(); err != nil {
		return fmt.Errorf("failed to clear partners: %w", err)
	}
	_, _ = fmt.Fprintln(out, "✓ Partners cleared")
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
