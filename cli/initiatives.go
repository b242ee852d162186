// ABOUTME: Initiative CLI commands
// ABOUTME: Manages partner initiatives by target quarter and exports them to .xlsx
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/report"
	"github.com/harperreed/pipetrack/tracker"
)

type initiativeFlags struct {
	partner, project, quarter                             *string
	hpeOwner, partnerOwner, hpeResource, partnerRes, role *string
}

func bindInitiativeFlags(fs *flag.FlagSet) initiativeFlags {
	return initiativeFlags{
		partner:      fs.String("partner", "", "Partner name"),
		project:      fs.String("project", "", "Project name"),
		quarter:      fs.String("quarter", "", "Target quarter (Q1-Q4)"),
		hpeOwner:     fs.String("hpe-owner", "", "HPE owner"),
		partnerOwner: fs.String("partner-owner", "", "Partner owner"),
		hpeResource:  fs.String("hpe-resource", "", "HPE resource"),
		partnerRes:   fs.String("partner-resource", "", "Partner resource"),
		role:         fs.String("role", "", "Role"),
	}
}

// AddInitiativeCommand adds an initiative.
func AddInitiativeCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("initiatives add", flag.ContinueOnError)
	f := bindInitiativeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *f.partner == "" || *f.project == "" || *f.quarter == "" {
		return fmt.Errorf("--partner, --project and --quarter are required")
	}

	ini, err := tr.AddInitiative(tracker.InitiativeInput{
		Partner:         *f.partner,
		Project:         *f.project,
		TargetQuarter:   *f.quarter,
		HPEOwner:        *f.hpeOwner,
		PartnerOwner:    *f.partnerOwner,
		HPEResource:     *f.hpeResource,
		PartnerResource: *f.partnerRes,
		Role:            *f.role,
	})
	if err != nil {
		return fmt.Errorf("failed to add initiative: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Initiative added: %s (ID: %s)\n", ini.Project, ini.ID)
	_, _ = fmt.Fprintf(out, "  Partner: %s\n", ini.Partner)
	_, _ = fmt.Fprintf(out, "  Target: %s\n", ini.TargetQuarter)
	return nil
}

// ListInitiativesCommand lists initiatives with their note counts.
func ListInitiativesCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("initiatives list", flag.ContinueOnError)
	partner := fs.String("partner", "", "Filter by partner")
	quarter := fs.String("quarter", "", "Filter by target quarter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var q models.Quarter
	if *quarter != "" {
		parsed, ok := models.ParseQuarter(*quarter)
		if !ok {
			return fmt.Errorf("invalid quarter %q (want Q1-Q4)", *quarter)
		}
		q = parsed
	}

	var shown []models.Initiative
	for _, ini := range tr.Initiatives() {
		if *partner != "" && !strings.EqualFold(ini.Partner, strings.TrimSpace(*partner)) {
			continue
		}
		if q != "" && ini.TargetQuarter != q {
			continue
		}
		shown = append(shown, ini)
	}
	if len(shown) == 0 {
		_, _ = fmt.Fprintln(out, "No initiatives found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "QUARTER\tPARTNER\tPROJECT\tHPE OWNER\tPARTNER OWNER\tNOTES\tID")
	_, _ = fmt.Fprintln(w, "-------\t-------\t-------\t---------\t-------------\t-----\t--")
	for _, ini := range shown {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ini.TargetQuarter, ini.Partner, ini.Project, orDash(ini.HPEOwner), orDash(ini.PartnerOwner),
			noteCount(tr.NotesForInitiative(ini.ID)), ini.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nTotal: %d initiative(s)\n", len(shown))
	return nil
}

// UpdateInitiativeCommand changes the flags that were given. Flags must come before the ID.
func UpdateInitiativeCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("initiatives update", flag.ContinueOnError)
	f := bindInitiativeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("initiative ID required")
	}

	var patch tracker.InitiativePatch
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "partner":
			patch.Partner = f.partner
		case "project":
			patch.Project = f.project
		case "quarter":
			patch.TargetQuarter = f.quarter
		case "hpe-owner":
			patch.HPEOwner = f.hpeOwner
		case "partner-owner":
			patch.PartnerOwner = f.partnerOwner
		case "hpe-resource":
			patch.HPEResource = f.hpeResource
		case "partner-resource":
			patch.PartnerResource = f.partnerRes
		case "role":
			patch.Role = f.role
		}
	})

	ini, err := tr.UpdateInitiative(fs.Arg(0), patch)
	if err != nil {
		return fmt.Errorf("failed to update initiative: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Initiative updated: %s (%s, %s)\n", ini.Project, ini.Partner, ini.TargetQuarter)
	return nil
}

// DeleteInitiativeCommand removes an initiative. Its notes remain until pruned.
func DeleteInitiativeCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("initiatives delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("initiative ID required")
	}
	if err := tr.DeleteInitiative(fs.Arg(0)); err != nil {
		return fmt.Errorf("failed to delete initiative: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Initiative deleted: %s\n", fs.Arg(0))
	return nil
}

// ClearInitiativesCommand removes every initiative.
func ClearInitiativesCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("initiatives clear", flag.ContinueOnError)
	force := fs.Bool("confirm", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := confirm(out, "delete all initiatives", *force); err != nil {
		return err
	}
	if err := tr.ClearInitiatives(); err != nil {
		return fmt.Errorf("failed to clear initiatives: %w", err)
	}
	_, _ = fmt.Fprintln(out, "✓ Initiatives cleared")
	return nil
}

// ExportInitiativesCommand writes initiatives grouped by quarter as an .xlsx workbook.
func ExportInitiativesCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("initiatives export", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := exportPath(fs, "partner-initiatives", tr)
	initiatives := tr.Initiatives()

	if err := writeWorkbook(path, func(w io.Writer) error {
		return report.WriteInitiatives(w, initiatives)
	}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Exported %d initiative(s) to %s\n", len(initiatives), path)
	return nil
}
