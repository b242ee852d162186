// ABOUTME: Visualization CLI commands
// ABOUTME: Prints the text dashboard and writes Graphviz DOT graphs of the pipeline
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/pipetrack/tracker"
	"github.com/harperreed/pipetrack/viz"
)

// DashboardCommand prints the terminal dashboard.
func DashboardCommand(tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, _ = fmt.Fprint(out, viz.RenderDashboard(viz.GenerateDashboardStats(tr)))
	return nil
}

// GraphCommand writes a DOT graph: pipeline (default), partner <name> or initiatives.
func GraphCommand(ctx context.Context, tr *tracker.Tracker, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	graphType := viz.GraphPipeline
	if fs.NArg() > 0 {
		graphType = fs.Arg(0)
	}
	partner := ""
	if graphType == viz.GraphPartner {
		if fs.NArg() < 2 {
			return fmt.Errorf("partner name required")
		}
		partner = fs.Arg(1)
	}

	dot, err := viz.NewGraphGenerator(tr).Generate(ctx, graphType, partner)
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(dot), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *output, err)
		}
		_, _ = fmt.Fprintf(out, "✓ Graph written to %s\n", *output)
		return nil
	}
	_, _ = fmt.Fprintln(out, dot)
	return nil
}
