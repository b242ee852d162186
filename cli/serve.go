// ABOUTME: Long-running commands for the HTTP API and the drop-folder watcher
// ABOUTME: serve runs both under one errgroup; watch runs only the importer
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/config"
	"github.com/harperreed/pipetrack/ingest"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/harperreed/pipetrack/web"
	"golang.org/x/sync/errgroup"
)

// ServeCommand runs the HTTP API, plus the watcher unless --no-watch is given.
func ServeCommand(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.WebAddr, "Listen address")
	noWatch := fs.Bool("no-watch", false, "Do not watch the drop folder")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Serving pipetrack on http://%s\n", *addr)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return web.NewServer(tr, *addr).Serve(egctx)
	})
	if !*noWatch {
		w, err := dropFolderWatcher(tr, cfg.WatchDir)
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return w.Run(egctx)
		})
	}
	return eg.Wait()
}

// WatchCommand imports every spreadsheet dropped into the watch directory.
func WatchCommand(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	dir := fs.String("dir", cfg.WatchDir, "Directory to watch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w, err := dropFolderWatcher(tr, *dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Watching %s for .xlsx/.xls files (Ctrl-C to stop)\n", *dir)
	return w.Run(ctx)
}

func dropFolderWatcher(tr *tracker.Tracker, dir string) (*ingest.Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create watch directory: %w", err)
	}
	return ingest.NewWatcher(dir, ingest.DefaultDebounce, importDropped(tr)), nil
}

// importDropped uploads one settled spreadsheet from the drop folder.
func importDropped(tr *tracker.Tracker) func(ctx context.Context, path string) error {
	return func(_ context.Context, path string) error {
		rows, err := ingest.ReadFile(path)
		if err != nil {
			return err
		}
		res, err := tr.UploadPipeline(rows)
		if err != nil {
			return err
		}
		log.Info("pipeline imported from drop folder",
			"file", path, "records", len(res.Records), "reused", res.Reused, "new", res.Minted)
		return nil
	}
}
