// ABOUTME: Drop-folder watcher for pipeline spreadsheets
// ABOUTME: Debounces file events and hands each settled .xlsx/.xls file to a handler
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before it is imported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher imports spreadsheets dropped into a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	handle   func(ctx context.Context, path string) error
}

func NewWatcher(dir string, debounce time.Duration, handle func(ctx context.Context, path string) error) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce, handle: handle}
}

// Run blocks until ctx is done. Handler errors are logged and do not stop the watcher.
// Files are handled one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	log.Info("watching for pipeline spreadsheets", "dir", w.dir)

	d := newDebouncer(w.debounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !wantFile(event.Name) {
				continue
			}
			d.touch(ctx, event.Name)

		case s := <-d.ready:
			if !d.take(s) {
				continue
			}
			log.Debug("spreadsheet settled", "file", s.path)
			if err := w.handle(ctx, s.path); err != nil {
				log.Error("import failed", "file", s.path, "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "err", err)
		}
	}
}

type settled struct {
	path string
	seq  uint64
}

// debouncer tracks one pending timer per path. Every touch takes a fresh sequence number;
// a timer that fired before a later touch delivers a stale number and take rejects it.
type debouncer struct {
	delay  time.Duration
	next   uint64
	seq    map[string]uint64
	timers map[string]*time.Timer
	ready  chan settled
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		seq:    make(map[string]uint64),
		timers: make(map[string]*time.Timer),
		ready:  make(chan settled),
	}
}

func (d *debouncer) touch(ctx context.Context, path string) uint64 {
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.next++
	d.seq[path] = d.next
	s := settled{path: path, seq: d.next}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		select {
		case d.ready <- s:
		case <-ctx.Done():
		}
	})
	return s.seq
}

// take reports whether s is the latest touch of its path and forgets the path if so.
func (d *debouncer) take(s settled) bool {
	if cur, ok := d.seq[s.path]; !ok || cur != s.seq {
		return false
	}
	delete(d.seq, s.path)
	delete(d.timers, s.path)
	return true
}

func (d *debouncer) stop() {
	for _, t := range d.timers {
		t.Stop()
	}
}

// wantFile skips office lock files and hidden temp files.
func wantFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	return SupportedFile(path)
}
