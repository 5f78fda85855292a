// Package watch feeds PDFs dropped into the upload directory to the batch
// runner, one document at a time.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/a3tai/invoice-extractor/internal/batch"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long a file must stay quiet before it is processed.
const DefaultSettle = 500 * time.Millisecond

// minPoll bounds how often pending files are checked, whatever the settle time.
const minPoll = time.Millisecond

// Runner processes a list of documents into a sink
type Runner interface {
	Run(paths []string, sink batch.Sink) (*batch.Summary, error)
}

// Watcher processes new PDFs in a directory
type Watcher struct {
	dir       string
	runner    Runner
	sink      batch.Sink
	settle    time.Duration
	initial   bool
	logger    *zap.Logger
	onSummary func(*batch.Summary)

	seen    map[string]struct{}
	pending map[string]time.Time
}

// Option configures a Watcher
type Option func(*Watcher)

// WithSettle sets the quiet period before a written file is processed
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithInitialScan processes the PDFs already present when watching starts
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initial = enabled
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// OnSummary is called after each document has been processed and persisted
func OnSummary(fn func(*batch.Summary)) Option {
	return func(w *Watcher) {
		w.onSummary = fn
	}
}

// New creates a Watcher over dir
func New(dir string, runner Runner, sink batch.Sink, opts ...Option) *Watcher {
	w := &Watcher{
		dir:       dir,
		runner:    runner,
		sink:      sink,
		settle:    DefaultSettle,
		logger:    zap.NewNop(),
		onSummary: func(*batch.Summary) {},
		seen:      make(map[string]struct{}),
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. It returns early only when the watch
// cannot be set up or the sink fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for invoices", zap.String("dir", w.dir), zap.Duration("settle", w.settle))

	if w.initial {
		paths, err := batch.ScanDirectory(w.dir)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if err := w.process(path); err != nil {
				return err
			}
		}
	}

	ticker := time.NewTicker(max(w.settle/2, minPoll))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", zap.Int("processed", len(w.seen)))
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(w.seen, event.Name)
				delete(w.pending, event.Name)
				continue
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.pending[path] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				if err := w.process(path); err != nil {
					return err
				}
			}
		}
	}
}

// handleFsEvent returns the path to queue for event, if any. Only created or
// written, visible, regular .pdf files qualify.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !batch.IsPDFName(name) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// due removes and returns, sorted, the pending paths that have settled.
func (w *Watcher) due(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func (w *Watcher) process(path string) error {
	if _, done := w.seen[path]; done {
		return nil
	}
	w.seen[path] = struct{}{}

	summary, err := w.runner.Run([]string{path}, w.sink)
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", path, err)
	}
	w.onSummary(summary)
	return nil
}
