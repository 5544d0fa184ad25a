// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-renders manuscripts when their sources change.
// See docs/ARCHITECTURE § Watch.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/pkg/types"
)

const defaultDebounce = 500 * time.Millisecond

// Stats tracks watcher activity.
type Stats struct {
	Rendered int
	Failed   int
	Removed  int
	Errors   int
}

// Watcher monitors the source directory and re-renders changed manuscripts.
// Rapid saves are debounced so a document renders once per editing burst.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	conv     convert.Converter
	cfg      types.ConvertConfig
	debounce time.Duration
	pending  map[string]time.Time
	out      io.Writer
	stats    Stats
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// New creates a Watcher over cfg.SourceDir rendering through conv. Status
// lines go to out.
func New(conv convert.Converter, cfg types.ConvertConfig, wcfg types.WatchConfig, out io.Writer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	debounce := wcfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &Watcher{
		fsw:      fsw,
		conv:     conv,
		cfg:      cfg,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		out:      out,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching the source directory. It is non-blocking; the
// event loop runs in a goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.cfg.SourceDir, 0o755); err != nil {
		return fmt.Errorf("creating source directory: %w", err)
	}
	if err := w.fsw.Add(w.cfg.SourceDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.cfg.SourceDir, err)
	}

	fmt.Fprintf(w.out, "watching: %s\n", w.cfg.SourceDir)
	go w.run(ctx)
	return nil
}

// Stop terminates the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.fsw.Close()
}

// Snapshot returns a copy of the watcher counters.
func (w *Watcher) Snapshot() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(w.out, "watch error: %v\n", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".md") {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.mu.Lock()
		w.pending[event.Name] = time.Now()
		w.mu.Unlock()

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.stats.Removed++
		w.mu.Unlock()

		slug := manifest.Slug(event.Name)
		if err := manifest.RemoveMetadata(w.cfg.OutputDir, slug); err != nil {
			fmt.Fprintf(w.out, "warning: removing metadata for %s: %v\n", slug, err)
		}
		fmt.Fprintf(w.out, "removed:  %s\n", slug)
	}
}

// processPending renders files whose last event has settled past the
// debounce window.
func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.render(ctx, path)
	}
}

func (w *Watcher) render(ctx context.Context, path string) {
	doc, err := manifest.Inspect(path)
	if err != nil {
		// Deleted between the event and the render.
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		fmt.Fprintf(w.out, "failed:   %s (%v)\n", manifest.Slug(path), err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}
	doc.PDFPath = manifest.PDFPath(w.cfg.OutputDir, doc.ID)

	status := convert.RenderDocument(ctx, w.conv, doc, w.cfg, w.out)

	w.mu.Lock()
	switch status {
	case convert.StatusRendered:
		w.stats.Rendered++
	case convert.StatusFailed:
		w.stats.Failed++
	}
	w.mu.Unlock()
}
