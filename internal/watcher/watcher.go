// Package watcher triggers a cache refresh whenever the watched corpus
// changes on disk, debouncing rapid bursts of events into a single flush.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a corpus directory tree and emits debounced events for
// files matching Extensions (after ignore/include pattern filtering).
type Watcher struct {
	rootPath        string
	extensions      []string
	watcher         *fsnotify.Watcher
	debouncer       *Debouncer
	ignorePatterns  []string
	includePatterns []string
	stopCh          chan struct{}
}

// New creates a Watcher rooted at rootPath. Only files whose extension
// appears in extensions (case-sensitive, dot-prefixed, e.g. ".md") are
// ever reported; an empty extensions slice matches every file.
func New(rootPath string, extensions []string, debounceMs int, ignorePatterns, includePatterns []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		rootPath:        rootPath,
		extensions:      extensions,
		watcher:         fsWatcher,
		debouncer:       NewDebouncer(debounceMs),
		ignorePatterns:  ignorePatterns,
		includePatterns: includePatterns,
		stopCh:          make(chan struct{}),
	}, nil
}

// Start begins watching the root directory and all subdirectories.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.rootPath); err != nil {
		return err
	}

	go w.processEvents(ctx)

	slog.Info("watcher started",
		"path", w.rootPath,
		"extensions", w.extensions,
		"ignore_patterns", len(w.ignorePatterns))

	return nil
}

// Events returns the channel of debounced note-change events.
func (w *Watcher) Events() <-chan FileEvent {
	return w.debouncer.Events()
}

// Run drains Events until ctx is cancelled, collecting whatever arrives
// within idleGap of the previous event into one batch and invoking
// onBatch once per settled batch. This is the shape cmd/zettelkasten's
// `watch` subcommand uses to call scanner.RefreshCache once per burst of
// changes instead of once per individual file.
func (w *Watcher) Run(ctx context.Context, idleGap time.Duration, onBatch func([]FileEvent)) {
	events := w.Events()
	var batch []FileEvent
	var idle <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			onBatch(batch)
			batch = nil
		}
		idle = nil
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case ev, ok := <-events:
			if !ok {
				flush()
				return
			}
			batch = append(batch, ev)
			idle = time.After(idleGap)
		case <-idle:
			flush()
		}
	}
}

// Stop stops the watcher and its debouncer.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.debouncer.Stop()
	return w.watcher.Close()
}

// Flush immediately emits all pending debounced events.
func (w *Watcher) Flush() {
	w.debouncer.Flush()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			slog.Warn("error walking path", "path", path, "error", err)
			return nil
		}

		relPath, _ := filepath.Rel(w.rootPath, path)
		relPath = filepath.ToSlash(relPath)

		if w.shouldIgnore(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				slog.Warn("failed to watch directory", "path", path, "error", err)
			}
		}

		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			relPath, err := filepath.Rel(w.rootPath, event.Name)
			if err != nil {
				continue
			}
			relPath = filepath.ToSlash(relPath)

			if w.shouldIgnore(relPath) || !w.shouldInclude(relPath) || !w.matchesExtension(relPath) {
				continue
			}

			w.handleEvent(event, relPath)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, relPath string) {
	info, statErr := os.Stat(event.Name)

	switch {
	case event.Has(fsnotify.Create):
		if statErr == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("failed to add new directory", "path", event.Name, "error", err)
			}
			return
		}
		w.debouncer.Add(relPath, EventCreate)

	case event.Has(fsnotify.Write):
		if statErr == nil && info.IsDir() {
			return
		}
		w.debouncer.Add(relPath, EventModify)

	case event.Has(fsnotify.Remove):
		w.debouncer.Add(relPath, EventDelete)

	case event.Has(fsnotify.Rename):
		// The new name will trigger its own Create event.
		w.debouncer.Add(relPath, EventDelete)

	case event.Has(fsnotify.Chmod):
		// Ignored.
	}
}

func (w *Watcher) matchesExtension(relPath string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(relPath)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldIgnore(relPath string) bool {
	for _, pattern := range w.ignorePatterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}

		parts := strings.Split(relPath, "/")
		for i := 1; i <= len(parts); i++ {
			partial := strings.Join(parts[:i], "/")
			if matched, _ := doublestar.Match(pattern, partial); matched {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) shouldInclude(relPath string) bool {
	if len(w.includePatterns) == 0 {
		return true
	}
	for _, pattern := range w.includePatterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}
